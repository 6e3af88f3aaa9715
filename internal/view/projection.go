// Package view derives what the user sees from the mirror. Everything here
// is pure: no remote access, no mutation of the mirror.
package view

import (
	"strings"

	"chaindo/internal/todo"
)

// Filter narrows the displayed rows. It never affects the counters, which
// always cover every active task.
type Filter int

const (
	FilterAll Filter = iota
	FilterPending
	FilterDone
)

func (f Filter) String() string {
	switch f {
	case FilterPending:
		return "pending"
	case FilterDone:
		return "done"
	default:
		return "all"
	}
}

func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterPending
	case FilterPending:
		return FilterDone
	default:
		return FilterAll
	}
}

func ParseFilter(s string) Filter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return FilterPending
	case "done":
		return FilterDone
	default:
		return FilterAll
	}
}

// Draft is the transient local edit state: one target task and its editable
// buffer. At most one exists at a time and it never touches the remote store
// until explicitly committed.
type Draft struct {
	TargetID uint64
	Text     string
}

// Row is one presented task. When Editing, EditText is the draft buffer to
// show instead of the confirmed content.
type Row struct {
	Task     todo.Task
	Editing  bool
	EditText string
}

// Model is the derived view state.
type Model struct {
	Rows      []Row
	Total     int
	Pending   int
	Completed int
}

// Project derives the presented list from the mirror: non-deleted tasks in
// mirror order, with the draft target rendered in edit mode. Soft-deleted
// tasks stay in the mirror but never reach a row.
func Project(mirror []todo.Task, draft *Draft) Model {
	var m Model
	for _, t := range mirror {
		if t.Deleted {
			continue
		}
		row := Row{Task: t}
		if draft != nil && draft.TargetID == t.ID {
			row.Editing = true
			row.EditText = draft.Text
		}
		m.Rows = append(m.Rows, row)
		if t.Completed {
			m.Completed++
		} else {
			m.Pending++
		}
	}
	m.Total = len(m.Rows)
	return m
}

// Visible applies the display filter, preserving row order.
func (m Model) Visible(f Filter) []Row {
	if f == FilterAll {
		return m.Rows
	}
	var rows []Row
	for _, r := range m.Rows {
		if f == FilterDone && r.Task.Completed || f == FilterPending && !r.Task.Completed {
			rows = append(rows, r)
		}
	}
	return rows
}
