package view

import (
	"testing"
	"time"

	"chaindo/internal/todo"
)

func mirror() []todo.Task {
	at := time.Unix(1_700_000_000, 0)
	return []todo.Task{
		{ID: 3, Content: "ship it", Completed: false, CreatedAt: at},
		{ID: 1, Content: "old one", Completed: true, Deleted: true, CreatedAt: at},
		{ID: 2, Content: "buy milk", Completed: true, CreatedAt: at},
		{ID: 4, Content: "gone pending", Completed: false, Deleted: true, CreatedAt: at},
	}
}

func TestDeletedTasksNeverProjected(t *testing.T) {
	vm := Project(mirror(), nil)
	if len(vm.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(vm.Rows))
	}
	for _, r := range vm.Rows {
		if r.Task.Deleted {
			t.Fatalf("deleted task %d reached a row", r.Task.ID)
		}
	}
}

func TestMirrorOrderPreserved(t *testing.T) {
	vm := Project(mirror(), nil)
	if vm.Rows[0].Task.ID != 3 || vm.Rows[1].Task.ID != 2 {
		t.Fatalf("rows out of mirror order: %d, %d", vm.Rows[0].Task.ID, vm.Rows[1].Task.ID)
	}
}

func TestCountsAddUp(t *testing.T) {
	vm := Project(mirror(), nil)
	if vm.Pending+vm.Completed != vm.Total {
		t.Fatalf("pending %d + completed %d != total %d", vm.Pending, vm.Completed, vm.Total)
	}
	if vm.Pending != 1 || vm.Completed != 1 {
		t.Fatalf("got pending %d completed %d", vm.Pending, vm.Completed)
	}
}

func TestDraftRendersAsEditRow(t *testing.T) {
	draft := &Draft{TargetID: 2, Text: "buy oat milk"}
	vm := Project(mirror(), draft)
	var found bool
	for _, r := range vm.Rows {
		if r.Task.ID == 2 {
			found = true
			if !r.Editing || r.EditText != "buy oat milk" {
				t.Fatalf("draft row wrong: editing=%v text=%q", r.Editing, r.EditText)
			}
		} else if r.Editing {
			t.Fatalf("task %d should not be editing", r.Task.ID)
		}
	}
	if !found {
		t.Fatal("target row missing")
	}
}

func TestDraftForDeletedTaskProjectsNothing(t *testing.T) {
	vm := Project(mirror(), &Draft{TargetID: 1, Text: "zombie"})
	for _, r := range vm.Rows {
		if r.Editing {
			t.Fatal("no row should be editing")
		}
	}
}

func TestVisibleFilters(t *testing.T) {
	vm := Project(mirror(), nil)
	if got := len(vm.Visible(FilterAll)); got != 2 {
		t.Fatalf("all: %d", got)
	}
	pending := vm.Visible(FilterPending)
	if len(pending) != 1 || pending[0].Task.ID != 3 {
		t.Fatalf("pending filter wrong: %+v", pending)
	}
	done := vm.Visible(FilterDone)
	if len(done) != 1 || done[0].Task.ID != 2 {
		t.Fatalf("done filter wrong: %+v", done)
	}
}

func TestFilterCycleAndParse(t *testing.T) {
	if FilterAll.Next() != FilterPending || FilterPending.Next() != FilterDone || FilterDone.Next() != FilterAll {
		t.Fatal("filter cycle broken")
	}
	if ParseFilter("Pending") != FilterPending || ParseFilter("done") != FilterDone || ParseFilter("whatever") != FilterAll {
		t.Fatal("filter parse broken")
	}
}

func TestEmptyMirror(t *testing.T) {
	vm := Project(nil, nil)
	if vm.Total != 0 || vm.Pending != 0 || vm.Completed != 0 || len(vm.Rows) != 0 {
		t.Fatalf("empty mirror projected something: %+v", vm)
	}
}
