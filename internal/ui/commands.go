package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"chaindo/internal/chain"
	"chaindo/internal/config"
	"chaindo/internal/todo"
)

// Every remote-facing step is a tea.Cmd: the wallet or the network may sit on
// it indefinitely, and its completion comes back as one of these messages.
// Errors never escape a command; they are converted here and handled in
// Update.

type connectedMsg struct{ session *chain.Session }

type connectFailedMsg struct{ err error }

type tasksMsg struct{ tasks []todo.Task }

type refreshFailedMsg struct{ err error }

type submittedMsg struct{ tx *todo.PendingTx }

type minedMsg struct{}

type txFailedMsg struct{ err error }

func connectCmd(dial chain.Dialer, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		session, err := chain.Connect(context.Background(), dial, cfg)
		if err != nil {
			return connectFailedMsg{err: err}
		}
		return connectedMsg{session: session}
	}
}

func refreshCmd(session *chain.Session) tea.Cmd {
	return func() tea.Msg {
		tasks, err := session.Tasks.GetTasks(context.Background())
		if err != nil {
			return refreshFailedMsg{err: err}
		}
		return tasksMsg{tasks: tasks}
	}
}

func submitCmd(submit func(context.Context) (*todo.PendingTx, error)) tea.Cmd {
	return func() tea.Msg {
		tx, err := submit(context.Background())
		if err != nil {
			return txFailedMsg{err: err}
		}
		return submittedMsg{tx: tx}
	}
}

func waitCmd(tx *todo.PendingTx) tea.Cmd {
	return func() tea.Msg {
		if err := tx.Wait(context.Background()); err != nil {
			return txFailedMsg{err: err}
		}
		return minedMsg{}
	}
}
