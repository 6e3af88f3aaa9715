// Package ui is the bubbletea front of the client. The model owns all
// mutable state: session, task mirror, edit draft and the in-flight phase.
// Remote work happens in commands; the Update loop is the single place state
// changes, which is what keeps one mutation in flight at most.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"chaindo/internal/chain"
	"chaindo/internal/config"
	"chaindo/internal/lifecycle"
	"chaindo/internal/todo"
	"chaindo/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

type opKind int

const (
	opNone opKind = iota
	opAdd
	opToggle
	opEdit
	opDelete
)

const (
	sendingLabel    = "Sending transaction…"
	confirmingLabel = "Waiting for confirmation…"
	busyStatus      = "Hold on — a transaction is still in flight"
	syncingStatus   = "Hold on — still syncing with the wallet"
)

type Model struct {
	cfg  config.Config
	dial chain.Dialer

	session    *chain.Session
	connecting bool

	tasks   []todo.Task // mirror: wholesale-replaced on every refresh
	loading bool

	draft  *view.Draft
	filter view.Filter
	cursor int

	mode       mode
	input      textinput.Model
	spin       spinner.Model
	tracker    lifecycle.Tracker
	inflight   opKind
	confirmDel bool
	pendingDel *todo.Task

	status    string
	statusErr bool
}

func Run(cfg config.Config) error {
	program := tea.NewProgram(newModel(cfg, chain.WalletDialer))
	_, err := program.Run()
	return err
}

func newModel(cfg config.Config, dial chain.Dialer) Model {
	ti := textinput.New()
	ti.Placeholder = "Task text"
	ti.CharLimit = 256
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = phaseStyle

	return Model{
		cfg:    cfg,
		dial:   dial,
		input:  ti,
		spin:   sp,
		filter: view.ParseFilter(cfg.DefaultFilter),
		mode:   modeList,
		status: "Press 'c' to connect a wallet.",
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
		return m, nil
	case spinner.TickMsg:
		if !m.tracker.InFlight() && !m.connecting && !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case connectedMsg:
		if m.session != nil {
			m.session.Close()
		}
		m.connecting = false
		m.session = msg.session
		m.loading = true
		m.setStatus(fmt.Sprintf("Connected as %s", shortAddress(msg.session.Address.Hex())))
		return m, refreshCmd(m.session)
	case connectFailedMsg:
		m.connecting = false
		slog.Error("connect failed", "err", msg.err)
		m.setError(connectFailure(msg.err, m.cfg.Network.Name))
		return m, nil

	case tasksMsg:
		m.tasks = msg.tasks
		m.loading = false
		// Only a Confirming tracker owns a refresh; the mutation's own
		// refresh is issued after minedMsg and nothing else refreshes while
		// a mutation is live.
		if m.tracker.Phase() == lifecycle.Confirming {
			m.finishMutation(true)
		}
		m.cursor = clampCursor(m.cursor, len(m.visibleRows()))
		return m, nil
	case refreshFailedMsg:
		// Prior mirror contents are kept; stale beats empty.
		m.loading = false
		slog.Error("refresh failed", "err", msg.err)
		if m.tracker.Phase() == lifecycle.Confirming {
			m.finishMutation(true)
			m.setError("Confirmed, but reloading tasks failed — list may be stale")
		} else {
			m.setError("Could not load tasks")
		}
		return m, nil

	case submittedMsg:
		if err := m.tracker.Confirm(confirmingLabel); err != nil {
			slog.Error("lifecycle violation", "err", err)
			return m, nil
		}
		return m, waitCmd(msg.tx)
	case minedMsg:
		// Still Confirming until the mirror refresh lands.
		return m, refreshCmd(m.session)
	case txFailedMsg:
		slog.Error("mutation failed", "op", m.inflight, "err", msg.err)
		m.finishMutation(false)
		m.setError("Transaction failed — nothing was changed")
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeAdd:
		return m.updateAddMode(key, msg)
	case modeEdit:
		return m.updateEditMode(key, msg)
	default:
		return m.updateListMode(key)
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Connect:
		return m.startConnect()
	}

	if m.session == nil {
		m.setStatus("Connect a wallet first (press 'c')")
		return m, nil
	}

	switch key {
	case m.cfg.Keys.Refresh:
		if m.refuseWhileBusy() {
			return m, nil
		}
		m.loading = true
		m.setStatus("Refreshing…")
		return m, tea.Batch(m.spin.Tick, refreshCmd(m.session))
	case m.cfg.Keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.visibleRows()))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.visibleRows()))
		}
	case m.cfg.Keys.Filter:
		m.filter = m.filter.Next()
		m.cursor = clampCursor(m.cursor, len(m.visibleRows()))
		m.setStatus("Filter: " + m.filter.String())
	case m.cfg.Keys.Add:
		if m.refuseWhileBusy() {
			return m, nil
		}
		m.mode = modeAdd
		m.input.Focus()
		m.setStatus("Add mode: type the task and press Enter")
	case m.cfg.Keys.Toggle:
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		id := row.Task.ID
		return m.beginMutation(opToggle, func(ctx context.Context) (*todo.PendingTx, error) {
			return m.session.Tasks.ToggleTask(ctx, id)
		})
	case m.cfg.Keys.Delete:
		if m.refuseWhileBusy() {
			return m, nil
		}
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		t := row.Task
		m.confirmDel = true
		m.pendingDel = &t
		m.setStatus(fmt.Sprintf("Delete %q for good? y/n", t.Content))
	case m.cfg.Keys.Edit:
		if m.refuseWhileBusy() {
			return m, nil
		}
		row, ok := m.currentRow()
		if !ok {
			m.setStatus("No task to edit")
			return m, nil
		}
		m.draft = &view.Draft{TargetID: row.Task.ID, Text: row.Task.Content}
		m.input.SetValue(row.Task.Content)
		m.input.Focus()
		m.mode = modeEdit
		m.setStatus("Edit mode: change the text and press Enter, Esc to cancel")
	case m.cfg.Keys.Detail:
		row, ok := m.currentRow()
		if !ok {
			m.setStatus("No tasks")
			return m, nil
		}
		t := row.Task
		m.setStatus(fmt.Sprintf("Task #%d • %s • created %s",
			t.ID, humanDone(t.Completed), t.CreatedAt.Format("2006-01-02 15:04")))
	}
	return m, nil
}

func (m Model) startConnect() (tea.Model, tea.Cmd) {
	if m.refuseWhileBusy() {
		return m, nil
	}
	m.connecting = true
	m.setStatus("Connecting to wallet…")
	return m, tea.Batch(m.spin.Tick, connectCmd(m.dial, m.cfg))
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.setStatus("Cancelled")
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		content := strings.TrimSpace(m.input.Value())
		if content == "" {
			m.setStatus("Task text cannot be empty")
			return m, nil
		}
		m.mode = modeList
		m.input.Blur()
		return m.beginMutation(opAdd, func(ctx context.Context) (*todo.PendingTx, error) {
			return m.session.Tasks.AddTask(ctx, content)
		})
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateEditMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.draft = nil
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.setStatus("Edit cancelled")
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		content := strings.TrimSpace(m.input.Value())
		if content == "" {
			// Draft stays active; nothing is submitted.
			m.setStatus("Task text cannot be empty")
			return m, nil
		}
		id := m.draft.TargetID
		m.draft.Text = content
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		return m.beginMutation(opEdit, func(ctx context.Context) (*todo.PendingTx, error) {
			return m.session.Tasks.EditTask(ctx, id, content)
		})
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.draft != nil {
			m.draft.Text = m.input.Value()
		}
		return m, cmd
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel, "esc":
		m.confirmDel = false
		m.pendingDel = nil
		m.setStatus("Delete cancelled")
		return m, nil
	case "y", "Y":
		m.confirmDel = false
		if m.pendingDel == nil {
			m.setStatus("Nothing to delete")
			return m, nil
		}
		id := m.pendingDel.ID
		m.pendingDel = nil
		return m.beginMutation(opDelete, func(ctx context.Context) (*todo.PendingTx, error) {
			return m.session.Tasks.DeleteTask(ctx, id)
		})
	default:
		return m, nil
	}
}

// refuseWhileBusy refuses the key while any remote interaction is pending:
// an in-flight mutation, a refresh, or a connect attempt. Keeps the invariant
// that the only refresh running during a live mutation is the mutation's own
// post-mine one.
func (m *Model) refuseWhileBusy() bool {
	if m.tracker.InFlight() {
		m.setStatus(busyStatus)
		return true
	}
	if m.loading || m.connecting {
		m.setStatus(syncingStatus)
		return true
	}
	return false
}

// beginMutation is the single entry to the submit→confirm→refresh protocol.
// The tracker refuses a second mutation while one is in flight.
func (m Model) beginMutation(kind opKind, submit func(ctx context.Context) (*todo.PendingTx, error)) (tea.Model, tea.Cmd) {
	if m.refuseWhileBusy() {
		return m, nil
	}
	if err := m.tracker.Begin(sendingLabel); err != nil {
		m.setStatus(busyStatus)
		return m, nil
	}
	m.inflight = kind
	m.statusErr = false
	m.status = ""
	return m, tea.Batch(m.spin.Tick, submitCmd(submit))
}

// finishMutation resolves the in-flight mutation at a terminal state. The
// edit draft is discarded either way: on success the mirror now carries the
// new text, on failure the confirmed remote content stands.
func (m *Model) finishMutation(confirmed bool) {
	m.tracker.Finish()
	switch m.inflight {
	case opAdd:
		if confirmed {
			m.input.SetValue("")
			m.setStatus("Added task")
		}
	case opToggle:
		if confirmed {
			m.setStatus("Toggled task")
		}
	case opEdit:
		m.draft = nil
		if confirmed {
			m.setStatus("Saved task")
		}
	case opDelete:
		if confirmed {
			m.setStatus("Deleted task")
		}
	}
	m.inflight = opNone
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("chaindo — tasks on " + m.cfg.Network.Name))
	b.WriteString("\n")

	if m.session == nil {
		b.WriteString("\nNot connected. Press '" + m.cfg.Keys.Connect + "' to connect a wallet.\n")
	} else {
		b.WriteString(addressStyle.Render(shortAddress(m.session.Address.Hex())))
		b.WriteString("\n\n")

		vm := m.projection()
		rows := vm.Visible(m.filter)
		if len(rows) == 0 {
			if m.loading && len(m.tasks) == 0 {
				b.WriteString("Loading tasks…")
			} else {
				b.WriteString("No tasks. Press '" + m.cfg.Keys.Add + "' to add one.")
			}
			b.WriteString("\n")
		} else {
			b.WriteString(m.renderRows(rows))
		}

		b.WriteString("\n")
		b.WriteString(countStyle.Render(fmt.Sprintf("%d total • %d pending • %d done",
			vm.Total, vm.Pending, vm.Completed)))
		if m.filter != view.FilterAll {
			b.WriteString(helpStyle.Render("  (filter: " + m.filter.String() + ")"))
		}
		b.WriteString("\n")
	}

	if m.mode == modeAdd {
		b.WriteString("\nAdd task: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderPhase())
	b.WriteString("\n")
	if m.statusErr {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.renderHelp()))

	return b.String()
}

func (m Model) renderRows(rows []view.Row) string {
	var b strings.Builder
	for i, r := range rows {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}

		checkbox := "[ ]"
		if r.Task.Completed {
			checkbox = "[x]"
		}

		var body string
		switch {
		case r.Editing && m.mode == modeEdit:
			body = m.input.View()
		case r.Editing:
			body = r.EditText
		case r.Task.Completed:
			body = doneStyle.Render(r.Task.Content)
		default:
			body = r.Task.Content
		}

		b.WriteString(fmt.Sprintf("%s %s %s %s", cursor, checkbox, body,
			timeStyle.Render(r.Task.CreatedAt.Format("2006-01-02 15:04"))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderPhase() string {
	switch {
	case m.tracker.InFlight():
		return m.spin.View() + phaseStyle.Render(m.tracker.Label())
	case m.connecting:
		return m.spin.View() + phaseStyle.Render("Connecting to wallet…")
	case m.loading:
		return m.spin.View() + phaseStyle.Render("Loading tasks…")
	default:
		return ""
	}
}

func (m Model) renderHelp() string {
	k := m.cfg.Keys
	if m.session == nil {
		return fmt.Sprintf("%s connect • %s quit", k.Connect, k.Quit)
	}
	return fmt.Sprintf("%s/%s move • %s add • %s toggle • %s edit • %s delete • %s filter • %s refresh • %s quit",
		k.Up, k.Down, k.Add, k.Toggle, k.Edit, k.Delete, k.Filter, k.Refresh, k.Quit)
}

func (m Model) projection() view.Model {
	return view.Project(m.tasks, m.draft)
}

func (m Model) visibleRows() []view.Row {
	return m.projection().Visible(m.filter)
}

func (m Model) currentRow() (view.Row, bool) {
	rows := m.visibleRows()
	if len(rows) == 0 {
		return view.Row{}, false
	}
	return rows[clampCursor(m.cursor, len(rows))], true
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

// connectFailure maps connect errors to a user-facing line. Raw provider
// payloads stay in the log.
func connectFailure(err error, network string) string {
	switch {
	case errors.Is(err, chain.ErrNoWallet):
		return "No wallet found — is a wallet daemon running?"
	case errors.Is(err, chain.ErrSwitchRejected), errors.Is(err, chain.ErrWrongNetwork):
		return "Could not settle on the " + network + " network"
	case errors.Is(err, chain.ErrAccountsRejected):
		return "Wallet declined the connection"
	default:
		return "Connection failed"
	}
}

func shortAddress(hex string) string {
	if len(hex) <= 12 {
		return hex
	}
	return hex[:6] + "…" + hex[len(hex)-4:]
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
