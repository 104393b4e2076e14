package tui

import (
	"context"
	"errors"

	"reportdesk/internal/editor"
	"reportdesk/internal/model"
	"reportdesk/internal/perm"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type aiOp int

const (
	aiGenerate aiOp = iota
	aiSummarize
)

// aiDoneMsg is delivered when a generate or summarize call started from the editor returns.
type aiDoneMsg struct {
	op   aiOp
	sess *editor.Session
	err  error
}

func runAI(ctx context.Context, sess *editor.Session, op aiOp, prompt string) tea.Cmd {
	return func() tea.Msg {
		var err error
		switch op {
		case aiGenerate:
			err = sess.Generate(ctx, prompt)
		case aiSummarize:
			err = sess.Summarize(ctx)
		}
		return aiDoneMsg{op: op, sess: sess, err: err}
	}
}

func userMessage(err error) string {
	var ue editor.UserError
	if errors.As(err, &ue) {
		return ue.Msg
	}
	var denied perm.Denied
	if errors.As(err, &denied) {
		return "Read-only: your role (" + string(denied.Role) + ") cannot " + string(denied.Action) + "."
	}
	return err.Error()
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if m.screen == screenView {
			m.refreshViewer()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.st.AILoading() && !m.aiPending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case aiDoneMsg:
		return m.handleAIDone(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.confirmDeleteID != "" {
			return m.updateConfirm(msg)
		}
		switch m.screen {
		case screenEditor:
			return m.updateEditor(msg)
		case screenView:
			return m.updateViewer(msg)
		default:
			return m.updateList(msg)
		}
	}

	if m.screen == screenEditor && m.editor != nil {
		return m, m.editor.update(msg)
	}
	return m, nil
}

func (m *appModel) aiPending() bool {
	return m.editor != nil && m.editor.pending
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc", "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != m.st.Query().Search {
			m.st.SetSearchQuery(m.search.Value())
			m.refreshReports()
		}
		return m, cmd
	}

	u := m.st.CurrentUser()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.st.SetSearchQuery("")
			m.refreshReports()
		}
		return m, nil
	case "f":
		m.st.SetFilterStatus(nextFilter(m.st.Query().Status))
		m.refreshReports()
		return m, nil
	case "s":
		m.st.SetSortBy(nextSortKey(m.st.Query().SortBy))
		m.refreshReports()
		return m, nil
	case "o":
		order := model.SortAsc
		if m.st.Query().SortOrder == model.SortAsc {
			order = model.SortDesc
		}
		m.st.SetSortOrder(order)
		m.refreshReports()
		return m, nil
	case "n", "g":
		if err := perm.Require(u, perm.ActionEdit); err != nil {
			m.setError(err)
			return m, nil
		}
		if err := m.openEditor(editor.ModeCreate, nil); err != nil {
			m.setError(err)
			return m, nil
		}
		if msg.String() == "g" && m.editor.sess.CanUseAI() {
			m.editor.focus = focusPrompt
			m.editor.applyFocus()
		}
		return m, textinput.Blink
	case "enter":
		r, ok := m.selectedReport()
		if !ok {
			return m, nil
		}
		if !perm.CanEdit(u) {
			m.openViewer(r)
			return m, nil
		}
		if err := m.openEditor(editor.ModeEdit, &r); err != nil {
			m.setError(err)
		}
		return m, textinput.Blink
	case "v":
		if r, ok := m.selectedReport(); ok {
			m.openViewer(r)
		}
		return m, nil
	case "d":
		if err := perm.Require(u, perm.ActionDelete); err != nil {
			m.setError(err)
			return m, nil
		}
		if id := m.selectedReportID(); id != "" {
			m.confirmDeleteID = id
			m.confirmFocus = confirmFocusCancel
		}
		return m, nil
	case "K", "shift+up":
		m.moveSelected(-1)
		return m, nil
	case "J", "shift+down":
		m.moveSelected(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.reportsList, cmd = m.reportsList.Update(msg)
	return m, cmd
}

// moveSelected reorders the selected report onto its neighbour in the visible list.
func (m *appModel) moveSelected(delta int) {
	if err := perm.Require(m.st.CurrentUser(), perm.ActionReorder); err != nil {
		m.setError(err)
		return
	}
	items := m.reportsList.Items()
	from := m.reportsList.Index()
	to := from + delta
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return
	}
	active := items[from].(reportItem).report.ID
	over := items[to].(reportItem).report.ID
	if err := m.st.ReorderReports(active, over); err != nil {
		m.setError(err)
		return
	}
	m.refreshReports()
	m.selectReport(active)
	m.setStatus("Reordered reports")
}

func nextFilter(f model.FilterStatus) model.FilterStatus {
	switch f {
	case model.FilterAll:
		return model.FilterDraft
	case model.FilterDraft:
		return model.FilterPublished
	default:
		return model.FilterAll
	}
}

func nextSortKey(k model.SortKey) model.SortKey {
	switch k {
	case model.SortByUpdatedAt:
		return model.SortByCreatedAt
	case model.SortByCreatedAt:
		return model.SortByTitle
	default:
		return model.SortByUpdatedAt
	}
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirm := false
	switch msg.String() {
	case "esc", "n", "q":
		m.confirmDeleteID = ""
		return m, nil
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return m, nil
	case "y":
		confirm = true
	case "enter":
		confirm = m.confirmFocus == confirmFocusConfirm
	default:
		return m, nil
	}
	id := m.confirmDeleteID
	m.confirmDeleteID = ""
	if !confirm {
		return m, nil
	}
	if err := m.st.DeleteReport(id); err != nil {
		m.setError(err)
		return m, nil
	}
	m.refreshReports()
	m.setStatus("Report deleted")
	return m, nil
}

func (m *appModel) openEditor(mode editor.Mode, r *model.Report) error {
	sess, err := editor.Open(m.st, m.ai, mode, r, editor.Options{Logger: m.log})
	if err != nil {
		return err
	}
	m.editor = newEditorState(sess)
	m.editor.resize(m.width, m.height)
	m.screen = screenEditor
	m.statusMsg = ""
	return nil
}

func (m *appModel) closeEditor() {
	m.editor = nil
	m.screen = screenList
	m.refreshReports()
}

func (m appModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.editor
	if e == nil {
		m.screen = screenList
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.closeEditor()
		return m, nil
	case "tab":
		e.cycleFocus(1)
		return m, textinput.Blink
	case "shift+tab":
		e.cycleFocus(-1)
		return m, textinput.Blink
	case "ctrl+s":
		if e.pending {
			m.setError(editor.ErrBusy)
			return m, nil
		}
		if err := e.sync(); err != nil {
			m.setError(err)
			return m, nil
		}
		r, err := e.sess.Save()
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.closeEditor()
		m.selectReport(r.ID)
		m.setStatus("Saved " + r.Title)
		return m, nil
	case "ctrl+p":
		if !e.sess.ReadOnly() {
			e.toggleStatus()
		}
		return m, nil
	case "ctrl+g", "ctrl+u":
		if e.pending {
			m.setError(editor.ErrBusy)
			return m, nil
		}
		if err := e.sync(); err != nil {
			m.setError(err)
			return m, nil
		}
		op := aiGenerate
		label := "Generating report..."
		if msg.String() == "ctrl+u" {
			op = aiSummarize
			label = "Summarizing..."
		}
		e.pending = true
		m.setStatus(label)
		return m, tea.Batch(runAI(m.ctx, e.sess, op, e.prompt.Value()), m.spinner.Tick)
	}
	if e.focus == focusTags && !e.sess.ReadOnly() {
		if handled, err := e.handleTagKey(msg); handled {
			if err != nil && !errors.Is(err, editor.ErrDuplicate) {
				m.setError(err)
			}
			return m, nil
		}
	}
	return m, e.update(msg)
}

func (m appModel) handleAIDone(msg aiDoneMsg) (tea.Model, tea.Cmd) {
	m.refreshReports()
	m.refreshAIStats()
	e := m.editor
	if e == nil || e.sess != msg.sess {
		// The editor was closed while the call was in flight.
		return m, nil
	}
	e.pending = false
	if msg.err != nil {
		m.setError(msg.err)
		return m, nil
	}
	switch msg.op {
	case aiGenerate:
		e.loadFromSession()
		e.prompt.SetValue("")
		m.setStatus("Generated content")
	case aiSummarize:
		m.setStatus("Summary ready")
	}
	return m, nil
}
