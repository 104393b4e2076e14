package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reportdesk/internal/genai"
	"reportdesk/internal/model"
	"reportdesk/internal/reports"
	"reportdesk/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T, role model.Role, ai genai.Service) (appModel, *reports.Store) {
	t.Helper()
	st := reports.New()
	snap := store.Defaults()
	snap.CurrentUser.Role = role
	st.Restore(snap)
	if ai == nil {
		ai = genai.Func{
			Generate:  func(context.Context, string) (string, error) { return "<h2>Churn</h2><p>Drivers</p>", nil },
			Summarize: func(context.Context, string) (string, error) { return "<p>Short.</p>", nil },
		}
	}
	m := newAppModel(context.Background(), st, ai, Options{})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, st
}

func update(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	next, _ := m.Update(msg)
	am, ok := next.(appModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return am
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m appModel, msgs ...tea.KeyMsg) appModel {
	t.Helper()
	for _, k := range msgs {
		m = update(t, m, k)
	}
	return m
}

// collect runs cmd and any batched children, returning every produced message.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// pressAI sends an AI key and feeds the completion back into the model.
func pressAI(t *testing.T, m appModel, k tea.KeyMsg) appModel {
	t.Helper()
	next, cmd := m.Update(k)
	m = next.(appModel)
	if m.editor == nil || !m.editor.pending {
		t.Fatalf("expected AI call to be pending")
	}
	for _, msg := range collect(cmd) {
		if done, ok := msg.(aiDoneMsg); ok {
			return update(t, m, done)
		}
	}
	t.Fatalf("expected an aiDoneMsg")
	return m
}

func visibleIDs(m appModel) []string {
	out := []string{}
	for _, it := range m.reportsList.Items() {
		out = append(out, it.(reportItem).report.ID)
	}
	return out
}

func storedIDs(st *reports.Store) []string {
	out := []string{}
	for _, r := range st.Reports() {
		out = append(out, r.ID)
	}
	return out
}

func TestList_FilterSortOrderKeys(t *testing.T) {
	m, st := newTestModel(t, model.RoleAdmin, nil)

	if got := strings.Join(visibleIDs(m), ","); got != "1,2" {
		t.Fatalf("expected updatedAt desc [1 2], got %s", got)
	}

	m = press(t, m, keys("f"))
	if st.Query().Status != model.FilterDraft || strings.Join(visibleIDs(m), ",") != "2" {
		t.Fatalf("expected draft filter; query=%+v visible=%v", st.Query(), visibleIDs(m))
	}
	m = press(t, m, keys("f"), keys("f"))
	if st.Query().Status != model.FilterAll {
		t.Fatalf("expected filter to cycle back to all, got %s", st.Query().Status)
	}

	m = press(t, m, keys("s"), keys("s"), keys("o"))
	q := st.Query()
	if q.SortBy != model.SortByTitle || q.SortOrder != model.SortAsc {
		t.Fatalf("unexpected query %+v", q)
	}
	if got := strings.Join(visibleIDs(m), ","); got != "2,1" {
		t.Fatalf("expected title asc [2 1], got %s", got)
	}
}

func TestList_SearchTypesIntoStoreQuery(t *testing.T) {
	m, st := newTestModel(t, model.RoleAdmin, nil)

	m = press(t, m, keys("/"), keys("market"))
	if !m.searching || st.Query().Search != "market" {
		t.Fatalf("expected live search; searching=%v query=%q", m.searching, st.Query().Search)
	}
	if got := strings.Join(visibleIDs(m), ","); got != "2" {
		t.Fatalf("expected only report 2, got %s", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.searching || st.Query().Search != "market" {
		t.Fatalf("expected esc to leave search mode and keep the query")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if st.Query().Search != "" || len(visibleIDs(m)) != 2 {
		t.Fatalf("expected second esc to clear the query")
	}
}

func TestList_MoveReordersStoredOrder(t *testing.T) {
	m, st := newTestModel(t, model.RoleAdmin, nil)

	m = press(t, m, keys("J"))
	if got := strings.Join(storedIDs(st), ","); got != "2,1" {
		t.Fatalf("expected stored order [2 1], got %s", got)
	}
	if m.selectedReportID() != "1" {
		t.Fatalf("expected selection to follow the moved report, got %q", m.selectedReportID())
	}
	acts := st.Activities()
	if len(acts) != 1 || acts[0].Action != model.ActionReordered || acts[0].ReportID != "1" {
		t.Fatalf("unexpected activity %+v", acts)
	}

	// The moved report still sorts first by updatedAt, so moving up is past the top and ignored.
	m = press(t, m, keys("K"))
	if len(st.Activities()) != 1 || strings.Join(storedIDs(st), ",") != "2,1" {
		t.Fatalf("expected no further reorder, got %d activities", len(st.Activities()))
	}
}

func TestList_DeleteConfirm(t *testing.T) {
	m, st := newTestModel(t, model.RoleAdmin, nil)

	m = press(t, m, keys("d"))
	if m.confirmDeleteID != "1" {
		t.Fatalf("expected confirm for report 1, got %q", m.confirmDeleteID)
	}
	if !strings.Contains(m.View(), "Delete report") {
		t.Fatalf("expected confirm modal in view")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(st.Reports()) != 2 || m.confirmDeleteID != "" {
		t.Fatalf("expected enter on Cancel to keep the report")
	}

	m = press(t, m, keys("d"), keys("y"))
	if got := strings.Join(storedIDs(st), ","); got != "2" {
		t.Fatalf("expected report 1 deleted, got %s", got)
	}
	if got := strings.Join(visibleIDs(m), ","); got != "2" {
		t.Fatalf("expected list refreshed, got %s", got)
	}
}

func TestList_ViewerIsReadOnly(t *testing.T) {
	m, st := newTestModel(t, model.RoleViewer, nil)

	m = press(t, m, keys("d"))
	if m.confirmDeleteID != "" || !m.statusErr {
		t.Fatalf("expected delete to be refused")
	}
	m = press(t, m, keys("J"), keys("n"))
	if strings.Join(storedIDs(st), ",") != "1,2" || m.screen != screenList {
		t.Fatalf("expected no reorder and no editor for viewer")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenView || m.viewerID != "1" {
		t.Fatalf("expected enter to open the read-only view, got screen %v", m.screen)
	}
	if !strings.Contains(m.View(), "Q4 2024 Performance Analysis") {
		t.Fatalf("expected report title in view")
	}
	m = press(t, m, keys("e"))
	if m.screen != screenView || !m.statusErr {
		t.Fatalf("expected edit from view to be refused")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenList {
		t.Fatalf("expected esc to return to list")
	}
}

func TestEditor_CreateAndSave(t *testing.T) {
	m, st := newTestModel(t, model.RoleAdmin, nil)

	m = press(t, m, keys("n"))
	if m.screen != screenEditor {
		t.Fatalf("expected editor")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.screen != screenEditor || !m.statusErr {
		t.Fatalf("expected empty title to block save")
	}

	m = press(t, m, keys("Weekly"), tea.KeyMsg{Type: tea.KeyTab}, keys("ops"), tea.KeyMsg{Type: tea.KeyEnter})
	if tags := m.editor.sess.Form().Tags; len(tags) != 1 || tags[0] != "ops" {
		t.Fatalf("expected tag added, got %v", tags)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlP}, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.screen != screenList {
		t.Fatalf("expected save to return to list; status %q", m.statusMsg)
	}
	list := st.Reports()
	if len(list) != 3 || list[0].Title != "Weekly" || list[0].Status != model.StatusPublished {
		t.Fatalf("unexpected stored reports %+v", list[0])
	}
	if m.selectedReportID() != list[0].ID {
		t.Fatalf("expected the new report selected")
	}
}

func TestEditor_TagBackspaceRemovesLast(t *testing.T) {
	m, _ := newTestModel(t, model.RoleAdmin, nil)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyTab})
	if m.editor.focus != focusTags {
		t.Fatalf("expected tags focus, got %v", m.editor.focus)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.editor.sess.Form().Tags; strings.Join(got, ",") != "quarterly,performance" {
		t.Fatalf("expected last tag removed, got %v", got)
	}
}

func TestEditor_GenerateInCreateMode(t *testing.T) {
	m, st := newTestModel(t, model.RoleAdmin, nil)

	m = press(t, m, keys("g"))
	if m.editor.focus != focusPrompt {
		t.Fatalf("expected prompt focus")
	}
	m = press(t, m, keys("churn"))
	m = pressAI(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	if m.editor.pending || st.AILoading() {
		t.Fatalf("expected busy flags cleared")
	}
	if !strings.HasPrefix(m.editor.title.Value(), "AI Generated Report - ") {
		t.Fatalf("expected fallback title, got %q", m.editor.title.Value())
	}
	if !strings.Contains(m.editor.content.Value(), "Drivers") {
		t.Fatalf("expected generated content in editor, got %q", m.editor.content.Value())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	r := st.Reports()[0]
	if !r.AIGenerated || !strings.Contains(r.Content, "Drivers") {
		t.Fatalf("expected AI report saved, got %+v", r)
	}
}

func TestEditor_SaveWhileGeneratingIsRefused(t *testing.T) {
	m, st := newTestModel(t, model.RoleAdmin, nil)

	m = press(t, m, keys("g"), keys("churn"))
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = next.(appModel)
	if !m.editor.pending {
		t.Fatalf("expected AI call to be pending")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.screen != screenEditor || !m.statusErr || len(st.Reports()) != 2 {
		t.Fatalf("expected save refused while generating; screen=%v status=%q reports=%d", m.screen, m.statusMsg, len(st.Reports()))
	}

	for _, msg := range collect(cmd) {
		if done, ok := msg.(aiDoneMsg); ok {
			m = update(t, m, done)
		}
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	r := st.Reports()[0]
	if len(st.Reports()) != 3 || !r.AIGenerated || !strings.Contains(r.Content, "Drivers") {
		t.Fatalf("expected generated report saved after completion, got %+v", r)
	}
}

func TestEditor_GenerateFailureShowsMessage(t *testing.T) {
	m, st := newTestModel(t, model.RoleAdmin, genai.Failing{Err: errors.New("boom")})

	m = press(t, m, keys("g"), keys("anything"))
	m = pressAI(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	if !m.statusErr || m.statusMsg != "Failed to generate report. Please try again." {
		t.Fatalf("unexpected status %q", m.statusMsg)
	}
	if m.editor.content.Value() != "" || st.AILoading() || len(st.Reports()) != 2 {
		t.Fatalf("expected no state change on failure")
	}
}

func TestEditor_SummarizeInEditMode(t *testing.T) {
	m, st := newTestModel(t, model.RoleAdmin, nil)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = pressAI(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	r, _ := st.FindReport("1")
	if r.AISummary == nil || *r.AISummary != "<p>Short.</p>" {
		t.Fatalf("expected summary stored, got %+v", r.AISummary)
	}
	if acts := st.ActivitiesForReport("1"); len(acts) == 0 || acts[0].Action != model.ActionAISummarized {
		t.Fatalf("expected ai_summarized activity, got %+v", acts)
	}
	if !strings.Contains(m.View(), "Short.") {
		t.Fatalf("expected summary in editor view")
	}
}

func TestEditor_EscDiscards(t *testing.T) {
	m, st := newTestModel(t, model.RoleAdmin, nil)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, keys(" changed"), tea.KeyMsg{Type: tea.KeyEsc})
	r, _ := st.FindReport("1")
	if m.screen != screenList || r.Title != "Q4 2024 Performance Analysis" {
		t.Fatalf("expected discard, got screen %v title %q", m.screen, r.Title)
	}
}

func TestView_ListShowsFeedAndProfile(t *testing.T) {
	m, _ := newTestModel(t, model.RoleAdmin, nil)
	m = press(t, m, keys("J"))

	out := m.View()
	for _, want := range []string{"Reports", "Recent activity", "Reordered reports", "Profile", "John Doe"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestView_ProfileShowsAICallCounts(t *testing.T) {
	ai := genai.Instrument(genai.Func{
		Generate: func(context.Context, string) (string, error) { return "<p>Drivers</p>", nil },
	})
	m, _ := newTestModel(t, model.RoleAdmin, ai)

	m = press(t, m, keys("g"), keys("churn"))
	m = pressAI(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	calls, _ := m.aiTotals()
	if calls < 1 {
		t.Fatalf("expected the generate call counted; stats %+v", m.aiStats)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if out := m.View(); !strings.Contains(out, "AI calls: ") {
		t.Fatalf("expected AI call counts in profile pane:\n%s", out)
	}
}
