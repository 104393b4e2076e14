package tui

import (
	"fmt"
	"strings"
	"time"

	"reportdesk/internal/dashboard"
	"reportdesk/internal/editor"
	"reportdesk/internal/model"
	"reportdesk/internal/perm"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func (m *appModel) openViewer(r model.Report) {
	m.viewerID = r.ID
	m.screen = screenView
	m.refreshViewer()
	m.viewer.GotoTop()
}

// refreshViewer renders the report through a view-mode editor session so the
// displayed form matches what an editor would load.
func (m *appModel) refreshViewer() {
	r, ok := m.st.FindReport(m.viewerID)
	if !ok {
		m.screen = screenList
		m.viewerID = ""
		return
	}
	sess, err := editor.Open(m.st, m.ai, editor.ModeView, &r, editor.Options{Logger: m.log})
	if err != nil {
		m.setError(err)
		m.screen = screenList
		return
	}
	w := m.width
	if w <= 0 {
		w = 80
	}
	f := sess.Form()

	var b strings.Builder
	b.WriteString(styleHeader().Render(f.Title))
	b.WriteString("\n")
	meta := []string{statusBadge(string(f.Status))}
	if r.AIGenerated {
		meta = append(meta, aiBadge())
	}
	for _, t := range f.Tags {
		meta = append(meta, styleChip().Render(t))
	}
	meta = append(meta, styleMuted().Render("updated "+r.UpdatedAt.Local().Format("Jan 2, 2006 15:04")))
	b.WriteString(strings.Join(meta, " "))
	b.WriteString("\n")
	b.WriteString(dashboard.RenderContent(f.Content, w))
	if summary, ok := sess.Summary(); ok {
		b.WriteString("\n")
		b.WriteString(styleHeader().Render("AI summary"))
		b.WriteString("\n")
		b.WriteString(dashboard.RenderContent(summary, w))
	}
	b.WriteString("\n")
	b.WriteString(styleHeader().Render("Activity"))
	b.WriteString("\n")
	now := time.Now()
	acts := m.st.ActivitiesForReport(r.ID)
	if len(acts) == 0 {
		b.WriteString(styleMuted().Render("No activity yet"))
	}
	for _, a := range acts {
		line := dashboard.ActivityText(a.Action) + " · " + dashboard.Ago(now, a.Timestamp)
		if a.Details != nil {
			line += " · " + *a.Details
		}
		b.WriteString(fitLine(line, w) + "\n")
	}
	m.viewer.SetContent(b.String())
}

func (m appModel) updateViewer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "backspace":
		m.screen = screenList
		m.viewerID = ""
		return m, nil
	case "e":
		r, ok := m.st.FindReport(m.viewerID)
		if !ok {
			m.screen = screenList
			return m, nil
		}
		if err := perm.Require(m.st.CurrentUser(), perm.ActionEdit); err != nil {
			m.setError(err)
			return m, nil
		}
		if err := m.openEditor(editor.ModeEdit, &r); err != nil {
			m.setError(err)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.viewer, cmd = m.viewer.Update(msg)
	return m, cmd
}

func (m appModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	var body string
	switch m.screen {
	case screenEditor:
		body = m.viewEditor()
	case screenView:
		body = m.viewer.View() + "\n" + styleMuted().Render("↑/↓: scroll   e: edit   esc: back")
	default:
		body = m.viewList()
	}
	if m.confirmDeleteID != "" {
		title := m.confirmDeleteID
		if r, ok := m.st.FindReport(m.confirmDeleteID); ok {
			title = r.Title
		}
		modal := renderConfirmModal(m.width, "Delete report", fmt.Sprintf("Delete %q and its activity?", title), "Delete", "Cancel", m.confirmFocus)
		body = lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, modal)
	}
	return body + "\n" + m.viewStatusLine()
}

func (m appModel) viewStatusLine() string {
	var parts []string
	if m.aiPending() || m.st.AILoading() {
		parts = append(parts, m.spinner.View())
	}
	if m.statusMsg != "" {
		if m.statusErr {
			parts = append(parts, styleError().Render(m.statusMsg))
		} else {
			parts = append(parts, m.statusMsg)
		}
	}
	return fitLine(strings.Join(parts, " "), m.width)
}

func (m appModel) viewList() string {
	q := m.st.Query()
	u := m.st.CurrentUser()
	total := len(m.st.Reports())
	shown := len(m.reportsList.Items())

	head := styleHeader().Render("Reports") + styleMuted().Render(fmt.Sprintf("  %d of %d", shown, total))
	who := styleMuted().Render(u.Name + " (" + string(u.Role) + ")")
	gap := m.width - xansi.StringWidth(head) - xansi.StringWidth(who)
	if gap < 1 {
		gap = 1
	}
	header := head + strings.Repeat(" ", gap) + who

	bar := fmt.Sprintf("filter: %s   sort: %s %s", q.Status, q.SortBy, q.SortOrder)
	keys := "/ search  f filter  s sort  o order  enter open  v view"
	if perm.CanEdit(u) {
		keys += "  n new  g generate  d delete  J/K move"
	}
	keys += "  q quit"

	search := styleMuted().Render("/ search")
	if m.searching || m.search.Value() != "" {
		search = m.search.View()
	}

	var main string
	if shown == 0 {
		main = styleMuted().Render("No reports match the current search and filter.")
	} else {
		main = m.reportsList.View()
	}

	left := strings.Join([]string{
		fitLine(header, m.width),
		fitLine(styleMuted().Render(bar+"   "+keys), m.width),
		search,
		main,
	}, "\n")
	if !m.showSidePane() {
		return left
	}
	leftW := m.width - sidePaneWidth - 1
	left = lipgloss.NewStyle().Width(leftW).MaxWidth(leftW).Render(left)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", m.viewSidePane())
}

func (m appModel) viewSidePane() string {
	w := sidePaneWidth - 2
	now := time.Now()

	lines := []string{styleHeader().Render("Recent activity")}
	feed := dashboard.Feed(m.st, dashboard.DefaultFeedLimit)
	if len(feed) == 0 {
		lines = append(lines, styleMuted().Render("No activity yet"))
	}
	for _, e := range feed {
		lines = append(lines, fitLine(e.Text, w))
		lines = append(lines, fitLine(styleMuted().Render(e.ReportTitle+" · "+dashboard.Ago(now, e.Activity.Timestamp)), w))
	}

	p := dashboard.Profile(m.st)
	lines = append(lines,
		"",
		styleHeader().Render("Profile"),
		fitLine(p.User.Name, w),
		fitLine(styleMuted().Render(p.User.Email), w),
		fitLine("Role: "+string(p.User.Role), w),
		fitLine(fmt.Sprintf("Reports: %d  Published: %d", p.ReportsCreated, p.Published), w),
		fitLine(fmt.Sprintf("AI generated: %d  Activity: %d", p.AIGenerated, p.Activities), w),
	)
	if calls, failures := m.aiTotals(); calls > 0 {
		lines = append(lines, fitLine(styleMuted().Render(fmt.Sprintf("AI calls: %d  Failed: %d", calls, failures)), w))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(colorCardBorder).
		PaddingLeft(1).
		Width(sidePaneWidth).
		Render(strings.Join(lines, "\n"))
}

func (m appModel) viewEditor() string {
	e := m.editor
	if e == nil {
		return ""
	}
	f := e.sess.Form()
	w := m.width

	head := styleHeader().Render(e.heading())
	if e.pending {
		head += " " + m.spinner.View()
	}
	lines := []string{fitLine(head, w)}
	if e.sess.ReadOnly() {
		lines = append(lines, fitLine("Title: "+f.Title, w))
	} else {
		lines = append(lines, e.title.View())
	}
	lines = append(lines, fitLine("Status: "+statusBadge(string(f.Status))+styleMuted().Render("  (ctrl+p)"), w))

	chips := []string{}
	for _, t := range f.Tags {
		chips = append(chips, styleChip().Render(t))
	}
	if len(chips) == 0 {
		chips = append(chips, styleMuted().Render("no tags"))
	}
	lines = append(lines, fitLine(strings.Join(chips, " "), w))
	if !e.sess.ReadOnly() {
		lines = append(lines, e.tags.View())
	}
	lines = append(lines, e.content.View())
	if e.sess.CanUseAI() && !e.sess.ReadOnly() {
		lines = append(lines, e.prompt.View())
	}
	if summary, ok := e.sess.Summary(); ok {
		lines = append(lines, fitLine(styleHeader().Render("Summary: ")+dashboard.PlainText(summary), w))
	}
	lines = append(lines, fitLine(styleMuted().Render(e.help()), w))
	return strings.Join(lines, "\n")
}
