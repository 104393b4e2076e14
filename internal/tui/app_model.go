package tui

import (
	"context"

	"reportdesk/internal/genai"
	"reportdesk/internal/model"
	"reportdesk/internal/reports"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type screen int

const (
	screenList screen = iota
	screenEditor
	screenView
)

// Side pane width (feed + profile) when the terminal is wide enough to show it.
const (
	sidePaneWidth    = 38
	sidePaneMinTotal = 100
)

type appModel struct {
	ctx context.Context
	st  *reports.Store
	ai  genai.Service
	log zerolog.Logger

	width  int
	height int

	screen screen

	reportsList list.Model
	search      textinput.Model
	searching   bool

	// confirmDeleteID is the report awaiting delete confirmation; empty when no modal is open.
	confirmDeleteID string
	confirmFocus    confirmModalFocus

	editor *editorState

	viewer   viewport.Model
	viewerID string

	spinner   spinner.Model
	statusMsg string
	statusErr bool

	// aiStats are the generation service counters, refreshed after each AI call.
	aiStats []genai.OpStats
}

func newAppModel(ctx context.Context, st *reports.Store, ai genai.Service, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search title or content"
	search.SetValue(st.Query().Search)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	l := list.New([]list.Item{}, newReportDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	m := appModel{
		ctx:         ctx,
		st:          st,
		ai:          ai,
		log:         opts.Logger,
		screen:      screenList,
		reportsList: l,
		search:      search,
		spinner:     sp,
		viewer:      viewport.New(0, 0),
	}
	m.refreshReports()
	m.refreshAIStats()
	return m
}

func (m *appModel) refreshAIStats() {
	stats, err := genai.Stats(prometheus.DefaultGatherer)
	if err != nil {
		m.log.Warn().Err(err).Msg("read ai metrics")
		return
	}
	m.aiStats = stats
}

// aiTotals sums calls and failures over every operation.
func (m *appModel) aiTotals() (calls, failures int) {
	for _, s := range m.aiStats {
		calls += s.Calls
		failures += s.Failures
	}
	return calls, failures
}

// refreshReports rebuilds the card list from the store's current query, keeping the selection when possible.
func (m *appModel) refreshReports() {
	selected := m.selectedReportID()
	filtered := m.st.FilteredReports()
	items := make([]list.Item, 0, len(filtered))
	idx := 0
	for i, r := range filtered {
		items = append(items, reportItem{report: r})
		if r.ID == selected {
			idx = i
		}
	}
	m.reportsList.SetItems(items)
	if len(items) > 0 {
		m.reportsList.Select(idx)
	}
}

func (m *appModel) selectedReportID() string {
	if it, ok := m.reportsList.SelectedItem().(reportItem); ok {
		return it.report.ID
	}
	return ""
}

func (m *appModel) selectedReport() (model.Report, bool) {
	id := m.selectedReportID()
	if id == "" {
		return model.Report{}, false
	}
	return m.st.FindReport(id)
}

func (m *appModel) selectReport(id string) {
	for i, it := range m.reportsList.Items() {
		if ri, ok := it.(reportItem); ok && ri.report.ID == id {
			m.reportsList.Select(i)
			return
		}
	}
}

func (m *appModel) setStatus(msg string) {
	m.statusMsg = msg
	m.statusErr = false
}

func (m *appModel) setError(err error) {
	if err == nil {
		return
	}
	m.statusMsg = userMessage(err)
	m.statusErr = true
}

func (m *appModel) showSidePane() bool {
	return m.width >= sidePaneMinTotal
}

func (m *appModel) resize() {
	listW := m.width
	if m.showSidePane() {
		listW = m.width - sidePaneWidth - 1
	}
	// Header (2 lines), search line, and status line.
	listH := m.height - 5
	if listH < 3 {
		listH = 3
	}
	m.reportsList.SetSize(listW, listH)
	m.search.Width = listW - 4
	m.viewer.Width = m.width
	m.viewer.Height = m.height - 3
	if m.editor != nil {
		m.editor.resize(m.width, m.height)
	}
}
