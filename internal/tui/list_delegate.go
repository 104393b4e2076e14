package tui

import (
	"fmt"
	"io"
	"strings"

	"reportdesk/internal/dashboard"
	"reportdesk/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type reportItem struct {
	report model.Report
}

func (i reportItem) FilterValue() string { return i.report.Title }
func (i reportItem) Title() string       { return i.report.Title }

// reportDelegate renders each report as a three-line card: title row, preview, tags and date.
type reportDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newReportDelegate() reportDelegate {
	return reportDelegate{
		normal: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(colorCardBorder).
			PaddingLeft(1),
		selected: lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(colorSelectedBorder).
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			PaddingLeft(1),
	}
}

func (d reportDelegate) Height() int                             { return 3 }
func (d reportDelegate) Spacing() int                            { return 1 }
func (d reportDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d reportDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(reportItem)
	if !ok {
		return
	}
	style := d.normal
	if index == m.Index() {
		style = d.selected
	}
	// Border and padding take two cells.
	contentW := m.Width() - 2
	if contentW < 8 {
		return
	}

	r := it.report
	head := lipgloss.NewStyle().Bold(true).Render(r.Title) + "  " + statusBadge(string(r.Status))
	if r.AIGenerated {
		head += "  " + aiBadge()
	}
	preview := styleMuted().Render(dashboard.Preview(r.Content))

	meta := []string{}
	for _, chip := range dashboard.TagChips(r.Tags) {
		meta = append(meta, styleChip().Render(chip))
	}
	meta = append(meta, styleMuted().Render("updated "+r.UpdatedAt.Local().Format("Jan 2, 2006")))

	lines := []string{
		fitLine(head, contentW),
		fitLine(preview, contentW),
		fitLine(strings.Join(meta, " "), contentW),
	}
	fmt.Fprint(w, style.Render(strings.Join(lines, "\n")))
}

// fitLine truncates or pads s to exactly width display cells.
func fitLine(s string, width int) string {
	sw := xansi.StringWidth(s)
	if sw > width {
		return xansi.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", width-sw)
}
