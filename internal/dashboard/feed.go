// Package dashboard derives the read-only views shown next to the report list:
// the activity feed, the profile panel, and card previews.
package dashboard

import (
	"time"

	"reportdesk/internal/model"
	"reportdesk/internal/reports"

	"github.com/dustin/go-humanize"
)

// DefaultFeedLimit is how many activities the feed shows.
const DefaultFeedLimit = 10

const unknownReport = "Unknown Report"

type FeedEntry struct {
	Activity    model.Activity `json:"activity"`
	Text        string         `json:"text"`
	ReportTitle string         `json:"reportTitle"`
}

func ActivityText(a model.ActivityAction) string {
	switch a {
	case model.ActionCreated:
		return "Created report"
	case model.ActionEdited:
		return "Edited report"
	case model.ActionAIGenerated:
		return "Generated content with AI"
	case model.ActionAISummarized:
		return "Summarized with AI"
	case model.ActionReordered:
		return "Reordered reports"
	default:
		return string(a)
	}
}

// Feed returns the newest activities, at most limit of them (DefaultFeedLimit when limit <= 0).
func Feed(st *reports.Store, limit int) []FeedEntry {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	titles := map[string]string{}
	for _, r := range st.Reports() {
		titles[r.ID] = r.Title
	}
	acts := st.Activities()
	if len(acts) > limit {
		acts = acts[:limit]
	}
	out := make([]FeedEntry, 0, len(acts))
	for _, a := range acts {
		title := titles[a.ReportID]
		if title == "" {
			title = unknownReport
		}
		out = append(out, FeedEntry{Activity: a, Text: ActivityText(a.Action), ReportTitle: title})
	}
	return out
}

// Ago renders a coarse "time since" label for feed rows. Rows older than a
// month show the date instead.
func Ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < 30*24*time.Hour:
		return humanize.RelTime(t, now, "ago", "from now")
	default:
		return t.Format("Jan 02, 2006")
	}
}
