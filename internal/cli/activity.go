package cli

import (
	"time"

	"reportdesk/internal/dashboard"
	"reportdesk/internal/model"

	"github.com/spf13/cobra"
)

func newActivityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"activities"},
		Short:   "Activity log commands",
	}
	cmd.AddCommand(newActivityListCmd(app))
	return cmd
}

func newActivityListCmd(app *App) *cobra.Command {
	var limit int
	var reportID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activity entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return writeErr(cmd, errUsage("--limit must be >= 0"))
			}
			return withState(cmd, app, func(s *session) error {
				var acts []model.Activity
				if reportID != "" {
					acts = s.st.ActivitiesForReport(reportID)
				} else {
					acts = s.st.Activities()
				}
				if limit > 0 && len(acts) > limit {
					acts = acts[:limit]
				}
				return writeOut(cmd, app, map[string]any{
					"data": acts,
					"meta": map[string]any{"count": len(acts)},
				})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Max entries (0 = all)")
	cmd.Flags().StringVar(&reportID, "report", "", "Only entries for this report id")
	return cmd
}

type feedRow struct {
	dashboard.FeedEntry
	Ago string `json:"ago"`
}

func newFeedCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the dashboard activity feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withState(cmd, app, func(s *session) error {
				now := time.Now().UTC()
				entries := dashboard.Feed(s.st, limit)
				rows := make([]feedRow, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, feedRow{FeedEntry: e, Ago: dashboard.Ago(now, e.Activity.Timestamp)})
				}
				return writeOut(cmd, app, map[string]any{"data": rows})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", dashboard.DefaultFeedLimit, "Max entries")
	return cmd
}
