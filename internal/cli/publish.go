package cli

import (
	"strings"

	"reportdesk/internal/model"
	"reportdesk/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var to, reportID, status string
	var overwrite, activity, summary bool
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write reports as markdown pages (index.md + reports/<id>.md)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var st model.ReportStatus
			if strings.TrimSpace(status) != "" {
				v, err := model.ParseReportStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				st = v
			}
			opt := publish.WriteOptions{
				RenderOptions: publish.RenderOptions{IncludeActivity: activity, IncludeSummary: summary},
				Status:        st,
				Overwrite:     overwrite,
			}
			return withState(cmd, app, func(s *session) error {
				var res publish.WriteResult
				var err error
				if id := strings.TrimSpace(reportID); id != "" {
					res, err = publish.WriteReport(s.st, id, to, opt)
				} else {
					res, err = publish.WriteAll(s.st, to, opt)
				}
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": res})
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory (required)")
	cmd.Flags().StringVar(&reportID, "report", "", "Publish only this report")
	cmd.Flags().StringVar(&status, "status", "", "Only reports with this status (draft|published)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	cmd.Flags().BoolVar(&activity, "activity", false, "Include each report's activity log")
	cmd.Flags().BoolVar(&summary, "summary", true, "Include AI summaries")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
