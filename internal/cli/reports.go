package cli

import (
	"io"
	"os"
	"strings"

	"reportdesk/internal/dashboard"
	"reportdesk/internal/editor"
	"reportdesk/internal/model"
	"reportdesk/internal/perm"
	"reportdesk/internal/reports"

	"github.com/spf13/cobra"
)

func newReportsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Report commands",
	}
	cmd.AddCommand(newReportsListCmd(app))
	cmd.AddCommand(newReportsShowCmd(app))
	cmd.AddCommand(newReportsCreateCmd(app))
	cmd.AddCommand(newReportsUpdateCmd(app))
	cmd.AddCommand(newReportsDeleteCmd(app))
	cmd.AddCommand(newReportsReorderCmd(app))
	return cmd
}

type reportRow struct {
	model.Report
	Preview string `json:"preview"`
}

func withPreviews(list []model.Report) []reportRow {
	out := make([]reportRow, 0, len(list))
	for _, r := range list {
		out = append(out, reportRow{Report: r, Preview: dashboard.Preview(r.Content)})
	}
	return out
}

func newReportsListCmd(app *App) *cobra.Command {
	var search, status, sortBy, order string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports (filtered and sorted like the dashboard)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := model.ParseFilterStatus(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			sk, err := model.ParseSortKey(sortBy)
			if err != nil {
				return writeErr(cmd, err)
			}
			so, err := model.ParseSortOrder(order)
			if err != nil {
				return writeErr(cmd, err)
			}
			return withState(cmd, app, func(s *session) error {
				s.st.SetSearchQuery(search)
				s.st.SetFilterStatus(fs)
				s.st.SetSortBy(sk)
				s.st.SetSortOrder(so)
				list := s.st.FilteredReports()
				return writeOut(cmd, app, map[string]any{
					"data": withPreviews(list),
					"meta": map[string]any{
						"count": len(list),
						"total": len(s.st.Reports()),
						"query": s.st.Query(),
					},
				})
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive substring of title or content")
	cmd.Flags().StringVar(&status, "status", "all", "Status filter (all|draft|published)")
	cmd.Flags().StringVar(&sortBy, "sort", "updatedAt", "Sort key (updatedAt|createdAt|title)")
	cmd.Flags().StringVar(&order, "order", "desc", "Sort order (asc|desc)")
	return cmd
}

func newReportsShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <report-id>",
		Short: "Show a report with its activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return withState(cmd, app, func(s *session) error {
				r, ok := s.st.FindReport(id)
				if !ok {
					return reports.NotFoundError{Kind: "report", ID: id}
				}
				return writeOut(cmd, app, map[string]any{
					"data": reportRow{Report: r, Preview: dashboard.Preview(r.Content)},
					"meta": map[string]any{
						"activities": s.st.ActivitiesForReport(id),
						"tagChips":   dashboard.TagChips(r.Tags),
					},
				})
			})
		},
	}
	return cmd
}

type contentFlags struct {
	content  string
	file     string
	markdown bool
}

func (c *contentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.content, "content", "", "Report body (HTML, or markdown with --markdown)")
	cmd.Flags().StringVar(&c.file, "content-file", "", "Read the report body from a file ('-' for stdin)")
	cmd.Flags().BoolVar(&c.markdown, "markdown", false, "Treat the body as markdown and convert it to HTML")
}

func (c *contentFlags) changed(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("content") || cmd.Flags().Changed("content-file")
}

func (c *contentFlags) resolve(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("content") && cmd.Flags().Changed("content-file") {
		return "", errUsage("use either --content or --content-file, not both")
	}
	body := c.content
	if c.file != "" {
		var b []byte
		var err error
		if c.file == "-" {
			b, err = io.ReadAll(cmd.InOrStdin())
		} else {
			b, err = os.ReadFile(c.file)
		}
		if err != nil {
			return "", err
		}
		body = string(b)
	}
	if c.markdown {
		return dashboard.MarkdownToHTML(body)
	}
	return body, nil
}

func newReportsCreateCmd(app *App) *cobra.Command {
	var title, status string
	var tags []string
	var content contentFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := model.ParseReportStatus(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			body, err := content.resolve(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			return withState(cmd, app, func(s *session) error {
				ed, err := editor.Open(s.st, app.aiService(), editor.ModeCreate, nil, editor.Options{Logger: app.log})
				if err != nil {
					return err
				}
				ed.SetTitle(title)
				ed.SetContent(body)
				ed.SetStatus(st)
				for _, t := range tags {
					// Blank and repeated tags are dropped like in the editor form.
					_ = ed.AddTag(t)
				}
				r, err := ed.Save()
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": r})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Report title (required)")
	cmd.Flags().StringVar(&status, "status", "draft", "Status (draft|published)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tags (repeatable)")
	content.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newReportsUpdateCmd(app *App) *cobra.Command {
	var title, status, summary string
	var tags []string
	var content contentFlags
	cmd := &cobra.Command{
		Use:   "update <report-id>",
		Short: "Update fields of a report (only the flags you pass change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			var patch model.ReportPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				if strings.TrimSpace(title) == "" {
					return writeErr(cmd, reports.ErrEmptyTitle)
				}
				patch.Title = &title
			}
			if content.changed(cmd) {
				body, err := content.resolve(cmd)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.Content = &body
			}
			if flags.Changed("status") {
				st, err := model.ParseReportStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.Status = &st
			}
			if flags.Changed("tag") {
				clean := dedupeTags(tags)
				patch.Tags = &clean
			}
			if flags.Changed("summary") {
				patch.AISummary = &summary
			}
			if patch.IsEmpty() {
				return writeErr(cmd, errNothingToUpdate)
			}
			return withState(cmd, app, func(s *session) error {
				if err := perm.Require(s.st.CurrentUser(), perm.ActionEdit); err != nil {
					return err
				}
				r, err := s.st.UpdateReport(id, patch)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": r})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&status, "status", "", "New status (draft|published)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replace tags (repeatable; pass --tag= to clear)")
	cmd.Flags().StringVar(&summary, "summary", "", "Set the AI summary HTML")
	content.register(cmd)
	return cmd
}

func dedupeTags(in []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func newReportsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <report-id>",
		Short: "Delete a report and its activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return withState(cmd, app, func(s *session) error {
				if err := perm.Require(s.st.CurrentUser(), perm.ActionDelete); err != nil {
					return err
				}
				if err := s.st.DeleteReport(id); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
			})
		},
	}
	return cmd
}

func newReportsReorderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <active-id> <over-id>",
		Short: "Move a report to the position another report occupies",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			activeID, overID := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			return withState(cmd, app, func(s *session) error {
				if err := perm.Require(s.st.CurrentUser(), perm.ActionReorder); err != nil {
					return err
				}
				if err := s.st.ReorderReports(activeID, overID); err != nil {
					return err
				}
				order := []string{}
				for _, r := range s.st.Reports() {
					order = append(order, r.ID)
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"order": order}})
			})
		},
	}
	return cmd
}
