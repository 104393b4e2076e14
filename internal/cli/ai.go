package cli

import (
	"strings"

	"reportdesk/internal/editor"
	"reportdesk/internal/genai"
	"reportdesk/internal/model"
	"reportdesk/internal/reports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newAICmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Content generation and summarization",
	}
	cmd.PersistentFlags().Bool("metrics", false, "Add generation service call counts to meta")
	cmd.AddCommand(newAIGenerateCmd(app))
	cmd.AddCommand(newAISummarizeCmd(app))
	return cmd
}

// aiMeta adds the service call counters to meta when --metrics is set.
func aiMeta(cmd *cobra.Command, meta map[string]any) (map[string]any, error) {
	on, _ := cmd.Flags().GetBool("metrics")
	if !on {
		return meta, nil
	}
	stats, err := genai.Stats(prometheus.DefaultGatherer)
	if err != nil {
		return nil, err
	}
	meta["metrics"] = stats
	return meta, nil
}

// openEditor starts a create session when id is empty and an edit session otherwise.
func openEditor(app *App, s *session, id string) (*editor.Session, error) {
	if id == "" {
		return editor.Open(s.st, app.aiService(), editor.ModeCreate, nil, editor.Options{Logger: app.log})
	}
	r, ok := s.st.FindReport(id)
	if !ok {
		return nil, reports.NotFoundError{Kind: "report", ID: id}
	}
	return editor.Open(s.st, app.aiService(), editor.ModeEdit, &r, editor.Options{Logger: app.log})
}

func newAIGenerateCmd(app *App) *cobra.Command {
	var prompt, reportID, title, status string
	var tags []string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate report content from a prompt and save it",
		Long: strings.TrimSpace(`
Without --report a new report is created from the generated content.
With --report the existing report's content is replaced and the prompt is logged.
--dry-run prints the generated form without saving anything.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(prompt) == "" {
				return writeErr(cmd, genai.ErrEmptyInput)
			}
			var st model.ReportStatus
			if cmd.Flags().Changed("status") {
				v, err := model.ParseReportStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				st = v
			}
			return withState(cmd, app, func(s *session) error {
				ed, err := openEditor(app, s, strings.TrimSpace(reportID))
				if err != nil {
					return err
				}
				if title != "" {
					ed.SetTitle(title)
				}
				if st != "" {
					ed.SetStatus(st)
				}
				for _, t := range tags {
					_ = ed.AddTag(t)
				}
				if err := ed.Generate(cmd.Context(), prompt); err != nil {
					return err
				}
				if dryRun {
					meta, err := aiMeta(cmd, map[string]any{"saved": false})
					if err != nil {
						return err
					}
					return writeOut(cmd, app, map[string]any{"data": ed.Form(), "meta": meta})
				}
				r, err := ed.Save()
				if err != nil {
					return err
				}
				meta, err := aiMeta(cmd, map[string]any{"saved": true})
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": r, "meta": meta})
			})
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "", "What the report should cover (required)")
	cmd.Flags().StringVar(&reportID, "report", "", "Regenerate the content of an existing report")
	cmd.Flags().StringVar(&title, "title", "", "Title (defaults to a dated AI title when empty)")
	cmd.Flags().StringVar(&status, "status", "", "Status (draft|published)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tags to add (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the generated form without saving")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func newAISummarizeCmd(app *App) *cobra.Command {
	var content string
	cmd := &cobra.Command{
		Use:   "summarize [report-id]",
		Short: "Summarize a report (stored on the report) or ad-hoc --content",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = strings.TrimSpace(args[0])
			}
			if id == "" && strings.TrimSpace(content) == "" {
				return writeErr(cmd, errUsage("pass a report id or --content"))
			}
			if id != "" && cmd.Flags().Changed("content") {
				return writeErr(cmd, errUsage("use either a report id or --content, not both"))
			}
			return withState(cmd, app, func(s *session) error {
				ed, err := openEditor(app, s, id)
				if err != nil {
					return err
				}
				if id == "" {
					ed.SetContent(content)
				}
				if err := ed.Summarize(cmd.Context()); err != nil {
					return err
				}
				summary, _ := ed.Summary()
				env := map[string]any{"data": map[string]any{"reportId": id, "summary": summary}}
				meta, err := aiMeta(cmd, map[string]any{})
				if err != nil {
					return err
				}
				if len(meta) > 0 {
					env["meta"] = meta
				}
				return writeOut(cmd, app, env)
			})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "Content to summarize without touching any report")
	return cmd
}
