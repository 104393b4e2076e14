package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"reportdesk/internal/config"
	"reportdesk/internal/format"
	"reportdesk/internal/genai"
	"reportdesk/internal/logging"
	"reportdesk/internal/reports"
	"reportdesk/internal/store"
	"reportdesk/internal/tui"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Backend    string
	PrettyJSON bool
	Format     string
	LogLevel   string
	EnvFile    string

	cfg *config.Config
	log zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:          "reportdesk",
		Short:        "Report dashboard (local-first) CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive dashboard
  reportdesk

  # Scriptable commands
  reportdesk reports list --status published --sort title --order asc

  # Draft a report with the generation service
  reportdesk ai generate --prompt "Q3 churn drivers"

  # Direct report lookup (shortcut for: reportdesk reports show <report-id>)
  reportdesk rep-k3j9x2ab
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.configure(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Path to data dir (default: $REPORTDESK_DIR or ~/.reportdesk)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Storage backend (sqlite|json)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (json|edn|yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.EnvFile, "env-file", envOr("REPORTDESK_ENV_FILE", ".env"), "Optional dotenv file")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newResetCmd(app))
	cmd.AddCommand(newReportsCmd(app))
	cmd.AddCommand(newActivityCmd(app))
	cmd.AddCommand(newFeedCmd(app))
	cmd.AddCommand(newAICmd(app))
	cmd.AddCommand(newUserCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// configure resolves settings with precedence flag > environment > dotenv > default.
func (app *App) configure(cmd *cobra.Command) error {
	cfg, err := config.Load(app.EnvFile)
	if err != nil {
		return writeErr(cmd, err)
	}
	flags := cmd.Flags()
	if !flags.Changed("dir") {
		app.Dir = cfg.Dir
	}
	if !flags.Changed("backend") {
		app.Backend = cfg.Backend
	}
	if !flags.Changed("format") {
		app.Format = cfg.Format
	}
	if !flags.Changed("log-level") {
		app.LogLevel = cfg.LogLevel
	}
	if _, err := format.Parse(app.Format); err != nil {
		return writeErr(cmd, err)
	}
	if _, err := store.ParseBackend(app.Backend); err != nil {
		return writeErr(cmd, err)
	}
	log, err := logging.New(cmd.ErrOrStderr(), app.LogLevel)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	app.log = log
	cfg.Log(log)
	return nil
}

func (app *App) diskStore() (store.Store, error) {
	dir := strings.TrimSpace(app.Dir)
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return store.Store{}, err
		}
		dir = d
	}
	backend, err := store.ParseBackend(app.Backend)
	if err != nil {
		return store.Store{}, err
	}
	app.Dir = dir
	return store.Store{Dir: dir, Backend: backend}, nil
}

// session is one loaded report store plus the saver that must be flushed before exit.
type session struct {
	st    *reports.Store
	disk  store.Store
	saver *store.DebouncedSaver
}

func loadState(ctx context.Context, app *App) (*session, error) {
	disk, err := app.diskStore()
	if err != nil {
		return nil, err
	}
	var debounce time.Duration
	if app.cfg != nil {
		debounce = app.cfg.SaveDebounce
	}
	saver := store.NewDebouncedSaver(disk, store.DebouncedSaverOpts{Debounce: debounce, Logger: app.log})
	st := reports.New(reports.WithSaver(saver), reports.WithLogger(app.log))
	st.Init(ctx, disk)
	return &session{st: st, disk: disk, saver: saver}, nil
}

// withState loads the store, runs fn, and flushes pending writes even when fn fails.
func withState(cmd *cobra.Command, app *App, fn func(s *session) error) error {
	s, err := loadState(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	runErr := fn(s)
	if err := s.saver.Flush(context.WithoutCancel(cmd.Context())); err != nil && runErr == nil {
		return writeErr(cmd, fmt.Errorf("save state: %w", err))
	}
	if runErr != nil {
		return writeErr(cmd, runErr)
	}
	return nil
}

func (app *App) aiService() genai.Service {
	mock := genai.NewMock()
	policy := genai.DefaultRetryPolicy()
	policy.Logger = app.log
	if app.cfg != nil {
		mock.GenerateDelay = app.cfg.AIGenerateDelay
		mock.SummarizeDelay = app.cfg.AISummarizeDelay
		policy.MaxRetries = app.cfg.AIMaxRetries
	}
	return genai.Instrument(genai.WithRetry(mock, policy))
}

func runTUI(cmd *cobra.Command, app *App) error {
	s, err := loadState(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	runErr := tui.Run(cmd.Context(), s.st, app.aiService(), tui.Options{Logger: app.log})
	if err := s.saver.Flush(context.WithoutCancel(cmd.Context())); err != nil && runErr == nil {
		return writeErr(cmd, err)
	}
	return runErr
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), userMessage(err))
	return err
}
