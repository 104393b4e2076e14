// Package tui is the interactive dashboard: a card list with search, filter,
// sort and reorder, the activity feed and profile panel, and the report editor.
package tui

import (
	"context"
	"errors"

	"reportdesk/internal/genai"
	"reportdesk/internal/reports"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type Options struct {
	Logger zerolog.Logger
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, st *reports.Store, ai genai.Service, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(ctx, st, ai, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
