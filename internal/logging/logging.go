// Package logging builds the process logger.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
)

// New returns a console logger on w at the given level ("debug", "info", "warn", ...).
// Command output goes to stdout, so callers pass stderr here.
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	cw := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    termenv.EnvNoColor(),
	}
	return zerolog.New(cw).Level(lvl).With().
		Str("service", "reportdesk").
		Timestamp().
		Logger(), nil
}

// JSON returns a structured logger for non-interactive use.
func JSON(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(w).Level(lvl).With().Str("service", "reportdesk").Timestamp().Logger(), nil
}

func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zerolog.WarnLevel, nil
	}
	return zerolog.ParseLevel(level)
}
