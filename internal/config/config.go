package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"reportdesk/internal/format"
	"reportdesk/internal/store"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Prefix is the environment variable prefix, e.g. REPORTDESK_DIR.
const Prefix = "REPORTDESK"

// Config holds process settings. Command-line flags override these values.
type Config struct {
	// Data directory. Empty means ~/.reportdesk.
	Dir      string `envconfig:"DIR" default:""`
	Backend  string `envconfig:"BACKEND" default:"sqlite"`
	Format   string `envconfig:"FORMAT" default:"json"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"warn"`

	SaveDebounce time.Duration `envconfig:"SAVE_DEBOUNCE" default:"250ms"`

	// Mock generation service
	AIGenerateDelay  time.Duration `envconfig:"AI_GENERATE_DELAY" default:"2s"`
	AISummarizeDelay time.Duration `envconfig:"AI_SUMMARIZE_DELAY" default:"1500ms"`
	AIMaxRetries     uint64        `envconfig:"AI_MAX_RETRIES" default:"2"`
}

// Load reads an optional dotenv file, then REPORTDESK_* variables.
// Variables already set in the environment win over the dotenv file.
func Load(dotenvPath string) (*Config, error) {
	if strings.TrimSpace(dotenvPath) != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := store.ParseBackend(c.Backend); err != nil {
		return err
	}
	if _, err := format.Parse(c.Format); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.SaveDebounce < 0 || c.AIGenerateDelay < 0 || c.AISummarizeDelay < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// ResolveDir returns Dir, or the default data directory when unset.
func (c *Config) ResolveDir() (string, error) {
	if d := strings.TrimSpace(c.Dir); d != "" {
		return d, nil
	}
	return store.DefaultDir()
}

// Log writes a one-line summary of the effective settings.
func (c *Config) Log(log zerolog.Logger) {
	log.Debug().
		Str("dir", c.Dir).
		Str("backend", c.Backend).
		Str("format", c.Format).
		Dur("save_debounce", c.SaveDebounce).
		Dur("ai_generate_delay", c.AIGenerateDelay).
		Dur("ai_summarize_delay", c.AISummarizeDelay).
		Uint64("ai_max_retries", c.AIMaxRetries).
		Msg("configuration loaded")
}
