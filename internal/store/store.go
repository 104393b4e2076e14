package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendJSON   Backend = "json"
)

func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite":
		return BackendSQLite, nil
	case "json":
		return BackendJSON, nil
	default:
		return "", fmt.Errorf("invalid store backend: %q (expected sqlite|json)", s)
	}
}

// Loader restores a previously saved snapshot. found is false on first run.
type Loader interface {
	Load(ctx context.Context) (snap Snapshot, found bool, err error)
}

// Saver persists a snapshot. Implementations may defer the actual write.
type Saver interface {
	Save(ctx context.Context, snap Snapshot) error
}

// Store is the on-disk persistence adapter for the report-store record.
type Store struct {
	Dir     string
	Backend Backend
}

func DefaultDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("REPORTDESK_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".reportdesk"), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) backend() Backend {
	if s.Backend == "" {
		return BackendSQLite
	}
	return s.Backend
}

func (s Store) Load(ctx context.Context) (Snapshot, bool, error) {
	if err := s.Ensure(); err != nil {
		return Snapshot{}, false, err
	}
	if s.backend() == BackendJSON {
		return s.loadJSON()
	}
	// SQLite is the source of truth; it imports a JSON snapshot once if it is still empty.
	return s.LoadSQLite(ctx)
}

func (s Store) Save(ctx context.Context, snap Snapshot) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	snap.normalize()
	if s.backend() == BackendJSON {
		return s.saveJSON(snap)
	}
	return s.SaveSQLite(ctx, snap)
}

// LoadOrDefault never fails: a missing record or a load error both yield Defaults().
// Load errors are logged; the in-memory state is authoritative for the session.
func LoadOrDefault(ctx context.Context, l Loader, log zerolog.Logger) Snapshot {
	if l == nil {
		return Defaults()
	}
	snap, found, err := l.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Str("key", Key).Msg("load failed; falling back to defaults")
		return Defaults()
	}
	if !found {
		log.Debug().Str("key", Key).Msg("no persisted state; using defaults")
		return Defaults()
	}
	snap.normalize()
	return snap
}
