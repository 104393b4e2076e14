package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reportdesk/internal/model"

	_ "modernc.org/sqlite"
)

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, Key+".sqlite")
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL lets the TUI read while a CLI invocation writes; busy_timeout avoids "database is locked".
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			created_by TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL,
			tags_json TEXT NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_position ON reports(position);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);`,
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			report_id TEXT NOT NULL,
			action TEXT NOT NULL,
			user_id TEXT NOT NULL,
			ts_unixms INTEGER NOT NULL,
			json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_activities_position ON activities(position);`,
		`CREATE INDEX IF NOT EXISTS idx_activities_report ON activities(report_id, ts_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// LoadSQLite loads the snapshot from <dir>/report-store.sqlite.
// If SQLite holds no state but a JSON snapshot exists, it imports that once and loads the result.
func (s Store) LoadSQLite(ctx context.Context) (Snapshot, bool, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return Snapshot{}, false, err
	}
	defer db.Close()

	userJSON, found, err := readMeta(ctx, db, "current_user")
	if err != nil {
		return Snapshot{}, false, err
	}
	if !found {
		legacy, ok, err := s.loadJSON()
		if err != nil {
			return Snapshot{}, false, err
		}
		if !ok {
			return Snapshot{}, false, nil
		}
		if err := saveSnapshotSQLite(ctx, db, legacy); err != nil {
			return Snapshot{}, false, err
		}
		return legacy, true, nil
	}

	out := Snapshot{Version: SnapshotVersion}
	if v, ok, _ := readMeta(ctx, db, "version"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			out.Version = n
		}
	}
	if err := json.Unmarshal([]byte(userJSON), &out.CurrentUser); err != nil {
		return Snapshot{}, false, err
	}
	if out.Reports, err = readJSONRows[model.Report](ctx, db, `SELECT json FROM reports ORDER BY position ASC`); err != nil {
		return Snapshot{}, false, err
	}
	if out.Activities, err = readJSONRows[model.Activity](ctx, db, `SELECT json FROM activities ORDER BY position ASC`); err != nil {
		return Snapshot{}, false, err
	}
	out.normalize()
	return out, true, nil
}

func (s Store) SaveSQLite(ctx context.Context, snap Snapshot) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	snap.normalize()
	return saveSnapshotSQLite(ctx, db, snap)
}

func saveSnapshotSQLite(ctx context.Context, db *sql.DB, snap Snapshot) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	userJSON, err := json.Marshal(snap.CurrentUser)
	if err != nil {
		return err
	}
	meta := map[string]string{
		"key":          Key,
		"version":      strconv.Itoa(snap.Version),
		"current_user": string(userJSON),
		"saved_at":     time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, k, v); err != nil {
			return err
		}
	}

	// Replace-all: the snapshot is small and always written whole.
	for _, t := range []string{"reports", "activities"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	for i, r := range snap.Reports {
		raw, err := json.Marshal(r)
		if err != nil {
			return err
		}
		tags, _ := json.Marshal(r.Tags)
		if _, err := tx.ExecContext(ctx, `INSERT INTO reports(
			id, position, title, status, created_by,
			created_at_unixms, updated_at_unixms, tags_json, json
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, i, r.Title, string(r.Status), strings.TrimSpace(r.CreatedBy),
			r.CreatedAt.UTC().UnixMilli(), r.UpdatedAt.UTC().UnixMilli(), string(tags), string(raw),
		); err != nil {
			return err
		}
	}
	for i, a := range snap.Activities {
		raw, err := json.Marshal(a)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO activities(id, position, report_id, action, user_id, ts_unixms, json) VALUES(?, ?, ?, ?, ?, ?, ?)`,
			a.ID, i, a.ReportID, string(a.Action), a.UserID, a.Timestamp.UTC().UnixMilli(), string(raw),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func readMeta(ctx context.Context, db *sql.DB, k string) (string, bool, error) {
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, k).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Reset removes every persisted artifact for this store dir.
func (s Store) Reset() error {
	paths := []string{
		s.jsonPath(),
		s.sqlitePath(),
		s.sqlitePath() + "-wal",
		s.sqlitePath() + "-shm",
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
