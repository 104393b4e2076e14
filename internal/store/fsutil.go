package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

func (s Store) jsonPath() string {
	return filepath.Join(s.Dir, Key+".json")
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func readSnapshotFile(path string) (Snapshot, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	if len(b) == 0 {
		return Snapshot{}, false, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, false, err
	}
	snap.normalize()
	return snap, true, nil
}

func (s Store) loadJSON() (Snapshot, bool, error) {
	return readSnapshotFile(s.jsonPath())
}

func (s Store) saveJSON(snap Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	// Unique temp name + rename so a concurrent TUI and CLI never see a torn file.
	return atomicWriteFile(s.Dir, Key+".json.*.tmp", s.jsonPath(), b, 0o644)
}
