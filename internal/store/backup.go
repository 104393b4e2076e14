package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"reportdesk/internal/model"
)

// Export writes snap as an indented JSON document in the persisted-record shape.
func Export(w io.Writer, snap Snapshot) error {
	snap.normalize()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Import reads a JSON snapshot and validates it before it can replace live state.
func Import(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, SnapshotVersion)
	}
	snap.normalize()
	if err := Validate(snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Validate checks the structural invariants a snapshot must hold.
func Validate(snap Snapshot) error {
	var errs []error
	if strings.TrimSpace(snap.CurrentUser.ID) == "" {
		errs = append(errs, errors.New("currentUser.id is empty"))
	}
	seen := map[string]bool{}
	for _, r := range snap.Reports {
		if strings.TrimSpace(r.ID) == "" {
			errs = append(errs, errors.New("report with empty id"))
			continue
		}
		if seen[r.ID] {
			errs = append(errs, fmt.Errorf("duplicate report id: %s", r.ID))
		}
		seen[r.ID] = true
		if r.UpdatedAt.Before(r.CreatedAt) {
			errs = append(errs, fmt.Errorf("report %s: updatedAt before createdAt", r.ID))
		}
		if r.Status != model.StatusDraft && r.Status != model.StatusPublished {
			errs = append(errs, fmt.Errorf("report %s: invalid status %q", r.ID, r.Status))
		}
	}
	if len(snap.Activities) > 50 {
		errs = append(errs, fmt.Errorf("activity log holds %d entries (max 50)", len(snap.Activities)))
	}
	return errors.Join(errs...)
}
