package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DebouncedSaver coalesces bursts of Save calls into one write of the latest snapshot.
// Save never blocks on I/O and never returns an error; write failures are logged.
type DebouncedSaver struct {
	target   Saver
	debounce time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *Snapshot

	// writeMu serializes timer-driven writes with Flush.
	writeMu sync.Mutex
	writes  int
}

type DebouncedSaverOpts struct {
	Debounce time.Duration
	Logger   zerolog.Logger
}

func NewDebouncedSaver(target Saver, opts DebouncedSaverOpts) *DebouncedSaver {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &DebouncedSaver{
		target:   target,
		debounce: debounce,
		log:      opts.Logger,
	}
}

func (d *DebouncedSaver) Save(_ context.Context, snap Snapshot) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	d.pending = &snap
	if d.timer == nil {
		d.timer = time.AfterFunc(d.debounce, d.onTimer)
	} else {
		d.timer.Reset(d.debounce)
	}
	d.mu.Unlock()
	return nil
}

func (d *DebouncedSaver) onTimer() {
	_ = d.Flush(context.Background())
}

// Flush writes the pending snapshot, if any, and returns the write error.
func (d *DebouncedSaver) Flush(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	d.mu.Lock()
	snap := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	if snap == nil {
		return nil
	}
	d.writes++
	if err := d.target.Save(ctx, *snap); err != nil {
		d.log.Error().Err(err).Str("key", Key).Msg("save failed; in-memory state remains authoritative")
		return err
	}
	d.log.Debug().Str("key", Key).Int("reports", len(snap.Reports)).Int("activities", len(snap.Activities)).Msg("state saved")
	return nil
}

// Writes reports how many writes reached the target (for diagnostics and tests).
func (d *DebouncedSaver) Writes() int {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	return d.writes
}
