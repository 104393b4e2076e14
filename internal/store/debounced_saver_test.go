package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reportdesk/internal/model"
)

type memSaver struct {
	mu    sync.Mutex
	snaps []Snapshot
	err   error
}

func (m *memSaver) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.snaps = append(m.snaps, snap)
	return nil
}

func (m *memSaver) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snaps)
}

func snapWithTitle(title string) Snapshot {
	return Snapshot{CurrentUser: DefaultUser(), Reports: []model.Report{{ID: "r", Title: title, Status: model.StatusDraft}}}
}

func TestDebouncedSaver_CoalescesAndFlushesLatest(t *testing.T) {
	target := &memSaver{}
	d := NewDebouncedSaver(target, DebouncedSaverOpts{Debounce: time.Hour})

	for _, title := range []string{"a", "b", "c"} {
		if err := d.Save(context.Background(), snapWithTitle(title)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if n := target.count(); n != 0 {
		t.Fatalf("expected no write before flush; got %d", n)
	}

	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if n := target.count(); n != 1 {
		t.Fatalf("expected exactly one write; got %d", n)
	}
	if got := target.snaps[0].Reports[0].Title; got != "c" {
		t.Fatalf("expected latest snapshot; got %q", got)
	}

	// Nothing pending: a second flush is a no-op.
	if err := d.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if d.Writes() != 1 {
		t.Fatalf("expected 1 write; got %d", d.Writes())
	}
}

func TestDebouncedSaver_TimerWrites(t *testing.T) {
	target := &memSaver{}
	d := NewDebouncedSaver(target, DebouncedSaverOpts{Debounce: 10 * time.Millisecond})
	_ = d.Save(context.Background(), snapWithTitle("x"))

	deadline := time.Now().Add(2 * time.Second)
	for target.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := target.count(); n != 1 {
		t.Fatalf("expected timer-driven write; got %d", n)
	}
}

func TestDebouncedSaver_FlushReturnsTargetError(t *testing.T) {
	boom := errors.New("disk full")
	d := NewDebouncedSaver(&memSaver{err: boom}, DebouncedSaverOpts{Debounce: time.Hour})
	_ = d.Save(context.Background(), snapWithTitle("x"))
	if err := d.Flush(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected target error; got %v", err)
	}
}
