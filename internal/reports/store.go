// Package reports holds the in-memory report store: reports, the activity log,
// and the transient query state the dashboard derives its views from.
//
// A Store is constructed explicitly and initialised from a persistence Loader;
// every mutation hands a snapshot to the configured Saver.
package reports

import (
	"context"
	"strings"
	"sync"
	"time"

	"reportdesk/internal/model"
	"reportdesk/internal/store"

	"github.com/rs/zerolog"
)

// MaxActivities caps the activity log; older entries are discarded.
const MaxActivities = 50

// Query is the transient search/filter/sort state. It is never persisted.
type Query struct {
	Search    string             `json:"searchQuery"`
	Status    model.FilterStatus `json:"filterStatus"`
	SortBy    model.SortKey      `json:"sortBy"`
	SortOrder model.SortOrder    `json:"sortOrder"`
}

func DefaultQuery() Query {
	return Query{Search: "", Status: model.FilterAll, SortBy: model.SortByUpdatedAt, SortOrder: model.SortDesc}
}

type Store struct {
	mu sync.RWMutex

	reports     []model.Report
	activities  []model.Activity
	currentUser model.User

	query     Query
	loading   bool
	aiLoading bool

	now   func() time.Time
	saver store.Saver
	log   zerolog.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithSaver(sv store.Saver) Option {
	return func(s *Store) { s.saver = sv }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New returns an empty store with default query state. Call Init to load persisted state.
func New(opts ...Option) *Store {
	s := &Store{
		reports:    []model.Report{},
		activities: []model.Activity{},
		query:      DefaultQuery(),
		now:        func() time.Time { return time.Now().UTC() },
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Init replaces reports, current user, and activities with the persisted snapshot,
// or with the built-in defaults when nothing usable is stored.
func (s *Store) Init(ctx context.Context, l store.Loader) {
	snap := store.LoadOrDefault(ctx, l, s.log)
	s.Restore(snap)
}

// Restore installs snap without triggering a save.
func (s *Store) Restore(snap store.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = cloneReports(snap.Reports)
	s.activities = append([]model.Activity{}, snap.Activities...)
	if len(s.activities) > MaxActivities {
		s.activities = s.activities[:MaxActivities]
	}
	s.currentUser = snap.CurrentUser
}

// Replace installs snap and persists it.
func (s *Store) Replace(snap store.Snapshot) {
	s.Restore(snap)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked()
}

func (s *Store) Snapshot() store.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() store.Snapshot {
	return store.Snapshot{
		Version:     store.SnapshotVersion,
		Reports:     cloneReports(s.reports),
		CurrentUser: s.currentUser,
		Activities:  append([]model.Activity{}, s.activities...),
	}
}

// persistLocked hands the current snapshot to the saver. Failures are logged only.
func (s *Store) persistLocked() {
	if s.saver == nil {
		return
	}
	if err := s.saver.Save(context.Background(), s.snapshotLocked()); err != nil {
		s.log.Error().Err(err).Msg("persist state")
	}
}

func (s *Store) indexOfLocked(id string) int {
	for i := range s.reports {
		if s.reports[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) SetReports(list []model.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = cloneReports(list)
	s.persistLocked()
}

// AddReport creates a report at the front of the collection and logs a created activity.
func (s *Store) AddReport(in model.NewReport) (model.Report, error) {
	if strings.TrimSpace(in.Title) == "" {
		return model.Report{}, ErrEmptyTitle
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	r := model.Report{
		ID:          store.NewReportID(func(id string) bool { return s.indexOfLocked(id) >= 0 }),
		Title:       in.Title,
		Content:     in.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   in.CreatedBy,
		Status:      in.Status,
		Tags:        append([]string{}, in.Tags...),
		AIGenerated: in.AIGenerated,
	}
	if r.Status == "" {
		r.Status = model.StatusDraft
	}
	if in.AISummary != nil {
		v := *in.AISummary
		r.AISummary = &v
	}
	s.reports = append([]model.Report{r}, s.reports...)
	s.addActivityLocked(model.NewActivity{ReportID: r.ID, Action: model.ActionCreated, UserID: s.currentUser.ID})
	s.persistLocked()
	s.log.Debug().Str("report", r.ID).Msg("report created")
	return r.Clone(), nil
}

// UpdateReport applies patch to the report with id and logs an edited activity.
// An unknown id returns NotFoundError and changes nothing.
func (s *Store) UpdateReport(id string, patch model.ReportPatch) (model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return model.Report{}, errReportNotFound(id)
	}
	r := &s.reports[i]
	patch.Apply(r)
	// updatedAt never moves backwards and never precedes createdAt, even for
	// reports installed with inconsistent timestamps.
	floor := r.UpdatedAt
	if floor.Before(r.CreatedAt) {
		floor = r.CreatedAt
	}
	now := s.now()
	if now.Before(floor) {
		now = floor
	}
	r.UpdatedAt = now
	s.addActivityLocked(model.NewActivity{ReportID: id, Action: model.ActionEdited, UserID: s.currentUser.ID})
	s.persistLocked()
	return r.Clone(), nil
}

// DeleteReport removes the report and every activity that references it.
func (s *Store) DeleteReport(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return errReportNotFound(id)
	}
	s.reports = append(s.reports[:i:i], s.reports[i+1:]...)
	kept := s.activities[:0:0]
	for _, a := range s.activities {
		if a.ReportID != id {
			kept = append(kept, a)
		}
	}
	s.activities = kept
	s.persistLocked()
	return nil
}

// ReorderReports moves activeID to the index overID occupies: remove first, then insert.
func (s *Store) ReorderReports(activeID, overID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.indexOfLocked(activeID)
	if from < 0 {
		return errReportNotFound(activeID)
	}
	to := s.indexOfLocked(overID)
	if to < 0 {
		return errReportNotFound(overID)
	}
	s.reports = moveReport(s.reports, from, to)
	s.addActivityLocked(model.NewActivity{ReportID: activeID, Action: model.ActionReordered, UserID: s.currentUser.ID})
	s.persistLocked()
	return nil
}

func moveReport(list []model.Report, from, to int) []model.Report {
	moved := list[from]
	rest := make([]model.Report, 0, len(list))
	rest = append(rest, list[:from]...)
	rest = append(rest, list[from+1:]...)
	if to > len(rest) {
		to = len(rest)
	}
	out := make([]model.Report, 0, len(list))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	return out
}

func (s *Store) AddActivity(in model.NewActivity) model.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.addActivityLocked(in)
	s.persistLocked()
	return a
}

func (s *Store) addActivityLocked(in model.NewActivity) model.Activity {
	a := model.Activity{
		ID:        store.NewActivityID(),
		ReportID:  in.ReportID,
		Action:    in.Action,
		Timestamp: s.now(),
		UserID:    in.UserID,
	}
	if in.Details != nil {
		d := *in.Details
		a.Details = &d
	}
	keep := s.activities
	if len(keep) > MaxActivities-1 {
		keep = keep[:MaxActivities-1]
	}
	next := make([]model.Activity, 0, len(keep)+1)
	next = append(next, a)
	next = append(next, keep...)
	s.activities = next
	return a
}

func (s *Store) SetCurrentUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUser = u
	s.persistLocked()
}

func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	s.query.Search = q
	s.mu.Unlock()
}

func (s *Store) SetFilterStatus(f model.FilterStatus) {
	s.mu.Lock()
	s.query.Status = f
	s.mu.Unlock()
}

func (s *Store) SetSortBy(k model.SortKey) {
	s.mu.Lock()
	s.query.SortBy = k
	s.mu.Unlock()
}

func (s *Store) SetSortOrder(o model.SortOrder) {
	s.mu.Lock()
	s.query.SortOrder = o
	s.mu.Unlock()
}

func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) SetAILoading(v bool) {
	s.mu.Lock()
	s.aiLoading = v
	s.mu.Unlock()
}

func (s *Store) Query() Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) AILoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aiLoading
}

func (s *Store) CurrentUser() model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser
}

// Reports returns the collection in stored (display) order.
func (s *Store) Reports() []model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneReports(s.reports)
}

// Activities returns the log newest-first.
func (s *Store) Activities() []model.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Activity{}, s.activities...)
}

func (s *Store) ActivitiesForReport(id string) []model.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Activity{}
	for _, a := range s.activities {
		if a.ReportID == id {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) FindReport(id string) (model.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOfLocked(id)
	if i < 0 {
		return model.Report{}, false
	}
	return s.reports[i].Clone(), true
}

func cloneReports(in []model.Report) []model.Report {
	out := make([]model.Report, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
