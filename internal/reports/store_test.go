package reports

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"reportdesk/internal/model"
	"reportdesk/internal/store"
)

func strPtr(s string) *string { return &s }

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

func newTestStore(t *testing.T, reports ...model.Report) *Store {
	t.Helper()
	s := New(WithClock(stepClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))))
	s.Restore(store.Snapshot{
		Reports:     reports,
		CurrentUser: model.User{ID: "u1", Name: "Tester", Role: model.RoleAdmin},
	})
	return s
}

func rep(id, title string) model.Report {
	ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return model.Report{ID: id, Title: title, Status: model.StatusDraft, CreatedAt: ts, UpdatedAt: ts, Tags: []string{}}
}

func ids(rs []model.Report) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestAddReport_PrependsAndLogsCreated(t *testing.T) {
	s := newTestStore(t, rep("a", "A"))

	r, err := s.AddReport(model.NewReport{Title: "T1", Status: model.StatusDraft, CreatedBy: "u1"})
	if err != nil {
		t.Fatalf("AddReport: %v", err)
	}
	got := s.Reports()
	if len(got) != 2 || got[0].ID != r.ID {
		t.Fatalf("expected new report first; got %v", ids(got))
	}
	if r.ID == "a" || r.ID == "" {
		t.Fatalf("expected fresh id; got %q", r.ID)
	}
	if !r.CreatedAt.Equal(r.UpdatedAt) {
		t.Fatalf("expected createdAt == updatedAt; got %v vs %v", r.CreatedAt, r.UpdatedAt)
	}
	acts := s.Activities()
	if len(acts) != 1 || acts[0].Action != model.ActionCreated || acts[0].ReportID != r.ID || acts[0].UserID != "u1" {
		t.Fatalf("unexpected activities: %+v", acts)
	}
}

func TestAddReport_EmptyTitleRejected(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddReport(model.NewReport{Title: "   "})
	if !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle; got %v", err)
	}
	if len(s.Reports()) != 0 || len(s.Activities()) != 0 {
		t.Fatalf("expected no state change")
	}
}

func TestUpdateReport_ChangesOnlyPatchedFields(t *testing.T) {
	orig := rep("a", "Old")
	orig.Content = "<p>body</p>"
	s := newTestStore(t, orig)

	got, err := s.UpdateReport("a", model.ReportPatch{Title: strPtr("X")})
	if err != nil {
		t.Fatalf("UpdateReport: %v", err)
	}
	if got.Title != "X" || got.Content != orig.Content || got.ID != "a" || !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Fatalf("unexpected report after patch: %+v", got)
	}
	if got.UpdatedAt.Before(orig.UpdatedAt) {
		t.Fatalf("updatedAt went backwards: %v < %v", got.UpdatedAt, orig.UpdatedAt)
	}
	acts := s.Activities()
	if len(acts) != 1 || acts[0].Action != model.ActionEdited || acts[0].ReportID != "a" {
		t.Fatalf("expected one edited activity; got %+v", acts)
	}
}

func TestUpdateReport_UnknownIDIsNotFoundAndNoop(t *testing.T) {
	s := newTestStore(t, rep("a", "A"))
	before := s.Snapshot()

	_, err := s.UpdateReport("missing", model.ReportPatch{Title: strPtr("X")})
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.ID != "missing" || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected NotFoundError; got %v", err)
	}
	after := s.Snapshot()
	if fmt.Sprint(before.Reports) != fmt.Sprint(after.Reports) || len(after.Activities) != 0 {
		t.Fatalf("expected unchanged state")
	}
}

func TestDeleteReport_CascadesActivities(t *testing.T) {
	s := newTestStore(t, rep("a", "A"), rep("b", "B"))
	s.AddActivity(model.NewActivity{ReportID: "a", Action: model.ActionEdited, UserID: "u1"})
	s.AddActivity(model.NewActivity{ReportID: "b", Action: model.ActionEdited, UserID: "u1"})
	s.AddActivity(model.NewActivity{ReportID: "a", Action: model.ActionAISummarized, UserID: "u1"})

	if err := s.DeleteReport("a"); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	if got := ids(s.Reports()); len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected [b]; got %v", got)
	}
	acts := s.Activities()
	if len(acts) != 1 || acts[0].ReportID != "b" {
		t.Fatalf("expected only b's activity to remain; got %+v", acts)
	}

	if err := s.DeleteReport("a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete; got %v", err)
	}
}

func TestReorderReports_SpliceSemantics(t *testing.T) {
	cases := []struct {
		name         string
		active, over string
		want         []string
	}{
		{name: "forward", active: "A", over: "C", want: []string{"B", "C", "A", "D"}},
		{name: "backward", active: "D", over: "B", want: []string{"A", "D", "B", "C"}},
		{name: "to front", active: "C", over: "A", want: []string{"C", "A", "B", "D"}},
		{name: "to end", active: "A", over: "D", want: []string{"B", "C", "D", "A"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore(t, rep("A", "a"), rep("B", "b"), rep("C", "c"), rep("D", "d"))
			if err := s.ReorderReports(tc.active, tc.over); err != nil {
				t.Fatalf("ReorderReports: %v", err)
			}
			got := ids(s.Reports())
			if fmt.Sprint(got) != fmt.Sprint(tc.want) {
				t.Fatalf("expected %v; got %v", tc.want, got)
			}
			acts := s.Activities()
			if len(acts) != 1 || acts[0].Action != model.ActionReordered || acts[0].ReportID != tc.active {
				t.Fatalf("expected one reordered activity; got %+v", acts)
			}
		})
	}
}

func TestReorderReports_InvalidIDsAreNoop(t *testing.T) {
	s := newTestStore(t, rep("A", "a"), rep("B", "b"))
	if err := s.ReorderReports("A", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found; got %v", err)
	}
	if err := s.ReorderReports("nope", "B"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found; got %v", err)
	}
	if got := ids(s.Reports()); fmt.Sprint(got) != "[A B]" {
		t.Fatalf("order changed: %v", got)
	}
	if len(s.Activities()) != 0 {
		t.Fatalf("expected no activity")
	}
}

func TestAddActivity_CapsAtFifty(t *testing.T) {
	s := newTestStore(t)
	var first model.Activity
	for i := 0; i < MaxActivities; i++ {
		a := s.AddActivity(model.NewActivity{ReportID: fmt.Sprintf("r%d", i), Action: model.ActionEdited, UserID: "u1"})
		if i == 0 {
			first = a
		}
	}
	if n := len(s.Activities()); n != MaxActivities {
		t.Fatalf("expected %d activities; got %d", MaxActivities, n)
	}

	newest := s.AddActivity(model.NewActivity{ReportID: "r50", Action: model.ActionEdited, UserID: "u1"})
	acts := s.Activities()
	if len(acts) != MaxActivities {
		t.Fatalf("expected cap %d; got %d", MaxActivities, len(acts))
	}
	if acts[0].ID != newest.ID {
		t.Fatalf("expected newest first")
	}
	for _, a := range acts {
		if a.ID == first.ID {
			t.Fatalf("expected oldest activity to be dropped")
		}
	}
}

func TestScenario_AddThenDeleteLeavesEmpty(t *testing.T) {
	s := newTestStore(t)
	r, err := s.AddReport(model.NewReport{Title: "T1", Content: "", Status: model.StatusDraft, Tags: []string{}, CreatedBy: "1"})
	if err != nil {
		t.Fatalf("AddReport: %v", err)
	}
	got := s.FilteredReports()
	if len(got) != 1 || got[0].Title != "T1" {
		t.Fatalf("expected one report T1; got %+v", got)
	}
	if err := s.DeleteReport(r.ID); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	if len(s.FilteredReports()) != 0 || len(s.Activities()) != 0 {
		t.Fatalf("expected empty view and log")
	}
}

type recordingSaver struct{ snaps []store.Snapshot }

func (r *recordingSaver) Save(_ context.Context, snap store.Snapshot) error {
	r.snaps = append(r.snaps, snap)
	return nil
}

func TestMutationsPersist_QuerySettersDoNot(t *testing.T) {
	sv := &recordingSaver{}
	s := New(WithSaver(sv))
	s.Restore(store.Defaults())

	s.SetSearchQuery("q")
	s.SetFilterStatus(model.FilterDraft)
	s.SetSortBy(model.SortByTitle)
	s.SetSortOrder(model.SortAsc)
	s.SetLoading(true)
	s.SetAILoading(true)
	if len(sv.snaps) != 0 {
		t.Fatalf("query/session setters must not persist; got %d saves", len(sv.snaps))
	}

	if _, err := s.UpdateReport("1", model.ReportPatch{Title: strPtr("Renamed")}); err != nil {
		t.Fatalf("UpdateReport: %v", err)
	}
	if len(sv.snaps) != 1 || sv.snaps[0].Reports[0].Title != "Renamed" {
		t.Fatalf("expected one save with the update; got %+v", sv.snaps)
	}
}

func TestSetReports_ReplacesVerbatim(t *testing.T) {
	s := newTestStore(t, rep("a", "A"))
	in := []model.Report{rep("x", "X"), rep("y", "Y")}

	s.SetReports(in)
	in[0].Title = "changed"

	got := s.Reports()
	if fmt.Sprint(ids(got)) != "[x y]" {
		t.Fatalf("unexpected reports: %v", ids(got))
	}
	if got[0].Title != "X" {
		t.Fatalf("store must hold its own copy; got title %q", got[0].Title)
	}
	if len(s.Activities()) != 0 {
		t.Fatalf("SetReports must not log activity; got %d", len(s.Activities()))
	}
}

func TestUpdateReport_UpdatedAtNeverBelowCreatedAt(t *testing.T) {
	bad := rep("a", "A")
	bad.CreatedAt = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	bad.UpdatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestStore(t)
	s.SetReports([]model.Report{bad})

	r, err := s.UpdateReport("a", model.ReportPatch{Title: strPtr("B")})
	if err != nil {
		t.Fatalf("UpdateReport: %v", err)
	}
	if r.UpdatedAt.Before(r.CreatedAt) {
		t.Fatalf("updatedAt %v precedes createdAt %v", r.UpdatedAt, r.CreatedAt)
	}
}
