package reports

import (
	"slices"
	"strings"

	"reportdesk/internal/model"
)

// FilteredReports derives the visible list from the current reports and query state.
// It is recomputed on every call. Reports with equal sort keys keep their stored order.
func (s *Store) FilteredReports() []model.Report {
	s.mu.RLock()
	q := s.query
	all := cloneReports(s.reports)
	s.mu.RUnlock()
	return ApplyQuery(all, q)
}

// ApplyQuery returns a new slice with the reports of list that match q, sorted by q.
// list itself is not modified.
func ApplyQuery(list []model.Report, q Query) []model.Report {
	needle := strings.ToLower(q.Search)
	out := make([]model.Report, 0, len(list))
	for _, r := range list {
		if !matchesSearch(r, needle) || !matchesStatus(r, q.Status) {
			continue
		}
		out = append(out, r)
	}

	cmp := compareBy(q.SortBy)
	desc := q.SortOrder == model.SortDesc
	slices.SortStableFunc(out, func(a, b model.Report) int {
		if desc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
	return out
}

func matchesSearch(r model.Report, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Title), needle) ||
		strings.Contains(strings.ToLower(r.Content), needle)
}

func matchesStatus(r model.Report, f model.FilterStatus) bool {
	if f == "" || f == model.FilterAll {
		return true
	}
	return string(r.Status) == string(f)
}

func compareBy(key model.SortKey) func(a, b model.Report) int {
	switch key {
	case model.SortByTitle:
		return func(a, b model.Report) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case model.SortByCreatedAt:
		return func(a, b model.Report) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return func(a, b model.Report) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	}
}
