package store

import (
	"time"

	"reportdesk/internal/model"
)

// Key names the persisted record. Both backends derive their file names from it.
const Key = "report-store"

// SnapshotVersion is bumped whenever the persisted shape changes incompatibly.
const SnapshotVersion = 1

// Snapshot is the subset of application state that survives a restart.
// Query state and busy flags are deliberately absent.
type Snapshot struct {
	Version     int              `json:"version" yaml:"version"`
	Reports     []model.Report   `json:"reports" yaml:"reports"`
	CurrentUser model.User       `json:"currentUser" yaml:"currentUser"`
	Activities  []model.Activity `json:"activities" yaml:"activities"`
}

// normalize makes nil slices empty so callers and the wire format stay stable.
func (s *Snapshot) normalize() {
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	if s.Reports == nil {
		s.Reports = []model.Report{}
	}
	if s.Activities == nil {
		s.Activities = []model.Activity{}
	}
	for i := range s.Reports {
		if s.Reports[i].Tags == nil {
			s.Reports[i].Tags = []string{}
		}
	}
}

const defaultAvatar = "https://images.pexels.com/photos/220453/pexels-photo-220453.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&dpr=2"

// DefaultUser is the identity used when nothing has been persisted yet.
func DefaultUser() model.User {
	avatar := defaultAvatar
	return model.User{
		ID:     "1",
		Name:   "John Doe",
		Email:  "john.doe@company.com",
		Role:   model.RoleAdmin,
		Avatar: &avatar,
	}
}

// Defaults returns the first-run state: one admin user, two seed reports, no activity.
func Defaults() Snapshot {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	return Snapshot{
		Version:     SnapshotVersion,
		CurrentUser: DefaultUser(),
		Reports: []model.Report{
			{
				ID:        "1",
				Title:     "Q4 2024 Performance Analysis",
				Content:   "<h2>Executive Summary</h2><p>This report provides a comprehensive analysis of our Q4 2024 performance metrics...</p>",
				CreatedAt: day(2024, time.January, 15),
				UpdatedAt: day(2024, time.January, 15),
				CreatedBy: "1",
				Status:    model.StatusPublished,
				Tags:      []string{"quarterly", "performance", "analysis"},
			},
			{
				ID:          "2",
				Title:       "Market Research: AI Trends 2025",
				Content:     "<h2>Introduction</h2><p>The AI landscape continues to evolve rapidly...</p>",
				CreatedAt:   day(2024, time.January, 10),
				UpdatedAt:   day(2024, time.January, 12),
				CreatedBy:   "1",
				Status:      model.StatusDraft,
				Tags:        []string{"market research", "AI", "trends"},
				AIGenerated: true,
			},
		},
		Activities: []model.Activity{},
	}
}
