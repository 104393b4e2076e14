package model

import (
	"fmt"
	"strings"
	"time"
)

type ReportStatus string

const (
	StatusDraft     ReportStatus = "draft"
	StatusPublished ReportStatus = "published"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

type ActivityAction string

const (
	ActionCreated      ActivityAction = "created"
	ActionEdited       ActivityAction = "edited"
	ActionAIGenerated  ActivityAction = "ai_generated"
	ActionAISummarized ActivityAction = "ai_summarized"
	ActionReordered    ActivityAction = "reordered"
)

type User struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Email  string  `json:"email" yaml:"email"`
	Role   Role    `json:"role" yaml:"role"`
	Avatar *string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

type Report struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Content     string       `json:"content" yaml:"content"`
	CreatedAt   time.Time    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" yaml:"updatedAt"`
	CreatedBy   string       `json:"createdBy" yaml:"createdBy"`
	Status      ReportStatus `json:"status" yaml:"status"`
	Tags        []string     `json:"tags" yaml:"tags"`
	AIGenerated bool         `json:"aiGenerated,omitempty" yaml:"aiGenerated,omitempty"`
	AISummary   *string      `json:"aiSummary,omitempty" yaml:"aiSummary,omitempty"`
}

// Clone returns a copy that shares no slices or pointers with r.
func (r Report) Clone() Report {
	out := r
	if r.Tags != nil {
		out.Tags = append([]string{}, r.Tags...)
	}
	if r.AISummary != nil {
		s := *r.AISummary
		out.AISummary = &s
	}
	return out
}

type Activity struct {
	ID        string         `json:"id" yaml:"id"`
	ReportID  string         `json:"reportId" yaml:"reportId"`
	Action    ActivityAction `json:"action" yaml:"action"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	UserID    string         `json:"userId" yaml:"userId"`
	Details   *string        `json:"details,omitempty" yaml:"details,omitempty"`
}

// NewReport is the create input: every Report field except the ones the store assigns.
type NewReport struct {
	Title       string
	Content     string
	CreatedBy   string
	Status      ReportStatus
	Tags        []string
	AIGenerated bool
	AISummary   *string
}

// NewActivity is the append input for the activity log.
type NewActivity struct {
	ReportID string
	Action   ActivityAction
	UserID   string
	Details  *string
}

// ReportPatch carries one optional slot per mutable report field.
// Nil slots are left untouched.
type ReportPatch struct {
	Title       *string
	Content     *string
	Status      *ReportStatus
	Tags        *[]string
	AIGenerated *bool
	AISummary   *string
}

func (p ReportPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Status == nil && p.Tags == nil && p.AIGenerated == nil && p.AISummary == nil
}

// Apply writes the set slots into r.
func (p ReportPatch) Apply(r *Report) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Content != nil {
		r.Content = *p.Content
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Tags != nil {
		r.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.AIGenerated != nil {
		r.AIGenerated = *p.AIGenerated
	}
	if p.AISummary != nil {
		s := *p.AISummary
		r.AISummary = &s
	}
}

type FilterStatus string

const (
	FilterAll       FilterStatus = "all"
	FilterDraft     FilterStatus = "draft"
	FilterPublished FilterStatus = "published"
)

type SortKey string

const (
	SortByUpdatedAt SortKey = "updatedAt"
	SortByCreatedAt SortKey = "createdAt"
	SortByTitle     SortKey = "title"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func ParseReportStatus(s string) (ReportStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "draft":
		return StatusDraft, nil
	case "published":
		return StatusPublished, nil
	default:
		return "", fmt.Errorf("invalid status: %q (expected draft|published)", s)
	}
}

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "viewer":
		return RoleViewer, nil
	default:
		return "", fmt.Errorf("invalid role: %q (expected admin|viewer)", s)
	}
}

func ParseFilterStatus(s string) (FilterStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "draft":
		return FilterDraft, nil
	case "published":
		return FilterPublished, nil
	default:
		return "", fmt.Errorf("invalid status filter: %q (expected all|draft|published)", s)
	}
}

func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "updatedat", "updated":
		return SortByUpdatedAt, nil
	case "createdat", "created":
		return SortByCreatedAt, nil
	case "title":
		return SortByTitle, nil
	default:
		return "", fmt.Errorf("invalid sort key: %q (expected updatedAt|createdAt|title)", s)
	}
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return SortDesc, nil
	case "asc":
		return SortAsc, nil
	default:
		return "", fmt.Errorf("invalid sort order: %q (expected asc|desc)", s)
	}
}
