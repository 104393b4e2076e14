// Package editor is the headless report editor: the form a user fills in,
// tag handling, save, and the AI generate/summarize actions.
// The CLI and TUI both drive a Session; neither talks to the generation service directly.
package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"reportdesk/internal/genai"
	"reportdesk/internal/model"
	"reportdesk/internal/perm"
	"reportdesk/internal/reports"

	"github.com/rs/zerolog"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
	ModeView   Mode = "view"
)

// TitleDateLayout formats the date in the fallback title of generated reports.
const TitleDateLayout = "Jan 2, 2006"

const promptDetailRunes = 50

var (
	ErrReadOnly  = errors.New("report is read-only")
	ErrBusy      = errors.New("an AI request is already in progress")
	ErrNoReport  = errors.New("edit and view sessions need an existing report")
	ErrEmptyTag  = errors.New("tag is empty")
	ErrDuplicate = errors.New("tag already present")
)

// UserError carries a message meant for display plus the underlying cause.
type UserError struct {
	Msg string
	Err error
}

func (e UserError) Error() string { return e.Msg }
func (e UserError) Unwrap() error { return e.Err }

const (
	msgGenerateFailed  = "Failed to generate report. Please try again."
	msgSummarizeFailed = "Failed to summarize content. Please try again."
)

type Form struct {
	Title   string             `json:"title"`
	Content string             `json:"content"`
	Status  model.ReportStatus `json:"status"`
	Tags    []string           `json:"tags"`
}

type Options struct {
	Logger zerolog.Logger
	Clock  func() time.Time
}

// Session is one open editor over the store. It is safe to call Generate or
// Summarize from a goroutine while the caller keeps reading Form.
type Session struct {
	st  *reports.Store
	ai  genai.Service
	log zerolog.Logger
	now func() time.Time

	mu          sync.Mutex
	mode        Mode
	reportID    string
	form        Form
	summary     *string
	aiGenerated bool
	busy        bool
}

// Open starts a session. report is required for edit and view modes and ignored for create.
func Open(st *reports.Store, ai genai.Service, mode Mode, report *model.Report, opts Options) (*Session, error) {
	s := &Session{
		st:   st,
		ai:   ai,
		log:  opts.Logger,
		now:  opts.Clock,
		mode: mode,
	}
	if s.now == nil {
		s.now = time.Now
	}
	switch mode {
	case ModeCreate:
		s.form = Form{Status: model.StatusDraft, Tags: []string{}}
	case ModeEdit, ModeView:
		if report == nil {
			return nil, ErrNoReport
		}
		s.reportID = report.ID
		s.form = Form{
			Title:   report.Title,
			Content: report.Content,
			Status:  report.Status,
			Tags:    append([]string{}, report.Tags...),
		}
		if report.AISummary != nil {
			v := *report.AISummary
			s.summary = &v
		}
		s.aiGenerated = report.AIGenerated
	default:
		return nil, errors.New("unknown editor mode: " + string(mode))
	}
	return s, nil
}

func (s *Session) Mode() Mode {
	m, _ := s.target()
	return m
}

func (s *Session) ReportID() string {
	_, id := s.target()
	return id
}

// target returns the mode and the report the session writes to.
// Both change when a create session is first saved.
func (s *Session) target() (Mode, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, s.reportID
}

// ReadOnly is true in view mode or for users without edit rights.
func (s *Session) ReadOnly() bool {
	return s.Mode() == ModeView || !perm.CanEdit(s.st.CurrentUser())
}

func (s *Session) CanUseAI() bool {
	return perm.CanUseAI(s.st.CurrentUser())
}

func (s *Session) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.form
	f.Tags = append([]string{}, s.form.Tags...)
	return f
}

func (s *Session) Summary() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return "", false
	}
	return *s.summary, true
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) SetTitle(v string) {
	s.mu.Lock()
	s.form.Title = v
	s.mu.Unlock()
}

func (s *Session) SetContent(v string) {
	s.mu.Lock()
	s.form.Content = v
	s.mu.Unlock()
}

func (s *Session) SetStatus(v model.ReportStatus) {
	s.mu.Lock()
	s.form.Status = v
	s.mu.Unlock()
}

// AddTag appends the trimmed tag unless it is empty or already present.
func (s *Session) AddTag(tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ErrEmptyTag
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.form.Tags {
		if t == tag {
			return ErrDuplicate
		}
	}
	s.form.Tags = append(s.form.Tags, tag)
	return nil
}

func (s *Session) RemoveTag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.form.Tags[:0:0]
	for _, t := range s.form.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	s.form.Tags = kept
}

// Save writes the form to the store: an update in edit mode, a new report in create mode.
func (s *Session) Save() (model.Report, error) {
	if s.ReadOnly() {
		return model.Report{}, ErrReadOnly
	}
	f := s.Form()
	if strings.TrimSpace(f.Title) == "" {
		return model.Report{}, reports.ErrEmptyTitle
	}
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return model.Report{}, ErrBusy
	}
	aiGenerated := s.aiGenerated
	mode, reportID := s.mode, s.reportID
	s.mu.Unlock()

	if mode == ModeEdit {
		return s.st.UpdateReport(reportID, model.ReportPatch{
			Title:   &f.Title,
			Content: &f.Content,
			Status:  &f.Status,
			Tags:    &f.Tags,
		})
	}
	r, err := s.st.AddReport(model.NewReport{
		Title:       f.Title,
		Content:     f.Content,
		CreatedBy:   s.st.CurrentUser().ID,
		Status:      f.Status,
		Tags:        f.Tags,
		AIGenerated: aiGenerated,
	})
	if err != nil {
		return model.Report{}, err
	}
	// Later saves of the same session update the report instead of creating another.
	s.mu.Lock()
	s.mode = ModeEdit
	s.reportID = r.ID
	s.mu.Unlock()
	return r, nil
}

func (s *Session) beginAI() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy || s.st.AILoading() {
		return ErrBusy
	}
	s.busy = true
	s.st.SetAILoading(true)
	return nil
}

func (s *Session) endAI() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
	s.st.SetAILoading(false)
}

// Generate replaces the form content with generated content for prompt.
// On failure the form and the store are unchanged and a UserError is returned.
func (s *Session) Generate(ctx context.Context, prompt string) error {
	mode, reportID := s.target()
	if mode == ModeView {
		return ErrReadOnly
	}
	if err := perm.Require(s.st.CurrentUser(), perm.ActionUseAI); err != nil {
		return err
	}
	if strings.TrimSpace(prompt) == "" {
		return genai.ErrEmptyInput
	}
	if err := s.beginAI(); err != nil {
		return err
	}
	defer s.endAI()

	content, err := s.ai.GenerateReport(ctx, prompt)
	if err != nil {
		s.log.Error().Err(err).Msg("generate report")
		return UserError{Msg: msgGenerateFailed, Err: err}
	}

	s.mu.Lock()
	s.form.Content = content
	if strings.TrimSpace(s.form.Title) == "" {
		s.form.Title = "AI Generated Report - " + s.now().Format(TitleDateLayout)
	}
	if mode == ModeCreate {
		s.aiGenerated = true
	}
	s.mu.Unlock()

	if mode == ModeEdit {
		details := `Generated content from prompt: "` + firstRunes(prompt, promptDetailRunes) + `..."`
		s.st.AddActivity(model.NewActivity{
			ReportID: reportID,
			Action:   model.ActionAIGenerated,
			UserID:   s.st.CurrentUser().ID,
			Details:  &details,
		})
	}
	return nil
}

// Summarize summarizes the current form content. In edit mode the summary is
// stored on the report right away.
func (s *Session) Summarize(ctx context.Context) error {
	mode, reportID := s.target()
	if mode == ModeView {
		return ErrReadOnly
	}
	if err := perm.Require(s.st.CurrentUser(), perm.ActionUseAI); err != nil {
		return err
	}
	content := s.Form().Content
	if strings.TrimSpace(content) == "" {
		return genai.ErrEmptyInput
	}
	if err := s.beginAI(); err != nil {
		return err
	}
	defer s.endAI()

	summary, err := s.ai.SummarizeContent(ctx, content)
	if err != nil {
		s.log.Error().Err(err).Msg("summarize content")
		return UserError{Msg: msgSummarizeFailed, Err: err}
	}

	s.mu.Lock()
	s.summary = &summary
	s.mu.Unlock()

	if mode == ModeEdit {
		if _, err := s.st.UpdateReport(reportID, model.ReportPatch{AISummary: &summary}); err != nil {
			return err
		}
		s.st.AddActivity(model.NewActivity{
			ReportID: reportID,
			Action:   model.ActionAISummarized,
			UserID:   s.st.CurrentUser().ID,
		})
	}
	return nil
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
