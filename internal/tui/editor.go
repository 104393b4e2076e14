package tui

import (
	"errors"
	"strings"

	"reportdesk/internal/dashboard"
	"reportdesk/internal/editor"
	"reportdesk/internal/model"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type editorFocus int

const (
	focusTitle editorFocus = iota
	focusTags
	focusContent
	focusPrompt
	focusCount
)

// editorState wraps an editor.Session with the inputs that edit its form.
// Content is edited as markdown and converted back to HTML when it changes.
type editorState struct {
	sess *editor.Session

	title   textinput.Model
	tags    textinput.Model
	prompt  textinput.Model
	content textarea.Model

	focus   editorFocus
	pending bool
	// loadedMarkdown is what the content area was last filled with; edits are detected against it.
	loadedMarkdown string
}

func newEditorState(sess *editor.Session) *editorState {
	e := &editorState{sess: sess}

	e.title = textinput.New()
	e.title.Prompt = "Title: "
	e.title.Placeholder = "Report title"

	e.tags = textinput.New()
	e.tags.Prompt = "Tag: "
	e.tags.Placeholder = "enter adds, backspace on empty removes last"

	e.prompt = textinput.New()
	e.prompt.Prompt = "AI prompt: "
	e.prompt.Placeholder = "Describe the report to generate"

	e.content = textarea.New()
	e.content.Placeholder = "Write the report in markdown"
	e.content.ShowLineNumbers = false
	e.content.CharLimit = 0
	e.content.MaxHeight = 0

	e.loadFromSession()
	if sess.ReadOnly() {
		e.focus = focusContent
	}
	e.applyFocus()
	return e
}

// loadFromSession copies the session form into the inputs.
func (e *editorState) loadFromSession() {
	f := e.sess.Form()
	e.title.SetValue(f.Title)
	md := dashboard.HTMLToMarkdown(f.Content)
	e.content.SetValue(md)
	e.loadedMarkdown = md
}

// sync pushes the inputs into the session form.
func (e *editorState) sync() error {
	e.sess.SetTitle(e.title.Value())
	md := e.content.Value()
	if md == e.loadedMarkdown {
		return nil
	}
	html, err := dashboard.MarkdownToHTML(md)
	if err != nil {
		return err
	}
	e.sess.SetContent(html)
	e.loadedMarkdown = md
	return nil
}

func (e *editorState) resize(width, height int) {
	e.title.Width = width - 10
	e.tags.Width = width - 8
	e.prompt.Width = width - 14
	e.content.SetWidth(width - 2)
	// Header, title, status, tags, chips, prompt, summary, help, status line.
	h := height - 12
	if h < 3 {
		h = 3
	}
	e.content.SetHeight(h)
}

func (e *editorState) applyFocus() {
	e.title.Blur()
	e.tags.Blur()
	e.prompt.Blur()
	e.content.Blur()
	switch e.focus {
	case focusTitle:
		e.title.Focus()
	case focusTags:
		e.tags.Focus()
	case focusContent:
		e.content.Focus()
	case focusPrompt:
		e.prompt.Focus()
	}
}

func (e *editorState) cycleFocus(delta int) {
	if e.sess.ReadOnly() {
		return
	}
	e.focus = editorFocus((int(e.focus) + delta + int(focusCount)) % int(focusCount))
	if e.focus == focusPrompt && !e.sess.CanUseAI() {
		e.focus = editorFocus((int(e.focus) + delta + int(focusCount)) % int(focusCount))
	}
	e.applyFocus()
}

func (e *editorState) toggleStatus() {
	if e.sess.Form().Status == model.StatusPublished {
		e.sess.SetStatus(model.StatusDraft)
		return
	}
	e.sess.SetStatus(model.StatusPublished)
}

// handleTagKey returns true when the key was consumed by tag editing.
func (e *editorState) handleTagKey(msg tea.KeyMsg) (bool, error) {
	switch msg.String() {
	case "enter":
		err := e.sess.AddTag(e.tags.Value())
		if err == nil || errors.Is(err, editor.ErrDuplicate) {
			e.tags.SetValue("")
		}
		return true, err
	case "backspace":
		if e.tags.Value() != "" {
			return false, nil
		}
		tags := e.sess.Form().Tags
		if len(tags) > 0 {
			e.sess.RemoveTag(tags[len(tags)-1])
		}
		return true, nil
	}
	return false, nil
}

func (e *editorState) update(msg tea.Msg) tea.Cmd {
	if e.sess.ReadOnly() {
		return nil
	}
	var cmd tea.Cmd
	switch e.focus {
	case focusTitle:
		e.title, cmd = e.title.Update(msg)
	case focusTags:
		e.tags, cmd = e.tags.Update(msg)
	case focusContent:
		e.content, cmd = e.content.Update(msg)
	case focusPrompt:
		e.prompt, cmd = e.prompt.Update(msg)
	}
	return cmd
}

func (e *editorState) heading() string {
	switch e.sess.Mode() {
	case editor.ModeCreate:
		return "New report"
	case editor.ModeView:
		return "View report"
	default:
		return "Edit report"
	}
}

func (e *editorState) help() string {
	if e.sess.ReadOnly() {
		return "esc: back"
	}
	parts := []string{"tab: next field", "ctrl+s: save", "ctrl+p: toggle status"}
	if e.sess.CanUseAI() {
		parts = append(parts, "ctrl+g: generate from prompt", "ctrl+u: summarize")
	}
	parts = append(parts, "esc: discard")
	return strings.Join(parts, "   ")
}
