package view

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/gosuda/taskflow/internal/board"
	"github.com/gosuda/taskflow/internal/domain"
)

// AddCardFunc creates a card in listID. It is the board controller's
// CreateCard.
type AddCardFunc func(ctx context.Context, listID uuid.UUID, draft board.CardDraft) error

const (
	fieldTitle = iota
	fieldDescription
)

// CardForm is the add-card form of a list. It is the only unit keeping local
// UI state.
type CardForm struct {
	open     bool
	focus    int
	title    textinput.Model
	desc     textinput.Model
	priority domain.Priority
}

// NewInput returns a single-line input with a steady cursor.
func NewInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

func NewCardForm() *CardForm {
	return &CardForm{
		title:    NewInput("Card title", 200),
		desc:     NewInput("Description (optional)", 2000),
		priority: domain.DefaultPriority,
	}
}

// Open shows the form with the title focused.
func (f *CardForm) Open() tea.Cmd {
	f.open = true
	f.focus = fieldTitle
	f.desc.Blur()
	return f.title.Focus()
}

// Close hides the form and discards what was typed.
func (f *CardForm) Close() {
	f.open = false
	f.Reset()
}

func (f *CardForm) IsOpen() bool { return f.open }

// Reset clears the fields back to their defaults.
func (f *CardForm) Reset() {
	f.title.Reset()
	f.desc.Reset()
	f.priority = domain.DefaultPriority
	f.focus = fieldTitle
}

func (f *CardForm) SetTitle(s string) { f.title.SetValue(s) }
func (f *CardForm) SetDescription(s string) { f.desc.SetValue(s) }
func (f *CardForm) SetPriority(p domain.Priority) { f.priority = p }
func (f *CardForm) CyclePriority() { f.priority = f.priority.Next() }
func (f *CardForm) Priority() domain.Priority { return f.priority }
func (f *CardForm) Title() string { return f.title.Value() }
func (f *CardForm) Description() string { return f.desc.Value() }

// Draft returns the current field values.
func (f *CardForm) Draft() board.CardDraft {
	return board.CardDraft{
		Title:       f.title.Value(),
		Description: strings.TrimSpace(f.desc.Value()),
		Priority:    f.priority,
	}
}

// Submit sends the draft to add. A blank title is ignored without calling
// add. The form is cleared and hidden only after add succeeds; on failure the
// typed values stay so the user can retry.
func (f *CardForm) Submit(ctx context.Context, listID uuid.UUID, add AddCardFunc) (bool, error) {
	draft, ok := f.Pending()
	if !ok || add == nil {
		return false, nil
	}
	if err := f.Done(add(ctx, listID, draft)); err != nil {
		return false, err
	}
	return true, nil
}

// Pending returns the draft to submit; false when the title is blank.
// Callers running add asynchronously report back with Done.
func (f *CardForm) Pending() (board.CardDraft, bool) {
	draft := f.Draft()
	return draft, strings.TrimSpace(draft.Title) != ""
}

// Done completes a submission. Success clears and hides the form; an error
// is returned unchanged and the form keeps its contents.
func (f *CardForm) Done(err error) error {
	if err != nil {
		return err
	}
	f.Close()
	return nil
}

// Update routes key input to the focused field. Tab switches fields and
// ctrl+p cycles the priority.
func (f *CardForm) Update(msg tea.Msg) tea.Cmd {
	if !f.open {
		return nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "shift+tab":
			return f.toggleFocus()
		case "ctrl+p":
			f.CyclePriority()
			return nil
		}
	}

	var cmd tea.Cmd
	if f.focus == fieldTitle {
		f.title, cmd = f.title.Update(msg)
	} else {
		f.desc, cmd = f.desc.Update(msg)
	}
	return cmd
}

func (f *CardForm) toggleFocus() tea.Cmd {
	if f.focus == fieldTitle {
		f.focus = fieldDescription
		f.title.Blur()
		return f.desc.Focus()
	}
	f.focus = fieldTitle
	f.desc.Blur()
	return f.title.Focus()
}

func (f *CardForm) View(t Theme) string {
	return t.Form.Render(lipgloss.JoinVertical(lipgloss.Left,
		f.title.View(),
		f.desc.View(),
		t.Priority(f.priority).Render(f.priority.Label())+" "+t.Help.Render("ctrl+p priority · enter add · esc cancel"),
	))
}
