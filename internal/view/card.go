package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/gosuda/taskflow/internal/dnd"
	"github.com/gosuda/taskflow/internal/domain"
)

const dueLayout = "Jan 2"

// CardIntents are the requests a card can raise.
type CardIntents struct {
	RequestDelete func(cardID uuid.UUID)
}

// CardUnit renders one card.
type CardUnit struct {
	Card     *domain.Card
	CanEdit  bool
	Dragging bool
	Focused  bool
	Intents  CardIntents
}

func (u CardUnit) Render(t Theme) string {
	c := u.Card

	head := t.CardTitle.Render(c.Title)
	if u.CanEdit {
		head += " " + t.Delete.Render("[x]")
	}

	lines := []string{head}
	if c.Description != "" {
		lines = append(lines, t.Description.Render(firstLine(c.Description)))
	}

	meta := []string{t.Priority(c.Priority).Render(c.Priority.Label())}
	if c.DueDate != nil {
		meta = append(meta, t.Due.Render("due "+c.DueDate.Format(dueLayout)))
	}
	if c.AssignedTo != nil {
		meta = append(meta, t.Avatar.Render(c.AssignedTo.Initial()))
	}
	lines = append(lines, strings.Join(meta, " "))

	style := t.Card
	switch {
	case u.Dragging:
		style = t.CardDragging
	case u.Focused:
		style = t.CardFocused
	}
	if !u.Dragging && !u.Focused {
		style = style.BorderForeground(PriorityBorder(c.Priority))
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Delete raises RequestDelete for the card. It reports whether an intent was
// emitted; nothing happens without edit rights.
func (u CardUnit) Delete() bool {
	if !u.CanEdit || u.Intents.RequestDelete == nil {
		return false
	}
	u.Intents.RequestDelete(u.Card.ID)
	return true
}

// Payload is what the card carries when picked up.
func (u CardUnit) Payload() dnd.Payload {
	return dnd.CardPayload(u.Card.ID, u.Card.ListID)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
