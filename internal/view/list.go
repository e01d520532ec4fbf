package view

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/gosuda/taskflow/internal/dnd"
	"github.com/gosuda/taskflow/internal/domain"
)

// ListIntents are the requests a list raises towards the board controller.
type ListIntents struct {
	AddCard    AddCardFunc
	DeleteList func(listID uuid.UUID)
	DeleteCard func(cardID uuid.UUID)
}

// ListUnit renders one list with its cards and add-card form.
type ListUnit struct {
	List    *domain.List
	CanEdit bool
	Tracker *dnd.Tracker // nil when no drag can happen
	Focused bool
	Cursor  int // index of the focused card, -1 for none
	Form    *CardForm
	Intents ListIntents
}

func (u ListUnit) Render(t Theme) string {
	head := t.ListTitle.Render(u.List.Title) + " " + t.Count.Render(fmt.Sprintf("(%d)", len(u.List.Cards)))
	if u.CanEdit {
		head += " " + t.Delete.Render("[D]")
	}

	blocks := []string{head}
	for i := range u.List.Cards {
		blocks = append(blocks, u.Card(i).Render(t))
	}

	if u.CanEdit {
		if u.Form != nil && u.Form.IsOpen() {
			blocks = append(blocks, u.Form.View(t))
		} else {
			blocks = append(blocks, t.AddCard.Render("+ add card (a)"))
		}
	}

	style := t.List
	switch {
	case u.Tracker != nil && u.Tracker.IsOver(u.List.ID):
		style = t.ListOver
	case u.Focused:
		style = t.ListFocused
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

// Card returns the unit of the i-th card.
func (u ListUnit) Card(i int) CardUnit {
	c := u.List.Cards[i]
	return CardUnit{
		Card:     c,
		CanEdit:  u.CanEdit,
		Dragging: u.Tracker != nil && u.Tracker.IsDragging(c.ID),
		Focused:  u.Focused && i == u.Cursor,
		Intents:  CardIntents{RequestDelete: u.Intents.DeleteCard},
	}
}

// Target is the drop zone of this list.
func (u ListUnit) Target() dnd.Target {
	return dnd.ListTarget(u.List.ID)
}

// RequestDeleteList raises DeleteList when the user may edit. Confirmation is
// the receiver's job.
func (u ListUnit) RequestDeleteList() bool {
	if !u.CanEdit || u.Intents.DeleteList == nil {
		return false
	}
	u.Intents.DeleteList(u.List.ID)
	return true
}

// OpenForm shows the add-card form. Without edit rights there is none.
func (u ListUnit) OpenForm() bool {
	if !u.CanEdit || u.Form == nil {
		return false
	}
	u.Form.Open()
	return true
}

// SubmitCard submits the form into this list.
func (u ListUnit) SubmitCard(ctx context.Context) (bool, error) {
	if !u.CanEdit || u.Form == nil {
		return false, nil
	}
	return u.Form.Submit(ctx, u.List.ID, u.Intents.AddCard)
}
