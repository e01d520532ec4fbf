package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type List struct {
	ID        uuid.UUID `json:"id"`
	BoardID   uuid.UUID `json:"board_id"`
	Title     string    `json:"title"`
	Cards     []*Card   `json:"cards"`
	CreatedAt time.Time `json:"created_at"`
}

// NewList creates an empty List with a normalized title.
func NewList(boardID uuid.UUID, title string) (*List, error) {
	title, err := NormalizeTitle(title)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return &List{
		ID:        uuid.New(),
		BoardID:   boardID,
		Title:     title,
		Cards:     []*Card{},
		CreatedAt: time.Now(),
	}, nil
}

// Clone returns a deep copy of the list and its cards.
func (l *List) Clone() *List {
	if l == nil {
		return nil
	}
	cp := *l
	cp.Cards = make([]*Card, len(l.Cards))
	for i, c := range l.Cards {
		cp.Cards[i] = c.Clone()
	}
	return &cp
}

func (l *List) indexOf(cardID uuid.UUID) int {
	for i, c := range l.Cards {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

type ListRepository interface {
	Create(ctx context.Context, l *List) error
	GetByID(ctx context.Context, id uuid.UUID) (*List, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*List, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
