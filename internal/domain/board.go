package domain

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Board is the top-level container of lists. Summaries returned by board
// listings carry a nil Lists slice.
type Board struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Owner       UserRef   `json:"owner"`
	Members     []UserRef `json:"members"`
	Lists       []*List   `json:"lists,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewBoard creates a Board owned by owner with a normalized title.
func NewBoard(owner UserRef, title, description string) (*Board, error) {
	if owner.ID == uuid.Nil {
		return nil, fmt.Errorf("board: owner is required")
	}
	title, err := NormalizeTitle(title)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	return &Board{
		ID:          uuid.New(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Owner:       owner,
		Members:     []UserRef{},
		CreatedAt:   time.Now(),
	}, nil
}

// Clone returns a deep copy. Snapshots handed to renderers are clones so they
// never alias controller state.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	cp := *b
	cp.Members = slices.Clone(b.Members)
	if b.Lists != nil {
		cp.Lists = make([]*List, len(b.Lists))
		for i, l := range b.Lists {
			cp.Lists[i] = l.Clone()
		}
	}
	return &cp
}

// CanEdit reports whether userID owns the board or is one of its members.
func (b *Board) CanEdit(userID uuid.UUID) bool {
	if b == nil || userID == uuid.Nil {
		return false
	}
	if b.Owner.ID == userID {
		return true
	}
	return slices.ContainsFunc(b.Members, func(m UserRef) bool { return m.ID == userID })
}

// IsOwner reports whether userID owns the board.
func (b *Board) IsOwner(userID uuid.UUID) bool {
	return b != nil && userID != uuid.Nil && b.Owner.ID == userID
}

// FindList returns the index of the list with the given id.
func (b *Board) FindList(listID uuid.UUID) (int, bool) {
	for i, l := range b.Lists {
		if l.ID == listID {
			return i, true
		}
	}
	return -1, false
}

// FindCard looks up the current membership of a card.
func (b *Board) FindCard(cardID uuid.UUID) (listIdx, cardIdx int, ok bool) {
	for i, l := range b.Lists {
		if j := l.indexOf(cardID); j >= 0 {
			return i, j, true
		}
	}
	return -1, -1, false
}

// AppendList appends l at the end of the board.
func (b *Board) AppendList(l *List) {
	if l.Cards == nil {
		l.Cards = []*Card{}
	}
	l.BoardID = b.ID
	b.Lists = append(b.Lists, l)
}

// AppendCard appends c at the end of the list identified by listID.
func (b *Board) AppendCard(listID uuid.UUID, c *Card) error {
	i, ok := b.FindList(listID)
	if !ok {
		return fmt.Errorf("board.AppendCard: list %s: %w", listID, ErrNotFound)
	}
	c.ListID = listID
	b.Lists[i].Cards = append(b.Lists[i].Cards, c)
	return nil
}

// MoveCard transfers a card to the end of the target list in one step. The
// board is left untouched when either the card or the target list is unknown.
// Moving a card onto the list that already holds it is a no-op.
func (b *Board) MoveCard(cardID, targetListID uuid.UUID) error {
	ti, ok := b.FindList(targetListID)
	if !ok {
		return fmt.Errorf("board.MoveCard: list %s: %w", targetListID, ErrNotFound)
	}
	li, ci, ok := b.FindCard(cardID)
	if !ok {
		return fmt.Errorf("board.MoveCard: card %s: %w", cardID, ErrNotFound)
	}
	if li == ti {
		return nil
	}

	src := b.Lists[li]
	card := src.Cards[ci]
	src.Cards = slices.Delete(src.Cards, ci, ci+1)

	card.ListID = targetListID
	b.Lists[ti].Cards = append(b.Lists[ti].Cards, card)
	return nil
}

// RemoveList filters the list out of the board. It reports whether a list was
// removed.
func (b *Board) RemoveList(listID uuid.UUID) bool {
	n := len(b.Lists)
	b.Lists = slices.DeleteFunc(b.Lists, func(l *List) bool { return l.ID == listID })
	return len(b.Lists) != n
}

// RemoveCard filters the card out of whichever list holds it.
func (b *Board) RemoveCard(cardID uuid.UUID) bool {
	removed := false
	for _, l := range b.Lists {
		n := len(l.Cards)
		l.Cards = slices.DeleteFunc(l.Cards, func(c *Card) bool { return c.ID == cardID })
		removed = removed || len(l.Cards) != n
	}
	return removed
}

// CardCount returns the number of cards across all lists.
func (b *Board) CardCount() int {
	n := 0
	for _, l := range b.Lists {
		n += len(l.Cards)
	}
	return n
}

// Assemble nests cards under their lists, keeping the given order of both.
// Cards whose list is not among lists are dropped.
func Assemble(b *Board, lists []*List, cards []*Card) {
	byID := make(map[uuid.UUID]*List, len(lists))
	b.Lists = make([]*List, 0, len(lists))
	for _, l := range lists {
		l.Cards = []*Card{}
		byID[l.ID] = l
		b.Lists = append(b.Lists, l)
	}
	for _, c := range cards {
		if l, ok := byID[c.ListID]; ok {
			l.Cards = append(l.Cards, c)
		}
	}
}

type BoardRepository interface {
	Create(ctx context.Context, b *Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*Board, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*Board, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddMember(ctx context.Context, boardID, userID uuid.UUID) error
	ListMembers(ctx context.Context, boardID uuid.UUID) ([]UserRef, error)
}
