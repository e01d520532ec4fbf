package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is applied when a card is created without one.
const DefaultPriority = PriorityMedium

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Label returns the display name of the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return string(p)
	}
}

// Next cycles low -> medium -> high -> low. Used by forms.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// ParsePriority accepts the wire names case-insensitively. An empty string
// yields DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultPriority, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("parse priority %q: %w", s, ErrInvalidPriority)
	}
	return p, nil
}

type Card struct {
	ID          uuid.UUID  `json:"id"`
	ListID      uuid.UUID  `json:"list_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssignedTo  *UserRef   `json:"assigned_to,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewCard creates a Card with a normalized title and defaulted priority.
func NewCard(listID uuid.UUID, title, description string, priority Priority) (*Card, error) {
	title, err := NormalizeTitle(title)
	if err != nil {
		return nil, fmt.Errorf("card: %w", err)
	}
	if priority == "" {
		priority = DefaultPriority
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("card: %w", ErrInvalidPriority)
	}
	return &Card{
		ID:          uuid.New(),
		ListID:      listID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Priority:    priority,
		CreatedAt:   time.Now(),
	}, nil
}

// Clone returns a deep copy of the card.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	cp := *c
	if c.DueDate != nil {
		d := *c.DueDate
		cp.DueDate = &d
	}
	if c.AssignedTo != nil {
		a := *c.AssignedTo
		cp.AssignedTo = &a
	}
	return &cp
}

type CardRepository interface {
	Create(ctx context.Context, c *Card) error
	GetByID(ctx context.Context, id uuid.UUID) (*Card, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Card, error)
	Move(ctx context.Context, id, listID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// NormalizeTitle trims surrounding whitespace and rejects empty titles.
func NormalizeTitle(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyTitle
	}
	return s, nil
}
