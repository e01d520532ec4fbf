// Package remote is the client side of the board service contract: the
// Service interface consumed by the controllers and its HTTP implementation.
package remote

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/taskflow/internal/domain"
)

type CreateBoardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type CreateListRequest struct {
	Title   string    `json:"title"`
	BoardID uuid.UUID `json:"board_id"`
}

type CreateCardRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Priority    domain.Priority `json:"priority"`
	ListID      uuid.UUID       `json:"list_id"`
}

type MoveCardRequest struct {
	CardID    uuid.UUID `json:"-"`
	NewListID uuid.UUID `json:"new_list_id"`
}

// Service is the request/response contract of the board service. Failures
// wrap the domain sentinels (domain.ErrNotFound, domain.ErrForbidden, ...).
// *Client satisfies this interface.
type Service interface {
	GetBoard(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	ListBoards(ctx context.Context) ([]*domain.Board, error)
	CreateBoard(ctx context.Context, req CreateBoardRequest) (*domain.Board, error)
	DeleteBoard(ctx context.Context, id uuid.UUID) error

	CreateList(ctx context.Context, req CreateListRequest) (*domain.List, error)
	DeleteList(ctx context.Context, id uuid.UUID) error

	CreateCard(ctx context.Context, req CreateCardRequest) (*domain.Card, error)
	DeleteCard(ctx context.Context, id uuid.UUID) error
	MoveCard(ctx context.Context, req MoveCardRequest) error
}

// Watcher streams board change events.
type Watcher interface {
	WatchBoard(ctx context.Context, boardID uuid.UUID) (<-chan domain.BoardEvent, error)
}

var (
	_ Service = (*Client)(nil)
	_ Watcher = (*Client)(nil)
)
