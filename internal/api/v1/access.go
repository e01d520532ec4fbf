package v1

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/taskflow/internal/domain"
	"github.com/gosuda/taskflow/internal/server/middleware"
)

func currentUser(ctx context.Context) (uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, huma.Error401Unauthorized("authentication required")
	}
	return userID, nil
}

// boardAccess checks how the caller may use a board.
type boardAccess int

const (
	accessRead boardAccess = iota
	accessEdit
	accessOwner
)

// loadBoard fetches a board (without lists) and checks that userID has the
// requested access to it.
func loadBoard(ctx context.Context, store DataStore, boardID, userID uuid.UUID, want boardAccess) (*domain.Board, error) {
	b, err := store.Boards().GetByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("board not found")
		}
		return nil, huma.Error500InternalServerError("failed to get board", err)
	}

	switch want {
	case accessEdit:
		if !b.CanEdit(userID) {
			return nil, huma.Error403Forbidden("only the owner and members can change this board")
		}
	case accessOwner:
		if !b.IsOwner(userID) {
			return nil, huma.Error403Forbidden("only the owner can do this")
		}
	}
	return b, nil
}

// assembleBoard nests the lists and cards of b.
func assembleBoard(ctx context.Context, store DataStore, b *domain.Board) error {
	lists, err := store.Lists().ListByBoard(ctx, b.ID)
	if err != nil {
		return huma.Error500InternalServerError("failed to list board lists", err)
	}
	cards, err := store.Cards().ListByBoard(ctx, b.ID)
	if err != nil {
		return huma.Error500InternalServerError("failed to list board cards", err)
	}
	domain.Assemble(b, lists, cards)
	return nil
}

// validationError maps domain validation failures to 422.
func validationError(err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrEmptyTitle):
		return huma.Error422UnprocessableEntity("title is required")
	case errors.Is(err, domain.ErrInvalidPriority):
		return huma.Error422UnprocessableEntity("priority must be low, medium or high")
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound("not found")
	}
	return huma.Error500InternalServerError(fallback, err)
}

// publish announces a committed change. The change already happened, so a
// publish failure is logged and not returned.
func publish(ctx context.Context, events EventPublisher, typ domain.BoardEventType, boardID, entityID, actorID uuid.UUID) {
	if events == nil {
		return
	}
	ev := domain.BoardEvent{Type: typ, BoardID: boardID, EntityID: entityID, ActorID: actorID}
	if err := events.PublishBoardEvent(ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("event", string(typ)).
			Str("board_id", boardID.String()).
			Str("entity_id", entityID.String()).
			Msg("api: failed to publish board event")
	}
}
