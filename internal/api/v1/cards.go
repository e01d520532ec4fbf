package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/taskflow/internal/domain"
)

type CreateCardInput struct {
	Body struct {
		ListID      uuid.UUID  `json:"list_id" doc:"List the card is appended to"`
		Title       string     `json:"title" minLength:"1" maxLength:"200" doc:"Card title"`
		Description string     `json:"description,omitempty" maxLength:"10000" doc:"Card description (markdown)"`
		Priority    string     `json:"priority,omitempty" doc:"low, medium or high; defaults to medium"`
		DueDate     *time.Time `json:"due_date,omitempty" doc:"Due date"`
		AssignedTo  *uuid.UUID `json:"assigned_to,omitempty" doc:"Assignee user ID (owner or member)"`
	}
}

type CardOutput struct {
	Body *domain.Card
}

type CardIDInput struct {
	ID uuid.UUID `path:"id" doc:"Card ID"`
}

type MoveCardInput struct {
	ID   uuid.UUID `path:"id" doc:"Card ID"`
	Body struct {
		NewListID uuid.UUID `json:"new_list_id" doc:"Target list on the same board"`
	}
}

func RegisterCardRoutes(api huma.API, store DataStore, events EventPublisher) {
	huma.Register(api, huma.Operation{
		OperationID: "create-card",
		Method:      http.MethodPost,
		Path:        "/cards",
		Summary:     "Append a card to a list",
		Tags:        []string{"Cards"},
	}, func(ctx context.Context, input *CreateCardInput) (*CardOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		l, err := getList(ctx, store, input.Body.ListID)
		if err != nil {
			return nil, err
		}
		b, err := loadBoard(ctx, store, l.BoardID, userID, accessEdit)
		if err != nil {
			return nil, err
		}

		priority, err := domain.ParsePriority(input.Body.Priority)
		if err != nil {
			return nil, validationError(err, "invalid priority")
		}
		c, err := domain.NewCard(l.ID, input.Body.Title, input.Body.Description, priority)
		if err != nil {
			return nil, validationError(err, "invalid card")
		}
		c.DueDate = input.Body.DueDate

		if id := input.Body.AssignedTo; id != nil {
			ref, ok := boardUser(b, *id)
			if !ok {
				return nil, huma.Error422UnprocessableEntity("assignee must be the owner or a member of the board")
			}
			c.AssignedTo = &ref
		}

		if err := store.Cards().Create(ctx, c); err != nil {
			return nil, validationError(err, "failed to create card")
		}

		publish(ctx, events, domain.EventCardCreated, l.BoardID, c.ID, userID)
		return &CardOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-card",
		Method:      http.MethodDelete,
		Path:        "/cards/{id}",
		Summary:     "Delete a card",
		Tags:        []string{"Cards"},
	}, func(ctx context.Context, input *CardIDInput) (*struct{}, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		c, l, err := getCard(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}
		if _, err := loadBoard(ctx, store, l.BoardID, userID, accessEdit); err != nil {
			return nil, err
		}

		if err := store.Cards().Delete(ctx, c.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("card not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete card", err)
		}

		publish(ctx, events, domain.EventCardDeleted, l.BoardID, c.ID, userID)
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "move-card",
		Method:      http.MethodPut,
		Path:        "/cards/{id}/move",
		Summary:     "Move a card to the end of another list on the same board",
		Tags:        []string{"Cards"},
	}, func(ctx context.Context, input *MoveCardInput) (*struct{}, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		c, from, err := getCard(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}
		to, err := getList(ctx, store, input.Body.NewListID)
		if err != nil {
			return nil, err
		}
		if to.BoardID != from.BoardID {
			return nil, huma.Error422UnprocessableEntity("target list is on another board")
		}
		if _, err := loadBoard(ctx, store, from.BoardID, userID, accessEdit); err != nil {
			return nil, err
		}

		if err := store.Cards().Move(ctx, c.ID, to.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("card or list not found")
			}
			return nil, huma.Error500InternalServerError("failed to move card", err)
		}

		publish(ctx, events, domain.EventCardMoved, from.BoardID, c.ID, userID)
		return nil, nil
	})
}

func getList(ctx context.Context, store DataStore, id uuid.UUID) (*domain.List, error) {
	l, err := store.Lists().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("list not found")
		}
		return nil, huma.Error500InternalServerError("failed to get list", err)
	}
	return l, nil
}

// getCard returns the card and the list it currently sits in.
func getCard(ctx context.Context, store DataStore, id uuid.UUID) (*domain.Card, *domain.List, error) {
	c, err := store.Cards().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, huma.Error404NotFound("card not found")
		}
		return nil, nil, huma.Error500InternalServerError("failed to get card", err)
	}
	l, err := getList(ctx, store, c.ListID)
	if err != nil {
		return nil, nil, err
	}
	return c, l, nil
}

func boardUser(b *domain.Board, id uuid.UUID) (domain.UserRef, bool) {
	if b.Owner.ID == id {
		return b.Owner, true
	}
	for _, m := range b.Members {
		if m.ID == id {
			return m, true
		}
	}
	return domain.UserRef{}, false
}
