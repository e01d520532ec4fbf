package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/taskflow/internal/domain"
)

type CreateListInput struct {
	Body struct {
		BoardID uuid.UUID `json:"board_id" doc:"Board the list belongs to"`
		Title   string    `json:"title" minLength:"1" maxLength:"200" doc:"List title"`
	}
}

type ListOutput struct {
	Body *domain.List
}

type ListIDInput struct {
	ID uuid.UUID `path:"id" doc:"List ID"`
}

func RegisterListRoutes(api huma.API, store DataStore, events EventPublisher) {
	huma.Register(api, huma.Operation{
		OperationID: "create-list",
		Method:      http.MethodPost,
		Path:        "/lists",
		Summary:     "Append a list to a board",
		Tags:        []string{"Lists"},
	}, func(ctx context.Context, input *CreateListInput) (*ListOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := loadBoard(ctx, store, input.Body.BoardID, userID, accessEdit); err != nil {
			return nil, err
		}

		l, err := domain.NewList(input.Body.BoardID, input.Body.Title)
		if err != nil {
			return nil, validationError(err, "invalid list")
		}

		if err := store.Lists().Create(ctx, l); err != nil {
			return nil, validationError(err, "failed to create list")
		}

		publish(ctx, events, domain.EventListCreated, l.BoardID, l.ID, userID)
		return &ListOutput{Body: l}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-list",
		Method:      http.MethodDelete,
		Path:        "/lists/{id}",
		Summary:     "Delete a list and its cards",
		Tags:        []string{"Lists"},
	}, func(ctx context.Context, input *ListIDInput) (*struct{}, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		l, err := store.Lists().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("list not found")
			}
			return nil, huma.Error500InternalServerError("failed to get list", err)
		}

		if _, err := loadBoard(ctx, store, l.BoardID, userID, accessEdit); err != nil {
			return nil, err
		}

		if err := store.Lists().Delete(ctx, l.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("list not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete list", err)
		}

		publish(ctx, events, domain.EventListDeleted, l.BoardID, l.ID, userID)
		return nil, nil
	})
}
