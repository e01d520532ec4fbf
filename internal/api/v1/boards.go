package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/taskflow/internal/domain"
)

type ListBoardsOutput struct {
	Body []*domain.Board
}

type CreateBoardInput struct {
	Body struct {
		Title       string `json:"title" minLength:"1" maxLength:"200" doc:"Board title"`
		Description string `json:"description,omitempty" maxLength:"2000" doc:"Board description"`
	}
}

type BoardIDInput struct {
	ID uuid.UUID `path:"id" doc:"Board ID"`
}

type BoardOutput struct {
	Body *domain.Board
}

type AddMemberInput struct {
	ID   uuid.UUID `path:"id" doc:"Board ID"`
	Body struct {
		Email string `json:"email" minLength:"3" maxLength:"255" doc:"Email of the user to add"`
	}
}

func RegisterBoardRoutes(api huma.API, store DataStore, events EventPublisher) {
	huma.Register(api, huma.Operation{
		OperationID: "list-boards",
		Method:      http.MethodGet,
		Path:        "/boards",
		Summary:     "List boards the caller owns or is a member of",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, _ *struct{}) (*ListBoardsOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		boards, err := store.Boards().ListForUser(ctx, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list boards", err)
		}

		return &ListBoardsOutput{Body: boards}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-board",
		Method:      http.MethodPost,
		Path:        "/boards",
		Summary:     "Create a board owned by the caller",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *CreateBoardInput) (*BoardOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		owner, err := store.Users().GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error401Unauthorized("unknown user")
			}
			return nil, huma.Error500InternalServerError("failed to get user", err)
		}

		b, err := domain.NewBoard(owner.Ref(), input.Body.Title, input.Body.Description)
		if err != nil {
			return nil, validationError(err, "invalid board")
		}

		if err := store.Boards().Create(ctx, b); err != nil {
			return nil, huma.Error500InternalServerError("failed to create board", err)
		}

		b.Lists = []*domain.List{}
		return &BoardOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/boards/{id}",
		Summary:     "Get a board with its lists and cards",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *BoardIDInput) (*BoardOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		b, err := loadBoard(ctx, store, input.ID, userID, accessRead)
		if err != nil {
			return nil, err
		}
		if err := assembleBoard(ctx, store, b); err != nil {
			return nil, err
		}

		return &BoardOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-board",
		Method:      http.MethodDelete,
		Path:        "/boards/{id}",
		Summary:     "Delete a board (owner only)",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *BoardIDInput) (*struct{}, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := loadBoard(ctx, store, input.ID, userID, accessOwner); err != nil {
			return nil, err
		}

		if err := store.Boards().Delete(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("board not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete board", err)
		}

		publish(ctx, events, domain.EventBoardDeleted, input.ID, input.ID, userID)
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-board-member",
		Method:      http.MethodPost,
		Path:        "/boards/{id}/members",
		Summary:     "Grant a registered user edit rights (owner only)",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *AddMemberInput) (*BoardOutput, error) {
		userID, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		b, err := loadBoard(ctx, store, input.ID, userID, accessOwner)
		if err != nil {
			return nil, err
		}

		member, err := store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Body.Email)))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("no user with that email")
			}
			return nil, huma.Error500InternalServerError("failed to look up user", err)
		}
		if b.IsOwner(member.ID) {
			return nil, huma.Error422UnprocessableEntity("the owner is already on the board")
		}

		if err := store.Boards().AddMember(ctx, b.ID, member.ID); err != nil {
			return nil, validationError(err, "failed to add member")
		}

		members, err := store.Boards().ListMembers(ctx, b.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list members", err)
		}
		b.Members = members
		if err := assembleBoard(ctx, store, b); err != nil {
			return nil, err
		}

		publish(ctx, events, domain.EventMemberAdded, b.ID, member.ID, userID)
		return &BoardOutput{Body: b}, nil
	})
}
