package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/taskflow/internal/auth"
	"github.com/gosuda/taskflow/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Users() domain.UserRepository
	Boards() domain.BoardRepository
	Lists() domain.ListRepository
	Cards() domain.CardRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*auth.Tokens, error)
	IssueTokens(userID uuid.UUID) (*auth.Tokens, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// EventPublisher announces committed board changes.
// *redis.PubSub satisfies this interface.
type EventPublisher interface {
	PublishBoardEvent(ctx context.Context, ev domain.BoardEvent) error
}
