package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/taskflow/internal/auth"
	"github.com/gosuda/taskflow/internal/domain"
)

// mockUserRepo is a configurable domain.UserRepository.
type mockUserRepo struct {
	getByEmailUser *domain.User
	getByEmailErr  error

	getByIDUser *domain.User
	getByIDErr  error

	createErr   error
	createdUser *domain.User
}

func (m *mockUserRepo) Create(_ context.Context, u *domain.User) error {
	m.createdUser = u
	return m.createErr
}

func (m *mockUserRepo) GetByID(context.Context, uuid.UUID) (*domain.User, error) {
	return m.getByIDUser, m.getByIDErr
}

func (m *mockUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return m.getByEmailUser, m.getByEmailErr
}

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testEmail     = "alice@example.com"
	testPassword  = "correct-horse-battery-staple"
	testUserName  = "Alice"
)

func newTestService(repo *mockUserRepo) *auth.Service {
	return auth.NewService(repo, testJWTSecret, 15*time.Minute, 7*24*time.Hour)
}

// registered returns the stored form of a freshly registered user.
func registered(t *testing.T) *domain.User {
	t.Helper()

	repo := &mockUserRepo{getByEmailErr: domain.ErrNotFound}
	_, err := newTestService(repo).Register(t.Context(), testEmail, testPassword, testUserName)
	require.NoError(t, err)
	require.NotNil(t, repo.createdUser)
	return repo.createdUser
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("happy_path_hashes_password", func(t *testing.T) {
		t.Parallel()

		repo := &mockUserRepo{getByEmailErr: domain.ErrNotFound}
		user, err := newTestService(repo).Register(t.Context(), "  Alice@Example.com ", testPassword, testUserName)

		require.NoError(t, err)
		assert.Equal(t, testEmail, user.Email)
		assert.Equal(t, testUserName, user.Name)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.False(t, user.CreatedAt.IsZero())
		assert.NotEqual(t, testPassword, user.PasswordHash)
		assert.Contains(t, user.PasswordHash, "$")
		assert.Same(t, user, repo.createdUser)
	})

	t.Run("name_defaults_to_email_local_part", func(t *testing.T) {
		t.Parallel()

		repo := &mockUserRepo{getByEmailErr: domain.ErrNotFound}
		user, err := newTestService(repo).Register(t.Context(), testEmail, testPassword, " ")

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Name)
	})

	tests := []struct {
		name     string
		repo     *mockUserRepo
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "existing_user",
			repo:     &mockUserRepo{getByEmailUser: &domain.User{ID: uuid.New(), Email: testEmail}},
			email:    testEmail,
			password: testPassword,
			wantErr:  auth.ErrUserAlreadyExists,
		},
		{
			name:     "unique_violation_on_create",
			repo:     &mockUserRepo{getByEmailErr: domain.ErrNotFound, createErr: domain.ErrConflict},
			email:    testEmail,
			password: testPassword,
			wantErr:  auth.ErrUserAlreadyExists,
		},
		{
			name:     "invalid_email",
			repo:     &mockUserRepo{},
			email:    "not-an-email",
			password: testPassword,
			wantErr:  auth.ErrInvalidEmail,
		},
		{
			name:     "short_password",
			repo:     &mockUserRepo{},
			email:    testEmail,
			password: "short",
			wantErr:  auth.ErrWeakPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, err := newTestService(tt.repo).Register(t.Context(), tt.email, tt.password, testUserName)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("repo_error_is_propagated", func(t *testing.T) {
		t.Parallel()

		repoErr := errors.New("database connection refused")
		repo := &mockUserRepo{getByEmailErr: domain.ErrNotFound, createErr: repoErr}
		_, err := newTestService(repo).Register(t.Context(), testEmail, testPassword, testUserName)
		assert.ErrorIs(t, err, repoErr)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	user := registered(t)

	t.Run("returns_valid_token_pair", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(&mockUserRepo{getByEmailUser: user})
		tokens, err := svc.Login(t.Context(), testEmail, testPassword)
		require.NoError(t, err)

		access, err := auth.ValidateToken(testJWTSecret, tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), access.UserID)
		assert.Equal(t, "access", access.TokenType)

		refresh, err := auth.ValidateToken(testJWTSecret, tokens.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "refresh", refresh.TokenType)
	})

	t.Run("wrong_password", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(&mockUserRepo{getByEmailUser: user})
		_, err := svc.Login(t.Context(), testEmail, "wrong-password")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown_email", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(&mockUserRepo{getByEmailErr: domain.ErrNotFound})
		_, err := svc.Login(t.Context(), "bob@example.com", testPassword)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("corrupt_hash", func(t *testing.T) {
		t.Parallel()

		broken := *user
		broken.PasswordHash = "zz$zz"
		svc := newTestService(&mockUserRepo{getByEmailUser: &broken})
		_, err := svc.Login(t.Context(), testEmail, testPassword)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	user := registered(t)
	tokens, err := newTestService(&mockUserRepo{}).IssueTokens(user.ID)
	require.NoError(t, err)

	t.Run("issues_new_access_token", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(&mockUserRepo{getByIDUser: user})
		access, err := svc.RefreshToken(t.Context(), tokens.RefreshToken)
		require.NoError(t, err)

		claims, err := auth.ValidateToken(testJWTSecret, access)
		require.NoError(t, err)
		assert.Equal(t, "access", claims.TokenType)
	})

	t.Run("rejects_access_token", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(&mockUserRepo{getByIDUser: user})
		_, err := svc.RefreshToken(t.Context(), tokens.AccessToken)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("deleted_user", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(&mockUserRepo{getByIDErr: domain.ErrNotFound})
		_, err := svc.RefreshToken(t.Context(), tokens.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}
