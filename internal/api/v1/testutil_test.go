package v1_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/taskflow/internal/auth"
	"github.com/gosuda/taskflow/internal/domain"
	"github.com/gosuda/taskflow/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the authenticated user for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	return middleware.WithUserID(context.Background(), userID)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users  domain.UserRepository
	boards domain.BoardRepository
	lists  domain.ListRepository
	cards  domain.CardRepository
}

func (m *mockDataStore) Users() domain.UserRepository   { return m.users }
func (m *mockDataStore) Boards() domain.BoardRepository { return m.boards }
func (m *mockDataStore) Lists() domain.ListRepository   { return m.lists }
func (m *mockDataStore) Cards() domain.CardRepository   { return m.cards }

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc     func(ctx context.Context, u *domain.User) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, email)
}

// ---------------------------------------------------------------------------
// Mock BoardRepository
// ---------------------------------------------------------------------------

type mockBoardRepo struct {
	createFunc      func(ctx context.Context, b *domain.Board) error
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	listForUserFunc func(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	deleteFunc      func(ctx context.Context, id uuid.UUID) error
	addMemberFunc   func(ctx context.Context, boardID, userID uuid.UUID) error
	listMembersFunc func(ctx context.Context, boardID uuid.UUID) ([]domain.UserRef, error)
}

func (m *mockBoardRepo) Create(ctx context.Context, b *domain.Board) error {
	return m.createFunc(ctx, b)
}

func (m *mockBoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockBoardRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	return m.listForUserFunc(ctx, userID)
}

func (m *mockBoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockBoardRepo) AddMember(ctx context.Context, boardID, userID uuid.UUID) error {
	return m.addMemberFunc(ctx, boardID, userID)
}

func (m *mockBoardRepo) ListMembers(ctx context.Context, boardID uuid.UUID) ([]domain.UserRef, error) {
	return m.listMembersFunc(ctx, boardID)
}

// ---------------------------------------------------------------------------
// Mock ListRepository
// ---------------------------------------------------------------------------

type mockListRepo struct {
	createFunc      func(ctx context.Context, l *domain.List) error
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.List, error)
	listByBoardFunc func(ctx context.Context, boardID uuid.UUID) ([]*domain.List, error)
	deleteFunc      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockListRepo) Create(ctx context.Context, l *domain.List) error {
	return m.createFunc(ctx, l)
}

func (m *mockListRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.List, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockListRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.List, error) {
	return m.listByBoardFunc(ctx, boardID)
}

func (m *mockListRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock CardRepository
// ---------------------------------------------------------------------------

type mockCardRepo struct {
	createFunc      func(ctx context.Context, c *domain.Card) error
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	listByBoardFunc func(ctx context.Context, boardID uuid.UUID) ([]*domain.Card, error)
	moveFunc        func(ctx context.Context, id, listID uuid.UUID) error
	deleteFunc      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCardRepo) Create(ctx context.Context, c *domain.Card) error {
	return m.createFunc(ctx, c)
}

func (m *mockCardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockCardRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Card, error) {
	return m.listByBoardFunc(ctx, boardID)
}

func (m *mockCardRepo) Move(ctx context.Context, id, listID uuid.UUID) error {
	return m.moveFunc(ctx, id, listID)
}

func (m *mockCardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, email, password, name string) (*domain.User, error)
	loginFunc        func(ctx context.Context, email, password string) (*auth.Tokens, error)
	issueTokensFunc  func(userID uuid.UUID) (*auth.Tokens, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
	getUserFunc      func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return m.registerFunc(ctx, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.Tokens, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) IssueTokens(userID uuid.UUID) (*auth.Tokens, error) {
	return m.issueTokensFunc(userID)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

func (m *mockAuthService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return m.getUserFunc(ctx, userID)
}

// ---------------------------------------------------------------------------
// Recording EventPublisher
// ---------------------------------------------------------------------------

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.BoardEvent
	err    error
}

func (p *recordingPublisher) PublishBoardEvent(_ context.Context, ev domain.BoardEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) published() []domain.BoardEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.BoardEvent(nil), p.events...)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// boardFixture is a board owned by owner with member on it.
type boardFixture struct {
	owner    domain.UserRef
	member   domain.UserRef
	stranger domain.UserRef
	board    *domain.Board
	todo     *domain.List
	done     *domain.List
	card     *domain.Card
}

func newBoardFixture() *boardFixture {
	f := &boardFixture{
		owner:    domain.UserRef{ID: uuid.New(), Name: "Alice"},
		member:   domain.UserRef{ID: uuid.New(), Name: "Bob"},
		stranger: domain.UserRef{ID: uuid.New(), Name: "Mallory"},
	}
	f.board = &domain.Board{
		ID:      uuid.New(),
		Title:   "Sprint",
		Owner:   f.owner,
		Members: []domain.UserRef{f.member},
	}
	f.todo = &domain.List{ID: uuid.New(), BoardID: f.board.ID, Title: "To Do", Cards: []*domain.Card{}}
	f.done = &domain.List{ID: uuid.New(), BoardID: f.board.ID, Title: "Done", Cards: []*domain.Card{}}
	f.card = &domain.Card{ID: uuid.New(), ListID: f.todo.ID, Title: "Write tests", Priority: domain.PriorityHigh}
	return f
}

// boards returns a repo serving a fresh copy of the fixture board.
func (f *boardFixture) boards() *mockBoardRepo {
	return &mockBoardRepo{
		getByIDFunc: func(_ context.Context, id uuid.UUID) (*domain.Board, error) {
			if id != f.board.ID {
				return nil, domain.ErrNotFound
			}
			return f.board.Clone(), nil
		},
	}
}

func (f *boardFixture) lists() *mockListRepo {
	return &mockListRepo{
		getByIDFunc: func(_ context.Context, id uuid.UUID) (*domain.List, error) {
			switch id {
			case f.todo.ID:
				return f.todo.Clone(), nil
			case f.done.ID:
				return f.done.Clone(), nil
			}
			return nil, domain.ErrNotFound
		},
		listByBoardFunc: func(_ context.Context, _ uuid.UUID) ([]*domain.List, error) {
			return []*domain.List{f.todo.Clone(), f.done.Clone()}, nil
		},
	}
}

func (f *boardFixture) cards() *mockCardRepo {
	return &mockCardRepo{
		getByIDFunc: func(_ context.Context, id uuid.UUID) (*domain.Card, error) {
			if id != f.card.ID {
				return nil, domain.ErrNotFound
			}
			return f.card.Clone(), nil
		},
		listByBoardFunc: func(_ context.Context, _ uuid.UUID) ([]*domain.Card, error) {
			return []*domain.Card{f.card.Clone()}, nil
		},
	}
}

func (f *boardFixture) store() *mockDataStore {
	return &mockDataStore{boards: f.boards(), lists: f.lists(), cards: f.cards()}
}
