// Package dashboard owns the signed-in user's collection of boards.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gosuda/taskflow/internal/domain"
	"github.com/gosuda/taskflow/internal/nav"
	"github.com/gosuda/taskflow/internal/remote"
)

var (
	ErrUnauthenticated = errors.New("dashboard: not signed in")
	ErrClosed          = errors.New("dashboard: session closed")
)

const promptDeleteBoard = "Delete this board? This cannot be undone."

type Deps struct {
	Remote    remote.Service
	Confirmer nav.Confirmer
	Navigator nav.Navigator
	User      *domain.UserRef
	Logger    zerolog.Logger
}

// Controller follows the same confirm-then-apply rules as the board
// controller: the collection changes only after the remote acknowledges.
type Controller struct {
	remote    remote.Service
	confirm   nav.Confirmer
	navigator nav.Navigator
	user      *domain.UserRef
	log       zerolog.Logger

	mu       sync.Mutex
	boards   []*domain.Board
	loaded   bool
	loading  bool
	closed   bool
	onChange func()
}

func New(deps Deps) *Controller {
	if deps.Confirmer == nil {
		deps.Confirmer = nav.Never
	}
	if deps.Navigator == nil {
		deps.Navigator = nav.Discard
	}
	return &Controller{
		remote:    deps.Remote,
		confirm:   deps.Confirmer,
		navigator: deps.Navigator,
		user:      deps.User,
		log:       deps.Logger,
	}
}

// OnChange registers fn to run after every change of the collection.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Load fetches the user's boards. Without a signed-in user it navigates to
// the login view before fetching anything. A failed fetch leaves Loaded
// false; the collection is unknown, not empty.
func (c *Controller) Load(ctx context.Context) error {
	if c.user == nil {
		c.navigator.Navigate(nav.Login())
		return ErrUnauthenticated
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.loading = true
	c.mu.Unlock()

	boards, err := c.remote.ListBoards(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.loading = false
	if err == nil {
		c.boards = boards
		c.loaded = true
	}
	notify := c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
	if err != nil {
		c.log.Error().Err(err).Msg("dashboard: load failed")
		return fmt.Errorf("dashboard.Load: %w", err)
	}
	return nil
}

// Create creates a board owned by the current user and appends it.
func (c *Controller) Create(ctx context.Context, title, description string) (*domain.Board, error) {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if err := c.open(); err != nil {
		return nil, err
	}

	b, err := c.remote.CreateBoard(ctx, remote.CreateBoardRequest{
		Title:       title,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		c.log.Error().Err(err).Str("title", title).Msg("dashboard: create board failed")
		return nil, fmt.Errorf("dashboard.Create: %w", err)
	}

	c.apply(func() { c.boards = append(c.boards, b) })
	return b, nil
}

// Delete asks for confirmation, deletes the board remotely and removes it
// locally. A declined prompt is not an error and changes nothing.
func (c *Controller) Delete(ctx context.Context, boardID uuid.UUID) error {
	if err := c.open(); err != nil {
		return err
	}
	if !c.confirm.Confirm(ctx, promptDeleteBoard) {
		return nil
	}

	if err := c.remote.DeleteBoard(ctx, boardID); err != nil {
		c.log.Error().Err(err).Str("board_id", boardID.String()).Msg("dashboard: delete board failed")
		return fmt.Errorf("dashboard.Delete: %w", err)
	}

	c.apply(func() {
		c.boards = slices.DeleteFunc(c.boards, func(b *domain.Board) bool { return b.ID == boardID })
	})
	return nil
}

// Boards returns a copy of the collection in server order.
func (c *Controller) Boards() []*domain.Board {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*domain.Board, 0, len(c.boards))
	for _, b := range c.boards {
		out = append(out, b.Clone())
	}
	return out
}

// Loaded reports whether a fetch has succeeded.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Loading reports whether a fetch is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// CanDelete reports whether the current user owns b.
func (c *Controller) CanDelete(b *domain.Board) bool {
	return c.user != nil && b.IsOwner(c.user.ID)
}

// Open navigates to the board view.
func (c *Controller) Open(boardID uuid.UUID) {
	c.navigator.Navigate(nav.Board(boardID))
}

// Close ends the session. Completions still in flight become no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.onChange = nil
}

func (c *Controller) open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Controller) apply(fn func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Debug().Msg("dashboard: completion after close, dropped")
		return
	}
	fn()
	notify := c.onChange
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
}
