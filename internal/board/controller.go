// Package board owns the in-memory state of one open board and mediates every
// change to it through the remote service.
//
// All mutations are confirm-then-apply: the remote call is issued first and
// local state changes only after it succeeds. Commits happen under a single
// lock and always resolve ids against the current state, so interleaved
// in-flight actions never work on stale indices.
package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gosuda/taskflow/internal/domain"
	"github.com/gosuda/taskflow/internal/nav"
	"github.com/gosuda/taskflow/internal/remote"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusNotFound
	StatusLoadError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusNotFound:
		return "not_found"
	case StatusLoadError:
		return "load_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

var (
	ErrUnauthenticated = errors.New("board: not signed in")
	ErrClosed          = errors.New("board: session closed")
	ErrNotReady        = errors.New("board: board not loaded")

	errEmptyBoard = errors.New("board: service returned no board")
)

// maxRefetch bounds the refetches of one Load or Refresh that keep racing
// local commits.
const maxRefetch = 3

const (
	promptDeleteList = "Delete this list and all of its cards?"
	promptDeleteCard = "Delete this card?"
)

// Deps are the collaborators of a Controller.
type Deps struct {
	Remote    remote.Service
	Confirmer nav.Confirmer
	Navigator nav.Navigator
	User      *domain.UserRef // nil when nobody is signed in
	Logger    zerolog.Logger
}

// CardDraft is the input of the card creation form.
type CardDraft struct {
	Title       string
	Description string
	Priority    domain.Priority
}

// Snapshot is an immutable view of the controller state. Board is a deep copy
// and may be freely read by renderers.
type Snapshot struct {
	Version uint64
	Status  Status
	Board   *domain.Board
	CanEdit bool
	Err     error // load failure, set in StatusLoadError
}

// Controller is the single owner of one board's state for the lifetime of a
// view. It is safe for concurrent use.
type Controller struct {
	id        uuid.UUID
	remote    remote.Service
	confirm   nav.Confirmer
	navigator nav.Navigator
	user      *domain.UserRef
	log       zerolog.Logger

	mu      sync.Mutex
	status  Status
	board   *domain.Board
	loadErr error
	version uint64
	closed  bool
	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates a Controller for the board with the given id. Nothing is
// fetched until Load.
func New(id uuid.UUID, deps Deps) *Controller {
	if deps.Confirmer == nil {
		deps.Confirmer = nav.Never
	}
	if deps.Navigator == nil {
		deps.Navigator = nav.Discard
	}
	return &Controller{
		id:        id,
		remote:    deps.Remote,
		confirm:   deps.Confirmer,
		navigator: deps.Navigator,
		user:      deps.User,
		log:       deps.Logger.With().Str("board_id", id.String()).Logger(),
		subs:      make(map[int]func(Snapshot)),
	}
}

// ID returns the id of the board this controller was created for.
func (c *Controller) ID() uuid.UUID { return c.id }

// Status returns the current session state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// CanEdit reports whether the current user may mutate the board. It is
// evaluated against the live board on every call.
func (c *Controller) CanEdit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canEditLocked()
}

func (c *Controller) canEditLocked() bool {
	return c.user != nil && c.board.CanEdit(c.user.ID)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Version: c.version,
		Status:  c.status,
		Board:   c.board.Clone(),
		CanEdit: c.canEditLocked(),
		Err:     c.loadErr,
	}
}

// Subscribe registers fn to receive a snapshot after every state change. The
// returned function removes the subscription. Snapshots may arrive out of
// order from concurrent commits; compare Version.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Close ends the session. Completions of calls still in flight become no-ops
// and later actions fail with ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	clear(c.subs)
}

// Load fetches the board. Without a signed-in user it navigates to the login
// view and fetches nothing.
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
	c.status = StatusLoading
	c.loadErr = nil
	c.board = nil
	c.version++
	since := c.version
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()
	publish(subs, snap)

	return c.fetch(ctx, since)
}

// Refresh refetches the board and replaces local state wholesale. When the
// board is already loaded a failed refetch keeps the current state.
func (c *Controller) Refresh(ctx context.Context) error {
	switch c.Status() {
	case StatusReady:
	case StatusNotFound:
		return fmt.Errorf("board.Refresh: %w", domain.ErrNotFound)
	default:
		return c.Load(ctx)
	}

	return c.fetch(ctx, c.currentVersion())
}

// fetch gets the board and commits it. A board fetched before a later local
// commit would undo that commit, so it is discarded and fetched again.
func (c *Controller) fetch(ctx context.Context, since uint64) error {
	for range maxRefetch {
		b, err := c.remote.GetBoard(ctx, c.id)
		stale, now, err := c.commitFetch(b, err, since)
		if !stale {
			return err
		}
		since = now
	}
	c.log.Warn().Msg("board: board kept changing during refetch, keeping local state")
	return nil
}

func (c *Controller) currentVersion() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// commitFetch applies a fetch issued at version since. It reports stale, with
// the current version, when a commit landed while the fetch was in flight.
func (c *Controller) commitFetch(b *domain.Board, fetchErr error, since uint64) (bool, uint64, error) {
	if fetchErr == nil && b == nil {
		fetchErr = errEmptyBoard
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Debug().Msg("board: fetch completed after close, dropped")
		return false, 0, nil
	}
	if fetchErr == nil && c.status == StatusReady && c.version != since {
		now := c.version
		c.mu.Unlock()
		c.log.Debug().Uint64("since", since).Uint64("now", now).Msg("board: stale fetch discarded")
		return true, now, nil
	}

	var notFound bool
	switch {
	case fetchErr == nil:
		if b.Lists == nil {
			b.Lists = []*domain.List{}
		}
		c.board = b
		c.status = StatusReady
		c.loadErr = nil
	case errors.Is(fetchErr, domain.ErrNotFound):
		c.board = nil
		c.status = StatusNotFound
		notFound = true
	case c.status == StatusReady:
		// Refresh failure: the loaded board stays authoritative.
	default:
		c.board = nil
		c.status = StatusLoadError
		c.loadErr = fetchErr
	}
	c.version++
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()

	publish(subs, snap)

	if notFound {
		c.log.Info().Msg("board: not found, leaving view")
		c.navigator.Navigate(nav.Dashboard())
	}
	if fetchErr != nil {
		if !notFound {
			c.log.Error().Err(fetchErr).Msg("board: fetch failed")
		}
		return false, 0, fmt.Errorf("board.Load: %w", fetchErr)
	}
	return false, 0, nil
}

// CreateList creates a list on the remote and appends it once the service
// returns it with its id.
func (c *Controller) CreateList(ctx context.Context, title string) error {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return err
	}
	if err := c.ready(); err != nil {
		return err
	}

	l, err := c.remote.CreateList(ctx, remote.CreateListRequest{Title: title, BoardID: c.id})
	if err != nil {
		c.log.Error().Err(err).Str("title", title).Msg("board: create list failed")
		return fmt.Errorf("board.CreateList: %w", err)
	}

	c.commit(func(b *domain.Board) bool {
		b.AppendList(l)
		return true
	})
	return nil
}

// CreateCard creates a card on the remote and appends it to the end of its
// list once confirmed.
func (c *Controller) CreateCard(ctx context.Context, listID uuid.UUID, draft CardDraft) error {
	title, err := domain.NormalizeTitle(draft.Title)
	if err != nil {
		return err
	}
	priority := draft.Priority
	if priority == "" {
		priority = domain.DefaultPriority
	}
	if !priority.Valid() {
		return fmt.Errorf("board.CreateCard: %w", domain.ErrInvalidPriority)
	}
	if err := c.ready(); err != nil {
		return err
	}

	card, err := c.remote.CreateCard(ctx, remote.CreateCardRequest{
		Title:       title,
		Description: draft.Description,
		Priority:    priority,
		ListID:      listID,
	})
	if err != nil {
		c.log.Error().Err(err).Str("list_id", listID.String()).Msg("board: create card failed")
		return fmt.Errorf("board.CreateCard: %w", err)
	}

	c.commit(func(b *domain.Board) bool {
		if err := b.AppendCard(listID, card); err != nil {
			// The list was deleted while the call was in flight.
			c.log.Warn().Err(err).Str("card_id", card.ID.String()).Msg("board: created card has no list, refresh needed")
			return false
		}
		return true
	})
	return nil
}

// MoveCard moves a card to the end of another list. The remote move is
// issued first; local membership changes only after it succeeds, resolved
// against the state current at that moment. Moving a card to the list that
// already holds it does nothing.
func (c *Controller) MoveCard(ctx context.Context, cardID, targetListID uuid.UUID) error {
	c.mu.Lock()
	if err := c.readyLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	li, _, found := c.board.FindCard(cardID)
	_, targetFound := c.board.FindList(targetListID)
	sameList := found && c.board.Lists[li].ID == targetListID
	c.mu.Unlock()

	switch {
	case !found:
		return fmt.Errorf("board.MoveCard: card %s: %w", cardID, domain.ErrNotFound)
	case !targetFound:
		return fmt.Errorf("board.MoveCard: list %s: %w", targetListID, domain.ErrNotFound)
	case sameList:
		return nil
	}

	err := c.remote.MoveCard(ctx, remote.MoveCardRequest{CardID: cardID, NewListID: targetListID})
	if err != nil {
		c.log.Error().Err(err).
			Str("card_id", cardID.String()).
			Str("target_list_id", targetListID.String()).
			Msg("board: move card failed")
		return fmt.Errorf("board.MoveCard: %w", err)
	}

	c.commit(func(b *domain.Board) bool {
		if err := b.MoveCard(cardID, targetListID); err != nil {
			c.log.Warn().Err(err).Str("card_id", cardID.String()).Msg("board: moved card vanished locally, refresh needed")
			return false
		}
		return true
	})
	return nil
}

// DeleteList asks for confirmation, deletes the list remotely and then
// removes it locally. A declined prompt is not an error.
func (c *Controller) DeleteList(ctx context.Context, listID uuid.UUID) error {
	if err := c.ready(); err != nil {
		return err
	}
	if !c.confirm.Confirm(ctx, promptDeleteList) {
		return nil
	}

	if err := c.remote.DeleteList(ctx, listID); err != nil {
		c.log.Error().Err(err).Str("list_id", listID.String()).Msg("board: delete list failed")
		return fmt.Errorf("board.DeleteList: %w", err)
	}

	c.commit(func(b *domain.Board) bool { return b.RemoveList(listID) })
	return nil
}

// DeleteCard asks for confirmation, deletes the card remotely and then
// removes it from whichever list currently holds it.
func (c *Controller) DeleteCard(ctx context.Context, cardID uuid.UUID) error {
	if err := c.ready(); err != nil {
		return err
	}
	if !c.confirm.Confirm(ctx, promptDeleteCard) {
		return nil
	}

	if err := c.remote.DeleteCard(ctx, cardID); err != nil {
		c.log.Error().Err(err).Str("card_id", cardID.String()).Msg("board: delete card failed")
		return fmt.Errorf("board.DeleteCard: %w", err)
	}

	c.commit(func(b *domain.Board) bool { return b.RemoveCard(cardID) })
	return nil
}

// Follow refetches the board whenever another user changes it. It returns
// when ctx is done or the event stream ends.
func (c *Controller) Follow(ctx context.Context, w remote.Watcher) error {
	events, err := w.WatchBoard(ctx, c.id)
	if err != nil {
		return fmt.Errorf("board.Follow: %w", err)
	}

	for ev := range events {
		if c.user != nil && ev.ActorID == c.user.ID {
			continue
		}
		c.log.Debug().Str("event", string(ev.Type)).Msg("board: remote change, refetching")
		if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
			c.log.Warn().Err(err).Msg("board: refetch after remote change failed")
		}
	}
	return ctx.Err()
}

// commit applies fn to the live board under the lock. It is a no-op once the
// session is closed or when no board is loaded.
func (c *Controller) commit(fn func(b *domain.Board) bool) {
	c.mu.Lock()
	if c.closed || c.board == nil {
		c.mu.Unlock()
		c.log.Debug().Msg("board: completion after close, dropped")
		return
	}
	if !fn(c.board) {
		c.mu.Unlock()
		return
	}
	c.version++
	snap, subs := c.snapshotLocked(), c.subscribersLocked()
	c.mu.Unlock()

	publish(subs, snap)
}

func (c *Controller) ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readyLocked()
}

func (c *Controller) readyLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.status != StatusReady {
		return ErrNotReady
	}
	return nil
}

func (c *Controller) subscribersLocked() []func(Snapshot) {
	if c.closed || len(c.subs) == 0 {
		return nil
	}
	out := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

func publish(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
