package board_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/taskflow/internal/board"
	"github.com/gosuda/taskflow/internal/domain"
	"github.com/gosuda/taskflow/internal/nav"
	"github.com/gosuda/taskflow/internal/remote"
)

type navRoute = nav.Route

var errNetwork = errors.New("network: connection reset")

// confirmCounter answers every prompt with answer and counts prompts.
type confirmCounter struct {
	mu      sync.Mutex
	answer  bool
	prompts int
}

func (c *confirmCounter) Confirm(_ context.Context, _ string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts++
	return c.answer
}

func newController(t *testing.T, s *scenario, rm *mockRemote, opts ...func(*board.Deps)) (*board.Controller, *recordingNavigator) {
	t.Helper()

	navigator := &recordingNavigator{}
	deps := board.Deps{
		Remote:    rm,
		Confirmer: nav.Always,
		Navigator: navigator,
		User:      &s.owner,
		Logger:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(&deps)
	}
	return board.New(s.board.ID, deps), navigator
}

// loaded returns a controller already in StatusReady.
func loaded(t *testing.T, s *scenario, rm *mockRemote, opts ...func(*board.Deps)) *board.Controller {
	t.Helper()

	if rm.getBoardFunc == nil {
		rm.getBoardFunc = s.getBoard
	}
	c, _ := newController(t, s, rm, opts...)
	require.NoError(t, c.Load(context.Background()))
	require.Equal(t, board.StatusReady, c.Status())
	return c
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestController_Load(t *testing.T) {
	t.Parallel()

	t.Run("ready_on_success", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t, getBoardFunc: s.getBoard}
		c, _ := newController(t, s, rm)

		assert.Equal(t, board.StatusIdle, c.Status())
		require.NoError(t, c.Load(context.Background()))

		snap := c.Snapshot()
		assert.Equal(t, board.StatusReady, snap.Status)
		require.NotNil(t, snap.Board)
		assert.Equal(t, []uuid.UUID{s.card1, s.card2}, cardsOf(t, snap.Board, s.listA))
		assert.True(t, snap.CanEdit)
	})

	t.Run("not_found_navigates_to_dashboard", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t, getBoardFunc: func(context.Context, uuid.UUID) (*domain.Board, error) {
			return nil, domain.ErrNotFound
		}}
		c, navigator := newController(t, s, rm)

		err := c.Load(context.Background())
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, board.StatusNotFound, c.Status())
		assert.Equal(t, []string{"dashboard"}, navigator.Routes())
		assert.Nil(t, c.Snapshot().Board)
	})

	t.Run("other_failure_is_load_error", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t, getBoardFunc: func(context.Context, uuid.UUID) (*domain.Board, error) {
			return nil, errNetwork
		}}
		c, navigator := newController(t, s, rm)

		err := c.Load(context.Background())
		require.ErrorIs(t, err, errNetwork)

		snap := c.Snapshot()
		assert.Equal(t, board.StatusLoadError, snap.Status)
		assert.Nil(t, snap.Board)
		assert.ErrorIs(t, snap.Err, errNetwork)
		assert.Empty(t, navigator.Routes())
	})

	t.Run("signed_out_redirects_without_fetch", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t}
		c, navigator := newController(t, s, rm, func(d *board.Deps) { d.User = nil })

		err := c.Load(context.Background())
		require.ErrorIs(t, err, board.ErrUnauthenticated)
		assert.Equal(t, []string{"login"}, navigator.Routes())
		assert.Empty(t, rm.Calls())
		assert.Equal(t, board.StatusIdle, c.Status())
	})

	t.Run("actions_before_load_make_no_calls", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t}
		c, _ := newController(t, s, rm)

		require.ErrorIs(t, c.CreateList(context.Background(), "x"), board.ErrNotReady)
		require.ErrorIs(t, c.MoveCard(context.Background(), s.card1, s.listB), board.ErrNotReady)
		require.ErrorIs(t, c.DeleteCard(context.Background(), s.card1), board.ErrNotReady)
		assert.Empty(t, rm.Calls())
	})
}

func TestController_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("failure_keeps_loaded_board", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t}
		c := loaded(t, s, rm)

		rm.getBoardFunc = func(context.Context, uuid.UUID) (*domain.Board, error) { return nil, errNetwork }
		err := c.Refresh(context.Background())
		require.ErrorIs(t, err, errNetwork)

		snap := c.Snapshot()
		assert.Equal(t, board.StatusReady, snap.Status)
		assert.Equal(t, []uuid.UUID{s.card1, s.card2}, cardsOf(t, snap.Board, s.listA))
	})

	t.Run("success_replaces_wholesale", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t}
		c := loaded(t, s, rm)

		// Another user moved Card2 to B.
		require.NoError(t, s.server.MoveCard(s.card2, s.listB))
		rm.getBoardFunc = s.getBoard

		require.NoError(t, c.Refresh(context.Background()))
		snap := c.Snapshot()
		assert.Equal(t, []uuid.UUID{s.card1}, cardsOf(t, snap.Board, s.listA))
		assert.Equal(t, []uuid.UUID{s.card2}, cardsOf(t, snap.Board, s.listB))
	})

	t.Run("load_error_retries_as_load", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t, getBoardFunc: func(context.Context, uuid.UUID) (*domain.Board, error) {
			return nil, errNetwork
		}}
		c, _ := newController(t, s, rm)
		require.Error(t, c.Load(context.Background()))

		rm.getBoardFunc = s.getBoard
		require.NoError(t, c.Refresh(context.Background()))
		assert.Equal(t, board.StatusReady, c.Status())
	})

	t.Run("board_deleted_elsewhere", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t}
		navigator := &recordingNavigator{}
		c := loaded(t, s, rm, func(d *board.Deps) { d.Navigator = navigator })

		rm.getBoardFunc = func(context.Context, uuid.UUID) (*domain.Board, error) { return nil, domain.ErrNotFound }
		require.ErrorIs(t, c.Refresh(context.Background()), domain.ErrNotFound)
		assert.Equal(t, board.StatusNotFound, c.Status())
		assert.Equal(t, []string{"dashboard"}, navigator.Routes())
	})
}

// ---------------------------------------------------------------------------
// MoveCard
// ---------------------------------------------------------------------------

func TestController_MoveCard(t *testing.T) {
	t.Parallel()

	t.Run("success_applies_after_confirmation", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		var got remote.MoveCardRequest
		rm := &mockRemote{t: t, moveCardFunc: func(_ context.Context, req remote.MoveCardRequest) error {
			got = req
			return nil
		}}
		c := loaded(t, s, rm)

		require.NoError(t, c.MoveCard(context.Background(), s.card1, s.listB))

		assert.Equal(t, remote.MoveCardRequest{CardID: s.card1, NewListID: s.listB}, got)
		snap := c.Snapshot()
		assert.Equal(t, []uuid.UUID{s.card2}, cardsOf(t, snap.Board, s.listA))
		assert.Equal(t, []uuid.UUID{s.card1}, cardsOf(t, snap.Board, s.listB))

		bi, _ := snap.Board.FindList(s.listB)
		assert.Equal(t, s.listB, snap.Board.Lists[bi].Cards[0].ListID)
	})

	t.Run("failure_leaves_state_untouched", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t, moveCardFunc: func(context.Context, remote.MoveCardRequest) error {
			return errNetwork
		}}
		c := loaded(t, s, rm)
		before := c.Snapshot()

		err := c.MoveCard(context.Background(), s.card1, s.listB)
		require.ErrorIs(t, err, errNetwork)

		snap := c.Snapshot()
		assert.Equal(t, board.StatusReady, snap.Status)
		assert.Equal(t, []uuid.UUID{s.card1, s.card2}, cardsOf(t, snap.Board, s.listA))
		assert.Empty(t, cardsOf(t, snap.Board, s.listB))
		assert.Equal(t, before.Version, snap.Version)
	})

	t.Run("same_list_makes_no_call", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t}
		c := loaded(t, s, rm)

		require.NoError(t, c.MoveCard(context.Background(), s.card2, s.listA))
		assert.Equal(t, []string{"GetBoard"}, rm.Calls())
		assert.Equal(t, []uuid.UUID{s.card1, s.card2}, cardsOf(t, c.Snapshot().Board, s.listA))
	})

	t.Run("unknown_ids_make_no_call", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t}
		c := loaded(t, s, rm)

		require.ErrorIs(t, c.MoveCard(context.Background(), uuid.New(), s.listB), domain.ErrNotFound)
		require.ErrorIs(t, c.MoveCard(context.Background(), s.card1, uuid.New()), domain.ErrNotFound)
		assert.Equal(t, []string{"GetBoard"}, rm.Calls())
	})

	t.Run("nothing_is_visible_before_confirmation", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		entered := make(chan struct{})
		release := make(chan struct{})
		rm := &mockRemote{t: t, moveCardFunc: func(context.Context, remote.MoveCardRequest) error {
			close(entered)
			<-release
			return nil
		}}
		c := loaded(t, s, rm)

		done := make(chan error, 1)
		go func() { done <- c.MoveCard(context.Background(), s.card1, s.listB) }()

		<-entered
		mid := c.Snapshot()
		assert.Equal(t, []uuid.UUID{s.card1, s.card2}, cardsOf(t, mid.Board, s.listA))
		assert.Empty(t, cardsOf(t, mid.Board, s.listB))

		close(release)
		require.NoError(t, <-done)
		assert.Equal(t, []uuid.UUID{s.card1}, cardsOf(t, c.Snapshot().Board, s.listB))
	})
}

func TestController_MoveCard_InterleavedCommitsInArrivalOrder(t *testing.T) {
	t.Parallel()

	s := newScenario(t)

	gates := map[uuid.UUID]chan struct{}{
		s.card1: make(chan struct{}),
		s.card2: make(chan struct{}),
	}
	var started sync.WaitGroup
	started.Add(2)
	rm := &mockRemote{t: t, moveCardFunc: func(_ context.Context, req remote.MoveCardRequest) error {
		started.Done()
		<-gates[req.CardID]
		return nil
	}}
	c := loaded(t, s, rm)

	first := make(chan error, 1)
	second := make(chan error, 1)
	go func() { first <- c.MoveCard(context.Background(), s.card1, s.listB) }()
	go func() { second <- c.MoveCard(context.Background(), s.card2, s.listB) }()
	started.Wait()

	// The later-issued move confirms first.
	close(gates[s.card2])
	require.NoError(t, <-second)
	assert.Equal(t, []uuid.UUID{s.card1}, cardsOf(t, c.Snapshot().Board, s.listA))
	assert.Equal(t, []uuid.UUID{s.card2}, cardsOf(t, c.Snapshot().Board, s.listB))

	close(gates[s.card1])
	require.NoError(t, <-first)

	snap := c.Snapshot()
	assert.Empty(t, cardsOf(t, snap.Board, s.listA))
	assert.Equal(t, []uuid.UUID{s.card2, s.card1}, cardsOf(t, snap.Board, s.listB))
	assert.Equal(t, 2, snap.Board.CardCount(), "no card is lost or duplicated")
}

func TestController_Refresh_StartedBeforeConfirmedMove(t *testing.T) {
	t.Parallel()

	s := newScenario(t)
	moved := s.server.Clone()
	require.NoError(t, moved.MoveCard(s.card1, s.listB))

	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		mu   sync.Mutex
		gets int
	)
	rm := &mockRemote{t: t, moveCardFunc: func(context.Context, remote.MoveCardRequest) error { return nil }}
	c := loaded(t, s, rm)

	// The first refetch reads the board before the move lands on the server
	// and returns after it is confirmed; the next one sees the move.
	rm.getBoardFunc = func(context.Context, uuid.UUID) (*domain.Board, error) {
		mu.Lock()
		gets++
		n := gets
		mu.Unlock()
		if n == 1 {
			before := s.server.Clone()
			close(entered)
			<-release
			return before, nil
		}
		return moved.Clone(), nil
	}

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-entered

	require.NoError(t, c.MoveCard(context.Background(), s.card1, s.listB))
	close(release)
	require.NoError(t, <-done)

	snap := c.Snapshot()
	assert.Equal(t, []uuid.UUID{s.card2}, cardsOf(t, snap.Board, s.listA))
	assert.Equal(t, []uuid.UUID{s.card1}, cardsOf(t, snap.Board, s.listB), "a confirmed move must survive an older refetch")
	assert.Equal(t, 2, snap.Board.CardCount())

	mu.Lock()
	assert.Equal(t, 2, gets, "the stale board is fetched again")
	mu.Unlock()
}

func TestController_FetchWithoutBoard(t *testing.T) {
	t.Parallel()

	empty := func(context.Context, uuid.UUID) (*domain.Board, error) { return nil, nil }

	t.Run("load_fails", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		c, _ := newController(t, s, &mockRemote{t: t, getBoardFunc: empty})

		require.NotPanics(t, func() {
			assert.Error(t, c.Load(context.Background()))
		})
		snap := c.Snapshot()
		assert.Equal(t, board.StatusLoadError, snap.Status)
		assert.Nil(t, snap.Board)
	})

	t.Run("refresh_keeps_loaded_board", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t}
		c := loaded(t, s, rm)

		rm.getBoardFunc = empty
		require.NotPanics(t, func() {
			assert.Error(t, c.Refresh(context.Background()))
		})
		snap := c.Snapshot()
		assert.Equal(t, board.StatusReady, snap.Status)
		assert.Equal(t, []uuid.UUID{s.card1, s.card2}, cardsOf(t, snap.Board, s.listA))
	})
}

func TestController_MoveCard_CardDeletedWhileInFlight(t *testing.T) {
	t.Parallel()

	s := newScenario(t)
	release := make(chan struct{})
	entered := make(chan struct{})
	rm := &mockRemote{
		t: t,
		moveCardFunc: func(context.Context, remote.MoveCardRequest) error {
			close(entered)
			<-release
			return nil
		},
		deleteCardFunc: func(context.Context, uuid.UUID) error { return nil },
	}
	c := loaded(t, s, rm)

	done := make(chan error, 1)
	go func() { done <- c.MoveCard(context.Background(), s.card1, s.listB) }()
	<-entered

	require.NoError(t, c.DeleteCard(context.Background(), s.card1))
	close(release)
	require.NoError(t, <-done)

	snap := c.Snapshot()
	assert.Equal(t, []uuid.UUID{s.card2}, cardsOf(t, snap.Board, s.listA))
	assert.Empty(t, cardsOf(t, snap.Board, s.listB), "a deleted card must not reappear")
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestController_CreateList(t *testing.T) {
	t.Parallel()

	t.Run("appends_server_list_with_empty_cards", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		newID := uuid.New()
		rm := &mockRemote{t: t, createListFunc: func(_ context.Context, req remote.CreateListRequest) (*domain.List, error) {
			assert.Equal(t, "Done", req.Title)
			assert.Equal(t, s.board.ID, req.BoardID)
			return &domain.List{ID: newID, BoardID: req.BoardID, Title: req.Title}, nil
		}}
		c := loaded(t, s, rm)

		require.NoError(t, c.CreateList(context.Background(), "  Done "))

		snap := c.Snapshot()
		require.Len(t, snap.Board.Lists, 3)
		last := snap.Board.Lists[2]
		assert.Equal(t, newID, last.ID)
		assert.NotNil(t, last.Cards)
		assert.Empty(t, last.Cards)
	})

	t.Run("empty_title_makes_no_call", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t}
		c := loaded(t, s, rm)
		before := c.Snapshot()

		require.ErrorIs(t, c.CreateList(context.Background(), "   "), domain.ErrEmptyTitle)
		assert.Equal(t, []string{"GetBoard"}, rm.Calls())
		assert.Equal(t, before, c.Snapshot())
	})

	t.Run("failure_changes_nothing", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t, createListFunc: func(context.Context, remote.CreateListRequest) (*domain.List, error) {
			return nil, domain.ErrForbidden
		}}
		c := loaded(t, s, rm)

		require.ErrorIs(t, c.CreateList(context.Background(), "Done"), domain.ErrForbidden)
		assert.Len(t, c.Snapshot().Board.Lists, 2)
		assert.Equal(t, board.StatusReady, c.Status())
	})
}

func TestController_CreateCard(t *testing.T) {
	t.Parallel()

	t.Run("appends_at_end", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		newID := uuid.New()
		rm := &mockRemote{t: t, createCardFunc: func(_ context.Context, req remote.CreateCardRequest) (*domain.Card, error) {
			assert.Equal(t, domain.PriorityMedium, req.Priority)
			assert.Equal(t, "Card3", req.Title)
			return &domain.Card{ID: newID, ListID: req.ListID, Title: req.Title, Priority: req.Priority}, nil
		}}
		c := loaded(t, s, rm)

		require.NoError(t, c.CreateCard(context.Background(), s.listA, board.CardDraft{Title: "Card3"}))
		assert.Equal(t, []uuid.UUID{s.card1, s.card2, newID}, cardsOf(t, c.Snapshot().Board, s.listA))
	})

	t.Run("empty_title_makes_no_call", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t}
		c := loaded(t, s, rm)

		err := c.CreateCard(context.Background(), s.listA, board.CardDraft{Title: " \t"})
		require.ErrorIs(t, err, domain.ErrEmptyTitle)
		assert.Equal(t, []string{"GetBoard"}, rm.Calls())
	})

	t.Run("invalid_priority_makes_no_call", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t}
		c := loaded(t, s, rm)

		err := c.CreateCard(context.Background(), s.listA, board.CardDraft{Title: "x", Priority: "urgent"})
		require.ErrorIs(t, err, domain.ErrInvalidPriority)
		assert.Equal(t, []string{"GetBoard"}, rm.Calls())
	})

	t.Run("list_deleted_while_in_flight", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t}
		c := loaded(t, s, rm)

		rm.deleteListFunc = func(context.Context, uuid.UUID) error { return nil }
		rm.createCardFunc = func(_ context.Context, req remote.CreateCardRequest) (*domain.Card, error) {
			// The list disappears before the create confirms.
			require.NoError(t, c.DeleteList(context.Background(), s.listB))
			return &domain.Card{ID: uuid.New(), ListID: req.ListID, Title: req.Title, Priority: req.Priority}, nil
		}

		require.NoError(t, c.CreateCard(context.Background(), s.listB, board.CardDraft{Title: "late"}))
		snap := c.Snapshot()
		require.Len(t, snap.Board.Lists, 1)
		assert.Equal(t, 2, snap.Board.CardCount())
	})
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestController_Delete_DeclinedConfirmation(t *testing.T) {
	t.Parallel()

	s := newScenario(t)
	rm := &mockRemote{t: t}
	confirm := &confirmCounter{answer: false}
	c := loaded(t, s, rm, func(d *board.Deps) { d.Confirmer = confirm })
	before := c.Snapshot()

	require.NoError(t, c.DeleteList(context.Background(), s.listA))
	require.NoError(t, c.DeleteCard(context.Background(), s.card1))

	assert.Equal(t, 2, confirm.prompts)
	assert.Equal(t, []string{"GetBoard"}, rm.Calls(), "declined prompts must not reach the remote")
	assert.Equal(t, before, c.Snapshot())
}

func TestController_DeleteCard(t *testing.T) {
	t.Parallel()

	t.Run("removes_after_confirmation", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t, deleteCardFunc: func(_ context.Context, id uuid.UUID) error {
			assert.Equal(t, s.card2, id)
			return nil
		}}
		c := loaded(t, s, rm)

		require.NoError(t, c.DeleteCard(context.Background(), s.card2))
		assert.Equal(t, []uuid.UUID{s.card1}, cardsOf(t, c.Snapshot().Board, s.listA))
	})

	t.Run("failure_keeps_card", func(t *testing.T) {
		t.Parallel()

		s := newScenario(t)
		rm := &mockRemote{t: t, deleteCardFunc: func(context.Context, uuid.UUID) error { return domain.ErrForbidden }}
		c := loaded(t, s, rm)

		require.ErrorIs(t, c.DeleteCard(context.Background(), s.card2), domain.ErrForbidden)
		assert.Equal(t, []uuid.UUID{s.card1, s.card2}, cardsOf(t, c.Snapshot().Board, s.listA))
		assert.Equal(t, board.StatusReady, c.Status())
	})
}

func TestController_DeleteList(t *testing.T) {
	t.Parallel()

	s := newScenario(t)
	rm := &mockRemote{t: t, deleteListFunc: func(context.Context, uuid.UUID) error { return nil }}
	c := loaded(t, s, rm)

	require.NoError(t, c.DeleteList(context.Background(), s.listA))

	snap := c.Snapshot()
	require.Len(t, snap.Board.Lists, 1)
	assert.Equal(t, s.listB, snap.Board.Lists[0].ID)
	assert.Zero(t, snap.Board.CardCount())
}

// ---------------------------------------------------------------------------
// Teardown
// ---------------------------------------------------------------------------

func TestController_Close_InFlightCompletionIsNoop(t *testing.T) {
	t.Parallel()

	s := newScenario(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	rm := &mockRemote{t: t, moveCardFunc: func(context.Context, remote.MoveCardRequest) error {
		close(entered)
		<-release
		return nil
	}}
	c := loaded(t, s, rm)

	notified := 0
	c.Subscribe(func(board.Snapshot) { notified++ })

	done := make(chan error, 1)
	go func() { done <- c.MoveCard(context.Background(), s.card1, s.listB) }()
	<-entered

	c.Close()
	before := c.Snapshot()
	close(release)

	require.NotPanics(t, func() { require.NoError(t, <-done) })
	assert.Equal(t, before, c.Snapshot(), "no visible state changes after close")
	assert.Zero(t, notified)

	require.ErrorIs(t, c.MoveCard(context.Background(), s.card2, s.listB), board.ErrClosed)
	require.ErrorIs(t, c.Load(context.Background()), board.ErrClosed)
}

func TestController_Close_PendingLoadIsDropped(t *testing.T) {
	t.Parallel()

	s := newScenario(t)
	release := make(chan struct{})
	rm := &mockRemote{t: t, getBoardFunc: func(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
		<-release
		return s.getBoard(ctx, id)
	}}
	c, _ := newController(t, s, rm)

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()

	require.Eventually(t, func() bool { return c.Status() == board.StatusLoading }, time.Second, time.Millisecond)
	c.Close()
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, board.StatusLoading, c.Status())
	assert.Nil(t, c.Snapshot().Board)
}

// ---------------------------------------------------------------------------
// Observers and edit rights
// ---------------------------------------------------------------------------

func TestController_Subscribe(t *testing.T) {
	t.Parallel()

	s := newScenario(t)
	rm := &mockRemote{t: t, getBoardFunc: s.getBoard, moveCardFunc: func(context.Context, remote.MoveCardRequest) error { return nil }}
	c, _ := newController(t, s, rm)

	var got []board.Snapshot
	unsubscribe := c.Subscribe(func(snap board.Snapshot) { got = append(got, snap) })

	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.MoveCard(context.Background(), s.card1, s.listB))

	require.Len(t, got, 3)
	assert.Equal(t, board.StatusLoading, got[0].Status)
	assert.Equal(t, board.StatusReady, got[1].Status)
	assert.Less(t, got[1].Version, got[2].Version)
	assert.Equal(t, []uuid.UUID{s.card1}, cardsOf(t, got[2].Board, s.listB))

	unsubscribe()
	require.NoError(t, c.MoveCard(context.Background(), s.card1, s.listA))
	assert.Len(t, got, 3)
}

func TestController_CanEdit(t *testing.T) {
	t.Parallel()

	s := newScenario(t)
	member := domain.UserRef{ID: uuid.New(), Name: "member"}
	stranger := domain.UserRef{ID: uuid.New(), Name: "stranger"}
	s.server.Members = []domain.UserRef{member}

	for _, tc := range []struct {
		name string
		user domain.UserRef
		want bool
	}{
		{"owner", s.owner, true},
		{"member", member, true},
		{"stranger", stranger, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			u := tc.user
			rm := &mockRemote{t: t}
			c := loaded(t, s, rm, func(d *board.Deps) { d.User = &u })
			assert.Equal(t, tc.want, c.CanEdit())
			assert.Equal(t, tc.want, c.Snapshot().CanEdit)
		})
	}
}

// ---------------------------------------------------------------------------
// Follow
// ---------------------------------------------------------------------------

type fakeWatcher struct {
	events chan domain.BoardEvent
}

func (w *fakeWatcher) WatchBoard(context.Context, uuid.UUID) (<-chan domain.BoardEvent, error) {
	return w.events, nil
}

func TestController_Follow(t *testing.T) {
	t.Parallel()

	s := newScenario(t)
	var (
		mu      sync.Mutex
		fetches int
	)
	rm := &mockRemote{t: t, getBoardFunc: func(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
		mu.Lock()
		fetches++
		mu.Unlock()
		return s.getBoard(ctx, id)
	}}
	c := loaded(t, s, rm)

	w := &fakeWatcher{events: make(chan domain.BoardEvent, 2)}
	w.events <- domain.BoardEvent{Type: domain.EventCardMoved, BoardID: s.board.ID, ActorID: s.owner.ID}
	w.events <- domain.BoardEvent{Type: domain.EventCardCreated, BoardID: s.board.ID, ActorID: uuid.New()}
	close(w.events)

	require.NoError(t, c.Follow(context.Background(), w))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, fetches, "initial load plus one refetch for the foreign event")
}
