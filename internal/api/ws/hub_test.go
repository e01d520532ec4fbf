package ws_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/taskflow/internal/api/ws"
	"github.com/gosuda/taskflow/internal/domain"
	"github.com/gosuda/taskflow/internal/server/middleware"
)

type fakeSubscriber struct {
	ch  chan domain.BoardEvent
	err error
}

func (f *fakeSubscriber) SubscribeBoard(context.Context, uuid.UUID) (<-chan domain.BoardEvent, func(), error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.ch, func() {}, nil
}

type fakeBoards struct {
	domain.BoardRepository
	board *domain.Board
}

func (f *fakeBoards) GetByID(_ context.Context, id uuid.UUID) (*domain.Board, error) {
	if f.board == nil || id != f.board.ID {
		return nil, domain.ErrNotFound
	}
	return f.board.Clone(), nil
}

type harness struct {
	srv    *httptest.Server
	board  *domain.Board
	owner  uuid.UUID
	events chan domain.BoardEvent
}

// newHarness serves the hub behind a stand-in for the auth middleware that
// trusts the X-User header.
func newHarness(t *testing.T, subErr error) *harness {
	t.Helper()

	h := &harness{
		owner:  uuid.New(),
		events: make(chan domain.BoardEvent, 4),
	}
	h.board = &domain.Board{ID: uuid.New(), Title: "Sprint", Owner: domain.UserRef{ID: h.owner, Name: "Alice"}}

	hub := ws.NewHub(&fakeSubscriber{ch: h.events, err: subErr}, &fakeBoards{board: h.board}, zerolog.Nop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if id, err := uuid.Parse(req.Header.Get("X-User")); err == nil {
				req = req.WithContext(middleware.WithUserID(req.Context(), id))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/ws/boards/{id}", hub.ServeBoard)

	h.srv = httptest.NewServer(r)
	t.Cleanup(h.srv.Close)
	return h
}

func (h *harness) url(boardID string) string {
	return "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws/boards/" + boardID
}

func (h *harness) dial(ctx context.Context, boardID string, user uuid.UUID) (*websocket.Conn, *http.Response, error) {
	header := http.Header{}
	if user != uuid.Nil {
		header.Set("X-User", user.String())
	}
	return websocket.Dial(ctx, h.url(boardID), &websocket.DialOptions{HTTPHeader: header})
}

func TestServeBoard_StreamsEvents(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := h.dial(ctx, h.board.ID.String(), h.owner)
	require.NoError(t, err)
	defer conn.CloseNow()

	sent := domain.BoardEvent{
		Type:     domain.EventCardMoved,
		BoardID:  h.board.ID,
		EntityID: uuid.New(),
		ActorID:  uuid.New(),
	}
	h.events <- sent

	var got domain.BoardEvent
	require.NoError(t, wsjson.Read(ctx, conn, &got))
	assert.Equal(t, sent, got)
}

func TestServeBoard_ClosesAfterBoardDeleted(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := h.dial(ctx, h.board.ID.String(), h.owner)
	require.NoError(t, err)
	defer conn.CloseNow()

	h.events <- domain.BoardEvent{Type: domain.EventBoardDeleted, BoardID: h.board.ID, EntityID: h.board.ID}

	var got domain.BoardEvent
	require.NoError(t, wsjson.Read(ctx, conn, &got))
	assert.Equal(t, domain.EventBoardDeleted, got.Type)

	err = wsjson.Read(ctx, conn, &got)
	var ce websocket.CloseError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, websocket.StatusNormalClosure, ce.Code)
}

func TestServeBoard_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		boardID    func(h *harness) string
		user       func(h *harness) uuid.UUID
		subErr     error
		wantStatus int
	}{
		{
			name:       "no_user",
			boardID:    func(h *harness) string { return h.board.ID.String() },
			user:       func(*harness) uuid.UUID { return uuid.Nil },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed_id",
			boardID:    func(*harness) string { return "nope" },
			user:       func(h *harness) uuid.UUID { return h.owner },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown_board",
			boardID:    func(*harness) string { return uuid.NewString() },
			user:       func(h *harness) uuid.UUID { return h.owner },
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "not_a_member",
			boardID:    func(h *harness) string { return h.board.ID.String() },
			user:       func(*harness) uuid.UUID { return uuid.New() },
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "subscribe_failure",
			boardID:    func(h *harness) string { return h.board.ID.String() },
			user:       func(h *harness) uuid.UUID { return h.owner },
			subErr:     errors.New("redis down"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, tt.subErr)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			conn, resp, err := h.dial(ctx, tt.boardID(h), tt.user(h))
			if conn != nil {
				conn.CloseNow()
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
