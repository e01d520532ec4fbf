package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gosuda/taskflow/internal/domain"
	"github.com/gosuda/taskflow/internal/server/middleware"
)

const writeTimeout = 10 * time.Second

// Subscriber streams the events of one board.
// *redis.PubSub satisfies this interface.
type Subscriber interface {
	SubscribeBoard(ctx context.Context, boardID uuid.UUID) (<-chan domain.BoardEvent, func(), error)
}

// Hub manages WebSocket connections backed by Redis pub/sub.
type Hub struct {
	events Subscriber
	boards domain.BoardRepository
	log    zerolog.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(events Subscriber, boards domain.BoardRepository, logger zerolog.Logger) *Hub {
	return &Hub{events: events, boards: boards, log: logger}
}

// ServeBoard streams the change events of board {id} to its owner and
// members as JSON text messages. The Redis subscription is established before
// the upgrade so failures still produce a plain HTTP status.
func (h *Hub) ServeBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	boardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid board id", http.StatusBadRequest)
		return
	}

	b, err := h.boards.GetByID(r.Context(), boardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "board not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("board_id", boardID.String()).Msg("ws: load board")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !b.CanEdit(userID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, cleanup, err := h.events.SubscribeBoard(ctx, boardID)
	if err != nil {
		h.log.Error().Err(err).Str("board_id", boardID.String()).Msg("ws: subscribe")
		http.Error(w, "subscribe failed", http.StatusInternalServerError)
		return
	}
	defer cleanup()

	// The stream outlives the server's WriteTimeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.log.Debug().Err(err).Msg("ws: clear write deadline")
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("ws: accept")
		return
	}
	defer conn.CloseNow()

	// Clients never send; CloseRead ends ctx when they hang up.
	ctx = conn.CloseRead(ctx)

	h.log.Debug().
		Str("board_id", boardID.String()).
		Str("user_id", userID.String()).
		Msg("ws: board stream opened")

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case ev, open := <-events:
			if !open {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if err := h.write(ctx, conn, ev); err != nil {
				h.log.Debug().Err(err).Str("board_id", boardID.String()).Msg("ws: write")
				return
			}
			if ev.Type == domain.EventBoardDeleted {
				_ = conn.Close(websocket.StatusNormalClosure, "board deleted")
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, ev domain.BoardEvent) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
