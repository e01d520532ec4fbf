package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/gosuda/taskflow/internal/domain"
)

// WatchBoard subscribes to change events of one board. The returned channel
// is closed when ctx is done or the connection drops.
func (c *Client) WatchBoard(ctx context.Context, boardID uuid.UUID) (<-chan domain.BoardEvent, error) {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/ws/boards/" + boardID.String()

	header := http.Header{}
	if tok := c.bearer(); tok != "" {
		header.Set("Authorization", "Bearer "+tok)
	}

	// The handshake is bounded by ctx; a client-wide timeout would also cut
	// the long-lived stream.
	hc := *c.http
	hc.Timeout = 0

	conn, resp, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{
		HTTPClient: &hc,
		HTTPHeader: header,
	})
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 {
			return nil, fmt.Errorf("remote.WatchBoard: %w", &StatusError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)})
		}
		return nil, fmt.Errorf("remote.WatchBoard: dial: %w", err)
	}

	out := make(chan domain.BoardEvent, 16)

	go func() {
		defer close(out)
		defer conn.CloseNow()

		for {
			var ev domain.BoardEvent
			if err := wsjson.Read(ctx, conn, &ev); err != nil {
				if ctx.Err() == nil && !isNormalClose(err) {
					c.log.Debug().Err(err).Str("board_id", boardID.String()).Msg("remote: watch ended")
				}
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				_ = conn.Close(websocket.StatusNormalClosure, "client done")
				return
			}
		}
	}()

	return out, nil
}

func isNormalClose(err error) bool {
	var ce websocket.CloseError
	return errors.As(err, &ce) && ce.Code == websocket.StatusNormalClosure
}
