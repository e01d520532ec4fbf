package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gosuda/taskflow/internal/domain"
)

type PubSub struct {
	client *redis.Client
	log    zerolog.Logger
}

func New(ctx context.Context, addr, password string, db int, logger zerolog.Logger) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &PubSub{client: client, log: logger}, nil
}

func (ps *PubSub) Close() error {
	if err := ps.client.Close(); err != nil {
		return fmt.Errorf("redis.PubSub.Close: %w", err)
	}
	return nil
}

// PublishBoardEvent announces ev on the channel of its board.
func (ps *PubSub) PublishBoardEvent(ctx context.Context, ev domain.BoardEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis.PubSub.PublishBoardEvent: marshal: %w", err)
	}
	if err := ps.client.Publish(ctx, BoardChannel(ev.BoardID), payload).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.PublishBoardEvent: %w", err)
	}
	return nil
}

// SubscribeBoard streams the events of one board until ctx is done or the
// returned cleanup is called. Payloads that do not decode are skipped.
func (ps *PubSub) SubscribeBoard(ctx context.Context, boardID uuid.UUID) (<-chan domain.BoardEvent, func(), error) {
	sub := ps.client.Subscribe(ctx, BoardChannel(boardID))

	// Wait for subscription confirmation.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.PubSub.SubscribeBoard: receive confirmation: %w", err)
	}

	out := make(chan domain.BoardEvent, 64)
	redisCh := sub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				ev, err := DecodeBoardEvent(msg.Payload)
				if err != nil {
					ps.log.Warn().Err(err).Str("channel", msg.Channel).Msg("redis: dropping malformed board event")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cleanup := func() {
		_ = sub.Close()
	}

	return out, cleanup, nil
}

// DecodeBoardEvent parses one channel payload.
func DecodeBoardEvent(payload string) (domain.BoardEvent, error) {
	var ev domain.BoardEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return domain.BoardEvent{}, fmt.Errorf("decode board event: %w", err)
	}
	if ev.BoardID == uuid.Nil || ev.Type == "" {
		return domain.BoardEvent{}, fmt.Errorf("decode board event: missing type or board id")
	}
	return ev, nil
}

// BoardChannel returns the Redis channel name for a board.
func BoardChannel(boardID uuid.UUID) string {
	return "board:" + boardID.String()
}
