package domain

import "github.com/google/uuid"

type BoardEventType string

const (
	EventBoardDeleted BoardEventType = "board_deleted"
	EventMemberAdded  BoardEventType = "member_added"
	EventListCreated  BoardEventType = "list_created"
	EventListDeleted  BoardEventType = "list_deleted"
	EventCardCreated  BoardEventType = "card_created"
	EventCardMoved    BoardEventType = "card_moved"
	EventCardDeleted  BoardEventType = "card_deleted"
)

// BoardEvent announces a committed change to a board. Clients that did not
// author the change respond with a full refetch.
type BoardEvent struct {
	Type     BoardEventType `json:"type"`
	BoardID  uuid.UUID      `json:"board_id"`
	EntityID uuid.UUID      `json:"entity_id"`
	ActorID  uuid.UUID      `json:"actor_id"`
}
