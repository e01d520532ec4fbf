// Package dnd turns a pick-up/drop gesture into a move intent. It knows
// nothing about how the gesture is produced; the terminal shell feeds it from
// the keyboard, other front ends may feed it from a pointer.
package dnd

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

type Kind string

const KindCard Kind = "card"

// Payload is what a drag source carries while it is being dragged.
type Payload struct {
	Kind         Kind
	CardID       uuid.UUID
	SourceListID uuid.UUID
}

// CardPayload builds the payload of a card living in listID.
func CardPayload(cardID, listID uuid.UUID) Payload {
	return Payload{Kind: KindCard, CardID: cardID, SourceListID: listID}
}

// Target is a drop zone. A list accepts cards.
type Target struct {
	ListID  uuid.UUID
	Accepts []Kind
}

// ListTarget returns the drop target of a list.
func ListTarget(listID uuid.UUID) Target {
	return Target{ListID: listID, Accepts: []Kind{KindCard}}
}

// Accept reports whether the target takes payloads of p's kind.
func (t Target) Accept(p Payload) bool {
	return t.ListID != uuid.Nil && slices.Contains(t.Accepts, p.Kind)
}

// Move is a resolved gesture: take CardID out of SourceListID and append it
// to TargetListID.
type Move struct {
	SourceListID uuid.UUID
	CardID       uuid.UUID
	TargetListID uuid.UUID
}

func (m Move) String() string {
	return fmt.Sprintf("move card %s: %s -> %s", m.CardID, m.SourceListID, m.TargetListID)
}

// Resolve converts a drop into a move. Dropping onto a target that does not
// accept the payload, or back onto the source list, yields no move.
func Resolve(p Payload, t Target) (Move, bool) {
	if !t.Accept(p) || p.CardID == uuid.Nil {
		return Move{}, false
	}
	if p.SourceListID == t.ListID {
		return Move{}, false
	}
	return Move{SourceListID: p.SourceListID, CardID: p.CardID, TargetListID: t.ListID}, true
}

// Mover applies a resolved move. The board controller implements it.
type Mover interface {
	MoveCard(ctx context.Context, cardID, targetListID uuid.UUID) error
}

// Dispatch hands m to mover.
func Dispatch(ctx context.Context, mover Mover, m Move) error {
	if err := mover.MoveCard(ctx, m.CardID, m.TargetListID); err != nil {
		return fmt.Errorf("dnd.Dispatch: %w", err)
	}
	return nil
}
