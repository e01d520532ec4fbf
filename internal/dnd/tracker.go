package dnd

import (
	"sync"

	"github.com/google/uuid"
)

// Tracker holds the transient state of at most one drag in progress.
// The zero value is ready to use.
type Tracker struct {
	mu      sync.Mutex
	active  bool
	payload Payload
	over    uuid.UUID
}

// Begin starts a drag of p, replacing any drag already in progress.
func (t *Tracker) Begin(p Payload) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = true
	t.payload = p
	t.over = p.SourceListID
}

// Hover marks listID as the drop zone under the dragged item.
func (t *Tracker) Hover(listID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active {
		t.over = listID
	}
}

// Leave clears the hovered drop zone.
func (t *Tracker) Leave() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.over = uuid.Nil
}

// Drop ends the drag over target and resolves it. The tracker is reset
// whatever the outcome.
func (t *Tracker) Drop(target Target) (Move, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, active := t.payload, t.active
	t.resetLocked()
	if !active {
		return Move{}, false
	}
	return Resolve(p, target)
}

// DropHovered drops onto whatever list is currently hovered.
func (t *Tracker) DropHovered() (Move, bool) {
	t.mu.Lock()
	over := t.over
	t.mu.Unlock()
	return t.Drop(ListTarget(over))
}

// Cancel abandons the drag.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
}

// Active returns the payload of the drag in progress.
func (t *Tracker) Active() (Payload, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.payload, t.active
}

// IsDragging reports whether cardID is the item being dragged.
func (t *Tracker) IsDragging(cardID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active && t.payload.CardID == cardID
}

// IsOver reports whether a drag is hovering listID. The source list counts.
func (t *Tracker) IsOver(listID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active && listID != uuid.Nil && t.over == listID
}

// Over returns the hovered list, uuid.Nil outside any target.
func (t *Tracker) Over() uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return uuid.Nil
	}
	return t.over
}

func (t *Tracker) resetLocked() {
	t.active = false
	t.payload = Payload{}
	t.over = uuid.Nil
}
