// Package board adapts the reorder engine to lists rendered for one signed-in
// user. A Board serializes the events that arrive from HTTP goroutines.
package board

import (
	"errors"
	"fmt"
	"sync"

	"bracket/reorder"
)

// LogFunc is a printf-style logger.
type LogFunc func(format string, args ...any)

// Entry is one element of a rendered list.
type Entry = reorder.Item[any]

// ViewItem is an entry with the rank derived from its live position.
type ViewItem struct {
	reorder.Standing
	Payload any `json:"payload"`
}

// View is the render state of a board.
type View struct {
	List     string     `json:"list"`
	Items    []ViewItem `json:"items"`
	Dragging string     `json:"dragging,omitempty"`
}

// Board owns one engine for one (owner, list) pair.
type Board struct {
	mu    sync.Mutex
	owner string
	list  string
	eng   *reorder.Engine[any]
	logFn LogFunc
}

// New builds a board over entries. emitter may be nil.
func New(owner, list string, entries []Entry, emitter reorder.EventEmitter, logFn LogFunc) (*Board, error) {
	coll, err := reorder.NewCollection(entries)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", list, err)
	}
	if logFn == nil {
		logFn = func(string, ...any) {}
	}
	return &Board{
		owner: owner,
		list:  list,
		eng:   reorder.NewEngine(list, coll, emitter),
		logFn: logFn,
	}, nil
}

func (b *Board) Owner() string { return b.owner }
func (b *Board) List() string  { return b.list }

// DragStart begins a gesture on id. A start that arrives while another gesture
// is still open means an end event was lost; the stale gesture is rolled back
// before the new one begins.
func (b *Board) DragStart(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dragStartLocked(id)
}

func (b *Board) dragStartLocked(id string) error {
	err := b.eng.DragStart(id)
	if errors.Is(err, reorder.ErrAlreadyDragging) {
		stale, _ := b.eng.Dragging()
		b.logFn("board %s/%s: drag start for %s while %s still active, rolling back", b.owner, b.list, id, stale)
		b.eng.Cancel()
		err = b.eng.DragStart(id)
	}
	return err
}

func (b *Board) HoverOver(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eng.HoverOver(id)
}

// Drop commits the gesture. It reports false when none was active.
func (b *Board) Drop() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	status, ok := b.eng.Drop()
	b.logAbandoned(status)
	return ok
}

// Cancel rolls the gesture back. It reports false when none was active.
func (b *Board) Cancel() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	status, ok := b.eng.Cancel()
	b.logAbandoned(status)
	return ok
}

func (b *Board) logAbandoned(status reorder.Status) {
	if status == reorder.StatusAbandoned {
		b.logFn("board %s/%s: gesture abandoned, list was replaced mid-drag", b.owner, b.list)
	}
}

// DragEnd applies a completed drag reported as a pair of indexes, the way
// list libraries without hover callbacks report it. A nil destination (dropped
// outside the list) or an unchanged index does nothing. It reports whether
// the order changed.
func (b *Board) DragEnd(source, destination *int) (bool, error) {
	if source == nil || destination == nil || *source == *destination {
		return false, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	coll := b.eng.Collection()
	dragged, ok := coll.At(*source)
	if !ok {
		return false, fmt.Errorf("%w: index %d", reorder.ErrNotFound, *source)
	}
	dest := *destination
	if dest < 0 {
		dest = 0
	}
	if dest >= coll.Len() {
		dest = coll.Len() - 1
	}
	if dest == *source {
		return false, nil
	}
	target, _ := coll.At(dest)

	if err := b.dragStartLocked(dragged.ID); err != nil {
		return false, err
	}
	if err := b.eng.HoverOver(target.ID); err != nil {
		b.eng.Cancel()
		return false, err
	}
	b.eng.Drop()
	return true, nil
}

// IndexOf returns the live index of id.
func (b *Board) IndexOf(id string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eng.CurrentIndexOf(id)
}

// View returns the current order with ranks.
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	coll := b.eng.Collection()
	standings := reorder.Standings(coll)
	v := View{List: b.list, Items: make([]ViewItem, len(standings))}
	for i, s := range standings {
		it, _ := coll.At(i)
		v.Items[i] = ViewItem{Standing: s, Payload: it.Payload}
	}
	v.Dragging, _ = b.eng.Dragging()
	return v
}

// Teardown rolls back any open gesture. The board stays usable.
func (b *Board) Teardown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.eng.Teardown()
}
