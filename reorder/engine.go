package reorder

import "fmt"

// session is the single in-flight gesture. It never leaves the engine.
type session[T any] struct {
	draggedID     string
	originalIndex int
	snapshot      Snapshot[T]
	status        Status
	lastHover     string
}

// Engine applies drag gestures to a collection optimistically and resolves
// them by commit (drop) or rollback (cancel). One engine serves one rendered
// list. It is not safe for concurrent use; callers serialize events.
type Engine[T any] struct {
	listID  string
	coll    *Collection[T]
	emitter EventEmitter
	active  *session[T]
}

// NewEngine creates an engine over coll. A nil emitter disables events.
func NewEngine[T any](listID string, coll *Collection[T], emitter EventEmitter) *Engine[T] {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &Engine[T]{listID: listID, coll: coll, emitter: emitter}
}

// ListID returns the list identifier used when emitting events.
func (e *Engine[T]) ListID() string { return e.listID }

// Collection returns the live collection.
func (e *Engine[T]) Collection() *Collection[T] { return e.coll }

// Dragging reports the dragged id while a gesture is active.
func (e *Engine[T]) Dragging() (string, bool) {
	if e.active == nil {
		return "", false
	}
	return e.active.draggedID, true
}

// DragStart opens a gesture for id and snapshots the current order.
func (e *Engine[T]) DragStart(id string) error {
	if e.active != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyDragging, e.active.draggedID)
	}
	idx, err := e.coll.IndexOf(id)
	if err != nil {
		return err
	}
	e.active = &session[T]{
		draggedID:     id,
		originalIndex: idx,
		snapshot:      e.coll.Snapshot(),
		status:        StatusActive,
	}
	e.emitter.EmitDragStarted(e.listID, id, idx)
	return nil
}

// HoverOver moves the dragged item to the current index of otherID.
// Hovering while idle, over the dragged item itself, or over the same item
// as the previous hover is a no-op.
func (e *Engine[T]) HoverOver(otherID string) error {
	if e.active == nil {
		return nil
	}
	if e.stale() {
		e.active = nil
		return ErrCollectionReplaced
	}
	if otherID == e.active.draggedID {
		e.active.lastHover = otherID
		return nil
	}
	if otherID == e.active.lastHover {
		return nil
	}
	overIndex, err := e.coll.IndexOf(otherID)
	if err != nil {
		return err
	}
	from, err := e.coll.IndexOf(e.active.draggedID)
	if err != nil {
		return err
	}
	if err := e.coll.MoveTo(e.active.draggedID, overIndex); err != nil {
		return err
	}
	e.active.lastHover = otherID
	if from != overIndex {
		e.emitter.EmitItemMoved(e.listID, e.active.draggedID, from, overIndex)
	}
	return nil
}

// Drop commits the live order. It reports false when no gesture was active.
func (e *Engine[T]) Drop() (Status, bool) {
	if e.active == nil {
		return 0, false
	}
	s := e.active
	e.active = nil
	if s.snapshot.gen != e.coll.gen {
		s.status = StatusAbandoned
		return s.status, true
	}
	s.status = StatusCommitted
	s.snapshot = Snapshot[T]{}
	to, _ := e.coll.IndexOf(s.draggedID)
	e.emitter.EmitDragCommitted(e.listID, s.draggedID, s.originalIndex, to)
	return s.status, true
}

// Cancel restores the order captured at DragStart. It reports false when no
// gesture was active. If the collection was replaced during the gesture the
// replacement stands, the status is StatusAbandoned and no rollback is emitted.
func (e *Engine[T]) Cancel() (Status, bool) {
	if e.active == nil {
		return 0, false
	}
	s := e.active
	e.active = nil
	if err := e.coll.Restore(s.snapshot); err != nil {
		s.status = StatusAbandoned
		return s.status, true
	}
	s.status = StatusRolledBack
	e.emitter.EmitDragRolledBack(e.listID, s.draggedID, s.originalIndex)
	return s.status, true
}

// Replace swaps in a new item set. An active gesture is rolled back first,
// so the last order the adapter saw is the one being replaced.
func (e *Engine[T]) Replace(items []Item[T]) error {
	if err := checkIDs(items); err != nil {
		return err
	}
	e.Cancel()
	return e.coll.Replace(items)
}

func (e *Engine[T]) stale() bool {
	return e.active != nil && e.active.snapshot.gen != e.coll.gen
}

// Teardown resolves any unfinished gesture as a cancel.
func (e *Engine[T]) Teardown() {
	e.Cancel()
}

// CurrentIndexOf returns the live index of id, including optimistic moves.
func (e *Engine[T]) CurrentIndexOf(id string) (int, error) {
	return e.coll.IndexOf(id)
}
