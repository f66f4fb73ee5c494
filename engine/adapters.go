package engine

import "bracket/reorder"

// boardEmitter adapts the EventBus to reorder.EventEmitter for one owner.
type boardEmitter struct {
	bus   *EventBus
	owner string
}

var _ reorder.EventEmitter = (*boardEmitter)(nil)

func (e *boardEmitter) EmitDragStarted(listID, itemID string, from int) {
	e.bus.Emit(Event{Type: EventDragStarted, Payload: DragEvent{
		Owner: e.owner, List: listID, ItemID: itemID, From: from, To: -1,
	}})
}

func (e *boardEmitter) EmitItemMoved(listID, itemID string, from, to int) {
	e.bus.Emit(Event{Type: EventItemMoved, Payload: DragEvent{
		Owner: e.owner, List: listID, ItemID: itemID, From: from, To: to,
	}})
}

func (e *boardEmitter) EmitDragCommitted(listID, itemID string, from, to int) {
	e.bus.Emit(Event{Type: EventDragCommitted, Payload: DragEvent{
		Owner: e.owner, List: listID, ItemID: itemID, From: from, To: to,
	}})
}

func (e *boardEmitter) EmitDragRolledBack(listID, itemID string, from int) {
	e.bus.Emit(Event{Type: EventDragRolledBack, Payload: DragEvent{
		Owner: e.owner, List: listID, ItemID: itemID, From: from, To: -1,
	}})
}
