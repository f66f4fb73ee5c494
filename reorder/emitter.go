package reorder

// EventEmitter is the interface the reorder engine uses to report gesture progress.
type EventEmitter interface {
	EmitDragStarted(listID, itemID string, fromIndex int)
	EmitItemMoved(listID, itemID string, fromIndex, toIndex int)
	EmitDragCommitted(listID, itemID string, fromIndex, toIndex int)
	EmitDragRolledBack(listID, itemID string, fromIndex int)
}

type nopEmitter struct{}

func (nopEmitter) EmitDragStarted(string, string, int)        {}
func (nopEmitter) EmitItemMoved(string, string, int, int)     {}
func (nopEmitter) EmitDragCommitted(string, string, int, int) {}
func (nopEmitter) EmitDragRolledBack(string, string, int)     {}
