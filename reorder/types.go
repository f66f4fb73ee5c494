package reorder

import "errors"

var (
	// ErrNotFound is returned when an id is not present in the collection.
	ErrNotFound = errors.New("item not found")
	// ErrAlreadyDragging is returned when a gesture starts while another is active.
	ErrAlreadyDragging = errors.New("drag already in progress")
	// ErrDuplicateID is returned when a collection is built with repeated ids.
	ErrDuplicateID = errors.New("duplicate item id")
	// ErrSnapshotMismatch is returned when a snapshot does not hold the live items.
	ErrSnapshotMismatch = errors.New("snapshot does not match collection")
	// ErrCollectionReplaced is returned when a gesture outlives a replacement
	// of its collection.
	ErrCollectionReplaced = errors.New("collection replaced during drag")
)

// Item is one draggable entry. The payload is carried but never inspected.
type Item[T any] struct {
	ID      string
	Payload T
}

// Status is the resolution state of a drag session.
type Status int

const (
	StatusActive Status = iota + 1
	StatusCommitted
	StatusRolledBack
	// StatusAbandoned ends a gesture whose collection was replaced under it.
	// Neither the snapshot nor the optimistic order is applied.
	StatusAbandoned
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCommitted:
		return "committed"
	case StatusRolledBack:
		return "rolled_back"
	case StatusAbandoned:
		return "abandoned"
	default:
		return "idle"
	}
}
