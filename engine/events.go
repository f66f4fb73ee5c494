package engine

import "time"

// EventType identifies the kind of event emitted by the Engine.
type EventType int

const (
	// Account events
	EventUserJoined EventType = iota + 1
	EventLoginLinkSent
	EventUserLoggedIn
	EventUserLoggedOut

	// Note events
	EventNoteCreated
	EventNoteDeleted

	// Board gesture events
	EventDragStarted
	EventItemMoved
	EventDragCommitted
	EventDragRolledBack
)

var eventNames = map[EventType]string{
	EventUserJoined:     "user_joined",
	EventLoginLinkSent:  "login_link_sent",
	EventUserLoggedIn:   "user_logged_in",
	EventUserLoggedOut:  "user_logged_out",
	EventNoteCreated:    "note_created",
	EventNoteDeleted:    "note_deleted",
	EventDragStarted:    "drag_started",
	EventItemMoved:      "item_moved",
	EventDragCommitted:  "drag_committed",
	EventDragRolledBack: "drag_rolled_back",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return "unknown"
}

// Event is the envelope emitted by the Engine's EventBus.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   any
}

// AccountEvent covers join, link and session events.
type AccountEvent struct {
	UserID  string `json:"user_id,omitempty"`
	Email   string `json:"email"`
	NewUser bool   `json:"new_user,omitempty"`
}

// NoteEvent is emitted when a user's notes change.
type NoteEvent struct {
	UserID string `json:"user_id"`
	NoteID string `json:"note_id"`
	Title  string `json:"title,omitempty"`
}

// DragEvent reports one step of a gesture on an owner's board.
// To is -1 for events without a destination.
type DragEvent struct {
	Owner  string `json:"-"`
	List   string `json:"list"`
	ItemID string `json:"item_id"`
	From   int    `json:"from"`
	To     int    `json:"to"`
}
