package engine

import (
	"bracket/metrics"
	"bracket/reorder"
)

// wireEventHandlers sets up logging for the account and gesture chains:
// DragStarted → ItemMoved* → DragCommitted | DragRolledBack.
func (e *Engine) wireEventHandlers() {
	e.Events.SubscribeTypes(func(evt Event) {
		a := evt.Payload.(AccountEvent)
		switch evt.Type {
		case EventUserJoined:
			e.logFn("account: %s joined (user %s)", a.Email, a.UserID)
		case EventLoginLinkSent:
			metrics.LoginLinksTotal.WithLabelValues("sent").Inc()
			e.debugFn("account: login link queued for %s", a.Email)
		case EventUserLoggedIn:
			e.logFn("account: %s logged in", a.Email)
		case EventUserLoggedOut:
			e.debugFn("account: user %s logged out", a.UserID)
		}
	}, EventUserJoined, EventLoginLinkSent, EventUserLoggedIn, EventUserLoggedOut)

	e.Events.SubscribeTypes(func(evt Event) {
		n := evt.Payload.(NoteEvent)
		e.debugFn("notes: %s %s for user %s", evt.Type, n.NoteID, n.UserID)
	}, EventNoteCreated, EventNoteDeleted)

	e.Events.SubscribeTypes(func(evt Event) {
		d := evt.Payload.(DragEvent)
		switch evt.Type {
		case EventDragStarted:
			e.debugFn("board %s/%s: drag %s from %d", d.Owner, d.List, d.ItemID, d.From)
		case EventItemMoved:
			metrics.ItemMovesTotal.WithLabelValues(d.List).Inc()
			e.debugFn("board %s/%s: %s %d -> %d", d.Owner, d.List, d.ItemID, d.From, d.To)
		case EventDragRolledBack:
			metrics.GesturesTotal.WithLabelValues(d.List, "rolled_back").Inc()
			e.debugFn("board %s/%s: drag %s rolled back to %d", d.Owner, d.List, d.ItemID, d.From)
		}
	}, EventDragStarted, EventItemMoved, EventDragRolledBack)

	e.Events.SubscribeTypes(func(evt Event) {
		e.handleDragCommitted(evt.Payload.(DragEvent))
	}, EventDragCommitted)
}

// handleDragCommitted records a committed order change. Orders live only for
// the session, so the log line is the record.
func (e *Engine) handleDragCommitted(d DragEvent) {
	metrics.GesturesTotal.WithLabelValues(d.List, "committed").Inc()
	if d.From == d.To {
		e.debugFn("board %s/%s: %s dropped in place", d.Owner, d.List, d.ItemID)
		return
	}
	e.logFn("board %s/%s: %s moved from %s to %s", d.Owner, d.List, d.ItemID,
		reorder.RankLabel(d.From), reorder.RankLabel(d.To))
}
