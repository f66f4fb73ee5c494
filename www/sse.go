package www

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"bracket/engine"
	"bracket/metrics"
)

const (
	streamBuffer      = 64
	hubBuffer         = 256
	keepaliveInterval = 30 * time.Second
	retryMillis       = 3000
)

// SSEEvent is the typed envelope sent to SSE clients. Owner selects the
// receiving user and is never sent.
type SSEEvent struct {
	Owner string `json:"-"`
	Type  string `json:"type"`
	Data  any    `json:"data"`
}

// stream is one open /events response.
type stream chan SSEEvent

// EventHub fans engine events out to each user's open event streams.
type EventHub struct {
	mu      sync.RWMutex
	byOwner map[string]map[stream]struct{}
	queue   chan SSEEvent
	done    chan struct{}
	once    sync.Once
}

func NewEventHub() *EventHub {
	return &EventHub{
		byOwner: make(map[string]map[stream]struct{}),
		queue:   make(chan SSEEvent, hubBuffer),
		done:    make(chan struct{}),
	}
}

// Start begins the fan-out loop.
func (h *EventHub) Start() {
	go h.run()
}

// Stop shuts down the hub and ends every open stream.
func (h *EventHub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// Broadcast queues an event for its owner's streams. Events are dropped when
// the queue is full; pages resync from the board API.
func (h *EventHub) Broadcast(evt SSEEvent) {
	select {
	case h.queue <- evt:
	default:
	}
}

func (h *EventHub) open(owner string) stream {
	s := make(stream, streamBuffer)
	h.mu.Lock()
	set, ok := h.byOwner[owner]
	if !ok {
		set = make(map[stream]struct{})
		h.byOwner[owner] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	metrics.SSEClientsCurrent.Inc()
	return s
}

func (h *EventHub) close(owner string, s stream) {
	h.mu.Lock()
	if set, ok := h.byOwner[owner]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.byOwner, owner)
		}
	}
	h.mu.Unlock()
	metrics.SSEClientsCurrent.Dec()
}

// clientCount returns the number of open streams for owner.
func (h *EventHub) clientCount(owner string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byOwner[owner])
}

func (h *EventHub) run() {
	for {
		select {
		case <-h.done:
			return
		case evt := <-h.queue:
			h.deliver(evt)
		}
	}
}

// deliver hands evt to every stream of its owner, skipping streams whose
// buffer is full.
func (h *EventHub) deliver(evt SSEEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.byOwner[evt.Owner] {
		select {
		case s <- evt:
		default:
		}
	}
}

func writeEvent(w io.Writer, name string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, b)
	return err
}

// HandleSSE streams the current user's events until the client leaves or
// the hub stops.
func (h *EventHub) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	owner := currentUser(r).ID

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")

	s := h.open(owner)
	defer h.close(owner, s)

	fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	writeEvent(w, "connected", struct{}{})
	flusher.Flush()

	ping := time.NewTicker(keepaliveInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		case evt := <-s:
			if err := writeEvent(w, evt.Type, evt.Data); err != nil {
				log.Printf("sse %s: encode %s: %v", owner, evt.Type, err)
				continue
			}
			flusher.Flush()
		case <-ping.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

type boardUpdate struct {
	Event string `json:"event"`
	engine.DragEvent
}

type notesUpdate struct {
	Event  string `json:"event"`
	NoteID string `json:"note_id"`
}

// SetupEngineListeners forwards board gestures and note changes to the
// owning user's streams.
func (h *EventHub) SetupEngineListeners(eng *engine.Engine) {
	eng.Events.SubscribeTypes(func(evt engine.Event) {
		d := evt.Payload.(engine.DragEvent)
		h.Broadcast(SSEEvent{Owner: d.Owner, Type: "board-update", Data: boardUpdate{Event: evt.Type.String(), DragEvent: d}})
	}, engine.EventDragStarted, engine.EventItemMoved, engine.EventDragCommitted, engine.EventDragRolledBack)

	eng.Events.SubscribeTypes(func(evt engine.Event) {
		n := evt.Payload.(engine.NoteEvent)
		h.Broadcast(SSEEvent{Owner: n.UserID, Type: "notes-update", Data: notesUpdate{Event: evt.Type.String(), NoteID: n.NoteID}})
	}, engine.EventNoteCreated, engine.EventNoteDeleted)

	log.Printf("sse: forwarding board and note events")
}
