package engine

import (
	"slices"
	"sync"
	"time"
)

// SubscriberID uniquely identifies an EventBus subscriber.
type SubscriberID uint64

// SubscriberFunc is a callback invoked when an event is emitted.
type SubscriberFunc func(Event)

type subscriber struct {
	id    SubscriberID
	fn    SubscriberFunc
	types map[EventType]struct{}
	match func(Event) bool
}

func (s subscriber) wants(evt Event) bool {
	if s.types != nil {
		if _, ok := s.types[evt.Type]; !ok {
			return false
		}
	}
	return s.match == nil || s.match(evt)
}

// EventBus provides synchronous, typed event dispatch.
// Subscribers are called in registration order on the emitting goroutine,
// so they must not block or call back into the emitter.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []subscriber
	nextID      SubscriberID
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a callback for all event types.
func (eb *EventBus) Subscribe(fn SubscriberFunc) SubscriberID {
	return eb.add(subscriber{fn: fn})
}

// SubscribeTypes registers a callback only for the given event types.
func (eb *EventBus) SubscribeTypes(fn SubscriberFunc, types ...EventType) SubscriberID {
	return eb.add(subscriber{fn: fn, types: typeSet(types)})
}

// SubscribeWhere registers a callback for the given types (all when empty)
// that also satisfy match.
func (eb *EventBus) SubscribeWhere(fn SubscriberFunc, match func(Event) bool, types ...EventType) SubscriberID {
	s := subscriber{fn: fn, match: match}
	if len(types) > 0 {
		s.types = typeSet(types)
	}
	return eb.add(s)
}

func (eb *EventBus) add(s subscriber) SubscriberID {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.nextID++
	s.id = eb.nextID
	eb.subscribers = append(eb.subscribers, s)
	return s.id
}

func typeSet(types []EventType) map[EventType]struct{} {
	set := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

// Unsubscribe removes a subscriber by ID.
func (eb *EventBus) Unsubscribe(id SubscriberID) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = slices.DeleteFunc(eb.subscribers, func(s subscriber) bool { return s.id == id })
}

// Len returns the number of registered subscribers.
func (eb *EventBus) Len() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Emit dispatches an event synchronously to all matching subscribers.
func (eb *EventBus) Emit(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	eb.mu.RLock()
	subs := slices.Clone(eb.subscribers)
	eb.mu.RUnlock()

	for _, s := range subs {
		if s.wants(evt) {
			s.fn(evt)
		}
	}
}
