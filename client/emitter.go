package client

import (
	"sync"
)

// EventAny subscribes a handler to every notification type.
const EventAny = "*"

// Event is delivered to handlers when a notification of their type arrives.
// It is a refresh trigger for dashboards re-fetching their own data; the
// record is a copy, the store stays authoritative.
type Event struct {
	Type   string
	Record Record
}

// Handler receives emitted events.
type Handler func(Event)

// Subscription identifies a registered handler so it can be removed.
type Subscription struct {
	eventType string
	id        int
}

// Emitter fans notification events out to registered handlers by type. It
// replaces the ad hoc global event bus of the dashboards with an owned,
// typed one.
type Emitter struct {
	mu       sync.Mutex
	handlers map[string]map[int]Handler
	nextID   int
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[string]map[int]Handler)}
}

// On registers h for eventType. Use EventAny to receive every event.
func (e *Emitter) On(eventType string, h Handler) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	if e.handlers[eventType] == nil {
		e.handlers[eventType] = make(map[int]Handler)
	}
	e.handlers[eventType][id] = h
	return Subscription{eventType: eventType, id: id}
}

// Off removes a previously registered handler. Idempotent.
func (e *Emitter) Off(sub Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if hs, ok := e.handlers[sub.eventType]; ok {
		delete(hs, sub.id)
	}
}

// Emit delivers ev to handlers registered for its type and for EventAny.
// Handlers run synchronously on the calling goroutine, in line with the
// single-threaded dispatch model.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	var targets []Handler
	for _, h := range e.handlers[ev.Type] {
		targets = append(targets, h)
	}
	for _, h := range e.handlers[EventAny] {
		targets = append(targets, h)
	}
	e.mu.Unlock()

	for _, h := range targets {
		h(ev)
	}
}
