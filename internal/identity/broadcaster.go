package identity

import (
	"sort"
	"sync"

	"github.com/tradehub/tradehub-api/internal/domain"
)

// Broadcaster fans session-change events out to registered handlers.
// Handlers run synchronously in registration order; unsubscribing is safe
// from within a handler.
type Broadcaster struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func(domain.SessionEvent)
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{handlers: make(map[int]func(domain.SessionEvent))}
}

// Subscribe registers a handler and returns its unsubscribe function
func (b *Broadcaster) Subscribe(handler func(domain.SessionEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.handlers[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Emit delivers an event to all current handlers
func (b *Broadcaster) Emit(event domain.SessionEvent) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]func(domain.SessionEvent), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}
