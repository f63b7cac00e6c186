// Package eventbus provides the fire-and-forget signal channel that keeps
// session and cart state synchronized across stores and processes. Handlers
// are idempotent re-syncs, so delivery is at-least-once while subscribed and
// missed signals are never replayed.
package eventbus

import "sync"

// Handler reacts to a signal of the kind it subscribed to.
type Handler func(kind string)

// Bus decouples producers and consumers of "something changed" signals.
type Bus interface {
	// Emit broadcasts kind to all current subscribers. Fan-out order is
	// unspecified.
	Emit(kind string)
	// Subscribe registers handler for kind and returns an unsubscribe
	// function. Multiple subscribers per kind are allowed.
	Subscribe(kind string, handler Handler) (unsubscribe func())
}

// Memory is an in-process Bus with synchronous fan-out.
type Memory struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]Handler
}

// NewMemory returns an empty in-process bus.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[int]Handler)}
}

func (b *Memory) Emit(kind string) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[kind]))
	for _, h := range b.subs[kind] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	// Handlers run outside the lock so they can subscribe or emit themselves.
	for _, h := range handlers {
		h(kind)
	}
}

func (b *Memory) Subscribe(kind string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[kind] == nil {
		b.subs[kind] = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.subs[kind][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[kind], id)
	}
}
