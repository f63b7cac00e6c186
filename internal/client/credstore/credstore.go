// Package credstore persists the opaque session credential and an optional
// cached identity. Writes are whole-value and atomic; watchers are told which
// key changed and are expected to re-derive their state, never to merge.
package credstore

import (
	"context"
	"sync"

	"github.com/voltmart/storefront/internal/core/domain"
)

// Keys participating in change notification.
const (
	KeyToken = "auth.token"
	KeyUser  = "auth.user"
)

// Store is the persisted credential entry plus the cached-identity entry.
type Store interface {
	// Token returns the persisted credential, or "" when absent.
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error

	// CachedUser returns the cached identity, or nil when absent.
	CachedUser(ctx context.Context) (*domain.User, error)
	SetCachedUser(ctx context.Context, user *domain.User) error

	// Clear removes both entries.
	Clear(ctx context.Context) error

	// Watch registers a handler invoked with the key of every change made
	// through any Store sharing the same backing storage. Returns a stop
	// function.
	Watch(handler func(key string)) (stop func())
}

// Memory is a single-process Store used in tests and embedded deployments.
type Memory struct {
	mu       sync.Mutex
	token    string
	user     *domain.User
	next     int
	watchers map[int]func(key string)
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{watchers: make(map[int]func(string))}
}

func (m *Memory) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *Memory) SetToken(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	m.notify(KeyToken)
	return nil
}

func (m *Memory) CachedUser(context.Context) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, nil
	}
	clone := *m.user
	return &clone, nil
}

func (m *Memory) SetCachedUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	if user == nil {
		m.user = nil
	} else {
		clone := *user
		m.user = &clone
	}
	m.mu.Unlock()
	m.notify(KeyUser)
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()
	m.notify(KeyToken)
	m.notify(KeyUser)
	return nil
}

func (m *Memory) Watch(handler func(key string)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.watchers[id] = handler
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, id)
	}
}

func (m *Memory) notify(key string) {
	m.mu.Lock()
	handlers := make([]func(string), 0, len(m.watchers))
	for _, h := range m.watchers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()
	for _, h := range handlers {
		h(key)
	}
}
