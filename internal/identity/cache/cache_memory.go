// Package cache provides the short-TTL view cache implementations. The
// TTL keeps per-request gating cheap while write invalidation keeps the
// cache from serving a stale profile right after a form submission.
package cache

import (
	"context"
	"sync"
	"time"

	"sahay/internal/identity"
	id "sahay/pkg/domain"
	"sahay/pkg/platform/sentinel"
)

// DefaultTTL bounds how stale a cached view may get between writes.
const DefaultTTL = 5 * time.Second

type entry struct {
	view      *identity.CombinedView
	expiresAt time.Time
}

// Memory is an in-process TTL cache. Expired entries are dropped lazily
// on read; there is no background sweeper.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[id.AccountID]entry
	now     func() time.Time
}

type MemoryOption func(*Memory)

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) {
		m.ttl = ttl
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		ttl:     DefaultTTL,
		entries: make(map[id.AccountID]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, accountID id.AccountID) (*identity.CombinedView, error) {
	m.mu.RLock()
	e, ok := m.entries[accountID]
	m.mu.RUnlock()

	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, accountID)
		m.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}
	return e.view, nil
}

func (m *Memory) Set(_ context.Context, accountID id.AccountID, view *identity.CombinedView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[accountID] = entry{view: view, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, accountID id.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, accountID)
	return nil
}
