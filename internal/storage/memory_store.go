package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/composable-commerce/storefront/pkg/types"
)

// Ensure MemoryStore implements SubscriberStore
var _ SubscriberStore = (*MemoryStore)(nil)

// MemoryStore keeps subscribers in process memory. Used when no database is
// configured and in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	subscribers map[string]types.Subscriber
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers: make(map[string]types.Subscriber),
	}
}

// Add stores a subscriber keyed by normalized email
func (m *MemoryStore) Add(_ context.Context, sub types.Subscriber) (bool, error) {
	email := normalizeEmail(sub.Email)
	if email == "" {
		return false, ErrInvalidEmail
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.subscribers[email]; exists {
		return false, nil
	}

	sub.Email = email
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	m.subscribers[email] = sub
	return true, nil
}

// Exists checks whether an email is subscribed
func (m *MemoryStore) Exists(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.subscribers[normalizeEmail(email)]
	return exists, nil
}

// List returns subscribers newest first
func (m *MemoryStore) List(_ context.Context, limit int) ([]types.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := make([]types.Subscriber, 0, len(m.subscribers))
	for _, sub := range m.subscribers {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].Email < subs[j].Email
		}
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})

	if limit > 0 && len(subs) > limit {
		subs = subs[:limit]
	}
	return subs, nil
}

// Ping always succeeds
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op
func (m *MemoryStore) Close() error { return nil }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
