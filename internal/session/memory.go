package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	userID    int64
	expiresAt time.Time
}

// MemoryStore keeps sessions in an in-process map. Sessions do not survive a
// restart; suitable for development and single-instance deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemory creates an in-memory session store with the given lifetime.
func NewMemory(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a session for userID and returns its token.
func (m *MemoryStore) Create(_ context.Context, userID int64) (string, error) {
	token := NewToken()
	m.mu.Lock()
	m.sessions[token] = memoryEntry{
		userID:    userID,
		expiresAt: m.now().Add(m.ttl),
	}
	m.mu.Unlock()
	return token, nil
}

// Get resolves a token, dropping it lazily once expired.
func (m *MemoryStore) Get(_ context.Context, token string) (int64, error) {
	m.mu.RLock()
	entry, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return 0, ErrNotFound
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return 0, ErrNotFound
	}
	return entry.userID, nil
}

// Delete ends a session; unknown tokens are ignored.
func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
