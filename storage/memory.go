package storage

import (
	"context"
	"sync"
	"time"

	"github.com/pastebin-lite/pastebin-lite/models"
)

var _ PasteStore = (*MemoryStore)(nil)

// MemoryStore implements PasteStore with an in-process map. It is intended
// for development and tests; state does not survive a restart and is not
// shared between instances.
type MemoryStore struct {
	mu     sync.Mutex
	pastes map[string]*models.Paste
}

// NewMemoryStore creates an empty in-memory storage backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pastes: make(map[string]*models.Paste),
	}
}

// Create saves a paste, failing on id collision.
func (m *MemoryStore) Create(_ context.Context, paste *models.Paste) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pastes[paste.ID]; ok {
		return ErrDuplicateID
	}
	m.pastes[paste.ID] = paste.Clone()
	return nil
}

// Get returns a copy of the stored paste.
func (m *MemoryStore) Get(_ context.Context, id string) (*models.Paste, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	paste, ok := m.pastes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return paste.Clone(), nil
}

// ConsumeView increments the view count while holding the store lock, so the
// availability check and the increment are a single atomic step.
func (m *MemoryStore) ConsumeView(_ context.Context, id string, now time.Time) (*models.Paste, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	paste, ok := m.pastes[id]
	if !ok {
		return nil, ErrNotFound
	}
	if paste.Expired(now) {
		return nil, ErrExpired
	}
	if paste.ViewsExhausted() {
		return nil, ErrViewLimit
	}

	paste.ViewCount++
	return paste.Clone(), nil
}

// Delete removes a paste; deleting an unknown id is a no-op.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pastes, id)
	return nil
}

// PurgeExpired sweeps out pastes whose expiry has passed.
func (m *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var purged int64
	for id, paste := range m.pastes {
		if paste.Expired(now) {
			delete(m.pastes, id)
			purged++
		}
	}
	return purged, nil
}

// Ping always succeeds for the in-memory backend.
func (m *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op for the in-memory backend.
func (m *MemoryStore) Close() error { return nil }
