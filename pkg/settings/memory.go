package settings

import (
	"context"
	"sync"
)

// MemoryStore keeps Settings in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.Mutex
	s     Settings
	saves int

	// LoadErr and SaveErr, when set, are returned instead of doing the work
	LoadErr error
	SaveErr error
}

// NewMemoryStore returns a store holding initial
func NewMemoryStore(initial Settings) *MemoryStore {
	return &MemoryStore{s: initial}
}

// Load implements Store
func (m *MemoryStore) Load(_ context.Context) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return Settings{}, m.LoadErr
	}
	return m.s, nil
}

// Save implements Store
func (m *MemoryStore) Save(_ context.Context, s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.s = s
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
