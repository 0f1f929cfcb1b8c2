package session

import (
	"context"
	"sync"
)

// Memory is an in-process Persistence, used by tests and as a fallback when no
// durable backend is available.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory returns an empty in-memory persistence
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Read(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{User: m.values[KeyUser], Token: m.values[KeyToken]}, nil
}

func (m *Memory) Write(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[KeyUser] = snap.User
	m.values[KeyToken] = snap.Token
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, KeyUser)
	delete(m.values, KeyToken)
	return nil
}

// Set stores a single raw key, which lets tests seed partial or malformed state
func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Get returns a single raw key
func (m *Memory) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}
