package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps session storage in process. Used in tests and for
// single-instance development runs.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: map[string]map[string]string{}}
}

func (m *MemoryBackend) Get(_ context.Context, sid, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[sid][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryBackend) Set(_ context.Context, sid, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[sid]
	if !ok {
		ns = map[string]string{}
		m.data[sid] = ns
	}
	ns[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, sid string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[sid]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(ns, k)
	}
	if len(ns) == 0 {
		delete(m.data, sid)
	}
	return nil
}

// Len returns the number of keys stored for sid.
func (m *MemoryBackend) Len(sid string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[sid])
}
