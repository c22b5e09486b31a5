package storage

import (
	"context"
	"sync"
)

// Memory keeps values in process memory. Used by tests and STORAGE_DRIVER=memory.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) GetItem(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) SetItem(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.items[key] = v
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Len reports how many keys are stored
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// MemoryFactory hands out one namespace per session. A session's Memory is only
// allocated on its first write and released once its last key is removed, so
// sessions that never store anything cost nothing.
type MemoryFactory struct {
	mu       sync.Mutex
	sessions map[string]*Memory
}

func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{sessions: make(map[string]*Memory)}
}

func (f *MemoryFactory) Open(sessionID string) LocalStorage {
	return &memorySession{factory: f, id: sessionID}
}

// Len reports how many sessions hold data
func (f *MemoryFactory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

type memorySession struct {
	factory *MemoryFactory
	id      string
}

func (s *memorySession) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()

	m, ok := s.factory.sessions[s.id]
	if !ok {
		return nil, false, nil
	}
	return m.GetItem(ctx, key)
}

func (s *memorySession) SetItem(ctx context.Context, key string, value []byte) error {
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()

	m, ok := s.factory.sessions[s.id]
	if !ok {
		m = NewMemory()
		s.factory.sessions[s.id] = m
	}
	return m.SetItem(ctx, key, value)
}

func (s *memorySession) RemoveItem(ctx context.Context, key string) error {
	s.factory.mu.Lock()
	defer s.factory.mu.Unlock()

	m, ok := s.factory.sessions[s.id]
	if !ok {
		return nil
	}
	if err := m.RemoveItem(ctx, key); err != nil {
		return err
	}
	if m.Len() == 0 {
		delete(s.factory.sessions, s.id)
	}
	return nil
}
