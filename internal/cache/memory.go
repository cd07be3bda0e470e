package cache

import (
	"context"
	"sync"
)

// MemoryStore — потокобезопасный in-memory HashStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemoryStore создаёт пустой MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

// HGet возвращает значение поля.
func (s *MemoryStore) HGet(_ context.Context, key, field string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.data[key]
	if !ok {
		return "", false, nil
	}
	v, ok := fields[field]
	return v, ok, nil
}

// HSet записывает значение поля.
func (s *MemoryStore) HSet(_ context.Context, key, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, ok := s.data[key]
	if !ok {
		fields = make(map[string]string)
		s.data[key] = fields
	}
	fields[field] = value
	return nil
}
