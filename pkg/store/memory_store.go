package store

import (
	"context"
	"sync"

	"github.com/goliatone/go-fixtures/layering"
)

// MemoryStore is an in-memory Store intended for tests and examples. Values
// are copied on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[Kind]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[Kind]map[string]any{}}
}

func (s *MemoryStore) Load(_ context.Context, kind Kind) (map[string]any, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.records[kind]
	if records == nil {
		return map[string]any{}, nil
	}
	return layering.Clone(records), nil
}

func (s *MemoryStore) Save(_ context.Context, kind Kind, name string, value any) error {
	if err := kind.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		s.records = map[Kind]map[string]any{}
	}
	if s.records[kind] == nil {
		s.records[kind] = map[string]any{}
	}
	s.records[kind][name] = layering.Clone(value)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, kind Kind) error {
	if err := kind.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.records, kind)
	s.mu.Unlock()
	return nil
}
