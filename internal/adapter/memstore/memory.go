package memstore

import (
	"fmt"
	"sync"

	"sniff/internal/domain"
)

// MemoryStore is an in-memory catalog store sharing the persistence
// contract of the JSON file store. It backs tests and embedded use where
// no file should be touched.
type MemoryStore struct {
	mu      sync.RWMutex
	catalog domain.Catalog
	seeded  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewSeededStore starts out holding the given catalog, as if it had been
// saved before.
func NewSeededStore(c domain.Catalog) *MemoryStore {
	return &MemoryStore{catalog: c.Clone(), seeded: true}
}

func (s *MemoryStore) Load() (domain.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.seeded {
		return domain.Catalog{}, fmt.Errorf("catalog not initialized")
	}
	return s.catalog.Clone(), nil
}

func (s *MemoryStore) Save(c domain.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = c.Clone()
	s.seeded = true
	return nil
}

func (s *MemoryStore) EnsureExists(seed *domain.Catalog) (domain.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return s.catalog.Clone(), nil
	}
	c := domain.Catalog{SchemaVersion: 1}
	if seed != nil {
		c = seed.Clone()
	}
	s.catalog = c
	s.seeded = true
	return s.catalog.Clone(), nil
}
