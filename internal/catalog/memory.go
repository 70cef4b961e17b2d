package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store for tests and single-run CLI usage
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// Put adds an entry, rejecting duplicates
func (s *MemoryStore) Put(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[e.FactorName]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, e.FactorName)
	}
	s.entries[e.FactorName] = e
	return nil
}

// Get returns an entry by factor name
func (s *MemoryStore) Get(_ context.Context, factorName string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[factorName]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, factorName)
	}
	return e, nil
}

// List returns all entries sorted by factor name
func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FactorName < out[j].FactorName })
	return out, nil
}

// Delete removes an entry by factor name
func (s *MemoryStore) Delete(_ context.Context, factorName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[factorName]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, factorName)
	}
	delete(s.entries, factorName)
	return nil
}
