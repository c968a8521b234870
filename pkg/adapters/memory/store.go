package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/workpad/pkg/domain"
)

// Store implements ports.WorkpadStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Workpad
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store, optionally seeded with workpads.
func NewStore(seed ...*domain.Workpad) *Store {
	s := &Store{
		data: make(map[string]*domain.Workpad, len(seed)),
	}
	for _, wp := range seed {
		s.data[wp.ID] = wp.Clone()
	}
	return s
}

// Save persists the workpad in memory.
func (s *Store) Save(ctx context.Context, wp *domain.Workpad) error {
	// Deep copy so later edits to shared Extra maps cannot reach the store.
	copied := wp.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[wp.ID] = copied
	return nil
}

// Load retrieves the workpad from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Workpad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wp, ok := s.data[id]
	if !ok {
		return nil, domain.ErrWorkpadNotFound
	}

	// Copy on read so the caller can't mutate store state through the pointer.
	return wp.Clone(), nil
}

// Delete removes the workpad.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns all stored workpad IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
