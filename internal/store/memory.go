package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps collections in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Record)}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, collection string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateCollection(collection); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.collections[collection]), nil
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, collection string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateRecord(collection, rec); err != nil {
		return err
	}
	rec.Data = slices.Clone(rec.Data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = upsert(s.collections[collection], rec)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateCollection(collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = remove(s.collections[collection], id)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
