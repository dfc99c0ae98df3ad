package objectstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// InMemoryStore is a trivial in‑process Store implementation useful for
// tests, examples and offline runs. It keeps all objects in a nested map
// guarded by an RWMutex. Data is copied on put / fetch to avoid accidental
// external mutation of internal buffers.
//
// Layout: bucket -> key -> raw bytes
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string]map[string][]byte // bucket -> key -> data
}

// NewInMemoryStore returns an empty in‑memory object store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string]map[string][]byte)}
}

// Put stores (or overwrites) the object bytes for the given bucket and key.
// The input slice is copied before storage.
func (s *InMemoryStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[bucket]; !exists {
		s.objects[bucket] = make(map[string][]byte)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[bucket][key] = cp
	return nil
}

// Fetch returns a copy of the stored bytes or ErrNotFound.
func (s *InMemoryStore) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.objects[bucket]
	if !ok {
		return nil, fmt.Errorf("%w: bucket %s", ErrNotFound, bucket)
	}
	data, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the sorted keys stored in bucket. The slice is a snapshot and
// safe for caller mutation.
func (s *InMemoryStore) List(bucket string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.objects[bucket]
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Delete removes the object if present or returns ErrNotFound.
func (s *InMemoryStore) Delete(bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.objects[bucket]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m[key]; !ok {
		return ErrNotFound
	}
	delete(m, key)
	return nil
}
