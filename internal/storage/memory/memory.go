package memory

import (
	"context"
	"sync"

	"melodi/internal/storage"
)

// Store keeps blobs in a map. Values are copied in and out.
type Store struct {
	mu    sync.Mutex
	items map[string][]byte
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// NewWith returns a store pre-seeded with key=value.
func NewWith(key string, value []byte) *Store {
	s := New()
	s.items[key] = append([]byte(nil), value...)
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), value...)
	return nil
}

// Len returns how many keys are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Close() error { return nil }
