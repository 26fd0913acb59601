package memory

import (
	"context"
	"sync"

	"wealthwise/internal/storage"
)

var (
	_ storage.BlobStore = (*Store)(nil)
	_ storage.Pinger    = (*Store)(nil)
)

// Store keeps blobs in process memory. Contents are lost on restart.
type Store struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// Len reports how many keys are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

func (s *Store) Ping(context.Context) error {
	return nil
}
