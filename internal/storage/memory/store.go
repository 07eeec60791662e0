package memory

import (
	"context"
	"encoding/json"
	"sync"

	"bet-ledger/internal/storage"
)

// Store is an in-memory implementation of storage.Store.
// Values do not survive a restart.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewStore creates a new empty in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, exists := s.data[key]
	if !exists {
		return nil, false, nil
	}

	// Return a copy
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set stores a copy of value under key.
func (s *Store) Set(_ context.Context, key string, value json.RawMessage) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if !json.Valid(value) {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutation
	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
	return nil
}

// Snapshot returns a copy of every key and value.
func (s *Store) Snapshot() map[string]json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]json.RawMessage, len(s.data))
	for k, v := range s.data {
		c := make([]byte, len(v))
		copy(c, v)
		out[k] = c
	}
	return out
}

// Verify interface compliance at compile time.
var _ storage.Store = (*Store)(nil)
