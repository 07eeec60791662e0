// Package file implements storage.Store as a single JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"bet-ledger/internal/storage"
)

// Store keeps every key in one JSON object file.
// Each Set rewrites the file through a temp file and rename, so a crash
// leaves either the previous or the new document on disk.
type Store struct {
	mu   sync.RWMutex
	path string
	data map[string]json.RawMessage
}

// Open loads the document at path, creating parent directories as needed.
// A missing file is an empty store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("file store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	s := &Store{path: path, data: make(map[string]json.RawMessage)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode store file %s: %v: %w", path, err, storage.ErrCorruptRecord)
	}
	// A document of null decodes to a nil map.
	if s.data == nil {
		s.data = make(map[string]json.RawMessage)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out, true, nil
}

// Set stores value under key and flushes the document to disk.
func (s *Store) Set(_ context.Context, key string, value json.RawMessage) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if !json.Valid(value) {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	v := make(json.RawMessage, len(value))
	copy(v, value)
	s.data[key] = v

	if err := s.flush(); err != nil {
		// Keep memory consistent with disk.
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

// Close is a no-op; every Set is already durable.
func (s *Store) Close() error {
	return nil
}

// flush writes the document atomically. Caller holds s.mu.
func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// Verify interface compliance at compile time.
var (
	_ storage.Store  = (*Store)(nil)
	_ storage.Closer = (*Store)(nil)
)
