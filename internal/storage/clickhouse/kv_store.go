package clickhouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"bet-ledger/internal/storage"
)

// KVStore implements storage.Store on a ReplacingMergeTree table.
// Every Set appends a row with a higher version; Get reads the latest one.
type KVStore struct {
	conn *Conn

	mu          sync.Mutex
	lastVersion uint64
}

// NewKVStore creates a new KVStore.
func NewKVStore(conn *Conn) *KVStore {
	return &KVStore{conn: conn}
}

// Compile-time interface check.
var _ storage.Store = (*KVStore)(nil)

// Get returns the latest document stored under key.
func (s *KVStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, false, err
	}

	query := `
		SELECT argMax(value, version)
		FROM kv_store
		WHERE key = ?
		GROUP BY key
	`

	var value string
	if err := s.conn.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

// Set appends a new version of key.
func (s *KVStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if !json.Valid(value) {
		return storage.ErrInvalidInput
	}

	query := `INSERT INTO kv_store (key, value, version) VALUES (?, ?, ?)`

	if err := s.conn.Exec(ctx, query, key, string(value), s.nextVersion()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *KVStore) Close() error {
	return s.conn.Close()
}

// nextVersion returns a strictly increasing nanosecond timestamp.
func (s *KVStore) nextVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := uint64(time.Now().UnixNano())
	if v <= s.lastVersion {
		v = s.lastVersion + 1
	}
	s.lastVersion = v
	return v
}
