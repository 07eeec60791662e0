package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"bet-ledger/internal/storage"
)

// KVStore implements storage.Store using the kv_store table.
type KVStore struct {
	pool *Pool
}

// NewKVStore creates a new KVStore.
func NewKVStore(pool *Pool) *KVStore {
	return &KVStore{pool: pool}
}

// Compile-time interface check.
var _ storage.Store = (*KVStore)(nil)

// Get returns the document stored under key.
func (s *KVStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, false, err
	}

	query := `SELECT value FROM kv_store WHERE key = $1`

	var value []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if isNotFoundError(err) {
			return nil, false, nil
		}
		if IsUndefinedTableError(err) {
			return nil, false, fmt.Errorf("get %s: kv_store missing, run migrations: %w", key, err)
		}
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

// Set upserts the document stored under key.
func (s *KVStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if !json.Valid(value) {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, key, string(value)); err != nil {
		if IsUndefinedTableError(err) {
			return fmt.Errorf("set %s: kv_store missing, run migrations: %w", key, err)
		}
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying pool.
func (s *KVStore) Close() error {
	s.pool.Close()
	return nil
}
