package storage

import (
	"context"
	"encoding/json"
)

// Store is a durable key-value store of JSON documents.
//
// Set overwrites the whole value for a key; the last writer wins. A missing key
// is not an error: Get reports ok=false and callers supply their own default.
// There are no multi-key transactions.
type Store interface {
	// Get returns the raw JSON stored under key.
	Get(ctx context.Context, key string) (value json.RawMessage, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value json.RawMessage) error
}

// Closer is implemented by backends holding connections or file handles.
type Closer interface {
	Close() error
}
