package storage

import (
	"context"
	"encoding/json"
	"time"

	"bet-ledger/internal/observability"
)

// InstrumentedStore records latency and errors of every operation.
type InstrumentedStore struct {
	next    Store
	metrics *observability.Metrics
	backend string
}

// Instrumented wraps next so each Get and Set is recorded under backend.
func Instrumented(next Store, metrics *observability.Metrics, backend string) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: metrics, backend: backend}
}

// Compile-time interface check.
var _ Store = (*InstrumentedStore)(nil)

// Get implements Store.
func (s *InstrumentedStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	start := time.Now()
	v, ok, err := s.next.Get(ctx, key)
	s.metrics.RecordStoreOp(s.backend, "get", time.Since(start).Seconds(), err)
	return v, ok, err
}

// Set implements Store.
func (s *InstrumentedStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.metrics.RecordStoreOp(s.backend, "set", time.Since(start).Seconds(), err)
	return err
}

// Close closes the wrapped store when it holds resources.
func (s *InstrumentedStore) Close() error {
	if c, ok := s.next.(Closer); ok {
		return c.Close()
	}
	return nil
}
