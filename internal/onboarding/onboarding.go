// Package onboarding tracks whether the user finished the first-run walkthrough.
package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"bet-ledger/internal/storage"
)

// flagSchema stores the flag as a JSON boolean. Version 0 values may be the
// string "true".
var flagSchema = storage.Schema{
	Key:     storage.KeyOnboarding,
	Version: 1,
	Migrations: map[int]storage.Migration{
		0: migrateFlagV0,
	},
}

// Tracker reads and sets the onboarding flag.
type Tracker struct {
	store storage.Store
}

// NewTracker creates a Tracker over store.
func NewTracker(store storage.Store) *Tracker {
	return &Tracker{store: store}
}

// Completed reports whether onboarding was completed. An absent flag is false.
func (t *Tracker) Completed(ctx context.Context) (bool, error) {
	var done bool
	if _, err := storage.Load(ctx, t.store, flagSchema, &done); err != nil {
		return false, fmt.Errorf("load onboarding flag: %w", err)
	}
	return done, nil
}

// Complete marks onboarding as completed.
func (t *Tracker) Complete(ctx context.Context) error {
	if err := storage.Save(ctx, t.store, flagSchema, true); err != nil {
		return fmt.Errorf("save onboarding flag: %w", err)
	}
	return nil
}

func migrateFlagV0(data json.RawMessage) (json.RawMessage, error) {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return json.Marshal(b)
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode legacy onboarding flag: %v: %w", err, storage.ErrCorruptRecord)
	}
	b, _ = strconv.ParseBool(s)
	return json.Marshal(b)
}
