package onboarding

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bet-ledger/internal/storage"
	"bet-ledger/internal/storage/memory"
)

func TestTracker(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tr := NewTracker(store)

	done, err := tr.Completed(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, tr.Complete(ctx))
	done, err = tr.Completed(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	raw, _, err := store.Get(ctx, storage.KeyOnboarding)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"data":true}`, string(raw))
}

func TestTracker_LegacyValues(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`"true"`, true},
		{`"false"`, false},
		{`"yes"`, false},
		{`false`, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewStore()
			require.NoError(t, store.Set(ctx, storage.KeyOnboarding, json.RawMessage(tt.raw)))

			done, err := NewTracker(store).Completed(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, done)
		})
	}
}

func TestTracker_CorruptValue(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, storage.KeyOnboarding, json.RawMessage(`[1]`)))

	_, err := NewTracker(store).Completed(ctx)
	assert.ErrorIs(t, err, storage.ErrCorruptRecord)
}
