package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bet-ledger/internal/storage"
)

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.json")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "a", json.RawMessage(`{"version":1,"data":[1,2]}`)))
	require.NoError(t, s.Set(ctx, "b", json.RawMessage(`true`)))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)

	got, ok, err := reopened.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"version":1,"data":[1,2]}`, string(got))

	got, ok, err = reopened.Get(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `true`, string(got))
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	_, ok, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, storage.ErrCorruptRecord)
}

func TestStore_NullDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NotPanics(t, func() {
		require.NoError(t, s.Set(ctx, "k", json.RawMessage(`1`)))
	})

	reopened, err := Open(path)
	require.NoError(t, err)
	got, ok, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `1`, string(got))
}

func TestStore_RejectsInvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	s, err := Open(path)
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, s.Set(ctx, "k", json.RawMessage(`nope`)), storage.ErrInvalidInput)
	assert.ErrorIs(t, s.Set(ctx, "", json.RawMessage(`1`)), storage.ErrInvalidKey)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "rejected writes must not create the file")
}

func TestStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "ledger.json"))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Set(context.Background(), "k", json.RawMessage(`1`)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
