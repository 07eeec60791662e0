package backend

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bet-ledger/internal/config"
	"bet-ledger/internal/observability"
)

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()
	m := observability.NewMetrics("test", prometheus.NewRegistry())

	store, err := Open(ctx, config.StorageConfig{Backend: config.BackendMemory}, m, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "k", json.RawMessage(`1`)))
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 2, testutil.CollectAndCount(m.StoreOpDuration), "one series per op")
}

func TestOpen_FileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	cfg := config.StorageConfig{Backend: config.BackendFile, FilePath: filepath.Join(t.TempDir(), "ledger.json")}

	store, err := Open(ctx, cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "k", json.RawMessage(`"v"`)))
	require.NoError(t, store.Close())

	store, err = Open(ctx, cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `"v"`, string(v))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Backend: "etcd"}, nil, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown backend")
}

func TestOpen_UnreachableRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	_, err := Open(context.Background(), config.StorageConfig{
		Backend:  config.BackendRedis,
		RedisURL: "redis://127.0.0.1:1/0",
	}, nil, zerolog.Nop())
	assert.Error(t, err)
}
