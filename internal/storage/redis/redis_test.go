package redis_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"bet-ledger/internal/storage"
	"bet-ledger/internal/storage/redis"
)

func setupRedis(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestKVStore_SetAndGet(t *testing.T) {
	url := setupRedis(t)
	ctx := context.Background()

	store, err := redis.Open(ctx, url, "")
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get(ctx, storage.KeyCustomPlans)
	require.NoError(t, err)
	assert.False(t, ok)

	value := json.RawMessage(`{"version":1,"data":[]}`)
	require.NoError(t, store.Set(ctx, storage.KeyCustomPlans, value))

	got, ok, err := store.Get(ctx, storage.KeyCustomPlans)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, string(value), string(got))
}

func TestKVStore_Prefix(t *testing.T) {
	url := setupRedis(t)
	ctx := context.Background()

	store, err := redis.Open(ctx, url, "tenant-a")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "k", json.RawMessage(`true`)))

	opts, err := goredis.ParseURL(url)
	require.NoError(t, err)
	raw := goredis.NewClient(opts)
	defer raw.Close()

	v, err := raw.Get(ctx, "tenant-a:k").Result()
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	other, err := redis.Open(ctx, url, "tenant-b")
	require.NoError(t, err)
	defer other.Close()

	_, ok, err := other.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "prefixes must isolate keys")
}

func TestKVStore_InvalidInput(t *testing.T) {
	store := redis.NewKVStore(goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"}), "")
	defer store.Close()
	ctx := context.Background()

	assert.ErrorIs(t, store.Set(ctx, "", json.RawMessage(`1`)), storage.ErrInvalidKey)
	assert.ErrorIs(t, store.Set(ctx, "k", json.RawMessage(`{`)), storage.ErrInvalidInput)
	_, _, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, storage.ErrInvalidKey)
}

func TestOpen_BadURL(t *testing.T) {
	_, err := redis.Open(context.Background(), "http://nope", "")
	assert.Error(t, err)
}
