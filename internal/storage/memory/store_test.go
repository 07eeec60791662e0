package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"bet-ledger/internal/storage"
)

func TestStore_SetAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.Set(ctx, "k", json.RawMessage(`[1,2,3]`))
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if string(got) != `[1,2,3]` {
		t.Errorf("value mismatch: got %s", got)
	}
}

func TestStore_MissingKey(t *testing.T) {
	store := NewStore()

	got, ok, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("missing key must not be an error: %v", err)
	}
	if ok || got != nil {
		t.Errorf("expected absent key, got ok=%v value=%s", ok, got)
	}
}

func TestStore_Overwrite(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_ = store.Set(ctx, "k", json.RawMessage(`1`))
	_ = store.Set(ctx, "k", json.RawMessage(`2`))

	got, _, _ := store.Get(ctx, "k")
	if string(got) != `2` {
		t.Errorf("last writer must win, got %s", got)
	}
}

func TestStore_CopyIsolation(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	value := json.RawMessage(`"abc"`)
	_ = store.Set(ctx, "k", value)
	value[1] = 'z'

	got, _, _ := store.Get(ctx, "k")
	if string(got) != `"abc"` {
		t.Errorf("stored value mutated through caller slice: %s", got)
	}

	got[1] = 'y'
	again, _, _ := store.Get(ctx, "k")
	if string(again) != `"abc"` {
		t.Errorf("stored value mutated through returned slice: %s", again)
	}
}

func TestStore_InvalidInput(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.Set(ctx, "", json.RawMessage(`1`)); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
	if err := store.Set(ctx, "k", json.RawMessage(`{bad`)); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := store.Get(ctx, ""); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "k", json.RawMessage(`true`))
		}()
		go func() {
			defer wg.Done()
			_, _, _ = store.Get(ctx, "k")
		}()
	}
	wg.Wait()

	if len(store.Snapshot()) != 1 {
		t.Errorf("expected exactly one key, got %d", len(store.Snapshot()))
	}
}
