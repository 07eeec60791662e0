package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bet-ledger/internal/domain"
	"bet-ledger/internal/storage"
	"bet-ledger/internal/storage/file"
)

func writeConfig(t *testing.T, dir, ledger string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("storage:\n  backend: file\n  file_path: %s\nlog:\n  level: error\n", ledger)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRun_LeavesStoreUntouched(t *testing.T) {
	dir := t.TempDir()
	ledger := filepath.Join(dir, "ledger.json")
	ctx := context.Background()

	store, err := file.Open(ledger)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, storage.KeySelectedPlan, json.RawMessage(`{"version":1,"data":"ghost"}`)))
	require.NoError(t, store.Close())

	before, err := os.ReadFile(ledger)
	require.NoError(t, err)

	out := filepath.Join(dir, "out")
	err = run(ctx, options{
		configPath: writeConfig(t, dir, ledger),
		outputDir:  out,
		loss:       "100",
		odds:       "2",
	})
	require.NoError(t, err)

	after, err := os.ReadFile(ledger)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "report must not rewrite the stale selection")

	report, err := os.ReadFile(filepath.Join(out, "REPORT.md"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "Conservative")
	assert.FileExists(t, filepath.Join(out, "BETS.csv"))
	assert.FileExists(t, filepath.Join(out, "RECOVERY.csv"))
}

func TestRun_ReturnsRecoveryError(t *testing.T) {
	dir := t.TempDir()

	err := run(context.Background(), options{
		configPath: writeConfig(t, dir, filepath.Join(dir, "ledger.json")),
		outputDir:  filepath.Join(dir, "out"),
		loss:       "100",
		odds:       "1",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NoFileExists(t, filepath.Join(dir, "out", "REPORT.md"))
}
