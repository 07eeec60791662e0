// Package backend opens the storage backend selected in configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"bet-ledger/internal/config"
	"bet-ledger/internal/observability"
	"bet-ledger/internal/storage"
	chstore "bet-ledger/internal/storage/clickhouse"
	"bet-ledger/internal/storage/file"
	"bet-ledger/internal/storage/memory"
	"bet-ledger/internal/storage/migrations"
	pgstore "bet-ledger/internal/storage/postgres"
	redisstore "bet-ledger/internal/storage/redis"
)

// Open connects to cfg.Backend and returns an instrumented store.
// The returned store must be closed by the caller.
func Open(ctx context.Context, cfg config.StorageConfig, metrics *observability.Metrics, logger zerolog.Logger) (*storage.InstrumentedStore, error) {
	store, err := open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	logger.Info().Str("backend", cfg.Backend).Msg("store opened")
	return storage.Instrumented(store, metrics, cfg.Backend), nil
}

func open(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil

	case config.BackendFile:
		return file.Open(cfg.FilePath)

	case config.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			applied, err := migrations.RunPostgresMigrations(ctx, pool)
			if err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			for _, name := range applied {
				logger.Info().Str("migration", name).Msg("postgres migration applied")
			}
		}
		return pgstore.NewKVStore(pool), nil

	case config.BackendRedis:
		return redisstore.Open(ctx, cfg.RedisURL, cfg.RedisPrefix)

	case config.BackendClickhouse:
		var (
			conn *chstore.Conn
			err  error
		)
		if cfg.Migrate {
			var applied []string
			conn, applied, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
			for _, name := range applied {
				logger.Info().Str("migration", name).Msg("clickhouse migration applied")
			}
		} else {
			conn, err = chstore.NewConn(ctx, cfg.ClickhouseDSN)
		}
		if err != nil {
			return nil, err
		}
		return chstore.NewKVStore(conn), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
