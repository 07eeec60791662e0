// Package main runs the ledger HTTP server:
// - REST API for bets, bankroll plans, expenses, recovery plans, strategies
// - WebSocket change feed on /ws
// - Prometheus metrics on /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"bet-ledger/internal/api"
	"bet-ledger/internal/bankroll"
	"bet-ledger/internal/betcalc"
	"bet-ledger/internal/config"
	"bet-ledger/internal/logging"
	"bet-ledger/internal/notify"
	"bet-ledger/internal/observability"
	"bet-ledger/internal/onboarding"
	"bet-ledger/internal/recovery"
	"bet-ledger/internal/storage/backend"
	"bet-ledger/internal/strategy"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	configPath := flag.String("config", os.Getenv("BETLEDGER_CONFIG"), "Path to YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	backendName := flag.String("backend", "", "Storage backend: memory, file, postgres, redis, clickhouse (overrides config)")
	filePath := flag.String("file-path", "", "File backend path (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		fatal(err)
	}
	override(&cfg.Server.Addr, *addr)
	override(&cfg.Storage.Backend, *backendName)
	override(&cfg.Storage.FilePath, *filePath)
	override(&cfg.Log.Level, *logLevel)
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.JSON)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics("bet_ledger", reg)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := backend.Open(ctx, cfg.Storage, metrics, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close store")
		}
	}()

	hub := notify.NewHub(notify.HubOptions{
		Logger:         logger,
		Metrics:        metrics,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	go hub.Run(ctx)

	router := api.NewRouter(api.Options{
		Calculator: betcalc.NewCalculator(betcalc.CalculatorOptions{
			Store:   store,
			Logger:  logger,
			Metrics: metrics,
		}),
		Bankroll: bankroll.NewManager(bankroll.ManagerOptions{
			Store:   store,
			Logger:  logger,
			Metrics: metrics,
		}),
		Recovery: recovery.NewGenerator(recovery.GeneratorOptions{
			DefaultBetFraction: cfg.Recovery.DefaultBetFraction,
			MaxSteps:           cfg.Recovery.MaxSteps,
			Logger:             logger,
			Metrics:            metrics,
		}),
		Strategies: strategy.NewCatalog(strategy.CatalogOptions{
			Store:   store,
			Logger:  logger,
			Metrics: metrics,
		}),
		Onboarding:     onboarding.NewTracker(store),
		Publisher:      hub,
		Feed:           hub,
		Gatherer:       reg,
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Str("backend", cfg.Storage.Backend).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	cancel()

	logger.Info().Msg("shutdown complete")
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func fatal(err error) {
	l := zerolog.New(os.Stderr).With().Timestamp().Logger()
	l.Fatal().Err(err).Msg("invalid configuration")
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)

		// Don't override existing env vars
		if _, set := os.LookupEnv(key); !set {
			os.Setenv(key, strings.TrimSpace(value))
		}
	}
}
