package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"bet-ledger/internal/bankroll"
	"bet-ledger/internal/betcalc"
	"bet-ledger/internal/config"
	"bet-ledger/internal/logging"
	"bet-ledger/internal/recovery"
	"bet-ledger/internal/reporting"
	"bet-ledger/internal/storage/backend"
	"bet-ledger/internal/strategy"
)

type options struct {
	configPath string
	outputDir  string
	loss       string
	odds       string
	bet        string
}

func main() {
	// Parse flags
	var opts options
	flag.StringVar(&opts.configPath, "config", os.Getenv("BETLEDGER_CONFIG"), "Path to YAML config file")
	flag.StringVar(&opts.outputDir, "output-dir", "reports", "Output directory for generated files")
	flag.StringVar(&opts.loss, "loss", "", "Loss amount for an optional recovery plan")
	flag.StringVar(&opts.odds, "odds", "", "Decimal odds for the recovery plan")
	flag.StringVar(&opts.bet, "bet", "", "Bet amount for the recovery plan (default: share of the loss)")
	flag.Parse()

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run generates the report without writing to the store.
func run(ctx context.Context, opts options) (err error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.JSON)

	store, err := backend.Open(ctx, cfg.Storage, nil, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()

	calc := betcalc.NewCalculator(betcalc.CalculatorOptions{Store: store, Logger: logger})
	plans := bankroll.NewManager(bankroll.ManagerOptions{Store: store, Logger: logger})
	catalog := strategy.NewCatalog(strategy.CatalogOptions{Store: store, Logger: logger})

	report, err := reporting.NewGenerator(calc, plans, catalog).Generate(ctx)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if opts.loss != "" || opts.odds != "" {
		gen := recovery.NewGenerator(recovery.GeneratorOptions{
			DefaultBetFraction: cfg.Recovery.DefaultBetFraction,
			MaxSteps:           cfg.Recovery.MaxSteps,
			Logger:             logger,
		})
		plan, err := gen.GenerateInput(opts.loss, opts.odds, opts.bet)
		if err != nil {
			return fmt.Errorf("recovery plan: %w", err)
		}
		report.Recovery = plan
	}

	if err := writeOutputs(opts.outputDir, report, logger); err != nil {
		return err
	}

	fmt.Println("Ledger report generated successfully:")
	fmt.Printf("  - %s/REPORT.md\n", opts.outputDir)
	fmt.Printf("  - %s/BETS.csv\n", opts.outputDir)
	if report.Recovery != nil {
		fmt.Printf("  - %s/RECOVERY.csv\n", opts.outputDir)
	}
	return nil
}

func writeOutputs(dir string, r *reporting.Report, logger zerolog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := map[string]string{
		"REPORT.md": reporting.RenderMarkdown(r),
	}

	bets, err := reporting.RenderBetsCSV(r.Bets)
	if err != nil {
		return fmt.Errorf("render bets csv: %w", err)
	}
	files["BETS.csv"] = bets

	if r.Recovery != nil {
		rec, err := reporting.RenderRecoveryCSV(r.Recovery)
		if err != nil {
			return fmt.Errorf("render recovery csv: %w", err)
		}
		files["RECOVERY.csv"] = rec
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug().Str("path", path).Msg("wrote report file")
	}
	return nil
}
