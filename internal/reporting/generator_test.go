package reporting

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"bet-ledger/internal/bankroll"
	"bet-ledger/internal/betcalc"
	"bet-ledger/internal/domain"
	"bet-ledger/internal/recovery"
	"bet-ledger/internal/storage"
	"bet-ledger/internal/storage/memory"
	"bet-ledger/internal/strategy"
)

var fixedTime = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func setupTestData(t *testing.T) *Generator {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	now := func() time.Time { return fixedTime }

	calc := betcalc.NewCalculator(betcalc.CalculatorOptions{Store: store, Logger: zerolog.Nop(), Now: now})
	plans := bankroll.NewManager(bankroll.ManagerOptions{Store: store, Logger: zerolog.Nop(), Now: now})
	catalog := strategy.NewCatalog(strategy.CatalogOptions{Store: store, Logger: zerolog.Nop(), Now: now})

	// history, most recent first: [20 win, 10 loss, 5 pending]
	for _, amount := range []float64{5, 10, 20} {
		if _, err := calc.Calculate(ctx, amount, 2, 50); err != nil {
			t.Fatalf("Calculate failed: %v", err)
		}
	}
	if _, err := calc.Resolve(ctx, 0, domain.OutcomeWin); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, err := calc.Resolve(ctx, 1, domain.OutcomeLoss); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if _, err := plans.CreatePlan(ctx, "Weekend", "Custom", []float64{2, 2}); err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	if err := plans.Select(ctx, domain.PlanBalanced); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	for _, amount := range []float64{12.5, 7.25} {
		if _, err := plans.AddExpense(ctx, amount); err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
	}

	if _, err := catalog.Create(ctx, "t", "d", "c", "i"); err != nil {
		t.Fatalf("Create strategy failed: %v", err)
	}

	return NewGenerator(calc, plans, catalog).WithClock(now)
}

func TestGenerator_Generate(t *testing.T) {
	gen := setupTestData(t)

	report, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.GeneratedAt.Equal(fixedTime) {
		t.Errorf("GeneratedAt = %v, want %v", report.GeneratedAt, fixedTime)
	}
	if len(report.Bets) != 3 {
		t.Fatalf("Expected 3 bets, got %d", len(report.Bets))
	}
	if report.Totals.Wins != 20 || report.Totals.Losses != 10 {
		t.Errorf("Totals = %+v, want wins 20 losses 10", report.Totals)
	}
	if report.PlanCount != 4 || report.CustomPlans != 1 {
		t.Errorf("PlanCount=%d CustomPlans=%d, want 4 and 1", report.PlanCount, report.CustomPlans)
	}
	if report.SelectedPlan == nil || report.SelectedPlan.ID != domain.PlanBalanced {
		t.Errorf("SelectedPlan = %+v, want balanced", report.SelectedPlan)
	}
	if got := report.ExpenseTotal(); got != 19.75 {
		t.Errorf("ExpenseTotal = %v, want 19.75", got)
	}
	if report.StrategyCount != 1 {
		t.Errorf("StrategyCount = %d, want 1", report.StrategyCount)
	}
}

func TestGenerator_BetsOnly(t *testing.T) {
	calc := betcalc.NewCalculator(betcalc.CalculatorOptions{Store: memory.NewStore(), Logger: zerolog.Nop()})

	report, err := NewGenerator(calc, nil, nil).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if report.SelectedPlan != nil || report.StrategyCount != 0 {
		t.Errorf("Expected empty bankroll and strategy sections, got %+v", report)
	}
}

func TestGenerator_ReadOnly(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	calc := betcalc.NewCalculator(betcalc.CalculatorOptions{Store: store, Logger: zerolog.Nop()})
	plans := bankroll.NewManager(bankroll.ManagerOptions{Store: store, Logger: zerolog.Nop()})

	report, err := NewGenerator(calc, plans, nil).Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if report.SelectedPlan == nil || report.SelectedPlan.ID != domain.PlanConservative {
		t.Errorf("SelectedPlan = %+v, want conservative", report.SelectedPlan)
	}
	if n := len(store.Snapshot()); n != 0 {
		t.Errorf("Generate wrote %d keys, want none", n)
	}
	if _, ok, _ := store.Get(ctx, storage.KeySelectedPlan); ok {
		t.Error("fallback selection was persisted")
	}
}

type failingBets struct{}

func (failingBets) History(context.Context) ([]domain.BetCalculation, error) {
	return nil, errors.New("boom")
}

func (failingBets) Totals(context.Context) (domain.BetTotals, error) {
	return domain.BetTotals{}, nil
}

func TestGenerator_PropagatesErrors(t *testing.T) {
	_, err := NewGenerator(failingBets{}, nil, nil).Generate(context.Background())
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Expected wrapped source error, got %v", err)
	}
}

func TestRenderMarkdown(t *testing.T) {
	gen := setupTestData(t)
	report, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	plan, err := recovery.NewGenerator(recovery.GeneratorOptions{Logger: zerolog.Nop()}).Generate(100, 2, 0)
	if err != nil {
		t.Fatalf("recovery Generate failed: %v", err)
	}
	report.Recovery = plan

	md := RenderMarkdown(report)

	expected := []string{
		"# Betting Ledger Report",
		"Generated: 2025-01-15T12:00:00Z",
		"| Total Wins | 20.00 |",
		"| Total Losses | 10.00 |",
		"| Net | 10.00 |",
		"| Pending Bets | 1 |",
		"| 0 | 2025-01-15T12:00:00Z | 20.00 | 2 | 50 | 20.00 | 20.00 | WIN |",
		"| 2 | 2025-01-15T12:00:00Z | 5.00 | 2 | 50 | 5.00 | 5.00 | PENDING |",
		"Selected plan: **Balanced** (Medium), 1 of 4 plans are custom.",
		"| Day 4 | 15 |",
		"Today's expenses: 2 entries, total 19.75.",
		"User strategies: 1",
		"## Recovery Plan",
		"| Bets Needed | 10 |",
		"| Total Investment | 100.00 |",
		"| Final Net Position | 100.00 |",
	}
	for _, s := range expected {
		if !strings.Contains(md, s) {
			t.Errorf("Markdown missing %q", s)
		}
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(&Report{GeneratedAt: fixedTime})

	for _, s := range []string{"No bets recorded.", "No expenses recorded today.", "User strategies: 0"} {
		if !strings.Contains(md, s) {
			t.Errorf("Markdown missing %q", s)
		}
	}
	if strings.Contains(md, "## Recovery Plan") {
		t.Error("Recovery section must be omitted without a plan")
	}
}

func TestRenderBetsCSV(t *testing.T) {
	bets := []domain.BetCalculation{
		{Amount: 10, Odds: 1.91, Percentage: 100, PotentialWin: 19.1, PotentialLoss: 10, Timestamp: "3/1/2024, 1:00:00 PM", Outcome: domain.OutcomeWin},
		{Amount: 0.333, Odds: 2, Percentage: 33.333, PotentialWin: 0.222, PotentialLoss: 0.333, Timestamp: "2024-03-01T00:00:00Z"},
	}

	out, err := RenderBetsCSV(bets)
	if err != nil {
		t.Fatalf("RenderBetsCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "index,timestamp,amount,odds,percentage,potential_win,potential_loss,outcome" {
		t.Errorf("Unexpected header: %s", lines[0])
	}
	if lines[1] != `0,"3/1/2024, 1:00:00 PM",10.00,1.91,100,19.10,10.00,WIN` {
		t.Errorf("Unexpected row: %s", lines[1])
	}
	if lines[2] != "1,2024-03-01T00:00:00Z,0.33,2,33.33,0.22,0.33," {
		t.Errorf("Unexpected row: %s", lines[2])
	}
}

func TestRenderRecoveryCSV(t *testing.T) {
	plan, err := recovery.NewGenerator(recovery.GeneratorOptions{Logger: zerolog.Nop()}).Generate(100, 1.5, 30)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	out, err := RenderRecoveryCSV(plan)
	if err != nil {
		t.Fatalf("RenderRecoveryCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 8 {
		t.Fatalf("Expected header + 7 steps, got %d lines", len(lines))
	}
	if lines[1] != "1,30.00,15.00,85.00,30.00,-55.00" {
		t.Errorf("Unexpected first step: %s", lines[1])
	}
	if lines[7] != "7,30.00,15.00,0.00,210.00,215.00" {
		t.Errorf("Unexpected last step: %s", lines[7])
	}
}

func TestRenderBetsCSV_NonFiniteTotals(t *testing.T) {
	bets := []domain.BetCalculation{{
		Amount:       1e308,
		Odds:         2,
		Percentage:   100,
		PotentialWin: math.Inf(1),
		Timestamp:    "2024-03-01T00:00:00Z",
	}}

	out, err := RenderBetsCSV(bets)
	if err != nil {
		t.Fatalf("RenderBetsCSV failed: %v", err)
	}
	if !strings.Contains(out, "+Inf") {
		t.Errorf("Expected +Inf in output, got: %s", out)
	}

	if got := money(math.NaN()); got != "NaN" {
		t.Errorf("money(NaN) = %q", got)
	}
}
