package reporting

import (
	"context"
	"fmt"
	"time"

	"bet-ledger/internal/domain"
)

// BetSource provides the bet ledger.
type BetSource interface {
	History(ctx context.Context) ([]domain.BetCalculation, error)
	Totals(ctx context.Context) (domain.BetTotals, error)
}

// PlanSource provides bankroll plans and today's expenses.
type PlanSource interface {
	ListPlans(ctx context.Context) ([]domain.BankrollPlan, error)
	CurrentPlan(ctx context.Context) (*domain.BankrollPlan, error)
	Expenses(ctx context.Context) ([]domain.ExpenseEntry, error)
}

// StrategySource provides the user strategy catalog.
type StrategySource interface {
	List(ctx context.Context) ([]domain.UserStrategy, error)
}

// Generator produces reports from the ledger components.
type Generator struct {
	bets       BetSource
	plans      PlanSource
	strategies StrategySource
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. plans and strategies may be nil.
func NewGenerator(bets BetSource, plans PlanSource, strategies StrategySource) *Generator {
	return &Generator{
		bets:       bets,
		plans:      plans,
		strategies: strategies,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report of the current ledger state.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	history, err := g.bets.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("bet history: %w", err)
	}
	totals, err := g.bets.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("bet totals: %w", err)
	}

	r := &Report{
		GeneratedAt: g.now(),
		Bets:        history,
		Totals:      totals,
	}

	if g.plans != nil {
		plans, err := g.plans.ListPlans(ctx)
		if err != nil {
			return nil, fmt.Errorf("plans: %w", err)
		}
		r.PlanCount = len(plans)
		for _, p := range plans {
			if !domain.IsBuiltinPlan(p.ID) {
				r.CustomPlans++
			}
		}

		if r.SelectedPlan, err = g.plans.CurrentPlan(ctx); err != nil {
			return nil, fmt.Errorf("selected plan: %w", err)
		}
		if r.Expenses, err = g.plans.Expenses(ctx); err != nil {
			return nil, fmt.Errorf("expenses: %w", err)
		}
	}

	if g.strategies != nil {
		all, err := g.strategies.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("strategies: %w", err)
		}
		r.StrategyCount = len(all)
	}

	return r, nil
}
