package reporting

import (
	"time"

	"bet-ledger/internal/domain"
)

// Report is a snapshot of the ledger for export.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	// Bet ledger (most recent first)
	Bets   []domain.BetCalculation
	Totals domain.BetTotals

	// Bankroll
	SelectedPlan *domain.BankrollPlan
	PlanCount    int
	CustomPlans  int
	Expenses     []domain.ExpenseEntry

	// Strategy catalog
	StrategyCount int

	// Recovery is optional; set by callers that generated a plan.
	Recovery *domain.RecoveryPlan
}

// ExpenseTotal sums today's expenses.
func (r *Report) ExpenseTotal() float64 {
	var total float64
	for _, e := range r.Expenses {
		total += e.Amount
	}
	return total
}
