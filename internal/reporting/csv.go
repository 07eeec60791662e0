package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"

	"bet-ledger/internal/domain"
)

// RenderBetsCSV renders the bet history as CSV string.
func RenderBetsCSV(bets []domain.BetCalculation) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// Header
	rows := [][]string{{"index", "timestamp", "amount", "odds", "percentage", "potential_win", "potential_loss", "outcome"}}
	for i, b := range bets {
		rows = append(rows, []string{
			strconv.Itoa(i),
			b.Timestamp,
			money(b.Amount),
			pct(b.Odds),
			pct(b.Percentage),
			money(b.PotentialWin),
			money(b.PotentialLoss),
			string(b.Outcome),
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderRecoveryCSV renders recovery plan steps as CSV string.
func RenderRecoveryCSV(plan *domain.RecoveryPlan) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	rows := [][]string{{"sequence_index", "bet_amount", "profit_per_bet", "remaining_loss", "cumulative_investment", "net_position"}}
	for _, s := range plan.Steps {
		rows = append(rows, []string{
			strconv.Itoa(s.SequenceIndex),
			money(s.BetAmount),
			money(s.ProfitPerBet),
			money(s.RemainingLoss),
			money(s.CumulativeInvestment),
			money(s.NetPosition),
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}
