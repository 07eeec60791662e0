package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Betting Ledger Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Totals
	sb.WriteString("## Totals\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Wins | %s |\n", money(r.Totals.Wins)))
	sb.WriteString(fmt.Sprintf("| Total Losses | %s |\n", money(r.Totals.Losses)))
	sb.WriteString(fmt.Sprintf("| Net | %s |\n", money(r.Totals.Net())))
	sb.WriteString(fmt.Sprintf("| Won Bets | %d |\n", r.Totals.WinCount))
	sb.WriteString(fmt.Sprintf("| Lost Bets | %d |\n", r.Totals.LossCount))
	sb.WriteString(fmt.Sprintf("| Pending Bets | %d |\n", r.Totals.Pending))
	sb.WriteString("\n")

	// History
	sb.WriteString("## Bet History\n\n")
	if len(r.Bets) > 0 {
		sb.WriteString("| # | Time | Amount | Odds | % | Potential Win | Potential Loss | Outcome |\n")
		sb.WriteString("|---|------|--------|------|---|---------------|----------------|---------|\n")
		for i, b := range r.Bets {
			outcome := string(b.Outcome)
			if outcome == "" {
				outcome = "PENDING"
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s | %s |\n",
				i, b.Timestamp, money(b.Amount), pct(b.Odds), pct(b.Percentage),
				money(b.PotentialWin), money(b.PotentialLoss), outcome))
		}
	} else {
		sb.WriteString("No bets recorded.\n")
	}
	sb.WriteString("\n")

	// Bankroll
	sb.WriteString("## Bankroll\n\n")
	if r.SelectedPlan != nil {
		p := r.SelectedPlan
		sb.WriteString(fmt.Sprintf("Selected plan: **%s** (%s), %d of %d plans are custom.\n\n",
			p.Name, p.Risk, r.CustomPlans, r.PlanCount))
		sb.WriteString("| Day | Limit % |\n")
		sb.WriteString("|-----|---------|\n")
		for i, l := range p.DailyLimits {
			sb.WriteString(fmt.Sprintf("| Day %d | %s |\n", i+1, pct(l)))
		}
		sb.WriteString("\n")
	}
	if len(r.Expenses) > 0 {
		sb.WriteString(fmt.Sprintf("Today's expenses: %d entries, total %s.\n", len(r.Expenses), money(r.ExpenseTotal())))
	} else {
		sb.WriteString("No expenses recorded today.\n")
	}
	sb.WriteString("\n")

	// Strategies
	sb.WriteString("## Strategies\n\n")
	sb.WriteString(fmt.Sprintf("User strategies: %d\n\n", r.StrategyCount))

	// Recovery
	if r.Recovery != nil {
		rp := r.Recovery
		sb.WriteString("## Recovery Plan\n\n")
		sb.WriteString(fmt.Sprintf("Loss %s at odds %s, betting %s per bet.\n\n",
			money(rp.Inputs.LossAmount), pct(rp.Inputs.Odds), money(rp.Inputs.BetAmount)))
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Bets Needed | %d |\n", rp.BetsNeeded))
		sb.WriteString(fmt.Sprintf("| Profit per Bet | %s |\n", money(rp.ProfitPerBet)))
		sb.WriteString(fmt.Sprintf("| Total Investment | %s |\n", money(rp.TotalInvestment)))
		sb.WriteString(fmt.Sprintf("| Final Net Position | %s |\n", money(rp.FinalNetPosition)))
		sb.WriteString(fmt.Sprintf("| Fingerprint | `%s` |\n", rp.Fingerprint))
		sb.WriteString("\n")
	}

	return sb.String()
}
