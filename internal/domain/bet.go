package domain

// Outcome is the resolved result of a recorded bet.
type Outcome string

// Outcome values. The zero value means the bet is still pending.
const (
	OutcomePending Outcome = ""
	OutcomeWin     Outcome = "WIN"
	OutcomeLoss    Outcome = "LOSS"
)

// Valid reports whether o is a resolved outcome.
func (o Outcome) Valid() bool {
	return o == OutcomeWin || o == OutcomeLoss
}

// BetCalculation is one projected wager in the bet history ledger.
// History is ordered most recent first.
type BetCalculation struct {
	Amount        float64 `json:"amount"`        // stake
	Odds          float64 `json:"odds"`          // decimal odds
	Percentage    float64 `json:"percentage"`    // win share applied to amount*odds, 0..100
	PotentialWin  float64 `json:"potentialWin"`  // amount * odds * percentage/100
	PotentialLoss float64 `json:"potentialLoss"` // amount
	Timestamp     string  `json:"timestamp"`     // RFC3339 UTC
	Outcome       Outcome `json:"outcome,omitempty"`
}

// Resolved reports whether an outcome has been recorded.
func (b *BetCalculation) Resolved() bool {
	return b.Outcome.Valid()
}

// PotentialWin computes the projected win for a wager.
func PotentialWin(amount, odds, percentage float64) float64 {
	return amount * odds * (percentage / 100)
}

// BetTotals aggregates resolved bets.
type BetTotals struct {
	Wins      float64 `json:"wins"`   // sum of PotentialWin over WIN bets
	Losses    float64 `json:"losses"` // sum of PotentialLoss over LOSS bets
	WinCount  int     `json:"winCount"`
	LossCount int     `json:"lossCount"`
	Pending   int     `json:"pending"`
}

// Net returns wins minus losses.
func (t BetTotals) Net() float64 {
	return t.Wins - t.Losses
}
