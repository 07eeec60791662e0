package domain

// RecoveryInputs are the assumptions a recovery plan is generated from.
// BetAmount holds the effective stake after defaulting.
type RecoveryInputs struct {
	LossAmount float64 `json:"lossAmount"`
	Odds       float64 `json:"odds"`
	BetAmount  float64 `json:"betAmount"`
}

// RecoveryStep is one bet of a generated recovery sequence.
type RecoveryStep struct {
	SequenceIndex        int     `json:"sequenceIndex"` // 1-based
	BetAmount            float64 `json:"betAmount"`
	ProfitPerBet         float64 `json:"profitPerBet"`
	RemainingLoss        float64 `json:"remainingLoss"`        // clamped at 0, non-increasing
	CumulativeInvestment float64 `json:"cumulativeInvestment"` // non-decreasing
	NetPosition          float64 `json:"netPosition"`
}

// RecoveryPlan is a full recovery sequence plus its summary.
// It has no persisted identity; Fingerprint is a digest of inputs and steps.
type RecoveryPlan struct {
	Inputs           RecoveryInputs `json:"inputs"`
	Steps            []RecoveryStep `json:"steps"`
	BetsNeeded       int            `json:"betsNeeded"`
	ProfitPerBet     float64        `json:"profitPerBet"`
	TotalInvestment  float64        `json:"totalInvestment"`
	FinalNetPosition float64        `json:"finalNetPosition"`
	Fingerprint      string         `json:"fingerprint"`
}
