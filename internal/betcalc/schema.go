package betcalc

import (
	"encoding/json"
	"fmt"

	"bet-ledger/internal/domain"
	"bet-ledger/internal/storage"
)

// historySchema is the persisted layout of the bet history.
//
// Version 0 records carry a locale-formatted "date" and an optional boolean
// "isWin"; version 1 records carry "timestamp" and "outcome".
var historySchema = storage.Schema{
	Key:     storage.KeyBetHistory,
	Version: 1,
	Migrations: map[int]storage.Migration{
		0: migrateHistoryV0,
	},
}

type legacyBet struct {
	Amount        float64 `json:"amount"`
	Odds          float64 `json:"odds"`
	Percentage    float64 `json:"percentage"`
	PotentialWin  float64 `json:"potentialWin"`
	PotentialLoss float64 `json:"potentialLoss"`
	Date          string  `json:"date"`
	IsWin         *bool   `json:"isWin,omitempty"`
}

func migrateHistoryV0(data json.RawMessage) (json.RawMessage, error) {
	var legacy []legacyBet
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("decode legacy history: %v: %w", err, storage.ErrCorruptRecord)
	}

	out := make([]domain.BetCalculation, len(legacy))
	for i, b := range legacy {
		out[i] = domain.BetCalculation{
			Amount:        b.Amount,
			Odds:          b.Odds,
			Percentage:    b.Percentage,
			PotentialWin:  b.PotentialWin,
			PotentialLoss: b.PotentialLoss,
			Timestamp:     b.Date,
		}
		if b.IsWin != nil {
			if *b.IsWin {
				out[i].Outcome = domain.OutcomeWin
			} else {
				out[i].Outcome = domain.OutcomeLoss
			}
		}
	}
	return json.Marshal(out)
}
