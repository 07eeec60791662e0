package bankroll

import (
	"encoding/json"
	"fmt"

	"bet-ledger/internal/domain"
	"bet-ledger/internal/storage"
)

// plansSchema is the persisted layout of custom plans. Version 0 plans may
// carry fewer or more than domain.DailyLimitSlots limits.
var plansSchema = storage.Schema{
	Key:     storage.KeyCustomPlans,
	Version: 1,
	Migrations: map[int]storage.Migration{
		0: migratePlansV0,
	},
}

// selectionSchema stores the selected plan id as a JSON string.
var selectionSchema = storage.Schema{
	Key:     storage.KeySelectedPlan,
	Version: 1,
	Migrations: map[int]storage.Migration{
		0: identity,
	},
}

var expensesSchema = storage.Schema{
	Key:     storage.KeyExpenses,
	Version: 1,
}

// dayLedger holds the expenses of one UTC day.
type dayLedger struct {
	Day     string                `json:"day"` // YYYY-MM-DD
	Entries []domain.ExpenseEntry `json:"entries"`
}

func identity(data json.RawMessage) (json.RawMessage, error) {
	return data, nil
}

func migratePlansV0(data json.RawMessage) (json.RawMessage, error) {
	var plans []domain.BankrollPlan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("decode legacy plans: %v: %w", err, storage.ErrCorruptRecord)
	}
	for i := range plans {
		plans[i].DailyLimits = padLimits(plans[i].DailyLimits)
	}
	return json.Marshal(plans)
}

// padLimits returns exactly domain.DailyLimitSlots limits, zero-filled or truncated.
func padLimits(limits []float64) []float64 {
	out := make([]float64, domain.DailyLimitSlots)
	copy(out, limits)
	return out
}
