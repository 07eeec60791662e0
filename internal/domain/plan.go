package domain

// DailyLimitSlots is the number of daily limits carried by every bankroll plan.
const DailyLimitSlots = 10

// Built-in bankroll plan ids. These ids are reserved.
const (
	PlanConservative = "conservative"
	PlanBalanced     = "balanced"
	PlanAggressive   = "aggressive"
)

// DefaultPlanID is the plan a stale or empty selection falls back to.
const DefaultPlanID = PlanConservative

// Risk labels used by the built-in plans. Custom plans may carry any label.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// BankrollPlan is a named template of daily risk-percentage limits.
type BankrollPlan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Risk        string    `json:"risk"`
	DailyLimits []float64 `json:"dailyLimits"` // DailyLimitSlots percentages
}

// Clone returns a deep copy of the plan.
func (p BankrollPlan) Clone() BankrollPlan {
	limits := make([]float64, len(p.DailyLimits))
	copy(limits, p.DailyLimits)
	p.DailyLimits = limits
	return p
}

// BuiltinPlans returns a fresh copy of the built-in plans in their fixed order.
func BuiltinPlans() []BankrollPlan {
	return []BankrollPlan{
		{
			ID:          PlanConservative,
			Name:        "Conservative",
			Risk:        RiskLow,
			DailyLimits: []float64{5, 6, 4, 7, 5, 6, 3, 8, 5, 6},
		},
		{
			ID:          PlanBalanced,
			Name:        "Balanced",
			Risk:        RiskMedium,
			DailyLimits: []float64{10, 12, 8, 15, 10, 11, 9, 14, 10, 12},
		},
		{
			ID:          PlanAggressive,
			Name:        "Aggressive",
			Risk:        RiskHigh,
			DailyLimits: []float64{20, 25, 15, 30, 22, 18, 27, 24, 20, 25},
		},
	}
}

// IsBuiltinPlan reports whether id is reserved by a built-in plan.
func IsBuiltinPlan(id string) bool {
	switch id {
	case PlanConservative, PlanBalanced, PlanAggressive:
		return true
	}
	return false
}

// ProjectionPoint is one day of a plan projection, used for charting.
type ProjectionPoint struct {
	Day      int     `json:"day"`   // 1-based
	Label    string  `json:"label"` // "Day N"
	LimitPct float64 `json:"limitPct"`
}

// ExpenseEntry is one spend recorded in today's expense ledger.
type ExpenseEntry struct {
	Timestamp string  `json:"timestamp"` // RFC3339 UTC
	Amount    float64 `json:"amount"`
}

// ExpensePoint is one point of the expense chart series.
type ExpensePoint struct {
	Index  int     `json:"index"` // 1-based
	Amount float64 `json:"amount"`
}
