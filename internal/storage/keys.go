package storage

// Persisted keys. Each key is written by exactly one component.
const (
	KeyBetHistory   = "betCalculations"     // bet calculator
	KeyCustomPlans  = "customPlans"         // bankroll manager
	KeySelectedPlan = "selectedPlan"        // bankroll manager
	KeyExpenses     = "todayExpenses"       // bankroll manager
	KeyStrategies   = "ownStrategies"       // strategy catalog
	KeyOnboarding   = "onboardingCompleted" // onboarding
)

// Keys lists every persisted key.
func Keys() []string {
	return []string{
		KeyBetHistory,
		KeyCustomPlans,
		KeySelectedPlan,
		KeyExpenses,
		KeyStrategies,
		KeyOnboarding,
	}
}
