// Package notify pushes ledger change events to websocket clients.
package notify

import "time"

// Event types.
const (
	EventBetCalculated       = "bet.calculated"
	EventBetResolved         = "bet.resolved"
	EventPlanCreated         = "plan.created"
	EventPlanDeleted         = "plan.deleted"
	EventPlanSelected        = "plan.selected"
	EventExpenseAdded        = "expense.added"
	EventStrategyCreated     = "strategy.created"
	EventStrategyDeleted     = "strategy.deleted"
	EventOnboardingCompleted = "onboarding.completed"
)

// Event tells clients that the value under Key changed.
type Event struct {
	Type      string    `json:"type"`
	Key       string    `json:"key"` // storage key that changed
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
