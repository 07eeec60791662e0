// Package betcalc records projected bets and tracks their outcomes.
package betcalc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bet-ledger/internal/domain"
	"bet-ledger/internal/observability"
	"bet-ledger/internal/storage"
)

// CalculatorOptions contains configuration for creating a Calculator.
type CalculatorOptions struct {
	Store   storage.Store
	Logger  zerolog.Logger
	Metrics *observability.Metrics
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Calculator owns the bet history ledger.
type Calculator struct {
	store   storage.Store
	logger  zerolog.Logger
	metrics *observability.Metrics
	now     func() time.Time

	// mu serializes read-modify-write of the history.
	mu sync.Mutex
}

// NewCalculator creates a bet calculator over opts.Store.
func NewCalculator(opts CalculatorOptions) *Calculator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Calculator{
		store:   opts.Store,
		logger:  opts.Logger.With().Str("component", "betcalc").Logger(),
		metrics: opts.Metrics,
		now:     now,
	}
}

// Calculate projects a wager, prepends it to the history and persists it.
func (c *Calculator) Calculate(ctx context.Context, amount, odds, percentage float64) (*domain.BetCalculation, error) {
	if err := validate(amount, odds, percentage); err != nil {
		c.metrics.RecordValidationError("calculate")
		return nil, err
	}

	calc := domain.BetCalculation{
		Amount:        amount,
		Odds:          odds,
		Percentage:    percentage,
		PotentialWin:  domain.PotentialWin(amount, odds, percentage),
		PotentialLoss: amount,
		Timestamp:     c.now().UTC().Format(time.RFC3339),
	}
	if err := domain.RequireFinite("potentialWin", calc.PotentialWin); err != nil {
		c.metrics.RecordValidationError("calculate")
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	history, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	history = append([]domain.BetCalculation{calc}, history...)
	if err := storage.Save(ctx, c.store, historySchema, history); err != nil {
		return nil, fmt.Errorf("save bet history: %w", err)
	}

	c.metrics.RecordBetCalculated()
	c.logger.Debug().
		Float64("amount", amount).
		Float64("odds", odds).
		Float64("percentage", percentage).
		Int("history_len", len(history)).
		Msg("bet calculated")
	return &calc, nil
}

// CalculateInput parses form strings and calculates the bet.
func (c *Calculator) CalculateInput(ctx context.Context, amount, odds, percentage string) (*domain.BetCalculation, error) {
	a, err := domain.ParseNumber("amount", amount)
	if err != nil {
		c.metrics.RecordValidationError("calculate")
		return nil, err
	}
	o, err := domain.ParseNumber("odds", odds)
	if err != nil {
		c.metrics.RecordValidationError("calculate")
		return nil, err
	}
	p, err := domain.ParseNumber("percentage", percentage)
	if err != nil {
		c.metrics.RecordValidationError("calculate")
		return nil, err
	}
	return c.Calculate(ctx, a, o, p)
}

// Resolve records the outcome of the bet at index (0 is the most recent).
// Re-applying the recorded outcome is a no-op; changing it fails with
// domain.ErrOutcomeLocked.
func (c *Calculator) Resolve(ctx context.Context, index int, outcome domain.Outcome) (*domain.BetCalculation, error) {
	if !outcome.Valid() {
		c.metrics.RecordValidationError("resolve")
		return nil, &domain.ValidationError{Field: "outcome", Value: string(outcome), Reason: "must be WIN or LOSS"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	history, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(history) {
		return nil, domain.NotFoundError("bet", index)
	}

	bet := &history[index]
	switch bet.Outcome {
	case outcome:
		out := *bet
		return &out, nil
	case domain.OutcomePending:
	default:
		c.metrics.RecordValidationError("resolve")
		return nil, fmt.Errorf("bet %d is %s: %w", index, bet.Outcome, domain.ErrOutcomeLocked)
	}

	bet.Outcome = outcome
	if err := storage.Save(ctx, c.store, historySchema, history); err != nil {
		return nil, fmt.Errorf("save bet history: %w", err)
	}

	c.metrics.RecordBetResolved(string(outcome))
	c.logger.Debug().Int("index", index).Str("outcome", string(outcome)).Msg("bet resolved")
	out := *bet
	return &out, nil
}

// Totals sums resolved bets from the persisted history.
func (c *Calculator) Totals(ctx context.Context) (domain.BetTotals, error) {
	history, err := c.History(ctx)
	if err != nil {
		return domain.BetTotals{}, err
	}
	return ComputeTotals(history), nil
}

// History returns the full history, most recent first.
func (c *Calculator) History(ctx context.Context) ([]domain.BetCalculation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// ComputeTotals sums potential wins of WIN bets and potential losses of LOSS bets.
func ComputeTotals(history []domain.BetCalculation) domain.BetTotals {
	var t domain.BetTotals
	for _, b := range history {
		switch b.Outcome {
		case domain.OutcomeWin:
			t.Wins += b.PotentialWin
			t.WinCount++
		case domain.OutcomeLoss:
			t.Losses += b.PotentialLoss
			t.LossCount++
		default:
			t.Pending++
		}
	}
	return t
}

func (c *Calculator) load(ctx context.Context) ([]domain.BetCalculation, error) {
	var history []domain.BetCalculation
	if _, err := storage.Load(ctx, c.store, historySchema, &history); err != nil {
		return nil, fmt.Errorf("load bet history: %w", err)
	}
	if history == nil {
		history = []domain.BetCalculation{}
	}
	return history, nil
}

func validate(amount, odds, percentage float64) error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"amount", amount}, {"odds", odds}, {"percentage", percentage}} {
		if err := domain.RequireFinite(f.name, f.v); err != nil {
			return err
		}
	}
	if amount <= 0 {
		return domain.NewValidationError("amount", amount, "must be greater than 0")
	}
	if odds <= 0 {
		return domain.NewValidationError("odds", odds, "must be greater than 0")
	}
	if percentage < 0 || percentage > 100 {
		return domain.NewValidationError("percentage", percentage, "must be between 0 and 100")
	}
	return nil
}
