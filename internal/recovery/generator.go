// Package recovery generates fixed-stake sequences that win back a loss.
package recovery

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"bet-ledger/internal/domain"
	"bet-ledger/internal/idhash"
	"bet-ledger/internal/observability"
)

// Defaults for GeneratorOptions.
const (
	DefaultBetFraction = 0.10
	DefaultMaxSteps    = 10000
)

// DivergentPlanError is returned when a recovery sequence cannot converge
// within the step limit.
type DivergentPlanError struct {
	Inputs     domain.RecoveryInputs
	BetsNeeded float64
	Reason     string
}

func (e *DivergentPlanError) Error() string {
	return fmt.Sprintf("recovery plan for loss %v at odds %v with bet %v: %s",
		e.Inputs.LossAmount, e.Inputs.Odds, e.Inputs.BetAmount, e.Reason)
}

// Unwrap lets errors.Is(err, domain.ErrDivergentPlan) match.
func (e *DivergentPlanError) Unwrap() error {
	return domain.ErrDivergentPlan
}

// GeneratorOptions contains configuration for creating a Generator.
type GeneratorOptions struct {
	// DefaultBetFraction is the share of the loss staked per bet when no bet
	// amount is given. Zero uses DefaultBetFraction.
	DefaultBetFraction float64
	// MaxSteps bounds the sequence length. Zero uses DefaultMaxSteps.
	MaxSteps int
	Logger   zerolog.Logger
	Metrics  *observability.Metrics
}

// Generator builds recovery plans. It holds no state between calls.
type Generator struct {
	betFraction float64
	maxSteps    int
	logger      zerolog.Logger
	metrics     *observability.Metrics
}

// NewGenerator creates a recovery plan generator.
func NewGenerator(opts GeneratorOptions) *Generator {
	g := &Generator{
		betFraction: opts.DefaultBetFraction,
		maxSteps:    opts.MaxSteps,
		logger:      opts.Logger.With().Str("component", "recovery").Logger(),
		metrics:     opts.Metrics,
	}
	if g.betFraction <= 0 || !domain.IsFinite(g.betFraction) {
		g.betFraction = DefaultBetFraction
	}
	if g.maxSteps <= 0 {
		g.maxSteps = DefaultMaxSteps
	}
	return g
}

// MaxSteps returns the configured step limit.
func (g *Generator) MaxSteps() int {
	return g.maxSteps
}

// Generate builds the full recovery sequence for lossAmount at odds.
// A betAmount that is zero, negative or NaN is replaced by lossAmount times
// the default bet fraction.
func (g *Generator) Generate(lossAmount, odds, betAmount float64) (*domain.RecoveryPlan, error) {
	plan, err := g.generate(lossAmount, odds, betAmount)
	if err != nil {
		g.reject(err)
		return nil, err
	}

	g.metrics.RecordRecoveryPlan(plan.BetsNeeded)
	g.logger.Debug().
		Float64("loss", lossAmount).
		Float64("odds", odds).
		Float64("bet", plan.Inputs.BetAmount).
		Int("bets_needed", plan.BetsNeeded).
		Msg("recovery plan generated")
	return plan, nil
}

// GenerateInput parses form strings and generates a plan.
// An empty bet string means no bet amount was given.
func (g *Generator) GenerateInput(lossAmount, odds, betAmount string) (*domain.RecoveryPlan, error) {
	loss, err := domain.ParseNumber("lossAmount", lossAmount)
	if err != nil {
		g.reject(err)
		return nil, err
	}
	o, err := domain.ParseNumber("odds", odds)
	if err != nil {
		g.reject(err)
		return nil, err
	}
	bet, _, err := domain.ParseOptionalNumber("betAmount", betAmount)
	if err != nil {
		g.reject(err)
		return nil, err
	}
	return g.Generate(loss, o, bet)
}

func (g *Generator) generate(lossAmount, odds, betAmount float64) (*domain.RecoveryPlan, error) {
	if !domain.IsFinite(lossAmount) || lossAmount <= 0 {
		return nil, domain.NewValidationError("lossAmount", lossAmount, "must be a positive number")
	}
	if !domain.IsFinite(odds) || odds <= 1 {
		return nil, domain.NewValidationError("odds", odds, "must be greater than 1")
	}

	if math.IsNaN(betAmount) || betAmount <= 0 {
		betAmount = lossAmount * g.betFraction
	}
	if !domain.IsFinite(betAmount) || betAmount <= 0 {
		return nil, domain.NewValidationError("betAmount", betAmount, "must be a positive number")
	}

	inputs := domain.RecoveryInputs{LossAmount: lossAmount, Odds: odds, BetAmount: betAmount}

	profit := betAmount * (odds - 1)
	if !(profit > 0) || !domain.IsFinite(profit) {
		return nil, &DivergentPlanError{Inputs: inputs, Reason: "profit per bet is not positive"}
	}

	// The quotient underflows to 0 for a loss far below one bet's profit.
	needed := math.Max(1, math.Ceil(lossAmount/profit))
	if !domain.IsFinite(needed) || needed > float64(g.maxSteps) {
		return nil, &DivergentPlanError{
			Inputs:     inputs,
			BetsNeeded: needed,
			Reason:     fmt.Sprintf("needs %v bets, limit is %d", needed, g.maxSteps),
		}
	}

	n := int(needed)
	steps := make([]domain.RecoveryStep, n)
	remaining := lossAmount
	invested := 0.0
	for i := 1; i <= n; i++ {
		invested += betAmount
		remaining = math.Max(0, remaining-profit)
		steps[i-1] = domain.RecoveryStep{
			SequenceIndex:        i,
			BetAmount:            betAmount,
			ProfitPerBet:         profit,
			RemainingLoss:        remaining,
			CumulativeInvestment: invested,
			NetPosition:          invested - lossAmount + float64(i)*profit,
		}
	}

	// Both totals grow with every step, so the last step bounds them.
	if last := steps[n-1]; !domain.IsFinite(last.CumulativeInvestment) || !domain.IsFinite(last.NetPosition) {
		return nil, domain.NewValidationError("betAmount", betAmount, "plan totals exceed the representable range")
	}

	plan := &domain.RecoveryPlan{
		Inputs:       inputs,
		Steps:        steps,
		BetsNeeded:   n,
		ProfitPerBet: profit,
	}
	plan.TotalInvestment = steps[n-1].CumulativeInvestment
	plan.FinalNetPosition = steps[n-1].NetPosition
	plan.Fingerprint = idhash.ComputeRecoveryFingerprint(inputs, steps)
	return plan, nil
}

func (g *Generator) reject(err error) {
	reason := "validation"
	var divergent *DivergentPlanError
	if errors.As(err, &divergent) {
		reason = "divergent"
	}
	g.metrics.RecordRecoveryRejected(reason)
	g.logger.Debug().Err(err).Str("reason", reason).Msg("recovery plan rejected")
}
