// Package bankroll manages bankroll plans, the selected plan and today's
// expense ledger.
package bankroll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bet-ledger/internal/domain"
	"bet-ledger/internal/observability"
	"bet-ledger/internal/storage"
)

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	Store   storage.Store
	Logger  zerolog.Logger
	Metrics *observability.Metrics
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Manager owns custom plans, the plan selection and today's expenses.
type Manager struct {
	store   storage.Store
	logger  zerolog.Logger
	metrics *observability.Metrics
	now     func() time.Time

	// mu serializes read-modify-write across all bankroll keys.
	mu sync.Mutex
}

// NewManager creates a bankroll plan manager over opts.Store.
func NewManager(opts ManagerOptions) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:   opts.Store,
		logger:  opts.Logger.With().Str("component", "bankroll").Logger(),
		metrics: opts.Metrics,
		now:     now,
	}
}

// ListPlans returns the built-in plans followed by custom plans in creation order.
func (m *Manager) ListPlans(ctx context.Context) ([]domain.BankrollPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listPlans(ctx)
}

// CreatePlan appends a custom plan. Limits are zero-padded to
// domain.DailyLimitSlots; name and risk may be empty.
func (m *Manager) CreatePlan(ctx context.Context, name, risk string, dailyLimits []float64) (*domain.BankrollPlan, error) {
	if len(dailyLimits) > domain.DailyLimitSlots {
		m.metrics.RecordValidationError("create_plan")
		return nil, &domain.ValidationError{
			Field:  "dailyLimits",
			Value:  fmt.Sprint(len(dailyLimits)),
			Reason: fmt.Sprintf("at most %d limits", domain.DailyLimitSlots),
		}
	}
	for i, l := range dailyLimits {
		if err := domain.RequireFinite(fmt.Sprintf("dailyLimits[%d]", i), l); err != nil {
			m.metrics.RecordValidationError("create_plan")
			return nil, err
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate plan id: %w", err)
	}
	plan := domain.BankrollPlan{
		ID:          id.String(),
		Name:        name,
		Risk:        risk,
		DailyLimits: padLimits(dailyLimits),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	custom, err := m.loadCustom(ctx)
	if err != nil {
		return nil, err
	}
	custom = append(custom, plan)
	if err := storage.Save(ctx, m.store, plansSchema, custom); err != nil {
		return nil, fmt.Errorf("save custom plans: %w", err)
	}

	m.metrics.RecordPlanCreated()
	m.logger.Info().Str("plan_id", plan.ID).Str("name", name).Msg("plan created")
	out := plan.Clone()
	return &out, nil
}

// DeletePlan removes a custom plan. Built-in and unknown ids are ignored.
// Deleting the selected plan reverts the selection to domain.DefaultPlanID.
func (m *Manager) DeletePlan(ctx context.Context, id string) error {
	if domain.IsBuiltinPlan(id) {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	custom, err := m.loadCustom(ctx)
	if err != nil {
		return err
	}

	kept := custom[:0]
	for _, p := range custom {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(custom) {
		return nil
	}

	if err := storage.Save(ctx, m.store, plansSchema, kept); err != nil {
		return fmt.Errorf("save custom plans: %w", err)
	}
	m.metrics.RecordPlanDeleted()
	m.logger.Info().Str("plan_id", id).Msg("plan deleted")

	selected, _, err := m.loadSelection(ctx)
	if err != nil {
		return err
	}
	if selected == id {
		if err := storage.Save(ctx, m.store, selectionSchema, domain.DefaultPlanID); err != nil {
			return fmt.Errorf("reset selection: %w", err)
		}
		m.logger.Info().Str("plan_id", id).Msg("selected plan deleted, selection reset")
	}
	return nil
}

// Select stores id as the selected plan. The id is not checked; a stale
// selection is resolved by Selected.
func (m *Manager) Select(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := storage.Save(ctx, m.store, selectionSchema, id); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

// Selected returns the selected plan. An empty or stale selection falls back
// to domain.DefaultPlanID and the fallback is persisted.
func (m *Manager) Selected(ctx context.Context) (*domain.BankrollPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected(ctx)
}

// CurrentPlan resolves the selection like Selected but never writes the
// fallback back to the store.
func (m *Manager) CurrentPlan(ctx context.Context) (*domain.BankrollPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	plan, _, _, err := m.resolveSelection(ctx)
	return plan, err
}

// Projection returns the ten daily limits of plan id as chart points.
// An empty id projects the selected plan.
func (m *Manager) Projection(ctx context.Context, id string) ([]domain.ProjectionPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var plan *domain.BankrollPlan
	if id == "" {
		p, err := m.selected(ctx)
		if err != nil {
			return nil, err
		}
		plan = p
	} else {
		plans, err := m.listPlans(ctx)
		if err != nil {
			return nil, err
		}
		plan = findPlan(plans, id)
		if plan == nil {
			return nil, domain.NotFoundError("plan", id)
		}
	}

	points := make([]domain.ProjectionPoint, len(plan.DailyLimits))
	for i, l := range plan.DailyLimits {
		points[i] = domain.ProjectionPoint{
			Day:      i + 1,
			Label:    fmt.Sprintf("Day %d", i+1),
			LimitPct: l,
		}
	}
	return points, nil
}

// AddExpense appends an expense to today's ledger. Any finite amount is accepted.
func (m *Manager) AddExpense(ctx context.Context, amount float64) (*domain.ExpenseEntry, error) {
	if err := domain.RequireFinite("amount", amount); err != nil {
		m.metrics.RecordValidationError("add_expense")
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	ledger, err := m.loadLedger(ctx, now)
	if err != nil {
		return nil, err
	}

	entry := domain.ExpenseEntry{Timestamp: now.Format(time.RFC3339), Amount: amount}
	ledger.Entries = append(ledger.Entries, entry)
	if err := storage.Save(ctx, m.store, expensesSchema, ledger); err != nil {
		return nil, fmt.Errorf("save expenses: %w", err)
	}

	m.metrics.RecordExpense()
	m.logger.Debug().Float64("amount", amount).Int("count", len(ledger.Entries)).Msg("expense added")
	return &entry, nil
}

// Expenses returns today's expenses in insertion order.
func (m *Manager) Expenses(ctx context.Context) ([]domain.ExpenseEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ledger, err := m.loadLedger(ctx, m.now().UTC())
	if err != nil {
		return nil, err
	}
	return ledger.Entries, nil
}

// ExpenseSeries returns today's expenses as (1-based index, amount) points.
func (m *Manager) ExpenseSeries(ctx context.Context) ([]domain.ExpensePoint, error) {
	entries, err := m.Expenses(ctx)
	if err != nil {
		return nil, err
	}
	series := make([]domain.ExpensePoint, len(entries))
	for i, e := range entries {
		series[i] = domain.ExpensePoint{Index: i + 1, Amount: e.Amount}
	}
	return series, nil
}

func (m *Manager) listPlans(ctx context.Context) ([]domain.BankrollPlan, error) {
	custom, err := m.loadCustom(ctx)
	if err != nil {
		return nil, err
	}
	return append(domain.BuiltinPlans(), custom...), nil
}

func (m *Manager) selected(ctx context.Context) (*domain.BankrollPlan, error) {
	plan, id, found, err := m.resolveSelection(ctx)
	if err != nil || (found && plan.ID == id) {
		return plan, err
	}

	if err := storage.Save(ctx, m.store, selectionSchema, domain.DefaultPlanID); err != nil {
		return nil, fmt.Errorf("save fallback selection: %w", err)
	}
	if found {
		m.logger.Warn().Str("plan_id", id).Str("fallback", domain.DefaultPlanID).Msg("stale plan selection")
	}
	return plan, nil
}

// resolveSelection returns the plan the stored selection id refers to, or the
// default plan when id is missing or stale.
func (m *Manager) resolveSelection(ctx context.Context) (plan *domain.BankrollPlan, id string, found bool, err error) {
	id, found, err = m.loadSelection(ctx)
	if err != nil {
		return nil, "", false, err
	}
	plans, err := m.listPlans(ctx)
	if err != nil {
		return nil, "", false, err
	}
	if plan := findPlan(plans, id); plan != nil {
		return plan, id, found, nil
	}
	return findPlan(plans, domain.DefaultPlanID), id, found, nil
}

func (m *Manager) loadCustom(ctx context.Context) ([]domain.BankrollPlan, error) {
	var plans []domain.BankrollPlan
	if _, err := storage.Load(ctx, m.store, plansSchema, &plans); err != nil {
		return nil, fmt.Errorf("load custom plans: %w", err)
	}
	for i := range plans {
		if len(plans[i].DailyLimits) != domain.DailyLimitSlots {
			plans[i].DailyLimits = padLimits(plans[i].DailyLimits)
		}
	}
	return plans, nil
}

func (m *Manager) loadSelection(ctx context.Context) (string, bool, error) {
	var id string
	found, err := storage.Load(ctx, m.store, selectionSchema, &id)
	if err != nil {
		return "", false, fmt.Errorf("load selection: %w", err)
	}
	return id, found, nil
}

// loadLedger returns the ledger for the day of now. A ledger from an earlier
// day is discarded.
func (m *Manager) loadLedger(ctx context.Context, now time.Time) (dayLedger, error) {
	today := now.Format(time.DateOnly)

	var ledger dayLedger
	if _, err := storage.Load(ctx, m.store, expensesSchema, &ledger); err != nil {
		return dayLedger{}, fmt.Errorf("load expenses: %w", err)
	}
	if ledger.Day != today {
		return dayLedger{Day: today, Entries: []domain.ExpenseEntry{}}, nil
	}
	if ledger.Entries == nil {
		ledger.Entries = []domain.ExpenseEntry{}
	}
	return ledger, nil
}

func findPlan(plans []domain.BankrollPlan, id string) *domain.BankrollPlan {
	for i := range plans {
		if plans[i].ID == id {
			p := plans[i].Clone()
			return &p
		}
	}
	return nil
}
