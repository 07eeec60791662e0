package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bet-ledger/internal/domain"
	"bet-ledger/internal/notify"
	"bet-ledger/internal/storage"
)

type calculateRequest struct {
	Amount     numeric `json:"amount"`
	Odds       numeric `json:"odds"`
	Percentage numeric `json:"percentage"`
}

type resolveRequest struct {
	Outcome domain.Outcome `json:"outcome"`
}

type createPlanRequest struct {
	Name        string    `json:"name"`
	Risk        string    `json:"risk"`
	DailyLimits []float64 `json:"dailyLimits"`
}

type selectPlanRequest struct {
	ID string `json:"id"`
}

type expenseRequest struct {
	Amount numeric `json:"amount"`
}

type recoveryRequest struct {
	LossAmount numeric `json:"lossAmount"`
	Odds       numeric `json:"odds"`
	BetAmount  numeric `json:"betAmount"`
}

type createStrategyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Image       string `json:"image"`
}

// ListBets returns the bet history, most recent first.
func (h *Handler) ListBets(w http.ResponseWriter, r *http.Request) {
	history, err := h.calc.History(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// CalculateBet records a new bet calculation.
func (h *Handler) CalculateBet(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	calc, err := h.calc.CalculateInput(r.Context(), string(req.Amount), string(req.Odds), string(req.Percentage))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.publish(notify.EventBetCalculated, storage.KeyBetHistory, calc)
	respondJSON(w, http.StatusCreated, calc)
}

// ResolveBet marks the bet at {index} as WIN or LOSS.
func (h *Handler) ResolveBet(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	var req resolveRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	bet, err := h.calc.Resolve(r.Context(), index, req.Outcome)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.publish(notify.EventBetResolved, storage.KeyBetHistory, map[string]any{"index": index, "outcome": bet.Outcome})
	respondJSON(w, http.StatusOK, bet)
}

// BetTotals returns wins and losses over resolved bets.
func (h *Handler) BetTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.calc.Totals(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"wins":      totals.Wins,
		"losses":    totals.Losses,
		"net":       totals.Net(),
		"winCount":  totals.WinCount,
		"lossCount": totals.LossCount,
		"pending":   totals.Pending,
	})
}

// ListPlans returns built-in then custom plans.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.bankroll.ListPlans(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plans)
}

// CreatePlan adds a custom plan.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.bankroll.CreatePlan(r.Context(), req.Name, req.Risk, req.DailyLimits)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.publish(notify.EventPlanCreated, storage.KeyCustomPlans, plan)
	respondJSON(w, http.StatusCreated, plan)
}

// DeletePlan removes a custom plan. Built-in and unknown ids succeed unchanged.
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.bankroll.DeletePlan(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.publish(notify.EventPlanDeleted, storage.KeyCustomPlans, map[string]string{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

// SelectedPlan returns the resolved plan selection.
func (h *Handler) SelectedPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.bankroll.Selected(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

// SelectPlan stores the plan selection.
func (h *Handler) SelectPlan(w http.ResponseWriter, r *http.Request) {
	var req selectPlanRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.bankroll.Select(r.Context(), req.ID); err != nil {
		h.fail(w, r, err)
		return
	}

	h.publish(notify.EventPlanSelected, storage.KeySelectedPlan, req)
	w.WriteHeader(http.StatusNoContent)
}

// Projection returns chart points for {id}, or for the selected plan.
func (h *Handler) Projection(w http.ResponseWriter, r *http.Request) {
	points, err := h.bankroll.Projection(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, points)
}

// ListExpenses returns today's expenses.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	entries, err := h.bankroll.Expenses(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// AddExpense appends to today's expenses.
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := domain.ParseNumber("amount", string(req.Amount))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.bankroll.AddExpense(r.Context(), amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.publish(notify.EventExpenseAdded, storage.KeyExpenses, entry)
	respondJSON(w, http.StatusCreated, entry)
}

// ExpenseSeries returns today's expenses as chart points.
func (h *Handler) ExpenseSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.bankroll.ExpenseSeries(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, series)
}

// GenerateRecovery returns a recovery plan. Nothing is persisted.
func (h *Handler) GenerateRecovery(w http.ResponseWriter, r *http.Request) {
	var req recoveryRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.recovery.GenerateInput(string(req.LossAmount), string(req.Odds), string(req.BetAmount))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

// ListStrategies returns user strategies in creation order.
func (h *Handler) ListStrategies(w http.ResponseWriter, r *http.Request) {
	all, err := h.strategies.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, all)
}

// CreateStrategy adds a user strategy.
func (h *Handler) CreateStrategy(w http.ResponseWriter, r *http.Request) {
	var req createStrategyRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.strategies.Create(r.Context(), req.Title, req.Description, req.Content, req.Image)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.publish(notify.EventStrategyCreated, storage.KeyStrategies, map[string]string{"id": s.ID})
	respondJSON(w, http.StatusCreated, s)
}

// GetStrategy returns one user strategy.
func (h *Handler) GetStrategy(w http.ResponseWriter, r *http.Request) {
	s, err := h.strategies.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// DeleteStrategy removes a user strategy.
func (h *Handler) DeleteStrategy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.strategies.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.publish(notify.EventStrategyDeleted, storage.KeyStrategies, map[string]string{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

// OnboardingStatus reports whether onboarding was completed.
func (h *Handler) OnboardingStatus(w http.ResponseWriter, r *http.Request) {
	done, err := h.onboarding.Completed(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"completed": done})
}

// CompleteOnboarding marks onboarding as completed.
func (h *Handler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := h.onboarding.Complete(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}

	h.publish(notify.EventOnboardingCompleted, storage.KeyOnboarding, nil)
	respondJSON(w, http.StatusOK, map[string]bool{"completed": true})
}
