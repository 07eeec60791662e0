// Package api exposes the ledger components over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"bet-ledger/internal/bankroll"
	"bet-ledger/internal/betcalc"
	"bet-ledger/internal/notify"
	"bet-ledger/internal/observability"
	"bet-ledger/internal/onboarding"
	"bet-ledger/internal/recovery"
	"bet-ledger/internal/strategy"
)

// Publisher receives change events after successful writes.
type Publisher interface {
	Publish(e notify.Event)
}

// Options contains the dependencies of the HTTP surface.
type Options struct {
	Calculator *betcalc.Calculator
	Bankroll   *bankroll.Manager
	Recovery   *recovery.Generator
	Strategies *strategy.Catalog
	Onboarding *onboarding.Tracker

	// Publisher and Feed are optional.
	Publisher Publisher
	Feed      http.Handler

	Gatherer       prometheus.Gatherer
	Logger         zerolog.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	calc       *betcalc.Calculator
	bankroll   *bankroll.Manager
	recovery   *recovery.Generator
	strategies *strategy.Catalog
	onboarding *onboarding.Tracker
	publisher  Publisher
	logger     zerolog.Logger
}

// NewRouter builds the chi router with every route mounted.
func NewRouter(opts Options) http.Handler {
	h := &Handler{
		calc:       opts.Calculator,
		bankroll:   opts.Bankroll,
		recovery:   opts.Recovery,
		strategies: opts.Strategies,
		onboarding: opts.Onboarding,
		publisher:  opts.Publisher,
		logger:     opts.Logger.With().Str("component", "api").Logger(),
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	if opts.Gatherer != nil {
		r.Handle("/metrics", observability.Handler(opts.Gatherer))
	}
	if opts.Feed != nil {
		r.Handle("/ws", opts.Feed)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		r.Route("/bets", func(r chi.Router) {
			r.Get("/", h.ListBets)
			r.Post("/", h.CalculateBet)
			r.Get("/totals", h.BetTotals)
			r.Post("/{index}/outcome", h.ResolveBet)
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Post("/", h.CreatePlan)
			r.Get("/selected", h.SelectedPlan)
			r.Put("/selected", h.SelectPlan)
			r.Get("/projection", h.Projection)
			r.Get("/{id}/projection", h.Projection)
			r.Delete("/{id}", h.DeletePlan)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.ListExpenses)
			r.Post("/", h.AddExpense)
			r.Get("/series", h.ExpenseSeries)
		})

		r.Post("/recovery", h.GenerateRecovery)

		r.Route("/strategies", func(r chi.Router) {
			r.Get("/", h.ListStrategies)
			r.Post("/", h.CreateStrategy)
			r.Get("/{id}", h.GetStrategy)
			r.Delete("/{id}", h.DeleteStrategy)
		})

		r.Get("/onboarding", h.OnboardingStatus)
		r.Post("/onboarding/complete", h.CompleteOnboarding)
	})

	return r
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "bet-ledger",
	})
}

// fail writes err with its mapped status. Unexpected errors are logged and
// their text is not exposed.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, err.Error())
}

func (h *Handler) publish(eventType, key string, payload any) {
	if h.publisher == nil {
		return
	}
	h.publisher.Publish(notify.Event{Type: eventType, Key: key, Payload: payload})
}
