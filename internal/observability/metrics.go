// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Ledger metrics
	BetsCalculated    prometheus.Counter
	BetsResolved      *prometheus.CounterVec
	PlansCreated      prometheus.Counter
	PlansDeleted      prometheus.Counter
	ExpensesRecorded  prometheus.Counter
	StrategiesCreated prometheus.Counter
	StrategiesDeleted prometheus.Counter

	// Recovery metrics
	RecoveryPlansGenerated prometheus.Counter
	RecoveryPlanSteps      prometheus.Histogram
	RecoveryPlanRejected   *prometheus.CounterVec

	// Validation metrics
	ValidationErrors *prometheus.CounterVec

	// Store metrics
	StoreOpDuration *prometheus.HistogramVec
	StoreOpErrors   *prometheus.CounterVec

	// Feed metrics
	FeedClients   prometheus.Gauge
	FeedBroadcast prometheus.Counter
	FeedDropped   prometheus.Counter
}

// NewMetrics creates a new Metrics instance registered on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "bet_ledger"
	}
	factory := promauto.With(reg)

	return &Metrics{
		BetsCalculated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bets",
			Name:      "calculated_total",
			Help:      "Total number of bet calculations recorded",
		}),
		BetsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bets",
			Name:      "resolved_total",
			Help:      "Total number of bets marked with an outcome",
		}, []string{"outcome"}),
		PlansCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bankroll",
			Name:      "plans_created_total",
			Help:      "Total number of custom bankroll plans created",
		}),
		PlansDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bankroll",
			Name:      "plans_deleted_total",
			Help:      "Total number of custom bankroll plans deleted",
		}),
		ExpensesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bankroll",
			Name:      "expenses_recorded_total",
			Help:      "Total number of expenses added to today's ledger",
		}),
		StrategiesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strategies",
			Name:      "created_total",
			Help:      "Total number of user strategies created",
		}),
		StrategiesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strategies",
			Name:      "deleted_total",
			Help:      "Total number of user strategies deleted",
		}),
		RecoveryPlansGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recovery",
			Name:      "plans_generated_total",
			Help:      "Total number of recovery plans generated",
		}),
		RecoveryPlanSteps: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "recovery",
			Name:      "plan_steps",
			Help:      "Number of bets in generated recovery plans",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 500, 1000, 10000},
		}),
		RecoveryPlanRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recovery",
			Name:      "plans_rejected_total",
			Help:      "Total number of recovery requests rejected",
		}, []string{"reason"}),
		ValidationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "validation_errors_total",
			Help:      "Total number of rejected inputs",
		}, []string{"operation"}),
		StoreOpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "op_duration_seconds",
			Help:      "Store operation duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"backend", "op"}),
		StoreOpErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "op_errors_total",
			Help:      "Total number of failed store operations",
		}, []string{"backend", "op"}),
		FeedClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "clients",
			Help:      "Number of connected change-feed clients",
		}),
		FeedBroadcast: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "events_broadcast_total",
			Help:      "Total number of change events broadcast",
		}),
		FeedDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "events_dropped_total",
			Help:      "Total number of change events dropped for slow clients",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordBetCalculated increments the bet calculations counter.
func (m *Metrics) RecordBetCalculated() {
	if m == nil {
		return
	}
	m.BetsCalculated.Inc()
}

// RecordBetResolved increments the resolved bets counter for outcome.
func (m *Metrics) RecordBetResolved(outcome string) {
	if m == nil {
		return
	}
	m.BetsResolved.WithLabelValues(outcome).Inc()
}

// RecordPlanCreated increments the custom plans created counter.
func (m *Metrics) RecordPlanCreated() {
	if m == nil {
		return
	}
	m.PlansCreated.Inc()
}

// RecordPlanDeleted increments the custom plans deleted counter.
func (m *Metrics) RecordPlanDeleted() {
	if m == nil {
		return
	}
	m.PlansDeleted.Inc()
}

// RecordExpense increments the expenses counter.
func (m *Metrics) RecordExpense() {
	if m == nil {
		return
	}
	m.ExpensesRecorded.Inc()
}

// RecordStrategyCreated increments the strategies created counter.
func (m *Metrics) RecordStrategyCreated() {
	if m == nil {
		return
	}
	m.StrategiesCreated.Inc()
}

// RecordStrategyDeleted increments the strategies deleted counter.
func (m *Metrics) RecordStrategyDeleted() {
	if m == nil {
		return
	}
	m.StrategiesDeleted.Inc()
}

// RecordRecoveryPlan records a generated plan and its length.
func (m *Metrics) RecordRecoveryPlan(steps int) {
	if m == nil {
		return
	}
	m.RecoveryPlansGenerated.Inc()
	m.RecoveryPlanSteps.Observe(float64(steps))
}

// RecordRecoveryRejected records a rejected recovery request.
func (m *Metrics) RecordRecoveryRejected(reason string) {
	if m == nil {
		return
	}
	m.RecoveryPlanRejected.WithLabelValues(reason).Inc()
}

// RecordValidationError records a rejected input for operation.
func (m *Metrics) RecordValidationError(operation string) {
	if m == nil {
		return
	}
	m.ValidationErrors.WithLabelValues(operation).Inc()
}

// RecordStoreOp records a store operation with its duration and result.
func (m *Metrics) RecordStoreOp(backend, op string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.StoreOpDuration.WithLabelValues(backend, op).Observe(seconds)
	if err != nil {
		m.StoreOpErrors.WithLabelValues(backend, op).Inc()
	}
}

// SetFeedClients updates the connected feed clients gauge.
func (m *Metrics) SetFeedClients(n int) {
	if m == nil {
		return
	}
	m.FeedClients.Set(float64(n))
}

// RecordFeedBroadcast records one broadcast event and the clients it was dropped for.
func (m *Metrics) RecordFeedBroadcast(dropped int) {
	if m == nil {
		return
	}
	m.FeedBroadcast.Inc()
	m.FeedDropped.Add(float64(dropped))
}
