package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/tripledger/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger engine metrics
	LedgerComputeDuration prometheus.Histogram
	LedgerComputeErrors   *prometheus.CounterVec
	InvariantViolations   prometheus.Counter

	// Outbox metrics
	EventsPublished prometheus.Counter
	EventsFailed    prometheus.Counter
}

// New creates and registers all metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics and registers them with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LedgerComputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripledger_ledger_compute_duration_seconds",
			Help:    "Time spent computing balances and settlement plans",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		LedgerComputeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tripledger_ledger_compute_errors_total",
				Help: "Total failed ledger computations",
			},
			[]string{"reason"},
		),
		InvariantViolations: factory.NewCounter(prometheus.CounterOpts{
			Name: "tripledger_ledger_invariant_violations_total",
			Help: "Total ledger computations whose balances did not sum to zero",
		}),

		EventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "tripledger_events_published_total",
			Help: "Total outbox events delivered",
		}),
		EventsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "tripledger_events_failed_total",
			Help: "Total outbox events that failed to deliver",
		}),
	}
}

// ObserveCompute records one engine run.
func (m *Metrics) ObserveCompute(duration time.Duration, err error) {
	m.LedgerComputeDuration.Observe(duration.Seconds())
	if err != nil {
		m.LedgerComputeErrors.WithLabelValues(errorReason(err)).Inc()
	}
}

// IncInvariantViolation counts a ledger whose balances failed the zero-sum check.
func (m *Metrics) IncInvariantViolation() {
	m.InvariantViolations.Inc()
}

// ObserveEventDelivery counts outbox deliveries.
func (m *Metrics) ObserveEventDelivery(err error) {
	if err != nil {
		m.EventsFailed.Inc()
		return
	}
	m.EventsPublished.Inc()
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnbalancedLedger):
		return "unbalanced"
	case errors.Is(err, domain.ErrAmountMismatch):
		return "amount_mismatch"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "other"
	}
}
