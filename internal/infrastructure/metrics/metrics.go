package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rate limit outcomes.
const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeFailOpen = "fail_open"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsCreated prometheus.Counter
	TransactionsDeleted prometheus.Counter
	TransactionAmount   *prometheus.HistogramVec

	// Database metrics
	DBErrors *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitDecisions *prometheus.CounterVec

	// Scheduled job metrics
	JobRuns     *prometheus.CounterVec
	JobDuration *prometheus.HistogramVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "spendtrack_transactions_created_total",
			Help: "Total number of transactions created",
		}),
		TransactionsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "spendtrack_transactions_deleted_total",
			Help: "Total number of transactions deleted",
		}),
		TransactionAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spendtrack_transaction_amount",
				Help:    "Absolute transaction amounts by kind",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 10000, 100000},
			},
			[]string{"kind"},
		),

		DBErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spendtrack_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		RateLimitDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spendtrack_rate_limit_decisions_total",
				Help: "Rate limiter decisions by outcome",
			},
			[]string{"outcome"},
		),

		JobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spendtrack_job_runs_total",
				Help: "Scheduled job runs by job and status",
			},
			[]string{"job", "status"},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spendtrack_job_duration_seconds",
				Help:    "Scheduled job duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job"},
		),
	}
}
