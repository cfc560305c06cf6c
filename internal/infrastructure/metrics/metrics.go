package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	OperationsRecorded *prometheus.CounterVec
	OperationErrors    *prometheus.CounterVec
	OperationDuration  prometheus.Histogram
	OperationAmount    prometheus.Histogram

	// Transfer metrics
	TransfersExecuted *prometheus.CounterVec
	TransferErrors    *prometheus.CounterVec

	// Account metrics
	AccountsCreated prometheus.Counter
	AccountsClosed  prometheus.Counter

	// Overdraft alert metrics
	AlertsOpened    prometheus.Counter
	AlertsEscalated prometheus.Counter
	AlertsResolved  prometheus.Counter
	OpenAlerts      prometheus.Gauge

	// Scheduler metrics
	SweepRuns        prometheus.Counter
	SweepDuration    prometheus.Histogram
	SweepItems       *prometheus.CounterVec
	CreditsIssued    prometheus.Counter
	InstallmentsPaid prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Ledger metrics
		OperationsRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankd_operations_recorded_total",
				Help: "Total number of journal entries recorded by kind",
			},
			[]string{"kind"},
		),
		OperationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankd_operation_errors_total",
				Help: "Total number of rejected operations by reason",
			},
			[]string{"reason"},
		),
		OperationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankd_operation_duration_seconds",
			Help:    "Duration of ledger operations",
			Buckets: prometheus.DefBuckets,
		}),
		OperationAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankd_operation_amount",
			Help:    "Operation amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		// Transfer metrics
		TransfersExecuted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankd_transfers_executed_total",
				Help: "Total number of transfers executed by destination type",
			},
			[]string{"destination"},
		),
		TransferErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankd_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankd_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankd_accounts_closed_total",
			Help: "Total number of accounts closed",
		}),

		// Overdraft alert metrics
		AlertsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankd_overdraft_alerts_opened_total",
			Help: "Total number of overdraft alerts opened",
		}),
		AlertsEscalated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankd_overdraft_alerts_escalated_total",
			Help: "Total number of overdraft alerts escalated",
		}),
		AlertsResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankd_overdraft_alerts_resolved_total",
			Help: "Total number of overdraft alerts resolved",
		}),
		OpenAlerts: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "bankd_overdraft_alerts_open",
			Help: "Current number of unresolved overdraft alerts",
		}),

		// Scheduler metrics
		SweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankd_sweep_runs_total",
			Help: "Total number of scheduler sweep runs",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankd_sweep_duration_seconds",
			Help:    "Duration of scheduler sweep runs",
			Buckets: prometheus.DefBuckets,
		}),
		SweepItems: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankd_sweep_items_total",
				Help: "Total number of swept items by outcome",
			},
			[]string{"outcome"},
		),
		CreditsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankd_credits_issued_total",
			Help: "Total number of credit contracts issued",
		}),
		InstallmentsPaid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankd_installments_paid_total",
			Help: "Total number of installments collected",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankd_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankd_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "bankd_db_connections",
			Help: "Current number of database connections",
		}),
	}
}
