package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Posting metrics
	TransactionsPosted   prometheus.Counter
	TransactionsPending  prometheus.Counter
	TransactionsApproved prometheus.Counter
	TransactionsRejected prometheus.Counter
	TransactionsReversed prometheus.Counter
	PostingDuration      prometheus.Histogram
	SecurityEvents       prometheus.Counter

	// Loan metrics
	LoansDisbursed    prometheus.Counter
	RepaymentsApplied prometheus.Counter
	RepaymentAmount   prometheus.Histogram

	// Reconciliation metrics
	LinesAutoMatched     prometheus.Counter
	LinesManuallyMatched prometheus.Counter

	// Risk metrics
	RiskAlertsOpened   prometheus.Counter
	RiskAlertsResolved prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		TransactionsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_transactions_posted_total",
			Help: "Total number of transactions posted",
		}),
		TransactionsPending: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_transactions_pending_total",
			Help: "Total number of transactions gated for approval",
		}),
		TransactionsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_transactions_approved_total",
			Help: "Total number of pending transactions approved",
		}),
		TransactionsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_transactions_rejected_total",
			Help: "Total number of pending transactions rejected",
		}),
		TransactionsReversed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_transactions_reversed_total",
			Help: "Total number of transactions reversed",
		}),
		PostingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankcore_posting_duration_seconds",
			Help:    "Duration of posting units",
			Buckets: prometheus.DefBuckets,
		}),
		SecurityEvents: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_security_events_total",
			Help: "Total number of recorded security events",
		}),

		LoansDisbursed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_loans_disbursed_total",
			Help: "Total number of loans disbursed",
		}),
		RepaymentsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_repayments_applied_total",
			Help: "Total number of repayments allocated",
		}),
		RepaymentAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankcore_repayment_amount",
			Help:    "Repayment amounts",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		}),

		LinesAutoMatched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_statement_lines_auto_matched_total",
			Help: "Total statement lines matched by the automatic pass",
		}),
		LinesManuallyMatched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_statement_lines_manually_matched_total",
			Help: "Total statement lines matched by operator override",
		}),

		RiskAlertsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_risk_alerts_opened_total",
			Help: "Total risk alerts opened",
		}),
		RiskAlertsResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bankcore_risk_alerts_resolved_total",
			Help: "Total risk alerts resolved",
		}),
	}
}
