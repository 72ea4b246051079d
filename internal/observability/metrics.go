// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Feed metrics
	EventsReceived  *prometheus.CounterVec
	MalformedEvents prometheus.Counter

	// Batch metrics
	TokensCreated    prometheus.Counter
	TokensEvaluated  prometheus.Counter
	BatchesDiscarded prometheus.Counter
	SubscribedTokens prometheus.Gauge

	// Trading metrics
	OrdersSubmitted *prometheus.CounterVec
	OrdersCompleted *prometheus.CounterVec
	StaleExits      prometheus.Counter
	OpenPositions   prometheus.Gauge
	Balance         prometheus.Gauge
	PnLSum          prometheus.Gauge

	// Execution metrics
	ExecutionDelay   prometheus.Histogram
	ExecutionRetries prometheus.Histogram

	// Storage metrics
	TradeLogErrors prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered
// on the default registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "gem_sniper"
	}

	return &Metrics{
		EventsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "events_received_total",
			Help:      "Total number of feed events received, by transaction type",
		}, []string{"tx_type"}),
		MalformedEvents: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "malformed_events_total",
			Help:      "Total number of trade events dropped for missing fields",
		}),

		TokensCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "tokens_created_total",
			Help:      "Total number of token creation events observed",
		}),
		TokensEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "tokens_evaluated_total",
			Help:      "Total number of tokens admitted into a batch",
		}),
		BatchesDiscarded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "discarded_total",
			Help:      "Total number of exhausted batches discarded",
		}),
		SubscribedTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "subscribed_tokens",
			Help:      "Number of tokens in the current batch",
		}),

		OrdersSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "orders_submitted_total",
			Help:      "Total number of orders handed to the submitter, by action",
		}, []string{"action"}),
		OrdersCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "orders_completed_total",
			Help:      "Total number of completed orders, by action and outcome",
		}, []string{"action", "outcome"}),
		StaleExits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "stale_exits_total",
			Help:      "Total number of positions force-exited for inactivity",
		}),
		OpenPositions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "open_positions",
			Help:      "Number of currently open positions",
		}),
		Balance: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "balance_sol",
			Help:      "Current working balance in SOL",
		}),
		PnLSum: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "pnl_sum_pct",
			Help:      "Cumulative PnL percent across completed round trips",
		}),

		ExecutionDelay: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "delay_seconds",
			Help:      "Time from order submission to finalization",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		ExecutionRetries: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "retries",
			Help:      "Resubmissions used per order",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		}),

		TradeLogErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "trade_log_errors_total",
			Help:      "Total number of failed trade log writes",
		}),
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
