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
	// Crank metrics
	PopsSubmitted prometheus.Counter
	RowsPopped    prometheus.Counter
	PopErrors     *prometheus.CounterVec
	CrankRows     prometheus.Gauge
	ReadySetSize  prometheus.Histogram

	// Monitor metrics
	RoundsRecorded prometheus.Counter
	FeedsWatched   prometheus.Gauge
	StaleRounds    prometheus.Counter
	MonitorErrors  *prometheus.CounterVec

	// RPC metrics
	RPCCallLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulPop  prometheus.Gauge
	LastSuccessfulPoll prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_oracle_lab"
	}

	return &Metrics{
		// Crank metrics
		PopsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "pops_submitted_total",
			Help:      "Total number of pop transactions submitted",
		}),
		RowsPopped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "rows_popped_total",
			Help:      "Total number of crank rows included in submitted pops",
		}),
		PopErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "pop_errors_total",
			Help:      "Total number of pop cycle errors by stage",
		}, []string{"stage"}),
		CrankRows: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "rows",
			Help:      "Row count of the crank at the last load",
		}),
		ReadySetSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "ready_set_size",
			Help:      "Ready set size per pop cycle",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),

		// Monitor metrics
		RoundsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "rounds_recorded_total",
			Help:      "Total number of oracle rounds recorded",
		}),
		FeedsWatched: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "feeds_watched",
			Help:      "Number of aggregator feeds being watched",
		}),
		StaleRounds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "stale_rounds_total",
			Help:      "Total number of polls that found no new round",
		}),
		MonitorErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "errors_total",
			Help:      "Total number of monitor errors by type",
		}, []string{"error_type"}),

		// RPC metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulPop: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pop_timestamp",
			Help:      "Unix timestamp of last successful pop submission",
		}),
		LastSuccessfulPoll: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_poll_timestamp",
			Help:      "Unix timestamp of last successful monitor poll",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordReadySet records crank size and ready-set size for one cycle.
func RecordReadySet(rows, ready int) {
	DefaultMetrics.CrankRows.Set(float64(rows))
	DefaultMetrics.ReadySetSize.Observe(float64(ready))
}

// RecordPopSubmitted records a successful pop submission.
func RecordPopSubmitted(rows int) {
	DefaultMetrics.PopsSubmitted.Inc()
	DefaultMetrics.RowsPopped.Add(float64(rows))
	DefaultMetrics.LastSuccessfulPop.SetToCurrentTime()
}

// RecordPopError records a pop cycle error for a stage.
func RecordPopError(stage string) {
	DefaultMetrics.PopErrors.WithLabelValues(stage).Inc()
}

// RecordRoundRecorded increments the recorded-round counter.
func RecordRoundRecorded() {
	DefaultMetrics.RoundsRecorded.Inc()
}

// RecordStaleRound increments the stale-round counter.
func RecordStaleRound() {
	DefaultMetrics.StaleRounds.Inc()
}

// RecordMonitorError records a monitor error by type.
func RecordMonitorError(errorType string) {
	DefaultMetrics.MonitorErrors.WithLabelValues(errorType).Inc()
}

// UpdateFeedsWatched sets the watched-feed gauge.
func UpdateFeedsWatched(n int) {
	DefaultMetrics.FeedsWatched.Set(float64(n))
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
