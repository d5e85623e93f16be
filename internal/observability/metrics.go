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
	// Flow metrics
	FlowRunsTotal *prometheus.CounterVec
	FlowDuration  *prometheus.HistogramVec
	StepDuration  *prometheus.HistogramVec

	// Listing metrics
	ListingsLoaded  prometheus.Counter
	ListingsSkipped *prometheus.CounterVec

	// Content store metrics
	ContentStoreCalls   *prometheus.CounterVec
	ContentStoreLatency *prometheus.HistogramVec

	// Chain metrics
	RPCCallLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulListing prometheus.Gauge
	LastSuccessfulLoad    prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "nft_marketplace"
	}

	return &Metrics{
		FlowRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flow",
			Name:      "runs_total",
			Help:      "Total number of flow runs by flow and status",
		}, []string{"flow", "status"}),
		FlowDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "flow",
			Name:      "duration_seconds",
			Help:      "Flow execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"flow"}),
		StepDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "flow",
			Name:      "step_duration_seconds",
			Help:      "Duration of a single create-listing step in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step", "status"}),

		ListingsLoaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listings",
			Name:      "loaded_total",
			Help:      "Total number of listings returned for display",
		}),
		ListingsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listings",
			Name:      "skipped_total",
			Help:      "Total number of listings excluded from display by reason",
		}, []string{"reason"}),

		ContentStoreCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ipfs",
			Name:      "calls_total",
			Help:      "Total number of content store calls by operation and status",
		}, []string{"operation", "status"}),
		ContentStoreLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ipfs",
			Name:      "call_latency_seconds",
			Help:      "Content store call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "rpc_call_latency_seconds",
			Help:      "Contract call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

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

		LastSuccessfulListing: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_listing_timestamp",
			Help:      "Unix timestamp of last successful create-listing flow",
		}),
		LastSuccessfulLoad: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_load_timestamp",
			Help:      "Unix timestamp of last successful load-listings flow",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordFlowRun records a finished flow run.
func RecordFlowRun(flow, status string, durationSeconds float64) {
	DefaultMetrics.FlowRunsTotal.WithLabelValues(flow, status).Inc()
	DefaultMetrics.FlowDuration.WithLabelValues(flow).Observe(durationSeconds)
}

// RecordStep records the duration of one create-listing step.
func RecordStep(step string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.StepDuration.WithLabelValues(step, status).Observe(seconds)
}

// RecordListingsLoaded adds to the displayed listings counter.
func RecordListingsLoaded(n int) {
	DefaultMetrics.ListingsLoaded.Add(float64(n))
}

// RecordListingSkipped records one listing excluded from display.
func RecordListingSkipped(reason string) {
	DefaultMetrics.ListingsSkipped.WithLabelValues(reason).Inc()
}

// RecordContentStoreCall records a content store call.
func RecordContentStoreCall(operation string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.ContentStoreCalls.WithLabelValues(operation, status).Inc()
	DefaultMetrics.ContentStoreLatency.WithLabelValues(operation).Observe(seconds)
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

// MarkListingSuccess updates the last successful create-listing timestamp.
func MarkListingSuccess(unix int64) {
	DefaultMetrics.LastSuccessfulListing.Set(float64(unix))
}

// MarkLoadSuccess updates the last successful load-listings timestamp.
func MarkLoadSuccess(unix int64) {
	DefaultMetrics.LastSuccessfulLoad.Set(float64(unix))
}
