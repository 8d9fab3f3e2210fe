package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsPrefix is the prefix used for all metrics
const MetricsPrefix = "market_dashboard_"

// Service constants
const (
	ServiceMarkets = "markets"
	ServiceCharts  = "charts"
)

var (
	// Upstream request counter per service
	// Cardinality: ~10 (2 services x 5 statuses)
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "upstream_requests_total",
			Help: "Total number of HTTP requests to the CoinGecko API per service",
		},
		[]string{"service", "status"},
	)

	// Upstream request latency per service
	// Cardinality: ~2 (number of services)
	UpstreamLatencyHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: MetricsPrefix + "upstream_latency_seconds",
			Help: "Upstream HTTP request latency per service",
		},
		[]string{"service"},
	)

	// Retry attempts counter
	// Cardinality: ~2 (number of services)
	RetryCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "retry_attempts_total",
			Help: "Total number of retry attempts per service",
		},
		[]string{"service"},
	)

	// Snapshot cache refresh counter
	SnapshotRefreshTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricsPrefix + "snapshot_refresh_total",
			Help: "Total number of market snapshot cache refreshes",
		},
	)
)

// MetricsWriter provides a unified interface for recording service metrics
type MetricsWriter struct {
	serviceName string
}

// NewMetricsWriter creates a new MetricsWriter for the specified service
func NewMetricsWriter(serviceName string) *MetricsWriter {
	return &MetricsWriter{
		serviceName: serviceName,
	}
}

// GetServiceName returns the service name
func (mw *MetricsWriter) GetServiceName() string {
	return mw.serviceName
}

// RecordUpstreamRequest records an upstream API request with its status
func (mw *MetricsWriter) RecordUpstreamRequest(status string) {
	UpstreamRequestsTotal.WithLabelValues(mw.serviceName, status).Inc()
}

// RecordUpstreamLatency records the duration of an upstream request
func (mw *MetricsWriter) RecordUpstreamLatency(duration time.Duration) {
	UpstreamLatencyHistogram.WithLabelValues(mw.serviceName).Observe(duration.Seconds())
}

// RecordRetryAttempt records a retry attempt
func (mw *MetricsWriter) RecordRetryAttempt() {
	RetryCounter.WithLabelValues(mw.serviceName).Inc()
	log.Printf("Metrics: %s recorded a retry attempt", mw.serviceName)
}

// RecordSnapshotRefresh records a snapshot cache refresh
func RecordSnapshotRefresh() {
	SnapshotRefreshTotal.Inc()
}

// Implement coingecko.StatusHandler for MetricsWriter

// OnRequest records an HTTP request with its status
func (mw *MetricsWriter) OnRequest(status string) {
	mw.RecordUpstreamRequest(status)
}

// OnRetry records an HTTP retry attempt
func (mw *MetricsWriter) OnRetry() {
	mw.RecordRetryAttempt()
}
