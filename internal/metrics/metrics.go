// Package metrics registers Prometheus metrics for the application.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Live connection metrics
	WSActiveConnections   prometheus.Gauge
	WSConnectionsTotal    prometheus.Counter
	WSSupersededTotal     prometheus.Counter
	WSStaleEvictionsTotal prometheus.Counter

	// Event delivery metrics
	WSEventsSentTotal    prometheus.Counter
	WSEventsDroppedTotal prometheus.Counter
	WSMessagesRouted     prometheus.Counter

	// Rate limiting
	RateLimitExceededTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			WSActiveConnections: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "ws_active_connections",
					Help: "Number of currently registered live connections",
				},
			),
			WSConnectionsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "ws_connections_total",
					Help: "Total number of accepted live connections",
				},
			),
			WSSupersededTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "ws_connections_superseded_total",
					Help: "Connections replaced by a newer connection for the same user",
				},
			),
			WSStaleEvictionsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "ws_stale_evictions_total",
					Help: "Disconnects ignored because the handle was no longer registered",
				},
			),
			WSEventsSentTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "ws_events_sent_total",
					Help: "Total events pushed to live connections",
				},
			),
			WSEventsDroppedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "ws_events_dropped_total",
					Help: "Events dropped due to full or closed connections",
				},
			),
			WSMessagesRouted: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "ws_messages_routed_total",
					Help: "Direct messages persisted and routed",
				},
			),
			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by rate limiting",
				},
				[]string{"limiter"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it if needed
func Get() *Metrics {
	return Initialize()
}
