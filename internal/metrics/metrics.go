// Package metrics holds the server's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wireboard_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wireboard_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)

	// Board metrics
	MessagesInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wireboard_messages_inserted_total",
			Help: "Total messages stored",
		},
	)

	InsertBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wireboard_insert_batch_size",
			Help:    "Messages per insert request",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)

	RealtimeSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wireboard_realtime_subscribers",
			Help: "Open realtime subscriptions",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wireboard_rate_limit_hits_total",
			Help: "Insert requests rejected by the rate limit",
		},
	)

	RelayedInserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wireboard_relayed_inserts_total",
			Help: "Messages received from the Redis relay",
		},
	)
)
