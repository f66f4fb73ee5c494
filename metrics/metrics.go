// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Board gesture metrics
var (
	// GesturesTotal counts resolved drag gestures by list and outcome
	// (committed, rolled_back).
	GesturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bracket_gestures_total",
			Help: "Resolved drag gestures by list and outcome",
		},
		[]string{"list", "outcome"},
	)

	// ItemMovesTotal counts optimistic moves applied during gestures.
	ItemMovesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bracket_item_moves_total",
			Help: "Optimistic item moves by list",
		},
		[]string{"list"},
	)
)

// Account metrics
var (
	// LoginLinksTotal counts join attempts by result (sent, rate_limited, invalid).
	LoginLinksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bracket_login_links_total",
			Help: "Login link requests by result",
		},
		[]string{"result"},
	)
)

// Delivery metrics
var (
	// OutboxPublishTotal counts outbox publish attempts by result (ok, error).
	OutboxPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bracket_outbox_publish_total",
			Help: "Outbox publish attempts by result",
		},
		[]string{"result"},
	)

	SSEClientsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bracket_sse_clients_current",
			Help: "Open server-sent event streams",
		},
	)
)

// HTTP metrics
var (
	// HTTPRequestDuration tracks handler latency by method, route pattern and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bracket_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route", "status"},
	)
)
