package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// updatesTotal counts dashboard updates by transport ("http" | "ws") and outcome.
	updatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchdash_updates_total",
			Help: "Total number of dashboard updates processed",
		},
		[]string{"transport", "status"},
	)

	// updateDuration tracks callback dispatch latency.
	updateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "launchdash_update_duration_seconds",
			Help:    "Time spent recomputing figures for one update",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"transport"},
	)

	// renderTotal counts server-side chart renders.
	renderTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchdash_chart_renders_total",
			Help: "Total number of server-side chart renders",
		},
		[]string{"chart", "format"},
	)

	// exportTotal counts selection downloads.
	exportTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launchdash_exports_total",
			Help: "Total number of selection exports",
		},
		[]string{"format"},
	)

	// wsConnections is the number of open WebSocket sessions.
	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "launchdash_ws_connections",
		Help: "Open WebSocket connections",
	})
)
