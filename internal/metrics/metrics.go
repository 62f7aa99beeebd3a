package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served by the admin API.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests served by the admin API.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// BackendRequestsTotal counts calls to the marketplace REST API.
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Total number of requests sent to the marketplace backend.",
		},
		[]string{"method", "route", "code"},
	)

	// OverlayFailuresTotal counts overlay reads and writes that degraded to
	// "no override applied".
	OverlayFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlay_failures_total",
			Help: "Overlay read/write failures swallowed by the fail-open policy.",
		},
		[]string{"op", "key"},
	)

	ChangeSignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlay_change_signals_total",
			Help: "Publication change signals raised locally or received from other instances.",
		},
		[]string{"source"},
	)
)
