// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotctl_http_requests_total",
		Help: "Total number of inbound HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spotctl_http_request_duration_seconds",
		Help:    "Time spent serving inbound HTTP requests",
		Buckets: prometheus.ExponentialBuckets(0.005, 2.0, 10), // 5ms to ~2.5s
	}, []string{"method", "route"})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotctl_upstream_requests_total",
		Help: "Total number of requests sent to Spotify and Telegram",
	}, []string{"method", "endpoint", "status"})

	TokenOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotctl_token_operations_total",
		Help: "OAuth code exchanges and token refreshes by outcome",
	}, []string{"operation", "result"})

	ControlActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotctl_control_actions_total",
		Help: "Dispatched playback control actions by outcome",
	}, []string{"action", "result"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spotctl_rate_limited_total",
		Help: "Requests rejected by the per-client rate limiter",
	})
)
