// Package metrics Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialfeed_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// DispatchLatency 从入队到投递完成
	DispatchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "socialfeed_notify_dispatch_seconds",
		Help:    "Time from enqueue to notification handed to the sink.",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	})

	DispatchResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_notify_dispatch_total",
		Help: "Notification dispatch outcomes (sent, failed, dropped).",
	}, []string{"result"})

	FeedCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_feed_cache_total",
		Help: "Feed cache lookups (hit, miss, error).",
	}, []string{"result"})
)
