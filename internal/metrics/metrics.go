package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_http_requests_total",
			Help: "Inbound adapter requests by route and status code",
		},
		[]string{"route", "code"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_upstream_requests_total",
			Help: "Calls to the SentraIP API by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcp_upstream_request_duration_seconds",
			Help:    "Latency of calls to the SentraIP API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)
