package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransfersTotal counts transfer attempts by terminal status.
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_transfers_total",
		Help: "Transfer attempts by terminal status",
	}, []string{"status"})

	// TopUpsTotal counts completed top-up credits.
	TopUpsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_topups_total",
		Help: "Completed top-up credits",
	})

	// RemoteAdjustFailures counts remote balance legs that failed after retry.
	RemoteAdjustFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_remote_adjust_failures_total",
		Help: "Remote balance adjustments that failed after retry",
	}, []string{"leg"})

	// HTTPLatency tracks request latency per method and path.
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wallet_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"method", "path"})
)
