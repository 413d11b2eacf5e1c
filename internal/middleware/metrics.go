package middleware

import (
	"time"

	"github.com/digiwallet/wallet_backend/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// HTTPMetrics records request latency per method and route template.
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPLatency.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
