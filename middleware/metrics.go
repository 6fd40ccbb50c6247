package middleware

import (
	"context"
	"time"

	"storefront-dashboard/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics publishes request count, latency and error metrics. Publishing runs
// off the request path.
func Metrics(mc *metrics.Client, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !mc.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		dimensions := map[string]string{
			"Service": serviceName,
			"Method":  c.Request.Method,
			"Path":    path,
			"Status":  metrics.StatusRange(status),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = mc.RecordCount(ctx, metrics.MetricHTTPRequests, dimensions)
			_ = mc.RecordLatency(ctx, metrics.MetricHTTPLatency, duration, dimensions)

			switch {
			case status >= 500:
				_ = mc.RecordCount(ctx, metrics.MetricHTTPErrors, dimensions)
				_ = mc.RecordCount(ctx, metrics.MetricHTTP5xx, dimensions)
			case status >= 400:
				_ = mc.RecordCount(ctx, metrics.MetricHTTPErrors, dimensions)
				_ = mc.RecordCount(ctx, metrics.MetricHTTP4xx, dimensions)
			}
		}()
	}
}
