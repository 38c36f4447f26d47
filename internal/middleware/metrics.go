// internal/middleware/metrics.go
package middleware

import (
	"time"

	"chat-automation/internal/common/metrics"
	"chat-automation/internal/common/observability"

	"github.com/gin-gonic/gin"
)

// Metrics tracks in-flight requests and records per-route counts and
// durations. obs may be nil.
func Metrics(obs *observability.Observability) gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx := c.Request.Context()
		obs.RecordRequest(ctx, route, c.Writer.Status())
		obs.RecordRequestDuration(ctx, route, time.Since(start))
	}
}
