package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"budgetbuddy/internal/metrics"
)

// MetricsMiddleware updates the request Prometheus metrics. Routes are
// labelled with their registered pattern to keep cardinality bounded.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		elapsed := time.Since(start).Seconds()

		metrics.RequestDuration.WithLabelValues(status, c.Request.Method, route).Observe(elapsed)
		metrics.RequestCount.WithLabelValues(status, c.Request.Method, route).Inc()
	}
}
