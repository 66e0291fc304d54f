package server

import (
	"strconv"
	"time"

	"frontdesk/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware labels requests by route template so IDs in paths do not
// explode label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}
