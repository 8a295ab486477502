package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"travelagency/internal/telemetry"
)

// Prometheus records http_requests_total and http_request_duration_seconds
// labelled by route template, so ids in paths do not explode cardinality.
func Prometheus(m telemetry.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if m.Requests != nil {
			m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		}
		if m.Duration != nil {
			m.Duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		}
	}
}
