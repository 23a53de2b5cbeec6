package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// GinMiddleware records request duration and in-flight metrics.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		m.httpInFlight.Inc()

		c.Next()

		m.httpInFlight.Dec()
		m.httpDuration.WithLabelValues(
			c.Request.Method,
			normalizeEndpoint(c.FullPath()),
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// Unmatched routes collapse into one label to keep cardinality bounded.
func normalizeEndpoint(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return "unmatched"
	}
	return route
}
