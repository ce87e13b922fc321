package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanojDD/Balentine/internal/metrics"
)

// Metrics collects HTTP request counts and latency for Prometheus
func Metrics() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		start := time.Now()
		// Route template, not the raw URL, to keep label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
	}
}
