package middleware

import (
	"time"

	"bookshelf-backend/internal/infrastructure/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics ghi nhận counter và latency theo route template (c.FullPath) để tránh label cardinality cao
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
