package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"deal-board/internal/metrics"
)

// Metrics returns a middleware that records board API metrics.
// Routes are labelled relative to basePath.
func Metrics(m *metrics.Metrics, basePath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := metrics.RouteLabel(basePath, c.FullPath())
		if metrics.IsOperationalRoute(route) {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		m.RecordBoardRequest(
			c.Request.Method,
			route,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
