package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homechef/backend/internal/infrastructure/telemetry"
)

// Metrics records Prometheus request metrics labelled by route pattern
func Metrics(m *telemetry.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		done := m.Begin()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
