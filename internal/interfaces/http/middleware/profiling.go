package middleware

import (
	"context"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/homechef/backend/internal/infrastructure/telemetry"
)

// Profiling tags CPU samples taken while serving a request with its method
// and route pattern. Unmatched routes and skipped paths are left untagged.
func Profiling(skipPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || slices.Contains(skipPaths, route) {
			c.Next()
			return
		}
		telemetry.WithRequestLabels(c.Request.Context(), c.Request.Method, route, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
