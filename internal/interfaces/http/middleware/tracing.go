package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/homechef/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig configures Tracing
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPaths are never traced
	SkipPaths []string
}

// Tracing starts the otelgin server span. SpanAttributes must follow it in
// the chain.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
		return !slices.Contains(cfg.SkipPaths, r.URL.Path)
	}))
}

// SpanAttributes adds the request ID and, once authentication further down
// the chain has run, the caller's identity to the server span
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		attrs := make([]attribute.KeyValue, 0, 3)
		if id := logger.GetRequestID(c.Request.Context()); id != "" {
			attrs = append(attrs, attribute.String("request.id", id))
		}
		if actor, ok := GetActor(c); ok {
			attrs = append(attrs,
				attribute.String("account.id", actor.ID.String()),
				attribute.String("account.role", string(actor.Role)),
			)
		}
		span.SetAttributes(attrs...)
	}
}
