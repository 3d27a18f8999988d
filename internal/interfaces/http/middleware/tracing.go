// Package middleware provides the HTTP middleware of the vendor console API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vendorhub/console/internal/infrastructure/telemetry"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
	// SkipPaths are not traced. Defaults to /health.
	SkipPaths []string
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "vendor-console",
		Enabled:     true,
		SkipPaths:   []string{"/health"},
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin, skipping health and swagger requests.
// Pair it with SpanEnricher.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}
	return otelgin.Middleware(cfg.ServiceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			return !skip[r.URL.Path] && !strings.HasPrefix(r.URL.Path, "/swagger")
		}),
	)
}

// SpanEnricher must run after TracingWithConfig. Once the handler has
// finished it adds the request id, the operator and vendor from the JWT,
// and the refund session and line from the route to the server span, and
// marks 5xx responses as errors.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		enrichSpan(c, span)
		markSpanStatus(span, c.Writer.Status())
	}
}

func enrichSpan(c *gin.Context, span trace.Span) {
	attrs := make([]attribute.KeyValue, 0, 5)
	if id := GetRequestID(c); id != "" {
		attrs = append(attrs, attribute.String("request_id", id))
	}
	if id := GetJWTUserID(c); id != "" {
		attrs = append(attrs, attribute.String("user_id", id))
	}
	if id := GetJWTVendorID(c); id != "" {
		attrs = append(attrs, attribute.String("vendor_id", id))
	}
	if id := c.Param("sessionId"); id != "" {
		attrs = append(attrs, attribute.String(telemetry.SpanAttrSessionID, id))
	}
	if id := c.Param("orderDetailId"); id != "" {
		attrs = append(attrs, attribute.String(telemetry.SpanAttrOrderDetailID, id))
	}
	span.SetAttributes(attrs...)
}

// markSpanStatus flags server errors. Client errors are recorded on the
// status code attribute only.
func markSpanStatus(span trace.Span, status int) {
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
