package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vendorhub/console/internal/infrastructure/telemetry"
)

// ProfilingConfig controls ProfilingWithConfig
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig labels everything except the health check and docs
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/health"},
		SkipPathPrefixes: []string{"/swagger"},
	}
}

// ProfilingWithConfig runs the rest of the chain under Pyroscope labels for
// the route pattern, the method and the refund action, so CPU time spent
// in submit or identity refresh can be told apart.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	skip := newPathSet(cfg.SkipPaths, cfg.SkipPathPrefixes)

	return func(c *gin.Context) {
		if skip.match(c.Request.URL.Path) {
			c.Next()
			return
		}
		route := c.FullPath()
		labels := telemetry.HTTPRequestLabels(route, c.Request.Method)
		if action := routeAction(route); action != "" {
			labels[telemetry.ProfilingLabelOperation] = action
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// routeAction is the last literal segment of a route pattern, "submit" for
// /api/v1/refund-sessions/:sessionId/submit
func routeAction(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if p := parts[i]; p != "" && p[0] != ':' && p[0] != '*' {
			return p
		}
	}
	return ""
}
