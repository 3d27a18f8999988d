package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vendorhub/console/internal/infrastructure/logger"
	"github.com/vendorhub/console/internal/interfaces/http/dto"
	"github.com/vendorhub/console/internal/interfaces/http/middleware"
)

// Pinger is a dependency the console cannot serve without
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck names one dependency checked by the health endpoint
type HealthCheck struct {
	Name   string
	Pinger Pinger
}

// HealthHandler reports liveness of the console and its dependencies
type HealthHandler struct {
	BaseHandler
	checks       []HealthCheck
	openSessions func() int
	timeout      time.Duration
	now          func() time.Time
}

// HealthOption configures a HealthHandler
type HealthOption func(*HealthHandler)

// WithHealthCheck adds a dependency check. Nil pingers are ignored so
// optional stores can be passed unconditionally.
func WithHealthCheck(name string, p Pinger) HealthOption {
	return func(h *HealthHandler) {
		if p != nil {
			h.checks = append(h.checks, HealthCheck{Name: name, Pinger: p})
		}
	}
}

// WithOpenSessions reports the number of live refund sessions
func WithOpenSessions(fn func() int) HealthOption {
	return func(h *HealthHandler) {
		h.openSessions = fn
	}
}

// WithHealthTimeout bounds each dependency check
func WithHealthTimeout(d time.Duration) HealthOption {
	return func(h *HealthHandler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{timeout: 2 * time.Second, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthStatus is the body of the health endpoint
type HealthStatus struct {
	Status       string            `json:"status" example:"healthy"`
	Time         string            `json:"time" example:"2024-05-01T10:00:00Z"`
	Checks       map[string]string `json:"checks"`
	OpenSessions *int              `json:"open_sessions,omitempty"`
}

// Health godoc
// @ID           health
// @Summary      Health check
// @Description  Pings the marketplace backend, and the audit database and Redis when they are configured
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthStatus
// @Failure      503 {object} ErrorResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status := HealthStatus{
		Status: "healthy",
		Time:   h.now().UTC().Format(time.RFC3339),
		Checks: make(map[string]string, len(h.checks)),
	}

	var failed []string
	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		err := check.Pinger.Ping(ctx)
		cancel()
		if err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.String("dependency", check.Name), zap.Error(err))
			status.Checks[check.Name] = "error"
			failed = append(failed, check.Name)
			continue
		}
		status.Checks[check.Name] = "ok"
	}

	if h.openSessions != nil {
		n := h.openSessions()
		status.OpenSessions = &n
	}

	if len(failed) > 0 {
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeServiceUnavailable, "Dependency unavailable", middleware.GetRequestID(c))
		status.Status = "unhealthy"
		resp.Data = status
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, status)
}
