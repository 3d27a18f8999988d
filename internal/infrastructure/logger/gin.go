package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ginLoggerKey holds the request logger in the gin context
const ginLoggerKey = "logger"

// GinMiddleware writes one access log line per request. The handler chain
// sees a logger carrying the request id through both GetGinLogger and
// FromContext(c.Request.Context()). It must run after the request id
// middleware.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		ctx, log := WithRequestID(req.Context(), base.With(
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		), c.GetString(string(RequestIDKey)))
		c.Request = req.WithContext(ctx)
		c.Set(ginLoggerKey, log)

		c.Next()

		status := c.Writer.Status()
		WithTraceContext(c.Request.Context(), log).
			Log(statusLevel(status), "HTTP Request", accessFields(c, status, time.Since(start))...)
	}
}

func statusLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

func accessFields(c *gin.Context, status int, latency time.Duration) []zap.Field {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.Duration("latency", latency),
		zap.String("client_ip", c.ClientIP()),
		zap.String("user_agent", c.Request.UserAgent()),
		zap.Int("body_size", c.Writer.Size()),
	}
	optional := map[string]string{
		"route": c.FullPath(),
		"query": c.Request.URL.RawQuery,
	}
	for _, k := range []string{"route", "query"} {
		if v := optional[k]; v != "" {
			fields = append(fields, zap.String(k, v))
		}
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
	}
	return fields
}

// Recovery turns a handler panic into a 500 with the standard error body and
// logs the panic value with its stack.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			requestID := c.GetString(string(RequestIDKey))
			base.Error("Panic recovered",
				zap.String("request_id", requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("error", rec),
				zap.Stack("stacktrace"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":       "ERR_INTERNAL",
					"message":    "An internal error occurred",
					"request_id": requestID,
				},
			})
		}()
		c.Next()
	}
}

// GetGinLogger returns the request logger set by GinMiddleware, or a no-op
// logger outside of it.
func GetGinLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(ginLoggerKey); ok {
		if log, ok := v.(*zap.Logger); ok {
			return log
		}
	}
	return zap.NewNop()
}
