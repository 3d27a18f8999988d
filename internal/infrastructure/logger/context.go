package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

// Context keys. The identifier keys double as log field names.
const (
	LoggerKey    contextKey = "logger"
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"    // authenticated vendor user
	SessionIDKey contextKey = "session_id" // refund session
)

var identifierKeys = []contextKey{RequestIDKey, UserIDKey, SessionIDKey}

// WithContext stores logger in ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext returns the logger stored in ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the request id in ctx and on the returned logger,
// which is also stored in the returned context.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return tag(ctx, logger, RequestIDKey, requestID)
}

// WithUserID is WithRequestID for the vendor user id
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	return tag(ctx, logger, UserIDKey, userID)
}

// WithSessionID is WithRequestID for the refund session id
func WithSessionID(ctx context.Context, logger *zap.Logger, sessionID string) (context.Context, *zap.Logger) {
	return tag(ctx, logger, SessionIDKey, sessionID)
}

func tag(ctx context.Context, logger *zap.Logger, key contextKey, value string) (context.Context, *zap.Logger) {
	tagged := logger.With(zap.String(string(key), value))
	return WithContext(context.WithValue(ctx, key, value), tagged), tagged
}

func GetRequestID(ctx context.Context) string { return lookup(ctx, RequestIDKey) }

func GetUserID(ctx context.Context) string { return lookup(ctx, UserIDKey) }

func GetSessionID(ctx context.Context) string { return lookup(ctx, SessionIDKey) }

func lookup(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// GetTraceID returns the active trace id in hex, or "" without a valid span
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the active span id in hex, or "" without a valid span
func GetSpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}

// WithTraceContext adds trace_id and span_id when ctx carries a valid span
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// ContextLogger resolves trace correlation at log time so entries written
// inside a span carry that span's ids.
//
//	logger.L(ctx).Info("identity numbers loaded", zap.Int("lines", n))
type ContextLogger struct {
	ctx    context.Context
	base   *zap.Logger
	tagIDs bool // base did not come from ctx, copy identifiers from ctx values
}

// L uses the logger stored in ctx, which already carries the identifiers
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, base: FromContext(ctx)}
}

// WithLogger uses logger and copies request, user and session ids from ctx
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	return &ContextLogger{ctx: ctx, base: logger, tagIDs: true}
}

// With returns a child carrying fields
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	base := cl.base
	if base == nil {
		base = zap.NewNop()
	}
	return &ContextLogger{ctx: cl.ctx, base: base.With(fields...), tagIDs: cl.tagIDs}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) { cl.Zap().Debug(msg, fields...) }

func (cl *ContextLogger) Info(msg string, fields ...zap.Field) { cl.Zap().Info(msg, fields...) }

func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) { cl.Zap().Warn(msg, fields...) }

func (cl *ContextLogger) Error(msg string, fields ...zap.Field) { cl.Zap().Error(msg, fields...) }

// Zap returns the underlying logger with correlation fields applied
func (cl *ContextLogger) Zap() *zap.Logger {
	log := cl.base
	if log == nil {
		log = zap.NewNop()
	}
	log = WithTraceContext(cl.ctx, log)
	if !cl.tagIDs {
		return log
	}
	for _, key := range identifierKeys {
		if v := lookup(cl.ctx, key); v != "" {
			log = log.With(zap.String(string(key), v))
		}
	}
	return log
}
