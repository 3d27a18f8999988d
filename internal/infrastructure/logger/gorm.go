package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQuery is the statement duration above which GORM statements
// are logged at warn level.
const DefaultSlowQuery = 200 * time.Millisecond

// GormLogger adapts zap to gormlogger.Interface. Statement logs carry the
// request and trace ids of the context they ran under.
type GormLogger struct {
	base      *zap.Logger
	level     gormlogger.LogLevel
	slow      time.Duration
	notFound  bool // log gorm.ErrRecordNotFound
	statement bool // include the SQL text
}

var _ gormlogger.Interface = (*GormLogger)(nil)

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold overrides DefaultSlowQuery. Zero disables slow logging.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slow = d }
}

// WithIgnoreRecordNotFoundError drops gorm.ErrRecordNotFound from the error log
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) { l.notFound = !ignore }
}

// WithSQL includes the statement text. Audit inserts carry bank account ids
// so this stays off outside local development.
func WithSQL(enabled bool) GormLoggerOption {
	return func(l *GormLogger) { l.statement = enabled }
}

// NewGormLogger creates a GormLogger writing to a "gorm" child of zapLogger
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{base: zapLogger.Named("gorm"), level: level, slow: DefaultSlowQuery}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode returns a copy logging at level
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *l
	c.level = level
	return &c
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < min {
		return
	}
	if strings.Contains(msg, "%") {
		msg = fmt.Sprintf(msg, data...)
	}
	l.scoped(ctx).Log(lvl, msg)
}

// Trace logs a finished statement: failures at error, slow statements at
// warn and everything else at debug when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var (
		lvl zapcore.Level
		msg string
	)
	switch {
	case err != nil:
		if l.level < gormlogger.Error || (!l.notFound && errors.Is(err, gormlogger.ErrRecordNotFound)) {
			return
		}
		lvl, msg = zapcore.ErrorLevel, "SQL error"
	case l.slow > 0 && elapsed > l.slow:
		if l.level < gormlogger.Warn {
			return
		}
		lvl, msg = zapcore.WarnLevel, "slow SQL"
	default:
		if l.level < gormlogger.Info {
			return
		}
		lvl, msg = zapcore.DebugLevel, "SQL query"
	}

	sql, rows := fc()
	fields := make([]zap.Field, 0, 5)
	fields = append(fields, zap.Duration("elapsed", elapsed), zap.Int64("rows", rows))
	if l.statement {
		fields = append(fields, zap.String("sql", sql))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	} else if lvl == zapcore.WarnLevel {
		fields = append(fields, zap.Duration("threshold", l.slow))
	}
	l.scoped(ctx).Log(lvl, msg, fields...)
}

func (l *GormLogger) scoped(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return l.base
	}
	log := WithTraceContext(ctx, l.base)
	if id := GetRequestID(ctx); id != "" {
		log = log.With(zap.String("request_id", id))
	}
	return log
}

// MapGormLogLevel converts a zap level name to a GORM level. Unknown names
// map to Warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	levels := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"error":  gormlogger.Error,
		"warn":   gormlogger.Warn,
		"info":   gormlogger.Info,
		"debug":  gormlogger.Info,
	}
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return gormlogger.Warn
}
