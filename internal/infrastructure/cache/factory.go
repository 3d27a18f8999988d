package cache

import (
	"context"
	"fmt"

	"github.com/vendorhub/console/internal/domain/shared"
	"github.com/vendorhub/console/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SubmissionGuardFactory picks a LeaseStore implementation from configuration
type SubmissionGuardFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SubmissionGuardFactoryOption configures the factory
type SubmissionGuardFactoryOption func(*SubmissionGuardFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SubmissionGuardFactoryOption {
	return func(f *SubmissionGuardFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an in-memory guard is used when
// Redis is unreachable. Default is true.
func WithInMemoryFallback(allow bool) SubmissionGuardFactoryOption {
	return func(f *SubmissionGuardFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSubmissionGuardFactory creates a new factory
func NewSubmissionGuardFactory(cfg config.RedisConfig, opts ...SubmissionGuardFactoryOption) *SubmissionGuardFactory {
	f := &SubmissionGuardFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateGuard returns a Redis guard when Redis is enabled and reachable.
// Otherwise it returns an in-memory guard, or an error if fallback is off.
func (f *SubmissionGuardFactory) CreateGuard(ctx context.Context) (shared.LeaseStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory submission guard")
		return NewInMemorySubmissionGuard(0), nil
	}

	guard, err := NewRedisSubmissionGuard(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis submission guard", zap.String("addr", f.redisConfig.Addr()))
		return guard, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for submission guard but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory submission guard. "+
		"Concurrent submissions from other instances will not be detected.",
		zap.Error(err),
	)
	return NewInMemorySubmissionGuard(0), nil
}
