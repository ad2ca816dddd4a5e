package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/domain/shared"
	"github.com/eventhub/backend/internal/infrastructure/config"
)

// LockerFactory creates keyed lockers based on configuration
type LockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory locker when Redis is unavailable
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory. Fallback follows cfg.AllowInMemoryFallback unless overridden.
func NewLockerFactory(cfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: cfg.AllowInMemoryFallback,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisLocker creates a Redis-based locker
func (f *LockerFactory) CreateRedisLocker(ctx context.Context) (*RedisLocker, error) {
	locker, err := NewRedisLocker(ctx, &redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis locker: %w", err)
	}
	return locker, nil
}

// CreateLocker tries Redis first and falls back to an in-memory locker when allowed
func (f *LockerFactory) CreateLocker(ctx context.Context) (shared.KeyedLocker, error) {
	locker, err := f.CreateRedisLocker(ctx)
	if err == nil {
		f.logger.Info("using Redis keyed locker", zap.String("addr", f.redisConfig.Addr()))
		return locker, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for keyed locking but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory keyed locker. "+
		"Concurrent instances will not coordinate invoice creation or callback handling.",
		zap.Error(err),
	)
	return NewInMemoryLocker(), nil
}
