package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eventhub/backend/internal/infrastructure/config"
)

// unreachableRedis points at a port nothing listens on
var unreachableRedis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

func TestLockerFactory_CreateLocker(t *testing.T) {
	t.Run("falls back to in-memory when allowed", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		cfg := unreachableRedis
		cfg.AllowInMemoryFallback = true

		locker, err := NewLockerFactory(cfg, WithLogger(zap.New(core))).CreateLocker(context.Background())
		require.NoError(t, err)
		defer locker.Close()

		assert.IsType(t, &InMemoryLocker{}, locker)
		assert.Equal(t, 1, logs.FilterMessageSnippet("falling back to in-memory").Len())
	})

	t.Run("fails when fallback is disabled", func(t *testing.T) {
		_, err := NewLockerFactory(unreachableRedis).CreateLocker(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Redis required for keyed locking")
	})

	t.Run("option overrides config", func(t *testing.T) {
		cfg := unreachableRedis
		cfg.AllowInMemoryFallback = true

		_, err := NewLockerFactory(cfg, WithInMemoryFallback(false)).CreateLocker(context.Background())
		assert.Error(t, err)
	})
}
