package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisSubmissionGuardWithClient_DefaultPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	guard := NewRedisSubmissionGuardWithClient(client, "")
	defer guard.Close()

	assert.Equal(t, defaultGuardKeyPrefix, guard.keyPrefix)
}

func TestRedisSubmissionGuard_ErrorsWrapped(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	guard := NewRedisSubmissionGuardWithClient(client, "test:")
	defer guard.Close()

	ctx := context.Background()

	ok, err := guard.TryAcquire(ctx, "ticket:1", time.Minute)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "failed to acquire submission lease")

	guard.tokens["ticket:1"] = "01J0TOKEN"
	err = guard.Release(ctx, "ticket:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to release submission lease")
	assert.Equal(t, "01J0TOKEN", guard.tokens["ticket:1"])

	assert.Error(t, guard.Ping(ctx))
}

func TestRedisSubmissionGuard_ReleaseWithoutLeaseSkipsRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	guard := NewRedisSubmissionGuardWithClient(client, "test:")
	defer guard.Close()

	_, err := guard.TryAcquire(context.Background(), "ticket:1", time.Minute)
	require.Error(t, err)
	assert.Empty(t, guard.tokens)

	assert.NoError(t, guard.Release(context.Background(), "ticket:1"))
}
