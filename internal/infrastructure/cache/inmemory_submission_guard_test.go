package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySubmissionGuard_TryAcquire(t *testing.T) {
	guard := NewInMemorySubmissionGuard(time.Hour)
	defer guard.Close()

	ctx := context.Background()

	t.Run("first acquire wins", func(t *testing.T) {
		ok, err := guard.TryAcquire(ctx, "ticket:1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("second acquire on held key fails", func(t *testing.T) {
		ok, err := guard.TryAcquire(ctx, "ticket:1", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("other keys are independent", func(t *testing.T) {
		ok, err := guard.TryAcquire(ctx, "ticket:2", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("release makes the key available again", func(t *testing.T) {
		require.NoError(t, guard.Release(ctx, "ticket:1"))
		ok, err := guard.TryAcquire(ctx, "ticket:1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("releasing an unknown key is not an error", func(t *testing.T) {
		assert.NoError(t, guard.Release(ctx, "ticket:404"))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		ok, err := guard.TryAcquire(cancelled, "ticket:3", time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ok)
	})
}

func TestInMemorySubmissionGuard_Expiry(t *testing.T) {
	guard := NewInMemorySubmissionGuard(time.Hour)
	defer guard.Close()

	now := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return now }

	ctx := context.Background()
	ok, err := guard.TryAcquire(ctx, "ticket:1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(29 * time.Second)
	ok, _ = guard.TryAcquire(ctx, "ticket:1", 30*time.Second)
	assert.False(t, ok, "lease still held")

	now = now.Add(time.Second)
	ok, _ = guard.TryAcquire(ctx, "ticket:1", 30*time.Second)
	assert.True(t, ok, "expired lease can be taken over")
}

func TestInMemorySubmissionGuard_Cleanup(t *testing.T) {
	guard := NewInMemorySubmissionGuard(time.Hour)
	defer guard.Close()

	now := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return now }

	ctx := context.Background()
	_, _ = guard.TryAcquire(ctx, "short", time.Second)
	_, _ = guard.TryAcquire(ctx, "long", time.Hour)
	require.Equal(t, 2, guard.Size())

	now = now.Add(time.Minute)
	guard.cleanup()
	assert.Equal(t, 1, guard.Size())
}

func TestInMemorySubmissionGuard_ConcurrentAcquire(t *testing.T) {
	guard := NewInMemorySubmissionGuard(time.Hour)
	defer guard.Close()

	var winners atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := guard.TryAcquire(context.Background(), "ticket:42", time.Minute)
			if err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestInMemorySubmissionGuard_CloseIsIdempotent(t *testing.T) {
	guard := NewInMemorySubmissionGuard(10 * time.Millisecond)
	assert.NoError(t, guard.Close())
	assert.NoError(t, guard.Close())
}
