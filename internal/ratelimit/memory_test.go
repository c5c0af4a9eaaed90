package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCapacityBoundary(t *testing.T) {
	store := NewMemoryStore(Policy{Name: "general", Limit: 5, Window: time.Minute})

	for i := 0; i < 5; i++ {
		result, err := store.Consume(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be admitted", i+1)
		assert.Equal(t, 4-i, result.Remaining)
	}

	result, err := store.Consume(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Greater(t, result.RetryAfter, time.Duration(0))
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	store := NewMemoryStore(Policy{Name: "general", Limit: 1, Window: time.Minute})

	first, err := store.Consume(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	blocked, err := store.Consume(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)

	other, err := store.Consume(context.Background(), "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestMemoryStoreWindowReset(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(Policy{Name: "general", Limit: 1, Window: time.Minute})
	store.now = func() time.Time { return now }

	first, err := store.Consume(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, now.Add(time.Minute), first.ResetAt)

	blocked, err := store.Consume(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)
	assert.Equal(t, time.Minute, blocked.RetryAfter)

	// A fresh window admits again and its boundary moves forward.
	now = now.Add(time.Minute)
	again, err := store.Consume(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, again.Allowed)
	assert.Equal(t, now.Add(time.Minute), again.ResetAt)
}

func TestMemoryStoreConcurrentConsume(t *testing.T) {
	const limit = 50
	store := NewMemoryStore(Policy{Name: "general", Limit: limit, Window: time.Minute})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < limit*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := store.Consume(context.Background(), "10.0.0.1")
			require.NoError(t, err)
			if result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, allowed, "concurrent requests must never over-admit")
}

func TestMemoryStoreCleanup(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(Policy{Name: "general", Limit: 1, Window: time.Minute})
	store.now = func() time.Time { return now }

	_, err := store.Consume(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	_, err = store.Consume(context.Background(), "10.0.0.2")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	store.Cleanup()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.buckets)
}
