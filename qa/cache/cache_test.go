package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLRU_BasicSetGet tests basic Set and Get operations.
func TestLRU_BasicSetGet(t *testing.T) {
	cache := NewLRU[string, string](100, time.Minute)

	t.Run("Set and Get returns value", func(t *testing.T) {
		cache.Set("key", "value")
		result, ok := cache.Get("key")

		require.True(t, ok, "expected key to exist")
		assert.Equal(t, "value", result)
	})

	t.Run("Get non-existent key returns false", func(t *testing.T) {
		_, ok := cache.Get("non-existent")
		assert.False(t, ok)
	})

	t.Run("Update existing key", func(t *testing.T) {
		cache.Set("update-key", "value1")
		cache.Set("update-key", "value2")

		result, ok := cache.Get("update-key")
		require.True(t, ok)
		assert.Equal(t, "value2", result)
	})
}

// TestLRU_Defaults tests defaulting of capacity and TTL.
func TestLRU_Defaults(t *testing.T) {
	cache := NewLRU[string, int](0, 0)

	assert.Equal(t, 1000, cache.Capacity())
	cache.Set("key", 1)
	_, ok := cache.Get("key")
	assert.True(t, ok, "cache with defaulted capacity should store values")
}

// TestLRU_TTLExpiration tests TTL-based expiration.
func TestLRU_TTLExpiration(t *testing.T) {
	cache := NewLRU[string, string](100, 50*time.Millisecond)

	cache.Set("expiring", "value")

	_, ok := cache.Get("expiring")
	assert.True(t, ok, "key should exist immediately after Set")

	time.Sleep(60 * time.Millisecond)

	_, ok = cache.Get("expiring")
	assert.False(t, ok, "key should be expired after TTL")
	assert.Equal(t, 0, cache.Size(), "expired entry is removed on access")
}

// TestLRU_Eviction tests the LRU eviction policy.
func TestLRU_Eviction(t *testing.T) {
	t.Run("evicts least recently used when full", func(t *testing.T) {
		cache := NewLRU[string, int](3, time.Minute)

		cache.Set("key1", 1)
		cache.Set("key2", 2)
		cache.Set("key3", 3)
		assert.Equal(t, 3, cache.Size())

		// Promote key1.
		cache.Get("key1")

		cache.Set("key4", 4)
		assert.Equal(t, 3, cache.Size())

		_, ok := cache.Get("key2")
		assert.False(t, ok, "LRU key should be evicted")

		_, ok = cache.Get("key1")
		assert.True(t, ok, "recently accessed key should survive")
	})

	t.Run("update promotes entry", func(t *testing.T) {
		cache := NewLRU[string, int](3, time.Minute)

		cache.Set("key1", 1)
		cache.Set("key2", 2)
		cache.Set("key3", 3)
		cache.Set("key2", 22)

		cache.Set("key4", 4)

		_, ok := cache.Get("key1")
		assert.False(t, ok, "oldest key should be evicted")

		v, ok := cache.Get("key2")
		require.True(t, ok, "updated key should survive")
		assert.Equal(t, 22, v)
	})
}

// TestLRU_Remove tests explicit removal.
func TestLRU_Remove(t *testing.T) {
	cache := NewLRU[string, int](100, time.Minute)

	cache.Set("key", 1)
	assert.True(t, cache.Remove("key"))
	assert.False(t, cache.Remove("key"), "removing twice returns false")

	_, ok := cache.Get("key")
	assert.False(t, ok)
}

// TestLRU_CleanupExpired tests bulk cleanup of expired entries.
func TestLRU_CleanupExpired(t *testing.T) {
	cache := NewLRU[string, int](100, 50*time.Millisecond)

	cache.Set("a", 1)
	cache.Set("b", 2)

	time.Sleep(60 * time.Millisecond)
	cache.Set("c", 3)

	removed := cache.CleanupExpired()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, cache.Size())

	_, ok := cache.Get("c")
	assert.True(t, ok, "fresh entry should remain")
}

// TestLRU_ThreadSafety tests concurrent access.
func TestLRU_ThreadSafety(t *testing.T) {
	cache := NewLRU[string, int](1000, time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%26))
			cache.Set(key, n)
		}(i)
	}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cache.Get(string(rune('a' + n%26)))
		}(i)
	}

	wg.Wait()
	// Should not panic or deadlock.
}
