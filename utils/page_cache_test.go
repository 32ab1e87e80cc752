package utils

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryPageCacheExpiresByTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryPageCache(func() time.Time { return now })
	ctx := context.Background()

	cache.Set(ctx, "home", []byte("<html>1</html>"), 20*time.Second)

	got, ok := cache.Get(ctx, "home")
	assert.True(t, ok)
	assert.Equal(t, "<html>1</html>", string(got))

	now = now.Add(19 * time.Second)
	_, ok = cache.Get(ctx, "home")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = cache.Get(ctx, "home")
	assert.False(t, ok)
}

func TestMemoryPageCacheDefaultTTL(t *testing.T) {
	now := time.Now()
	cache := NewMemoryPageCache(func() time.Time { return now })
	cache.Set(context.Background(), "k", []byte("v"), 0)

	now = now.Add(DefaultPageCacheTTL - time.Millisecond)
	_, ok := cache.Get(context.Background(), "k")
	assert.True(t, ok)
}

func TestNewPageCacheWithoutRedis(t *testing.T) {
	_, ok := NewPageCache(nil).(*MemoryPageCache)
	assert.True(t, ok)
}

func TestMemoryPageCacheSweepsExpiredKeys(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryPageCache(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 5000; i++ {
		cache.Set(ctx, "/?x="+strconv.Itoa(i), []byte("page"), 20*time.Second)
	}
	assert.Equal(t, 5000, cache.Len())

	now = now.Add(time.Hour)
	cache.Set(ctx, "/", []byte("fresh"), 20*time.Second)
	assert.Equal(t, 1, cache.Len())

	got, ok := cache.Get(ctx, "/")
	assert.True(t, ok)
	assert.Equal(t, "fresh", string(got))
}

func TestMemoryPageCacheKeepsLiveKeysOnSweep(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryPageCache(func() time.Time { return now })
	ctx := context.Background()

	cache.Set(ctx, "old", []byte("1"), 10*time.Second)
	now = now.Add(5 * time.Second)
	cache.Set(ctx, "live", []byte("2"), time.Minute)

	now = now.Add(6 * time.Second)
	cache.Set(ctx, "new", []byte("3"), time.Minute)

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get(ctx, "live")
	assert.True(t, ok)
	_, ok = cache.Get(ctx, "old")
	assert.False(t, ok)
}
