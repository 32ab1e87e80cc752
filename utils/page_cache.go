package utils

import (
	"context"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/redis/go-redis/v9"
)

// DefaultPageCacheTTL is how long a rendered feed page is served from cache.
const DefaultPageCacheTTL = 20 * time.Second

// PageCache stores rendered responses by key. Entries expire by time only.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// NewPageCache returns a Redis backed cache when rc is non-nil, otherwise an in-memory one.
func NewPageCache(rc *redis.Client) PageCache {
	if rc != nil {
		return &RedisPageCache{client: rc, prefix: "page:"}
	}
	return NewMemoryPageCache(time.Now)
}

// RedisPageCache keeps entries in Redis with a native TTL.
type RedisPageCache struct {
	client *redis.Client
	prefix string
}

func (c *RedisPageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			Sugar.Debugf("page cache get failed key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}

func (c *RedisPageCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultPageCacheTTL
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		Sugar.Warnf("page cache set failed key=%s err=%v", key, err)
	}
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryPageCache is a process-local PageCache. Expired entries are dropped on read,
// and Set sweeps the whole map at most once per sweep interval.
type MemoryPageCache struct {
	entries cmap.ConcurrentMap[string, memoryEntry]
	now     func() time.Time

	sweepMu   sync.Mutex
	nextSweep time.Time
}

// NewMemoryPageCache builds an empty cache reading time from now.
func NewMemoryPageCache(now func() time.Time) *MemoryPageCache {
	return &MemoryPageCache{entries: cmap.New[memoryEntry](), now: now}
}

func (c *MemoryPageCache) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		c.entries.RemoveCb(key, expired(c.now()))
		return nil, false
	}
	return e.value, true
}

func (c *MemoryPageCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultPageCacheTTL
	}
	now := c.now()
	c.entries.Set(key, memoryEntry{value: value, expiresAt: now.Add(ttl)})
	c.sweep(now, ttl)
}

// Len reports the number of stored entries, expired ones included until swept.
func (c *MemoryPageCache) Len() int {
	return c.entries.Count()
}

func (c *MemoryPageCache) sweep(now time.Time, interval time.Duration) {
	c.sweepMu.Lock()
	if now.Before(c.nextSweep) {
		c.sweepMu.Unlock()
		return
	}
	c.nextSweep = now.Add(interval)
	c.sweepMu.Unlock()

	isExpired := expired(now)
	for item := range c.entries.IterBuffered() {
		if !now.Before(item.Val.expiresAt) {
			// re-checked under the shard lock, a concurrent Set may have refreshed it
			c.entries.RemoveCb(item.Key, isExpired)
		}
	}
}

func expired(now time.Time) cmap.RemoveCb[string, memoryEntry] {
	return func(_ string, e memoryEntry, exists bool) bool {
		return exists && !now.Before(e.expiresAt)
	}
}
