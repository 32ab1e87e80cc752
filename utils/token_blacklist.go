package utils

import (
	"context"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/redis/go-redis/v9"
)

// TokenBlacklist records revoked JWTs until their natural expiry.
// Redis is preferred; without it revocations live in process memory.
type TokenBlacklist struct {
	rc     *redis.Client
	memory cmap.ConcurrentMap[string, time.Time]
}

// NewTokenBlacklist creates a blacklist; rc may be nil.
func NewTokenBlacklist(rc *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rc: rc, memory: cmap.New[time.Time]()}
}

// Revoke stores token until expiresAt to support logout semantics.
func (b *TokenBlacklist) Revoke(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := b.rc.Set(ctx, "jwt:blacklist:"+token, "1", ttl).Err(); err == nil {
			return
		}
	}
	b.memory.Set(token, expiresAt)
}

// IsRevoked checks if a token was revoked before natural expiration.
func (b *TokenBlacklist) IsRevoked(token string) bool {
	if b.rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := b.rc.Exists(ctx, "jwt:blacklist:"+token).Result()
		if err == nil && n > 0 {
			return true
		}
	}
	expiresAt, ok := b.memory.Get(token)
	if !ok {
		return false
	}
	if time.Now().After(expiresAt) {
		b.memory.Remove(token)
		return false
	}
	return true
}
