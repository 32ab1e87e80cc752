package middleware

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/time/rate"

	"github.com/cppla/yatube/utils"
)

const (
	limiterIdleTTL       = 5 * time.Minute
	limiterSweepInterval = time.Minute
)

type rateLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

type limiterSet struct {
	limiters  cmap.ConcurrentMap[string, *rateLimiter]
	limit     rate.Limit
	burst     int
	now       func() time.Time
	nextSweep atomic.Int64
}

func newLimiterSet(perMinute int, now func() time.Time) *limiterSet {
	perMinute = max(perMinute, 1)
	return &limiterSet{
		limiters: cmap.New[*rateLimiter](),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    max(perMinute/2, 1),
		now:      now,
	}
}

// RateLimitMiddleware applies a per-IP token bucket allowing perMinute requests.
// Only unsafe methods are counted so that rendering the forms stays free.
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	set := newLimiterSet(perMinute, time.Now)

	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodGet || ctx.Request.Method == http.MethodHead {
			ctx.Next()
			return
		}
		if !set.allow(ctx.ClientIP()) {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			return
		}
		ctx.Next()
	}
}

func (s *limiterSet) allow(key string) bool {
	now := s.now()
	s.sweep(now)

	l := s.limiters.Upsert(key, nil, func(exist bool, cur, _ *rateLimiter) *rateLimiter {
		if exist {
			return cur
		}
		fresh := &rateLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		fresh.lastSeen.Store(now.UnixNano())
		return fresh
	})
	l.lastSeen.Store(now.UnixNano())
	return l.limiter.AllowN(now, 1)
}

// sweep drops limiters idle for limiterIdleTTL, at most once per limiterSweepInterval.
func (s *limiterSet) sweep(now time.Time) {
	next := s.nextSweep.Load()
	if now.UnixNano() < next || !s.nextSweep.CompareAndSwap(next, now.Add(limiterSweepInterval).UnixNano()) {
		return
	}
	cutoff := now.Add(-limiterIdleTTL).UnixNano()
	idle := func(_ string, l *rateLimiter, exists bool) bool {
		return exists && l.lastSeen.Load() < cutoff
	}
	for item := range s.limiters.IterBuffered() {
		if item.Val.lastSeen.Load() < cutoff {
			s.limiters.RemoveCb(item.Key, idle)
		}
	}
}
