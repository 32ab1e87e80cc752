package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterSetSweepsIdleClients(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	set := newLimiterSet(2, func() time.Time { return now })

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		assert.True(t, set.allow(ip))
	}
	assert.False(t, set.allow("10.0.0.1"), "burst of one is spent")
	assert.Equal(t, 3, set.limiters.Count())

	now = now.Add(4 * time.Minute)
	assert.True(t, set.allow("10.0.0.2"))
	assert.Equal(t, 3, set.limiters.Count(), "nothing idle long enough yet")

	now = now.Add(2 * time.Minute)
	assert.True(t, set.allow("10.0.0.4"))
	assert.Equal(t, 2, set.limiters.Count(), "clients gone for over five minutes are dropped")
	_, kept := set.limiters.Get("10.0.0.2")
	assert.True(t, kept)
}

func TestLimiterSetRefillsOverTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	set := newLimiterSet(2, func() time.Time { return now })

	assert.True(t, set.allow("10.0.0.1"))
	assert.False(t, set.allow("10.0.0.1"))
	now = now.Add(30 * time.Second)
	assert.True(t, set.allow("10.0.0.1"))
}
