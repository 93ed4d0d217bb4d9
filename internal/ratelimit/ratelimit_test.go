package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketAllow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	bucket := newTokenBucketAt(5, 1, now)

	for i := 0; i < 5; i++ {
		assert.True(t, bucket.allowAt(now), "request %d", i+1)
	}
	assert.False(t, bucket.allowAt(now))

	hits, total := bucket.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(6), total)
}

func TestTokenBucketRefill(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	bucket := newTokenBucketAt(2, 10, now)
	bucket.allowAt(now)
	bucket.allowAt(now)
	assert.False(t, bucket.allowAt(now))

	later := now.Add(200 * time.Millisecond)
	assert.True(t, bucket.allowAt(later))
	assert.True(t, bucket.allowAt(later))
	assert.False(t, bucket.allowAt(later))
}

func TestTokenBucketFractionalRefill(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	bucket := newTokenBucketAt(1, 1, now)
	assert.True(t, bucket.allowAt(now))

	// two half-second steps add up to one token
	assert.False(t, bucket.allowAt(now.Add(500*time.Millisecond)))
	assert.True(t, bucket.allowAt(now.Add(time.Second)))
}

func TestClientLimiterPerClient(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewClientLimiter(Config{Capacity: 1, RefillRate: 1, Enabled: true})
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
	assert.Equal(t, 2, l.Clients())
}

func TestClientLimiterDisabled(t *testing.T) {
	l := NewClientLimiter(Config{Capacity: 0, Enabled: false})
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("a"))
	}
	assert.Zero(t, l.Clients())

	var nilLimiter *ClientLimiter
	assert.True(t, nilLimiter.Allow("a"))
}

func TestClientLimiterEvictsIdleClients(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewClientLimiter(Config{Capacity: 2, RefillRate: 1, Enabled: true, MaxClients: 2})
	l.now = func() time.Time { return now }

	l.Allow("a")
	l.Allow("b")
	now = now.Add(10 * time.Second)
	l.Allow("c")

	assert.Equal(t, 1, l.Clients())
}
