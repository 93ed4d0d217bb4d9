// Package ratelimit implements per-client token bucket rate limiting for the
// HTTP API.
//
// A bucket allows bursts up to its capacity while holding clients to a
// sustained refill rate.
package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is a thread-safe token bucket. Each request consumes one
// token; an empty bucket rejects requests until it refills.
type TokenBucket struct {
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
	hitCount   int64
	totalCount int64
}

// NewTokenBucket creates a full bucket holding capacity tokens and refilling
// refillRate tokens per second.
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return newTokenBucketAt(capacity, refillRate, time.Now())
}

func newTokenBucketAt(capacity, refillRate int, now time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: float64(refillRate),
		lastRefill: now,
	}
}

// Allow consumes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	return tb.allowAt(time.Now())
}

func (tb *TokenBucket) allowAt(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.totalCount++
	tb.refill(now)

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	tb.hitCount++
	return false
}

// refill credits the tokens earned since the last call. Fractional tokens
// carry over so slow refill rates still make progress.
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed <= 0 {
		return
	}
	tb.tokens = min(tb.capacity, tb.tokens+elapsed.Seconds()*tb.refillRate)
	tb.lastRefill = now
}

// full reports whether the bucket has refilled completely by now, meaning
// its client has gone idle.
func (tb *TokenBucket) full(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill(now)
	return tb.tokens >= tb.capacity
}

// Stats returns the number of rejected and total requests.
func (tb *TokenBucket) Stats() (hits, total int64) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.hitCount, tb.totalCount
}
