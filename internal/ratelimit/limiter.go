package ratelimit

import (
	"sync"
	"time"
)

// Config holds the limiter settings.
type Config struct {
	Capacity   int  // burst allowance per client
	RefillRate int  // sustained requests per second per client
	Enabled    bool // false lets every request through
	// MaxClients bounds the number of tracked clients. When reached, idle
	// clients (full buckets) are dropped before a new one is added.
	MaxClients int
}

// ClientLimiter keeps one token bucket per client key, created lazily.
//
//	limiter := NewClientLimiter(Config{Capacity: 20, RefillRate: 5, Enabled: true})
//	if !limiter.Allow(clientIP) {
//	    // reject with 429
//	}
type ClientLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*TokenBucket
	config  Config
	now     func() time.Time
}

// NewClientLimiter creates a limiter for cfg.
func NewClientLimiter(cfg Config) *ClientLimiter {
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = 10000
	}
	return &ClientLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  cfg,
		now:     time.Now,
	}
}

// Enabled reports whether requests are limited at all.
func (l *ClientLimiter) Enabled() bool {
	return l != nil && l.config.Enabled
}

// Allow reports whether a request from client may proceed.
func (l *ClientLimiter) Allow(client string) bool {
	if !l.Enabled() {
		return true
	}
	now := l.now()

	l.mu.RLock()
	bucket, ok := l.buckets[client]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		bucket, ok = l.buckets[client]
		if !ok {
			if len(l.buckets) >= l.config.MaxClients {
				l.evictIdle(now)
			}
			bucket = newTokenBucketAt(l.config.Capacity, l.config.RefillRate, now)
			l.buckets[client] = bucket
		}
		l.mu.Unlock()
	}
	return bucket.allowAt(now)
}

// evictIdle drops clients whose buckets have refilled. Callers hold l.mu.
func (l *ClientLimiter) evictIdle(now time.Time) {
	for key, b := range l.buckets {
		if b.full(now) {
			delete(l.buckets, key)
		}
	}
}

// Clients returns the number of tracked clients.
func (l *ClientLimiter) Clients() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}
