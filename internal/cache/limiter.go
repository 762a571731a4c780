package cache

import (
	"context"
	"sync"
	"time"
)

// DeviceLimiter bounds how many spends a single device may make per
// window.
type DeviceLimiter interface {
	Allow(ctx context.Context, deviceID string) bool
}

// RedisLimiter counts spends per device in a fixed one-minute window
// (INCR + first-hit EXPIRE). Shared across instances.
type RedisLimiter struct {
	c     *Cache
	limit int
}

func NewRedisLimiter(c *Cache, perMinute int) *RedisLimiter {
	return &RedisLimiter{c: c, limit: perMinute}
}

func (l *RedisLimiter) Allow(ctx context.Context, deviceID string) bool {
	if l.limit <= 0 {
		return true
	}
	key := "spends:" + deviceID + ":" + time.Now().UTC().Format("200601021504")
	n, err := l.c.rdb.Incr(ctx, key).Result()
	if err != nil {
		// fail open; the global rate limit still applies
		return true
	}
	if n == 1 {
		_ = l.c.rdb.Expire(ctx, key, 2*time.Minute).Err()
	}
	return n <= int64(l.limit)
}

// MemoryLimiter is the single-instance fallback when redis is not
// configured.
type MemoryLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	counts map[string]int
	resets map[string]time.Time
}

func NewMemoryLimiter(perMinute int) *MemoryLimiter {
	return &MemoryLimiter{
		limit:  perMinute,
		window: time.Minute,
		counts: map[string]int{},
		resets: map[string]time.Time{},
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, deviceID string) bool {
	if l.limit <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if reset, ok := l.resets[deviceID]; !ok || now.After(reset) {
		l.counts[deviceID] = 0
		l.resets[deviceID] = now.Add(l.window)
	}
	l.counts[deviceID]++
	return l.counts[deviceID] <= l.limit
}
