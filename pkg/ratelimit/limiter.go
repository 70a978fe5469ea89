package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter answers whether one more request under key is allowed and
// counts it if so.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a process-local fixed-window counter. Best effort:
// state resets on restart and is per instance under multi-instance
// deployment, which degrades limits but never blocks legitimate
// traffic.
type MemoryLimiter struct {
	mu     sync.Mutex
	store  map[string]*window
	limit  int
	period time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		store:  make(map[string]*window),
		limit:  limit,
		period: period,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.store[key]
	if !ok || now.After(w.resetAt) {
		l.cleanup(now)
		l.store[key] = &window{count: 1, resetAt: now.Add(l.period)}
		return true, nil
	}

	if w.count >= l.limit {
		return false, nil
	}

	w.count++
	return true, nil
}

// cleanup runs under the lock, piggybacking on window rollovers so the
// map cannot grow without bound.
func (l *MemoryLimiter) cleanup(now time.Time) {
	for k, w := range l.store {
		if now.After(w.resetAt) {
			delete(l.store, k)
		}
	}
}
