package rate

import (
	"sync"
	"time"
)

// WindowLimiter allows at most limit hits per key within a fixed window.
type WindowLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string]*bucket
	now    func() time.Time
}

type bucket struct {
	resetAt time.Time
	count   int
}

// NewWindowLimiter creates a limiter with the given per-key budget.
func NewWindowLimiter(limit int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string]*bucket),
		now:    time.Now,
	}
}

// Allow records a hit for key and reports whether it fits the budget.
func (l *WindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.hits[key]
	if !ok || now.After(b.resetAt) {
		l.hits[key] = &bucket{resetAt: now.Add(l.window), count: 1}
		return true
	}
	if b.count >= l.limit {
		return false
	}
	b.count++
	return true
}

// Remaining reports how many hits key has left in the current window.
func (l *WindowLimiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.hits[key]
	if !ok || l.now().After(b.resetAt) {
		return l.limit
	}
	if b.count >= l.limit {
		return 0
	}
	return l.limit - b.count
}

func (l *WindowLimiter) sweep(now time.Time) {
	if len(l.hits) < 1024 {
		return
	}
	for key, b := range l.hits {
		if now.After(b.resetAt) {
			delete(l.hits, key)
		}
	}
}
