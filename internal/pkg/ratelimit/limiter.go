package ratelimit

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultMaxRequests = 5
	DefaultWindow      = time.Minute

	defaultCleanupEvery = 100
)

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter is an in-memory fixed-window counter keyed by client identifier.
// State lives only in this process.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	now          func() time.Time
	cleanupEvery int
	checks       int
}

type Option func(*Limiter)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithCleanupEvery sets how many checks happen between sweeps of expired entries.
func WithCleanupEvery(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.cleanupEvery = n
		}
	}
}

func New(opts ...Option) *Limiter {
	l := &Limiter{
		entries:      make(map[string]*entry),
		now:          time.Now,
		cleanupEvery: defaultCleanupEvery,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check registers one request for id and reports whether the limit is exceeded.
func (l *Limiter) Check(id string, maxRequests int, window time.Duration) bool {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	l.checks++
	if l.checks%l.cleanupEvery == 0 {
		l.sweep(now)
	}

	e, ok := l.entries[id]
	if !ok || e.resetAt.Before(now) {
		l.entries[id] = &entry{count: 1, resetAt: now.Add(window)}
		return false
	}

	e.count++
	return e.count > maxRequests
}

// Remaining returns how many requests id may still make in the current window.
func (l *Limiter) Remaining(id string, maxRequests int) int {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[id]
	if !ok || e.resetAt.Before(l.now()) {
		return maxRequests
	}
	if left := maxRequests - e.count; left > 0 {
		return left
	}
	return 0
}

// ResetTimeSeconds returns the seconds until the window for id resets, or 0.
func (l *Limiter) ResetTimeSeconds(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[id]
	if !ok || e.resetAt.Before(now) {
		return 0
	}
	return int(math.Ceil(e.resetAt.Sub(now).Seconds()))
}

// Len returns the number of tracked identifiers.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Limiter) sweep(now time.Time) {
	for id, e := range l.entries {
		if e.resetAt.Before(now) {
			delete(l.entries, id)
		}
	}
}
