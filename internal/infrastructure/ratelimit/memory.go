package ratelimit

import (
	"sync"
	"time"
)

// Ensure MemoryLimiter implements Limiter
var _ Limiter = (*MemoryLimiter)(nil)

// Fallbacks for non-positive constructor arguments
const (
	defaultMemoryLimit  = 100
	defaultMemoryWindow = time.Minute
)

// MemoryLimiter is an in-process sliding-window limiter. Each key keeps the
// timestamps of its requests inside the window; expired entries are pruned
// on access and by a background sweep.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	limit   int
	window  time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewMemoryLimiter creates a limiter allowing limit requests per window.
// Non-positive arguments fall back to safe defaults. Call Stop to release
// the background sweep goroutine.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = defaultMemoryLimit
	}
	if window <= 0 {
		window = defaultMemoryWindow
	}
	l := &MemoryLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		done:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow reports whether a request for key fits in the current window
func (l *MemoryLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	recent := l.windows[key][:0]
	for _, ts := range l.windows[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.limit {
		l.windows[key] = recent
		return false
	}

	l.windows[key] = append(recent, now)
	return true
}

// Stop terminates the background sweep goroutine. Safe to call more than
// once; the limiter keeps answering Allow afterwards.
func (l *MemoryLimiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

// sweep removes keys whose entries have all expired
func (l *MemoryLimiter) sweep() {
	ticker := time.NewTicker(l.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-l.window)
			l.mu.Lock()
			for key, entries := range l.windows {
				if len(entries) == 0 || !entries[len(entries)-1].After(cutoff) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
