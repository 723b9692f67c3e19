package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps attempt timestamps per key in process memory.
// Limits only hold within one process; use RedisLimiter when running
// more than one instance.
type MemoryLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	maxWindow time.Duration
	now       Clock
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (l *MemoryLimiter) WithClock(clock Clock) *MemoryLimiter {
	l.now = clock
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, max int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if window > l.maxWindow {
		l.maxWindow = window
	}

	now := l.now()
	cutoff := now.Add(-window)

	recent := l.requests[key][:0:0]
	for _, t := range l.requests[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= max {
		l.requests[key] = recent
		return false, nil
	}

	l.requests[key] = append(recent, now)
	return true, nil
}

// Sweep evicts keys whose timestamps all fell out of the largest window
// seen so far and returns how many keys were removed.
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.maxWindow)
	removed := 0
	for key, times := range l.requests {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(l.requests, key)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}
