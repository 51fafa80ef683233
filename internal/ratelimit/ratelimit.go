package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Result is the admission decision for a single request. RetryAfterSeconds
// is only meaningful when OK is false, and is always at least 1.
type Result struct {
	OK                bool
	RetryAfterSeconds int
}

type bucket struct {
	resetAt time.Time
	count   int
}

// Limiter is a process-wide fixed-window counter. A bucket is keyed by
// "<route>:<clientIdentity>" and resets entirely at the window boundary; this
// is a best-effort throttle, not a precise quota system, and nothing survives
// a process restart.
//
// The instance is meant to be constructed once and handed to every handler,
// so tests can scope their own limiter and a distributed store could replace
// it later without touching the handlers.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func New() *Limiter {
	return NewWithClock(time.Now)
}

// NewWithClock injects the clock. Used by tests to advance the window
// without sleeping.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		now:     now,
	}
}

// Allow admits or rejects one request for key. The whole read-modify-write
// runs under the limiter mutex so concurrent requests on the same key never
// lose increments.
func (l *Limiter) Allow(key string, limit int, window time.Duration) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		l.buckets[key] = &bucket{resetAt: now.Add(window), count: 1}
		return Result{OK: true}
	}

	if b.count >= limit {
		retry := int(math.Ceil(b.resetAt.Sub(now).Seconds()))
		if retry < 1 {
			retry = 1
		}
		return Result{OK: false, RetryAfterSeconds: retry}
	}

	b.count++
	return Result{OK: true}
}

// Sweep drops every expired bucket and reports how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, b := range l.buckets {
		if !now.Before(b.resetAt) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps expired buckets every interval so the key space does
// not grow for the lifetime of the process. The returned func stops the
// janitor.
func (l *Limiter) StartJanitor(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}

// Len reports the current number of tracked buckets, expired or not.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
