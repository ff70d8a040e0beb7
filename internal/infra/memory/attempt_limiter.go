package memory

import (
	"context"
	"sync"
	"time"
)

// AttemptLimiter counts failures per key inside a fixed window.
type AttemptLimiter struct {
	max    int
	window time.Duration
	clock  func() time.Time

	mu        sync.Mutex
	failures  map[string]attemptWindow
	nextSweep time.Time
}

type attemptWindow struct {
	count     int
	expiresAt time.Time
}

func NewAttemptLimiter(max int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		max:      max,
		window:   window,
		clock:    time.Now,
		failures: make(map[string]attemptWindow),
	}
}

func (l *AttemptLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.failures[key]
	if !ok {
		return true, nil
	}
	if !w.expiresAt.After(l.clock()) {
		delete(l.failures, key)
		return true, nil
	}
	return w.count < l.max, nil
}

func (l *AttemptLimiter) Failure(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	l.sweepLocked(now)
	w, ok := l.failures[key]
	if !ok || !w.expiresAt.After(now) {
		w = attemptWindow{expiresAt: now.Add(l.window)}
	}
	w.count++
	l.failures[key] = w
	return nil
}

func (l *AttemptLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, key)
	return nil
}

// sweepLocked drops expired windows, at most once per window length.
func (l *AttemptLimiter) sweepLocked(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, w := range l.failures {
		if !w.expiresAt.After(now) {
			delete(l.failures, key)
		}
	}
	l.nextSweep = now.Add(l.window)
}

func (l *AttemptLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.failures)
}
