// Package qos provides the scan orchestrator's two admission controls
// (spec.md §4.5), a token-bucket rate limiter and a counting
// semaphore, plus an RTT-driven deadline estimator. Adapted from the
// teacher's AIMD concurrency limiter and RFC 6298 RTO estimator,
// repurposed here as a plain packets-per-second limiter since
// Semaphore already bounds concurrency.
package qos

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token-bucket limiter refilled at rate tokens per
// second. rate == 0 is the caller's job to resolve to "unlimited" or
// an evasive random value (spec.md §4.5) before constructing one.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	nowFn      func() time.Time
}

// NewRateLimiter creates a limiter admitting up to rate packets/sec.
// The bucket holds at most one token, so only the very first probe is
// free and every other one pays the full 1/rate spacing — a rate of 5
// must not let more than one probe through before the pacing kicks in.
// nowFn defaults to time.Now; tests inject a controllable clock.
func NewRateLimiter(rate int, nowFn func() time.Time) *RateLimiter {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &RateLimiter{
		tokens:     1,
		maxTokens:  1,
		refillRate: float64(rate),
		lastRefill: nowFn(),
		nowFn:      nowFn,
	}
}

// Wait blocks until a token is available or ctx is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := l.tryAcquire()
		if ok {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *RateLimiter) tryAcquire() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	elapsed := now.Sub(l.lastRefill).Seconds()
	l.lastRefill = now
	if l.refillRate > 0 {
		l.tokens += elapsed * l.refillRate
		if l.tokens > l.maxTokens {
			l.tokens = l.maxTokens
		}
	}

	if l.tokens >= 1 {
		l.tokens--
		return 0, true
	}
	if l.refillRate <= 0 {
		return 0, true
	}
	missing := 1 - l.tokens
	return time.Duration(missing / l.refillRate * float64(time.Second)), false
}

// Semaphore bounds in-flight probes to a fixed concurrency. It is a
// thin wrapper over a buffered channel, kept as its own type so the
// orchestrator reads as "acquire/release" rather than raw channel
// ceremony.
type Semaphore struct {
	c chan struct{}
}

// NewSemaphore creates a semaphore with n slots.
func NewSemaphore(n int) *Semaphore {
	if n < 1 {
		n = 1
	}
	return &Semaphore{c: make(chan struct{}, n)}
}

// Acquire blocks until a slot is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.c <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot.
func (s *Semaphore) Release() {
	select {
	case <-s.c:
	default:
	}
}
