package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Reset resets the rate limiter state
	Reset()
}

// SlidingWindow implements a sliding window rate limiter
type SlidingWindow struct {
	windowSize  time.Duration
	maxRequests int
	requests    []time.Time
	mu          sync.Mutex
}

// NewSlidingWindow creates a new sliding window rate limiter
func NewSlidingWindow(maxRequests int, windowSize time.Duration) *SlidingWindow {
	return &SlidingWindow{
		windowSize:  windowSize,
		maxRequests: maxRequests,
		requests:    make([]time.Time, 0, maxRequests),
	}
}

// Allow checks if a request can proceed
func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	sw.cleanOldRequests(now)

	if len(sw.requests) < sw.maxRequests {
		sw.requests = append(sw.requests, now)
		return true
	}

	return false
}

// RetryAfter reports how long until the oldest recorded request leaves
// the window. Zero means a request would be allowed now.
func (sw *SlidingWindow) RetryAfter() time.Duration {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	sw.cleanOldRequests(now)

	if len(sw.requests) < sw.maxRequests {
		return 0
	}
	return sw.windowSize - now.Sub(sw.requests[0])
}

// Reset clears all recorded requests
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.requests = sw.requests[:0]
}

// cleanOldRequests removes requests outside the sliding window
func (sw *SlidingWindow) cleanOldRequests(now time.Time) {
	cutoff := now.Add(-sw.windowSize)

	i := 0
	for i < len(sw.requests) && sw.requests[i].Before(cutoff) {
		i++
	}

	if i > 0 {
		copy(sw.requests, sw.requests[i:])
		sw.requests = sw.requests[:len(sw.requests)-i]
	}
}

// PerKey tracks one sliding window per key, typically a client IP.
// Windows that have been idle for a full window size are evicted so
// the map does not grow without bound.
type PerKey struct {
	maxRequests int
	windowSize  time.Duration

	mu       sync.Mutex
	windows  map[string]*keyedWindow
	lastSwep time.Time
}

type keyedWindow struct {
	limiter  *SlidingWindow
	lastSeen time.Time
}

// NewPerKey creates a per-key sliding window limiter.
func NewPerKey(maxRequests int, windowSize time.Duration) *PerKey {
	return &PerKey{
		maxRequests: maxRequests,
		windowSize:  windowSize,
		windows:     make(map[string]*keyedWindow),
		lastSwep:    time.Now(),
	}
}

// Allow checks whether the given key may proceed.
func (pk *PerKey) Allow(key string) bool {
	return pk.window(key).Allow()
}

// RetryAfter reports how long the given key must wait for the next request.
func (pk *PerKey) RetryAfter(key string) time.Duration {
	return pk.window(key).RetryAfter()
}

func (pk *PerKey) window(key string) *SlidingWindow {
	pk.mu.Lock()
	defer pk.mu.Unlock()

	now := time.Now()
	if now.Sub(pk.lastSwep) > pk.windowSize {
		for k, w := range pk.windows {
			if now.Sub(w.lastSeen) > pk.windowSize {
				delete(pk.windows, k)
			}
		}
		pk.lastSwep = now
	}

	w, ok := pk.windows[key]
	if !ok {
		w = &keyedWindow{limiter: NewSlidingWindow(pk.maxRequests, pk.windowSize)}
		pk.windows[key] = w
	}
	w.lastSeen = now
	return w.limiter
}
