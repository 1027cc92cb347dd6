package ratelimit

import (
	"testing"
	"time"
)

func TestSlidingWindow(t *testing.T) {
	sw := NewSlidingWindow(3, time.Second)

	// Test initial requests
	for i := 0; i < 3; i++ {
		if !sw.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	// Test limit reached
	if sw.Allow() {
		t.Error("Expected request to be denied when limit is reached")
	}

	// Test window sliding
	time.Sleep(time.Second + 100*time.Millisecond)
	if !sw.Allow() {
		t.Error("Expected request to be allowed after window slides")
	}

	// Test reset
	sw.Reset()
	if len(sw.requests) != 0 {
		t.Error("Expected requests to be cleared after reset")
	}
}

func TestSlidingWindowRetryAfter(t *testing.T) {
	sw := NewSlidingWindow(1, time.Second)

	if got := sw.RetryAfter(); got != 0 {
		t.Errorf("Expected zero retry-after on empty window, got %v", got)
	}

	sw.Allow()
	got := sw.RetryAfter()
	if got <= 0 || got > time.Second {
		t.Errorf("Expected retry-after within the window size, got %v", got)
	}
}

func TestPerKeyIsolation(t *testing.T) {
	pk := NewPerKey(2, time.Minute)

	if !pk.Allow("10.0.0.1") || !pk.Allow("10.0.0.1") {
		t.Error("Expected first two requests from a client to be allowed")
	}
	if pk.Allow("10.0.0.1") {
		t.Error("Expected third request from the same client to be denied")
	}

	// A different client has its own window
	if !pk.Allow("10.0.0.2") {
		t.Error("Expected a fresh client to be allowed")
	}
}

func TestPerKeyEviction(t *testing.T) {
	pk := NewPerKey(1, 50*time.Millisecond)

	pk.Allow("10.0.0.1")
	time.Sleep(120 * time.Millisecond)

	// The idle window is swept on the next access
	pk.Allow("10.0.0.2")

	pk.mu.Lock()
	_, stale := pk.windows["10.0.0.1"]
	pk.mu.Unlock()
	if stale {
		t.Error("Expected idle client window to be evicted")
	}
}
