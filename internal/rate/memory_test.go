package rate

import (
	"testing"
	"time"
)

func TestAllowEnforcesLimit(t *testing.T) {
	l := NewLimiter()
	for i := 0; i < 3; i++ {
		if !l.Allow("login:1.2.3.4", 3, time.Minute) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("login:1.2.3.4", 3, time.Minute) {
		t.Fatalf("fourth request should be blocked")
	}
	// Other keys are unaffected.
	if !l.Allow("login:5.6.7.8", 3, time.Minute) {
		t.Fatalf("different key should be allowed")
	}
}

func TestResetClearsWindow(t *testing.T) {
	l := NewLimiter()
	for i := 0; i < 2; i++ {
		l.Allow("login:1.2.3.4", 2, time.Minute)
	}
	if l.Allow("login:1.2.3.4", 2, time.Minute) {
		t.Fatalf("expected key to be at its limit")
	}
	l.Reset("login:1.2.3.4")
	if !l.Allow("login:1.2.3.4", 2, time.Minute) {
		t.Fatalf("expected reset key to be allowed again")
	}
}

func TestWindowExpires(t *testing.T) {
	l := NewLimiter()
	if !l.Allow("k", 1, 10*time.Millisecond) {
		t.Fatalf("first request should pass")
	}
	if l.Allow("k", 1, 10*time.Millisecond) {
		t.Fatalf("second request inside the window should be blocked")
	}
	time.Sleep(20 * time.Millisecond)
	if !l.Allow("k", 1, 10*time.Millisecond) {
		t.Fatalf("request after the window should pass")
	}
}
