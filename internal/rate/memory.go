package rate

import (
	"sync"
	"time"
)

type window struct {
	count int
	start time.Time
}

// Limiter is a fixed-window in-memory counter keyed by route+IP. It
// bounds credential submissions; nothing here retries or queues.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]window
	lastGC  time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{windows: map[string]window{}, lastGC: time.Now().UTC()}
}

func (l *Limiter) Allow(key string, limit int, span time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	if now.Sub(l.lastGC) > time.Minute {
		for k, wnd := range l.windows {
			if now.Sub(wnd.start) > 3*span {
				delete(l.windows, k)
			}
		}
		l.lastGC = now
	}
	wnd, ok := l.windows[key]
	if !ok || now.Sub(wnd.start) >= span {
		l.windows[key] = window{count: 1, start: now}
		return true
	}
	if wnd.count >= limit {
		return false
	}
	wnd.count++
	l.windows[key] = wnd
	return true
}

// Reset drops the window for a key, e.g. after a successful login.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.windows, key)
	l.mu.Unlock()
}
