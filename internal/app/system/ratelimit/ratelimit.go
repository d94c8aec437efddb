// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts attempts per key within a fixed window.
type Limiter interface {
	// Allow records an attempt for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)
	// Reset forgets all attempts for key.
	Reset(ctx context.Context, key string) error
}

// Memory is an in-process Limiter. It is safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// NewMemory creates an in-process limiter allowing limit attempts per duration.
// Expired windows are swept in the background until Close is called.
func NewMemory(limit int, duration time.Duration) *Memory {
	m := &Memory{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		stop:     make(chan struct{}),
	}
	go m.cleanupLoop(duration * 2)
	return m
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	w, ok := m.windows[key]
	if !ok || now.After(w.expiresAt) {
		m.windows[key] = &window{count: 1, expiresAt: now.Add(m.duration)}
		return true, nil
	}
	if w.count >= m.limit {
		return false, nil
	}
	w.count++
	return true, nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.windows, key)
	return nil
}

// Remaining returns how many attempts are left for key in the current window.
func (m *Memory) Remaining(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || time.Now().After(w.expiresAt) {
		return m.limit
	}
	if left := m.limit - w.count; left > 0 {
		return left
	}
	return 0
}

// Close stops the background sweeper.
func (m *Memory) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Memory) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			now := time.Now()
			for key, w := range m.windows {
				if now.After(w.expiresAt) {
					delete(m.windows, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

// ClientIP extracts the client IP from an HTTP request, preferring proxy
// headers over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// EmailKey is the canonical limiter key for an email address.
func EmailKey(email string) string {
	return "email:" + strings.ToLower(strings.TrimSpace(email))
}
