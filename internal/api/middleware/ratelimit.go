package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hugh/buildtrack/internal/tenant"
)

// RateLimiter is an in-memory sliding-window limiter. Windows are tracked per
// key; stale keys are evicted by a background sweep.
type RateLimiter struct {
	limit   int
	window  time.Duration
	mu      sync.RWMutex
	windows map[string]*slidingWindow
}

type slidingWindow struct {
	mu         sync.Mutex
	timestamps []time.Time
}

func NewRateLimiter(limit int, windowSeconds int) *RateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if windowSeconds <= 0 {
		windowSeconds = 60
	}

	rl := &RateLimiter{
		limit:   limit,
		window:  time.Duration(windowSeconds) * time.Second,
		windows: make(map[string]*slidingWindow),
	}
	go rl.sweep()
	return rl
}

// sweep drops keys with no activity for two full windows.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-2 * rl.window)
		rl.mu.Lock()
		for key, win := range rl.windows {
			win.mu.Lock()
			idle := len(win.timestamps) == 0 ||
				win.timestamps[len(win.timestamps)-1].Before(cutoff)
			win.mu.Unlock()
			if idle {
				delete(rl.windows, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow records a hit for key and reports whether it stays under the limit,
// plus the remaining budget and when the window resets.
func (rl *RateLimiter) Allow(key string) (bool, int, time.Time) {
	rl.mu.RLock()
	win, ok := rl.windows[key]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		if win, ok = rl.windows[key]; !ok {
			win = &slidingWindow{timestamps: make([]time.Time, 0, rl.limit)}
			rl.windows[key] = win
		}
		rl.mu.Unlock()
	}

	win.mu.Lock()
	defer win.mu.Unlock()

	now := time.Now()
	start := now.Add(-rl.window)

	kept := win.timestamps[:0]
	for _, ts := range win.timestamps {
		if ts.After(start) {
			kept = append(kept, ts)
		}
	}
	win.timestamps = kept

	if len(win.timestamps) >= rl.limit {
		return false, 0, win.timestamps[0].Add(rl.window)
	}

	win.timestamps = append(win.timestamps, now)
	return true, rl.limit - len(win.timestamps), now.Add(rl.window)
}

func (rl *RateLimiter) middleware(key func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, reset := rl.Allow(key(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if !allowed {
				w.Header().Set("Retry-After", strconv.FormatInt(int64(time.Until(reset).Seconds())+1, 10))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit limits by client IP. It sits in front of the public auth
// endpoints, so it cannot assume a tenant scope exists.
func RateLimit(limit int, windowSeconds int) func(http.Handler) http.Handler {
	return NewRateLimiter(limit, windowSeconds).middleware(clientIP)
}

// RateLimitByTenant limits authenticated traffic per tenant, falling back to
// the client IP when no scope is attached.
func RateLimitByTenant(limit int, windowSeconds int) func(http.Handler) http.Handler {
	return NewRateLimiter(limit, windowSeconds).middleware(func(r *http.Request) string {
		if scope, err := tenant.FromContext(r.Context()); err == nil {
			return "tenant:" + scope.TenantID.String()
		}
		return clientIP(r)
	})
}

// clientIP resolves the client address, trusting proxy headers when present.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}
