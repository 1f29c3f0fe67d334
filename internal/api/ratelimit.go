// Per-IP rate limiting for the player action endpoints. Counts requests
// in a sliding window so a burst at a window boundary cannot double the
// allowed rate.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter admits up to limit requests per window for each client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string][]time.Time
	limit    int
	window   time.Duration
	sweepAt  time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		sweepAt:  time.Now().Add(window),
	}
}

// Allow reports whether the given IP is within its budget and records the
// request when it is.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.After(rl.sweepAt) {
		rl.sweep(now)
		rl.sweepAt = now.Add(rl.window)
	}

	recent := rl.prune(ip, now)
	if len(recent) >= rl.limit {
		rl.visitors[ip] = recent
		return false
	}
	rl.visitors[ip] = append(recent, now)
	return true
}

// RetryAfter returns how many seconds until the oldest recorded request
// for this IP ages out of the window.
func (rl *RateLimiter) RetryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	recent := rl.prune(ip, time.Now())
	if len(recent) < rl.limit {
		return 0
	}
	wait := rl.window - time.Since(recent[0])
	if wait < 0 {
		return 0
	}
	return int(wait.Seconds()) + 1
}

// prune drops timestamps older than the window. Caller holds rl.mu.
func (rl *RateLimiter) prune(ip string, now time.Time) []time.Time {
	recent := rl.visitors[ip]
	cutoff := now.Add(-rl.window)
	for len(recent) > 0 && recent[0].Before(cutoff) {
		recent = recent[1:]
	}
	return recent
}

// sweep forgets IPs with no requests inside the window. Caller holds rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for ip := range rl.visitors {
		if len(rl.prune(ip, now)) == 0 {
			delete(rl.visitors, ip)
		}
	}
}

// clientIP extracts the caller address, honoring X-Forwarded-For when a
// proxy sits in front.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware wraps a handler with rate limiting. Returns 429 when
// the budget is spent.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(ip)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
