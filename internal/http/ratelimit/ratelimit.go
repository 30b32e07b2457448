// Package ratelimit provides per-client-IP request rate limiting.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxEntries bounds the limiter table so unique client IPs cannot
// grow it without limit.
const maxEntries = 10000

// IPRateLimiter manages one token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	maxAge   time.Duration
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewIPRateLimiter creates a limiter allowing r requests per second
// with the given burst per IP. Entries idle longer than maxAge are
// evicted lazily.
func NewIPRateLimiter(r rate.Limit, burst int, maxAge time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     r,
		burst:    burst,
		maxAge:   maxAge,
	}
}

// Middleware rejects requests exceeding the per-IP budget with 429.
// The client IP comes from RemoteAddr; RealIP middleware upstream is
// expected to have resolved proxy headers already.
func (l *IPRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !l.allow(ip) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.limiters[ip]
	if !ok {
		if len(l.limiters) >= maxEntries {
			l.evictStale(now)
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastAccess = now
	return entry.limiter.Allow()
}

// evictStale is called with the lock held.
func (l *IPRateLimiter) evictStale(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastAccess) > l.maxAge {
			delete(l.limiters, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
