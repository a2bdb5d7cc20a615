package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter gives every client address its own token bucket.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket
	limit   rate.Limit
	burst   int
	hits    prometheus.Counter
	now     func() time.Time
}

// NewRateLimiter allows rps requests per second per client with bursts of
// up to burst requests.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*clientBucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// WithHitCounter counts rejected requests on c.
func (rl *RateLimiter) WithHitCounter(c prometheus.Counter) *RateLimiter {
	rl.hits = c
	return rl
}

func (rl *RateLimiter) bucket(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[client] = b
	}
	b.lastSeen = rl.now()
	return b.limiter
}

// Limit rejects requests over the client's budget with 429 and a
// Retry-After hint.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lim := rl.bucket(clientAddr(r))
		if lim.Allow() {
			next.ServeHTTP(w, r)
			return
		}

		if rl.hits != nil {
			rl.hits.Inc()
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(lim.Limit())))
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	})
}

func retryAfterSeconds(l rate.Limit) int {
	if l <= 0 || l == rate.Inf {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(l))))
}

// clientAddr prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the connection's remote host.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// CleanupLimiters forgets clients that have been quiet for longer than
// idle and returns how many were dropped.
func (rl *RateLimiter) CleanupLimiters(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-idle)
	dropped := 0
	for client, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, client)
			dropped++
		}
	}
	return dropped
}
