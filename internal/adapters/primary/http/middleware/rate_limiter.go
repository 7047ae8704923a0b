package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "github.com/lorrc/workload-dashboard/internal/core/errors"
	"golang.org/x/time/rate"
)

// RateLimiter provides IP-based rate limiting
type RateLimiter struct {
	visitors  map[string]*visitor
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	onLimited ErrorWriter
	done      chan struct{}
	stopOnce  sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterConfig holds rate limiter configuration
type RateLimiterConfig struct {
	RequestsPerSecond float64       // Requests allowed per second
	BurstSize         int           // Maximum burst size
	CleanupInterval   time.Duration // How often to clean up old visitors
	TTL               time.Duration // How long to keep inactive visitors
	OnLimited         ErrorWriter   // Answers refused requests; defaults to WriteAppError
}

// DefaultRateLimiterConfig returns the per-IP limits used when none are
// configured. Every dashboard interaction fans out to several tracker calls,
// so the inbound budget sits below the outbound Jira throttle.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 5,
		BurstSize:         10,
		CleanupInterval:   time.Minute,
		TTL:               3 * time.Minute,
	}
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop.
// Call Stop to end the loop.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	defaults := DefaultRateLimiterConfig()
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = defaults.BurstSize
	}
	if cfg.OnLimited == nil {
		cfg.OnLimited = WriteAppError
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaults.CleanupInterval
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}

	rl := &RateLimiter{
		visitors:  make(map[string]*visitor),
		rate:      rate.Limit(cfg.RequestsPerSecond),
		burst:     cfg.BurstSize,
		onLimited: cfg.OnLimited,
		done:      make(chan struct{}),
	}

	go rl.cleanupVisitors(cfg.CleanupInterval, cfg.TTL)

	return rl
}

// Stop ends the background cleanup loop.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// getVisitor returns the rate limiter for the given IP, creating one if necessary
func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) cleanupVisitors(interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastSeen) > ttl {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Allow checks if a request from the given IP is allowed
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.getVisitor(ip).Allow()
}

// Middleware returns an HTTP middleware that rate limits requests
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(getClientIP(r)) {
			w.Header().Set("Retry-After", "1")
			rl.onLimited(w, r, apperrors.NewRateLimitError())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the client IP, preferring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if ip, _, err := net.SplitHostPort(first); err == nil {
			return ip
		}
		return first
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
