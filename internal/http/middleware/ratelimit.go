package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carebridge/hospital-gateway/internal/observability/metrics"
	"github.com/carebridge/hospital-gateway/pkg/logging"
)

// RateLimiter enforces a fixed window of max requests per window per
// client IP. With a redis client the window is shared across gateway
// replicas; without one an in-process window applies.
type RateLimiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
	logger *logging.Logger

	mu      sync.Mutex
	windows map[string]*fixedWindow
}

type fixedWindow struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a limiter. rdb may be nil.
func NewRateLimiter(rdb *redis.Client, max int, window time.Duration, logger *logging.Logger) *RateLimiter {
	if logger == nil {
		logger = logging.Default()
	}
	return &RateLimiter{
		rdb:     rdb,
		max:     max,
		window:  window,
		logger:  logger,
		windows: make(map[string]*fixedWindow),
	}
}

// Allow reports whether the request from ip fits in the current window.
func (rl *RateLimiter) Allow(r *http.Request, ip string) bool {
	if rl.rdb != nil {
		return rl.allowRedis(r, ip)
	}
	return rl.allowLocal(ip)
}

func (rl *RateLimiter) allowRedis(r *http.Request, ip string) bool {
	key := "gateway:ratelimit:" + ip
	count, err := rl.rdb.Incr(r.Context(), key).Result()
	if err != nil {
		// Fail open: a broken limiter must not take the gateway down.
		rl.logger.Warn("rate limiter redis error", "error", err)
		return true
	}
	if count == 1 {
		if err := rl.rdb.Expire(r.Context(), key, rl.window).Err(); err != nil {
			rl.logger.Warn("rate limiter expire error", "error", err)
		}
	}
	return count <= int64(rl.max)
}

func (rl *RateLimiter) allowLocal(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[ip]
	if !ok || now.After(w.resetAt) {
		rl.windows[ip] = &fixedWindow{count: 1, resetAt: now.Add(rl.window)}
		// Opportunistic eviction keeps the map from growing unbounded.
		for k, win := range rl.windows {
			if now.After(win.resetAt) {
				delete(rl.windows, k)
			}
		}
		return true
	}
	w.count++
	return w.count <= rl.max
}

// RateLimit rejects requests exceeding the fixed window with 429.
func RateLimit(limiter *RateLimiter, m *metrics.GatewayMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			// Prefer X-Real-Ip set by chi's RealIP middleware.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}
			if !limiter.Allow(r, ip) {
				m.ObserveRateLimited()
				writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
