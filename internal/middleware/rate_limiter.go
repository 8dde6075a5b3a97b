package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimiter decides whether the caller identified by key may proceed now. When it may not,
// retryAfter is how long until a token is available.
type RateLimiter interface {
	Allow(key string) (ok bool, retryAfter time.Duration)
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client key and sweeps idle buckets at most once per ttl.
type clientLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewIPRateLimiter allows requests per window per client, refilling continuously, with up to burst
// requests at once. Clients idle for longer than ttl start over with a full bucket.
func NewIPRateLimiter(requests int, window time.Duration, burst int, ttl time.Duration) RateLimiter {
	return newClientLimiter(requests, window, burst, ttl, time.Now)
}

func newClientLimiter(requests int, window time.Duration, burst int, ttl time.Duration, now func() time.Time) *clientLimiter {
	requests = max(requests, 1)
	burst = max(burst, 1)
	if window <= 0 {
		window = time.Second
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &clientLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   burst,
		ttl:     ttl,
		now:     now,
	}
}

func (l *clientLimiter) Allow(key string) (bool, time.Duration) {
	if key == "" {
		key = "unknown"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.ttl {
		l.sweepLocked(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	reservation := b.limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (l *clientLimiter) sweepLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.ttl {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit rejects clients over their budget with 429 and a Retry-After header. Clients are keyed
// by IP. Requests to skipPaths are never limited.
func RateLimit(limiter RateLimiter, skipPaths ...string) echo.MiddlewareFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := skip[c.Request().URL.Path]; ok {
				return next(c)
			}
			if ok, retryAfter := limiter.Allow(c.RealIP()); !ok {
				seconds := int(math.Ceil(retryAfter.Round(time.Millisecond).Seconds()))
				c.Response().Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
