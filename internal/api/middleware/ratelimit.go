package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kiranshivaraju/callcoach/internal/api/response"
	"github.com/kiranshivaraju/callcoach/internal/cache"
)

const (
	defaultRequestsPerMinute = 60
	rateWindow               = time.Minute
)

// RateLimit counts requests per API key prefix in fixed one-minute windows
// held in Redis.
type RateLimit struct {
	cache          cache.Cache
	requestsPerMin int
	now            func() time.Time
}

// RateLimitOption configures a RateLimit.
type RateLimitOption func(*RateLimit)

// WithRateClock overrides the clock used to pick the current window.
func WithRateClock(now func() time.Time) RateLimitOption {
	return func(rl *RateLimit) { rl.now = now }
}

// NewRateLimit creates a new RateLimit middleware.
func NewRateLimit(c cache.Cache, requestsPerMin int, opts ...RateLimitOption) *RateLimit {
	if requestsPerMin <= 0 {
		requestsPerMin = defaultRequestsPerMinute
	}
	rl := &RateLimit{cache: c, requestsPerMin: requestsPerMin, now: time.Now}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Limit applies rate limiting based on the key_prefix set by auth middleware.
// Redis errors let the request through.
func (rl *RateLimit) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix, ok := getKeyPrefix(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		now := rl.now()
		window := now.Unix() / int64(rateWindow.Seconds())
		resetAt := time.Unix((window+1)*int64(rateWindow.Seconds()), 0)

		count, err := rl.cache.IncrWithExpiry(r.Context(), cache.RateLimitKey(prefix, window), rateWindow)
		if err != nil {
			slog.Warn("rate limit check skipped", "key_prefix", prefix, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		remaining := max(rl.requestsPerMin-int(count), 0)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requestsPerMin))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if count > int64(rl.requestsPerMin) {
			retry := max(int(resetAt.Sub(now).Seconds()+0.999), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			response.Error(w, http.StatusTooManyRequests,
				"RATE_LIMIT_EXCEEDED", "Too many requests", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
