package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/storeadmin/backend/internal/infrastructure/logger"
	"github.com/storeadmin/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Limiter is a fixed window request budget per key
type Limiter interface {
	// Take spends one request of key's budget and reports what is left.
	// remaining is negative once the budget is exhausted.
	Take(ctx context.Context, key string) (remaining int, err error)
	Limit() int
	Window() time.Duration
}

// RateLimiter keeps windows in process memory. Each API instance has its
// own budget.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

type window struct {
	used    int
	startAt time.Time
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

func (rl *RateLimiter) Limit() int            { return rl.limit }
func (rl *RateLimiter) Window() time.Duration { return rl.period }

func (rl *RateLimiter) Take(_ context.Context, key string) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.startAt) >= rl.period {
		w = &window{startAt: now}
		rl.windows[key] = w
	}
	w.used++
	return rl.limit - w.used, nil
}

// Remaining is the unspent budget of key in the current window
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	w, ok := rl.windows[key]
	if !ok || rl.now().Sub(w.startAt) >= rl.period {
		return rl.limit
	}
	return max(rl.limit-w.used, 0)
}

// Run drops windows idle for two periods until ctx is done
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.period * 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict()
		}
	}
}

func (rl *RateLimiter) evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, w := range rl.windows {
		if now.Sub(w.startAt) > rl.period*2 {
			delete(rl.windows, key)
		}
	}
}

// windowScript counts a request and starts the window on the first one
var windowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisRateLimiter shares one budget per key across every API instance
type RedisRateLimiter struct {
	client redis.Scripter
	prefix string
	limit  int
	period time.Duration
}

// NewRedisRateLimiter stores windows under "<prefix>:<key>"
func NewRedisRateLimiter(client redis.Scripter, prefix string, limit int, period time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, prefix: prefix, limit: limit, period: period}
}

func (rl *RedisRateLimiter) Limit() int            { return rl.limit }
func (rl *RedisRateLimiter) Window() time.Duration { return rl.period }

func (rl *RedisRateLimiter) key(key string) string {
	return rl.prefix + ":" + key
}

func (rl *RedisRateLimiter) Take(ctx context.Context, key string) (int, error) {
	n, err := windowScript.Run(ctx, rl.client, []string{rl.key(key)}, rl.period.Milliseconds()).Int()
	if err != nil {
		return 0, fmt.Errorf("rate limit window: %w", err)
	}
	return rl.limit - n, nil
}

// RateLimit limits requests per client IP
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey limits requests per keyFunc result. A limiter backend
// failure lets the request through.
func RateLimitByKey(limiter Limiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		remaining, err := limiter.Take(c.Request.Context(), keyFunc(c))
		if err != nil {
			logger.GetGinLogger(c).Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if remaining < 0 {
			c.Header("Retry-After", strconv.Itoa(int(limiter.Window().Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}
