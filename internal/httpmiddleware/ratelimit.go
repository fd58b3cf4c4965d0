package httpmiddleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces per-IP request limits. With a redis client the limit
// is a shared fixed window across instances; without one it falls back to an
// in-memory token bucket.
type RateLimiter struct {
	perMinute int
	redis     *redis.Client

	mu    sync.Mutex
	state map[string]*bucket
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewRateLimiter creates a limiter allowing perMinute requests per client IP.
func NewRateLimiter(perMinute int, rdb *redis.Client) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RateLimiter{
		perMinute: perMinute,
		redis:     rdb,
		state:     make(map[string]*bucket),
	}
}

// GinMiddleware returns a gin handler enforcing the limit.
func (l *RateLimiter) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		var allowed bool
		if l.redis != nil {
			allowed = l.allowRedis(c, ip)
		} else {
			allowed = l.allowLocal(ip)
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

// allowRedis counts requests in a per-minute window. Redis failures fail
// open; throttling is not worth rejecting scans for.
func (l *RateLimiter) allowRedis(c *gin.Context, ip string) bool {
	ctx := c.Request.Context()
	key := "qrattend:ratelimit:" + ip + ":" + time.Now().UTC().Format("1504")
	n, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if n == 1 {
		_ = l.redis.Expire(ctx, key, 2*time.Minute).Err()
	}
	return n <= int64(l.perMinute)
}

func (l *RateLimiter) allowLocal(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.state[key]
	now := time.Now()
	if !ok {
		l.state[key] = &bucket{tokens: l.perMinute - 1, last: now}
		return true
	}
	refill := int(now.Sub(b.last).Minutes() * float64(l.perMinute))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.perMinute {
			b.tokens = l.perMinute
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}
