package middleware

import (
	"net/http"
	"sync"
	"time"

	"shop_backend/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter 存储每个IP的限流器
type IPRateLimiter struct {
	visitors  map[string]*visitor
	mu        sync.Mutex
	r         rate.Limit
	b         int
	idle      time.Duration
	lastSweep time.Time
}

// NewIPRateLimiter 创建一个新的IP限流器
// r: 每秒允许的请求数 (QPS)
// b: 桶的大小 (Burst)
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors:  make(map[string]*visitor),
		r:         r,
		b:         b,
		idle:      10 * time.Minute,
		lastSweep: time.Now(),
	}
}

// GetLimiter 获取指定IP的限流器
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := time.Now()
	// 访问时顺带清理，不需要单独的 goroutine
	if now.Sub(i.lastSweep) > i.idle {
		i.sweep(now, i.idle)
	}

	v, exists := i.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(i.r, i.b)}
		i.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Cleanup 清理超过 idle 未访问的IP
func (i *IPRateLimiter) Cleanup(idle time.Duration) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sweep(time.Now(), idle)
}

func (i *IPRateLimiter) sweep(now time.Time, idle time.Duration) int {
	removed := 0
	for ip, v := range i.visitors {
		if now.Sub(v.lastSeen) > idle {
			delete(i.visitors, ip)
			removed++
		}
	}
	i.lastSweep = now
	return removed
}

// RateLimitMiddleware 限流中间件
func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := limiter.GetLimiter(c.ClientIP())
		if !l.Allow() {
			c.Header("Retry-After", "1")
			response.Error(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "Too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
