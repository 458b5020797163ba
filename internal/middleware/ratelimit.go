package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"agentpost/backend/internal/monitoring"
)

// ipLimiter 单个客户端 IP 的限流器及其最近活跃时间
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按客户端 IP 的请求速率限制中间件
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter

	rps     rate.Limit
	burst   int
	log     *zap.Logger
	metrics *monitoring.Metrics
}

// NewRateLimiter 创建速率限制中间件
//
// 参数:
//   - rps: 每个 IP 每秒允许的请求数
//   - burst: 突发容量
func NewRateLimiter(rps float64, burst int, log *zap.Logger, metrics *monitoring.Metrics) *RateLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	rl := &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		log:      log,
		metrics:  metrics,
	}

	// 定期清理长时间不活跃的 IP，避免 map 无限增长
	go rl.cleanupLoop()

	return rl
}

// Handler 返回 gin 中间件
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !rl.allow(ip) {
			rl.log.Warn("请求被限流", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			if rl.metrics != nil {
				rl.metrics.RecordRateLimited()
			}
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// allow 判断指定 IP 的当前请求是否放行
func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// cleanupLoop 每分钟清理 10 分钟未活跃的 IP 条目
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		rl.mu.Lock()
		for ip, entry := range rl.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(rl.limiters, ip)
			}
		}
		rl.mu.Unlock()
	}
}
