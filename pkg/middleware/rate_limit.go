package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/filevault/pkg/configs"
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute

	uploadRoute = "/files"
)

// RateLimitMiddleware 返回一个基于配置的限流中间件.
// Key 取值：global、ip、token（按会话令牌，缺失时按 IP）、header:Name.
// 上传请求先经过上传限流，再计入通用限流.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Key))
	general := newAllowFunc(mode, cfg.RPS, cfg.Burst)
	upload := newAllowFunc(mode, cfg.UploadRPS, cfg.UploadBurst)

	return func(c *gin.Context) {
		if upload != nil && c.Request.Method == http.MethodPost && c.FullPath() == uploadRoute && !upload(c) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "upload rate limit exceeded"})
			return
		}

		if general != nil && !general(c) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}

// newAllowFunc 按维度构造限流判断，rps 不大于 0 时返回 nil 表示不限流.
func newAllowFunc(mode string, rps float64, burst int) func(*gin.Context) bool {
	if rps <= 0 {
		return nil
	}

	if mode == "global" || mode == "" {
		limiter := rate.NewLimiter(rate.Limit(rps), burst)

		return func(*gin.Context) bool { return limiter.Allow() }
	}

	limiters := newLimiterSet(rps, burst)

	return func(c *gin.Context) bool { return limiters.get(limitKey(c, mode)).Allow() }
}

func limitKey(c *gin.Context, mode string) string {
	var key string

	switch {
	case mode == "token":
		key = Token(c)
	case strings.HasPrefix(mode, "header:"):
		key = c.GetHeader(strings.TrimPrefix(mode, "header:"))
	}

	if key == "" {
		key = clientIP(c)
	}

	if key == "" {
		key = "unknown"
	}

	return key
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet 按键维护限流器，闲置超过 limiterIdleTTL 的条目会被清理.
type limiterSet struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	entries map[string]*limiterEntry
	swept   time.Time
}

func newLimiterSet(rps float64, burst int) *limiterSet {
	return &limiterSet{
		rps:     rate.Limit(rps),
		burst:   burst,
		entries: make(map[string]*limiterEntry),
		swept:   time.Now(),
	}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.swept) > limiterSweepInterval {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(s.entries, k)
			}
		}

		s.swept = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.entries[key] = e
	}

	e.lastSeen = now

	return e.limiter
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return host
}
