package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/log"
)

var errServerFailure = errors.New("server failure")

// CircuitBreakerMiddleware 基于 gobreaker 的熔断，5xx 响应计为失败.
// SkipPaths 中的路由既不计数也不会被拒绝.
func CircuitBreakerMiddleware(cfg configs.CircuitBreakerConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	settings := gobreaker.Settings{
		Name:        "filevault-http",
		MaxRequests: cfg.MaxRequestsInHalf,
		Interval:    time.Duration(cfg.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRate
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Logger().Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}
	cb := gobreaker.NewCircuitBreaker(settings)

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}

		_, err := cb.Execute(func() (any, error) {
			c.Next()

			if c.Writer.Status() >= http.StatusInternalServerError {
				return nil, errServerFailure
			}

			return nil, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
		}
	}
}
