// Package middleware 提供 HTTP 中间件：日志、指标、追踪、限流、熔断、CORS、令牌提取与响应缓存.
package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/configs"
)

// Default 返回按顺序挂载的通用中间件.
// 文件内容接口返回原始字节，不参与 gzip 压缩.
func Default(cfg *configs.AppConfig) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		gin.Recovery(),
		TracingMiddleware(),
		GinLoggerMiddleware(),
		PrometheusMiddleware(),
		CORSMiddleware(cfg.Server, cfg.Auth),
		TokenMiddleware(cfg.Auth),
		RateLimitMiddleware(cfg.RateLimit),
		CircuitBreakerMiddleware(cfg.CircuitBreaker),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`^/files/[^/]+/data$`})),
	}
}
