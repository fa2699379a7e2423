package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/configs"
)

const tokenKey = "filevault.token"

// TokenMiddleware 从请求头提取会话令牌并放入 gin.Context，校验交给业务层.
// 优先读取配置的令牌头（默认 X-Token），其次读取 Authorization: Bearer.
func TokenMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	header := conf.TokenHeader
	if header == "" {
		header = configs.DefaultTokenHeader
	}

	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(header))
		if token == "" {
			token = bearerToken(c.GetHeader("Authorization"))
		}

		if token != "" {
			c.Set(tokenKey, token)
		}

		c.Next()
	}
}

// Token 返回请求携带的会话令牌，没有时为空字符串.
func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func bearerToken(v string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(v), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
