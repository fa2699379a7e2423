package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/configs"
)

// CORSMiddleware CORS中间件，放行会话令牌头.
func CORSMiddleware(cfg configs.ServerConfig, auth configs.AuthConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}

	tokenHeader := auth.TokenHeader
	if tokenHeader == "" {
		tokenHeader = configs.DefaultTokenHeader
	}

	config.AddAllowHeaders("Authorization", tokenHeader)
	config.AddExposeHeaders("ETag", "X-Cache")

	if cfg.Debug {
		config.AllowFiles = true
	}

	return cors.New(config)
}
