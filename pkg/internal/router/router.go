// Package router 将请求处理器绑定到 gin 引擎.
package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/internal/handle"
	"github.com/yeisme/filevault/pkg/middleware"
)

// Options 路由可选项.
type Options struct {
	// StatsCache 非空时缓存 GET /stats 的响应
	StatsCache *cache.Cache
	StatsTTL   time.Duration
}

// Register 绑定全部路由：
//
//	GET  /status
//	GET  /stats
//	POST /users
//	GET  /connect
//	GET  /disconnect
//	GET  /users/me
//	POST /files
//	GET  /files
//	GET  /files/:id
//	PUT  /files/:id/publish
//	PUT  /files/:id/unpublish
//	GET  /files/:id/data
func Register(r gin.IRouter, h *handle.Handler, opts Options) {
	r.GET("/status", h.Status)

	if opts.StatsCache != nil {
		r.GET("/stats", middleware.CacheMiddleware(middleware.CacheConfig{
			Cache: opts.StatsCache,
			TTL:   opts.StatsTTL,
		}), h.Stats)
	} else {
		r.GET("/stats", h.Stats)
	}

	registerUserRoutes(r, h)
	registerFileRoutes(r.Group("/files"), h)
}

func registerUserRoutes(r gin.IRouter, h *handle.Handler) {
	r.POST("/users", h.PostUser)
	r.GET("/users/me", h.Me)
	r.GET("/connect", h.Connect)
	r.GET("/disconnect", h.Disconnect)
}

func registerFileRoutes(g *gin.RouterGroup, h *handle.Handler) {
	g.POST("", h.PostFile)
	g.GET("", h.ListFiles)
	g.GET("/:id", h.GetFile)
	g.PUT("/:id/publish", h.Publish)
	g.PUT("/:id/unpublish", h.Unpublish)
	g.GET("/:id/data", h.GetFileData)
}
