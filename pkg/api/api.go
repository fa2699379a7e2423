// Package api 将业务服务挂载到 HTTP 引擎.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/handle"
	"github.com/yeisme/filevault/pkg/internal/router"
	"github.com/yeisme/filevault/pkg/internal/service"
)

// Register 注册业务路由，调试模式下同时注册 Swagger 文档.
func Register(e *gin.Engine, svc *service.Services, cfg configs.ServerConfig, opts router.Options) *gin.Engine {
	router.Register(e, handle.New(svc), opts)
	router.RegisterSwaggerRoute(e, cfg)

	return e
}
