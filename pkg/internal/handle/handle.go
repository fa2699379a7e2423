// Package handle 提供 HTTP 请求处理器，将请求参数交给业务层并把结果映射为 JSON 响应.
package handle

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/log"
)

// Handler 聚合全部请求处理器.
type Handler struct {
	svc *service.Services
}

// New 创建 Handler.
func New(svc *service.Services) *Handler {
	return &Handler{svc: svc}
}

// respondError 业务错误按其状态码返回，其余错误记录日志后返回 500.
func respondError(c *gin.Context, err error) {
	if se, ok := service.AsError(err); ok {
		c.JSON(se.Code, types.ErrorResponse{Error: se.Message})
		return
	}

	log.Logger().Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)})
}

// bindBody 解析 JSON 请求体，空请求体按零值处理，由业务层给出缺失字段的错误.
func bindBody(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	log.Logger().Warn().Err(err).Msg("invalid request")
	c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})

	return false
}
