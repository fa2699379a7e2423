package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Status 返回会话缓存与数据库的连通状态.
//
//	@Summary	服务状态
//	@Tags		系统
//	@Produce	json
//	@Success	200	{object}	types.StatusResponse
//	@Router		/status [get]
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.App.Status(c.Request.Context()))
}

// Stats 返回用户数与文件数.
//
//	@Summary	数量统计
//	@Tags		系统
//	@Produce	json
//	@Success	200	{object}	types.StatsResponse
//	@Failure	500	{object}	types.ErrorResponse
//	@Router		/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.App.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
