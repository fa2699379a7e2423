package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/middleware"
)

// PostUser 注册新用户.
//
//	@Summary	注册用户
//	@Tags		用户
//	@Accept		json
//	@Produce	json
//	@Param		user	body		types.RegisterRequest	true	"邮箱与口令"
//	@Success	201		{object}	types.UserResponse
//	@Failure	400		{object}	types.ErrorResponse
//	@Router		/users [post]
func (h *Handler) PostUser(c *gin.Context) {
	var req types.RegisterRequest
	if !bindBody(c, &req) {
		return
	}

	user, err := h.svc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Connect 使用 Basic 认证登录并签发令牌.
//
//	@Summary	登录
//	@Tags		用户
//	@Produce	json
//	@Param		Authorization	header		string	true	"Basic base64(email:password)"
//	@Success	200				{object}	types.TokenResponse
//	@Failure	401				{object}	types.ErrorResponse
//	@Router		/connect [get]
func (h *Handler) Connect(c *gin.Context) {
	email, password, ok := c.Request.BasicAuth()
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	tok, err := h.svc.Auth.SignIn(c.Request.Context(), email, password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tok)
}

// Disconnect 撤销当前令牌.
//
//	@Summary	登出
//	@Tags		用户
//	@Param		X-Token	header	string	true	"会话令牌"
//	@Success	204
//	@Failure	401	{object}	types.ErrorResponse
//	@Router		/disconnect [get]
func (h *Handler) Disconnect(c *gin.Context) {
	if err := h.svc.Auth.SignOut(c.Request.Context(), middleware.Token(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Me 返回当前用户.
//
//	@Summary	当前用户
//	@Tags		用户
//	@Produce	json
//	@Param		X-Token	header		string	true	"会话令牌"
//	@Success	200		{object}	types.UserResponse
//	@Failure	401		{object}	types.ErrorResponse
//	@Router		/users/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.svc.Auth.Me(c.Request.Context(), middleware.Token(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
