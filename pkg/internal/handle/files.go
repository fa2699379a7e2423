package handle

import (
	"fmt"
	"net/http"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/middleware"
)

// PostFile 上传文件或创建文件夹.
//
//	@Summary		上传文件
//	@Description	data 为 base64 编码的内容，type 为 folder 时可省略；图片上传后异步生成缩略图
//	@Tags			文件
//	@Accept			json
//	@Produce		json
//	@Param			X-Token	header		string					true	"会话令牌"
//	@Param			file	body		types.UploadFileRequest	true	"文件元数据与内容"
//	@Success		201		{object}	types.FileResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		401		{object}	types.ErrorResponse
//	@Router			/files [post]
func (h *Handler) PostFile(c *gin.Context) {
	var req types.UploadFileRequest
	if !bindBody(c, &req) {
		return
	}

	file, err := h.svc.Files.Upload(c.Request.Context(), middleware.Token(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, file)
}

// GetFile 返回当前用户拥有的文件.
//
//	@Summary	文件详情
//	@Tags		文件
//	@Produce	json
//	@Param		X-Token	header		string	true	"会话令牌"
//	@Param		id		path		string	true	"文件 ID"
//	@Success	200		{object}	types.FileResponse
//	@Failure	401		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/files/{id} [get]
func (h *Handler) GetFile(c *gin.Context) {
	file, err := h.svc.Files.Show(c.Request.Context(), middleware.Token(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}

// ListFiles 分页列出某个文件夹下的条目.
//
//	@Summary	文件列表
//	@Tags		文件
//	@Produce	json
//	@Param		X-Token		header	string	true	"会话令牌"
//	@Param		parentId	query	string	false	"父文件夹 ID，缺省为根"
//	@Param		page		query	int		false	"页码，从 0 开始"
//	@Success	200			{array}	types.FileResponse
//	@Failure	401			{object}	types.ErrorResponse
//	@Router		/files [get]
func (h *Handler) ListFiles(c *gin.Context) {
	var q types.ListFilesQuery
	_ = c.ShouldBindQuery(&q)

	files, err := h.svc.Files.List(c.Request.Context(), middleware.Token(c), q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

// Publish 将文件设为公开.
//
//	@Summary	公开文件
//	@Tags		文件
//	@Produce	json
//	@Param		X-Token	header		string	true	"会话令牌"
//	@Param		id		path		string	true	"文件 ID"
//	@Success	200		{object}	types.FileResponse
//	@Failure	401		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/files/{id}/publish [put]
func (h *Handler) Publish(c *gin.Context) {
	file, err := h.svc.Files.Publish(c.Request.Context(), middleware.Token(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}

// Unpublish 将文件设为私有.
//
//	@Summary	取消公开
//	@Tags		文件
//	@Produce	json
//	@Param		X-Token	header		string	true	"会话令牌"
//	@Param		id		path		string	true	"文件 ID"
//	@Success	200		{object}	types.FileResponse
//	@Failure	401		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/files/{id}/unpublish [put]
func (h *Handler) Unpublish(c *gin.Context) {
	file, err := h.svc.Files.Unpublish(c.Request.Context(), middleware.Token(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}

// GetFileData 返回文件内容，size 指定缩略图宽度.
//
//	@Summary		读取内容
//	@Description	公开文件无需令牌；私有文件仅所有者可读
//	@Tags			文件
//	@Produce		octet-stream
//	@Param			X-Token	header		string	false	"会话令牌"
//	@Param			id		path		string	true	"文件 ID"
//	@Param			size	query		int		false	"缩略图宽度"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Router			/files/{id}/data [get]
func (h *Handler) GetFileData(c *gin.Context) {
	var q types.FileDataQuery
	_ = c.ShouldBindQuery(&q)

	data, err := h.svc.Files.GetContent(c.Request.Context(), middleware.Token(c), c.Param("id"), q.Size)
	if err != nil {
		respondError(c, err)
		return
	}

	etag := fmt.Sprintf(`"%x"`, xxhash.Sum64(data.Data))
	c.Header("ETag", etag)

	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Data(http.StatusOK, data.ContentType, data.Data)
}
