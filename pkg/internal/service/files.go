package service

import (
	"context"
	"encoding/base64"
	"errors"
	"mime"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/directory"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/content"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/queue"
	"github.com/yeisme/filevault/pkg/tracing"
)

// FileService 文件上传、查询、可见性与内容读取.
type FileService struct {
	auth     *AuthService
	dir      *directory.Directory
	store    content.Store
	jobs     queue.Enqueuer
	pageSize int
	widths   []int
	logger   zerolog.Logger
}

// NewFileService 创建 FileService.
func NewFileService(auth *AuthService, dir *directory.Directory, store content.Store, jobs queue.Enqueuer, cfg configs.AppConfig) *FileService {
	pageSize := cfg.Server.PageSize
	if pageSize <= 0 {
		pageSize = configs.DefaultPageSize
	}

	widths := cfg.Worker.ThumbnailWidths
	if len(widths) == 0 {
		widths = configs.DefaultThumbnailWidths
	}

	return &FileService{
		auth:     auth,
		dir:      dir,
		store:    store,
		jobs:     jobs,
		pageSize: pageSize,
		widths:   widths,
		logger:   log.Component("files"),
	}
}

// Prepared 通过校验、待写入的上传内容.
type Prepared struct {
	File *model.File
	Data []byte
}

// ValidateAndPrepare 校验上传请求.
// 校验顺序：名称、类型、内容、父节点；父节点先判断存在，再判断是否为文件夹.
func (s *FileService) ValidateAndPrepare(ctx context.Context, userID string, req types.UploadFileRequest) (*Prepared, error) {
	if req.Name == "" {
		return nil, ErrMissingName
	}

	kind := model.FileKind(req.Type)
	if !kind.Valid() {
		return nil, ErrMissingType
	}

	var data []byte

	if kind != model.KindFolder {
		if req.Data == "" {
			return nil, ErrMissingData
		}

		decoded, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			return nil, ErrInvalidData
		}

		data = decoded
	}

	if !req.ParentID.IsRoot() {
		parentID := req.ParentID.String()
		if !model.ValidID(parentID) {
			return nil, ErrParentNotFound
		}

		parent, err := s.dir.FindFile(ctx, directory.FileFilter{ID: parentID})
		if errors.Is(err, directory.ErrNotFound) {
			return nil, ErrParentNotFound
		}

		if err != nil {
			return nil, err
		}

		if !parent.IsFolder() {
			return nil, ErrParentNotFolder
		}
	}

	return &Prepared{
		File: &model.File{
			UserID:   userID,
			Name:     req.Name,
			Type:     kind,
			IsPublic: req.IsPublic,
			ParentID: req.ParentID.String(),
		},
		Data: data,
	}, nil
}

// Upload 写入内容与文件记录，图片会提交缩略图任务.
func (s *FileService) Upload(ctx context.Context, token string, req types.UploadFileRequest) (*types.FileResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "files.upload")
	defer span.End()

	user, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	prep, err := s.ValidateAndPrepare(ctx, user.ID, req)
	if err != nil {
		return nil, err
	}

	file := prep.File
	isImage := file.Type == model.KindImage

	if isImage {
		s.enqueueThumbnail(ctx, queue.ThumbnailJobPayload{})
	}

	if !file.IsFolder() {
		key := s.store.NewKey()
		if err := s.store.Put(ctx, key, prep.Data); err != nil {
			if isImage {
				s.enqueueThumbnail(ctx, queue.ThumbnailJobPayload{UserID: user.ID})
			}

			return nil, storageError(err)
		}

		file.LocalPath = key
	}

	if err := s.dir.InsertFile(ctx, file); err != nil {
		return nil, err
	}

	if isImage {
		s.enqueueThumbnail(ctx, queue.ThumbnailJobPayload{FileID: file.ID, UserID: user.ID})
	}

	resp := types.NewFileResponse(file)

	return &resp, nil
}

// Show 返回调用者自己的文件记录.
func (s *FileService) Show(ctx context.Context, token, fileID string) (*types.FileResponse, error) {
	user, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	if !model.ValidID(fileID) {
		return nil, ErrNotFound
	}

	file, err := s.dir.FindFile(ctx, directory.FileFilter{ID: fileID, UserID: user.ID})
	if err != nil {
		return nil, notFoundOr(err)
	}

	resp := types.NewFileResponse(file)

	return &resp, nil
}

// List 按父节点分页列出文件，不限定所有者.
// 父节点不存在或不是文件夹时返回空列表.
func (s *FileService) List(ctx context.Context, token string, q types.ListFilesQuery) ([]types.FileResponse, error) {
	if _, err := s.auth.Authenticate(ctx, token); err != nil {
		return nil, err
	}

	page, err := strconv.Atoi(q.Page)
	if err != nil || page < 0 {
		page = 0
	}

	parentID := types.ParentRef(q.ParentID).String()
	if parentID != model.RootParentID {
		if !model.ValidID(parentID) {
			return []types.FileResponse{}, nil
		}

		parent, err := s.dir.FindFile(ctx, directory.FileFilter{ID: parentID})
		if errors.Is(err, directory.ErrNotFound) {
			return []types.FileResponse{}, nil
		}

		if err != nil {
			return nil, err
		}

		if !parent.IsFolder() {
			return []types.FileResponse{}, nil
		}
	}

	files, err := s.dir.ListByParent(ctx, parentID, page, s.pageSize)
	if err != nil {
		return nil, err
	}

	return types.NewFileList(files), nil
}

// Publish 设为公开.
func (s *FileService) Publish(ctx context.Context, token, fileID string) (*types.FileResponse, error) {
	return s.setVisibility(ctx, token, fileID, true)
}

// Unpublish 设为私有.
func (s *FileService) Unpublish(ctx context.Context, token, fileID string) (*types.FileResponse, error) {
	return s.setVisibility(ctx, token, fileID, false)
}

func (s *FileService) setVisibility(ctx context.Context, token, fileID string, public bool) (*types.FileResponse, error) {
	user, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	if !model.ValidID(fileID) {
		return nil, ErrNotFound
	}

	file, err := s.dir.FindFile(ctx, directory.FileFilter{ID: fileID})
	if err != nil {
		return nil, notFoundOr(err)
	}

	if !CanMutate(file, user.ID) {
		return nil, ErrUnauthorized
	}

	updated, err := s.dir.SetVisibility(ctx, directory.FileFilter{ID: fileID, UserID: user.ID}, public)
	if err != nil {
		return nil, notFoundOr(err)
	}

	resp := types.NewFileResponse(updated)

	return &resp, nil
}

// GetContent 读取文件内容，size 非空时读取对应宽度的缩略图.
// 未登录也可读取公开文件.
func (s *FileService) GetContent(ctx context.Context, token, fileID, size string) (*types.FileData, error) {
	ctx, span := tracing.StartSpan(ctx, "files.content")
	defer span.End()

	userID, err := s.auth.identify(ctx, token)
	if err != nil {
		return nil, err
	}

	if !model.ValidID(fileID) {
		return nil, ErrNotFound
	}

	file, err := s.dir.FindFile(ctx, directory.FileFilter{ID: fileID})
	if err != nil {
		return nil, notFoundOr(err)
	}

	if !CanRead(file, userID) {
		return nil, ErrNotFound
	}

	if file.IsFolder() {
		return nil, ErrNotAFile
	}

	key := file.LocalPath

	if size != "" && size != "0" {
		width, err := strconv.Atoi(size)
		if err != nil || !slices.Contains(s.widths, width) {
			return nil, ErrNotFound
		}

		key = content.VariantKey(key, width)
	}

	data, err := s.store.Get(ctx, key)
	if errors.Is(err, content.ErrNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, storageError(err)
	}

	return &types.FileData{Name: file.Name, ContentType: contentType(file.Name, data), Data: data}, nil
}

func (s *FileService) enqueueThumbnail(ctx context.Context, payload queue.ThumbnailJobPayload) {
	if s.jobs == nil {
		return
	}

	err := queue.EnqueueThumbnailJob(ctx, s.jobs, payload, queue.WithProducer(configs.AppName))
	if err != nil {
		s.logger.Warn().Err(err).Str("file_id", payload.FileID).Msg("enqueue thumbnail job failed")
	}
}

// contentType 优先按扩展名判断，无法判断时检测内容.
func contentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}

	return mimetype.Detect(data).String()
}

func notFoundOr(err error) error {
	if errors.Is(err, directory.ErrNotFound) {
		return ErrNotFound
	}

	return err
}
