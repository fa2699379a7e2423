// Package pipeline 实现后台任务：图片缩略图生成与新用户欢迎通知.
package pipeline

import (
	"errors"

	"github.com/yeisme/filevault/pkg/internal/directory"
	"github.com/yeisme/filevault/pkg/internal/storage/content"
	"github.com/yeisme/filevault/pkg/internal/worker"
	"github.com/yeisme/filevault/pkg/queue"
)

// 任务数据无效或记录缺失，属于不可恢复的任务失败.
var (
	ErrMissingUserID = errors.New("missing userId")
	ErrMissingFileID = errors.New("missing fileId")
	ErrInvalidID     = errors.New("invalid fileId or userId")
	ErrFileNotFound  = errors.New("file not found")
	ErrUserNotFound  = errors.New("user not found")
)

// reject 任务数据无效或记录缺失时返回不可重试的错误.
func reject(err error) error {
	switch {
	case errors.Is(err, ErrMissingUserID), errors.Is(err, ErrMissingFileID), errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrFileNotFound), errors.Is(err, ErrUserNotFound):
		return worker.Permanent(err)
	default:
		return err
	}
}

// Register 在工作池上注册全部任务处理函数.
func Register(pool *worker.Pool, dir *directory.Directory, store content.Store, widths []int) {
	pool.Handle(queue.TopicThumbnail, NewThumbnailer(dir, store, widths).Handle)
	pool.Handle(queue.TopicWelcome, NewWelcomer(dir).Handle)
}
