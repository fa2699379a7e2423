package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/directory"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/content"
	"github.com/yeisme/filevault/pkg/internal/worker"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/queue"
)

// SizeOutcome 单个宽度的生成结果，Err 为 nil 表示成功.
type SizeOutcome struct {
	Width int
	Key   string
	Err   error
}

// Thumbnailer 为图片生成多种宽度的缩略图.
type Thumbnailer struct {
	dir    *directory.Directory
	store  content.Store
	widths []int
	logger zerolog.Logger
}

// NewThumbnailer 创建 Thumbnailer，widths 为空时使用默认宽度.
func NewThumbnailer(dir *directory.Directory, store content.Store, widths []int) *Thumbnailer {
	if len(widths) == 0 {
		widths = configs.DefaultThumbnailWidths
	}

	return &Thumbnailer{
		dir:    dir,
		store:  store,
		widths: widths,
		logger: log.Component("thumbnail"),
	}
}

// Handle 是缩略图主题的 worker.Handler.
func (t *Thumbnailer) Handle(ctx context.Context, msg *message.Message) error {
	env, err := queue.ParseThumbnailJob(msg)
	if err != nil {
		return worker.Permanent(fmt.Errorf("decode thumbnail job: %w", err))
	}

	_, err = t.Generate(ctx, env.Payload)
	if err != nil {
		t.logger.Error().Err(err).Str("msg_id", msg.UUID).Msg("thumbnail job failed")
	}

	return reject(err)
}

// Generate 并发生成全部宽度的缩略图.
// 只有任务数据无效或文件记录不存在时返回错误；单个宽度失败记录在结果中，不影响其他宽度.
func (t *Thumbnailer) Generate(ctx context.Context, job queue.ThumbnailJobPayload) ([]SizeOutcome, error) {
	if job.UserID == "" {
		return nil, ErrMissingUserID
	}

	if job.FileID == "" {
		return nil, ErrMissingFileID
	}

	if !model.ValidID(job.FileID) || !model.ValidID(job.UserID) {
		return nil, ErrInvalidID
	}

	file, err := t.dir.FindFile(ctx, directory.FileFilter{ID: job.FileID, UserID: job.UserID})
	if errors.Is(err, directory.ErrNotFound) {
		return nil, ErrFileNotFound
	}

	if err != nil {
		return nil, err
	}

	outcomes := make([]SizeOutcome, len(t.widths))

	var g errgroup.Group

	for i, width := range t.widths {
		g.Go(func() error {
			key := content.VariantKey(file.LocalPath, width)
			err := t.resize(ctx, file, key, width)

			outcomes[i] = SizeOutcome{Width: width, Key: key, Err: err}

			status := "success"
			if err != nil {
				status = "failed"

				t.logger.Warn().Err(err).Str("file_id", file.ID).Int("width", width).Msg("thumbnail generation failed")
			}

			metrics.ThumbnailsGenerated.WithLabelValues(strconv.Itoa(width), status).Inc()

			return nil
		})
	}

	_ = g.Wait()

	return outcomes, nil
}

func (t *Thumbnailer) resize(ctx context.Context, file *model.File, key string, width int) error {
	data, err := t.store.Get(ctx, file.LocalPath)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode source: %w", err)
	}

	thumb := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, outputFormat(data, file.Name)); err != nil {
		return fmt.Errorf("encode %dpx: %w", width, err)
	}

	return t.store.Put(ctx, key, buf.Bytes())
}

// outputFormat 优先按内容识别格式，其次按文件名，都无法识别时使用 JPEG.
func outputFormat(data []byte, name string) imaging.Format {
	if f, err := imaging.FormatFromExtension(mimetype.Detect(data).Extension()); err == nil {
		return f
	}

	if f, err := imaging.FormatFromFilename(name); err == nil {
		return f
	}

	return imaging.JPEG
}
