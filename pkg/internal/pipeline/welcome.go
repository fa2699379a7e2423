package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/yeisme/filevault/pkg/internal/directory"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/worker"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/queue"
)

// Welcomer 向新注册用户发送欢迎通知，目前以日志形式输出.
type Welcomer struct {
	dir    *directory.Directory
	logger zerolog.Logger
}

// NewWelcomer 创建 Welcomer.
func NewWelcomer(dir *directory.Directory) *Welcomer {
	return &Welcomer{dir: dir, logger: log.Component("welcome")}
}

// Handle 是欢迎主题的 worker.Handler.
func (w *Welcomer) Handle(ctx context.Context, msg *message.Message) error {
	env, err := queue.ParseWelcomeJob(msg)
	if err != nil {
		return worker.Permanent(fmt.Errorf("decode welcome job: %w", err))
	}

	user, err := w.Welcome(ctx, env.Payload)
	if err != nil {
		w.logger.Error().Err(err).Str("msg_id", msg.UUID).Msg("welcome job failed")
		return reject(err)
	}

	w.logger.Info().Str("user_id", user.ID).Msgf("Welcome %s!", user.Email)

	return nil
}

// Welcome 校验任务并查找用户.
func (w *Welcomer) Welcome(ctx context.Context, job queue.WelcomeJobPayload) (*model.User, error) {
	if job.UserID == "" {
		return nil, ErrMissingUserID
	}

	if !model.ValidID(job.UserID) {
		return nil, ErrInvalidID
	}

	user, err := w.dir.FindUserByID(ctx, job.UserID)
	if errors.Is(err, directory.ErrNotFound) {
		return nil, ErrUserNotFound
	}

	return user, err
}
