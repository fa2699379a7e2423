// Package service 实现账户、会话与文件目录的业务逻辑.
//
// 所有方法返回 *Error 表示可预期的业务失败（由调用方映射为对应状态码），
// 其余错误表示依赖故障.
package service

import (
	"context"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/directory"
	"github.com/yeisme/filevault/pkg/internal/session"
	"github.com/yeisme/filevault/pkg/internal/storage/content"
	"github.com/yeisme/filevault/pkg/queue"
)

// Pinger 可探测健康状态的依赖.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps 业务层依赖.
type Deps struct {
	Directory *directory.Directory
	Content   content.Store
	Sessions  *session.Store
	Jobs      queue.Enqueuer
	// Cache 会话缓存后端，用于健康探测
	Cache Pinger
}

// Services 业务服务集合.
type Services struct {
	Auth  *AuthService
	Files *FileService
	App   *AppService
}

// New 构造全部服务.
func New(deps Deps, cfg configs.AppConfig) *Services {
	auth := NewAuthService(deps.Directory, deps.Sessions, deps.Jobs, cfg.Auth)

	return &Services{
		Auth:  auth,
		Files: NewFileService(auth, deps.Directory, deps.Content, deps.Jobs, cfg),
		App:   NewAppService(deps.Directory, deps.Cache),
	}
}
