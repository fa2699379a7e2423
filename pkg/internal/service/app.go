package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yeisme/filevault/pkg/internal/directory"
	"github.com/yeisme/filevault/pkg/internal/types"
)

// AppService 健康状态与统计.
type AppService struct {
	dir   *directory.Directory
	cache Pinger
}

// NewAppService 创建 AppService.
func NewAppService(dir *directory.Directory, cache Pinger) *AppService {
	return &AppService{dir: dir, cache: cache}
}

// Status 并发探测会话缓存与数据库.
func (s *AppService) Status(ctx context.Context) types.StatusResponse {
	var (
		resp types.StatusResponse
		g    errgroup.Group
	)

	g.Go(func() error {
		resp.Redis = s.cache != nil && s.cache.Ping(ctx) == nil
		return nil
	})
	g.Go(func() error {
		resp.DB = s.dir.Ping(ctx) == nil
		return nil
	})

	_ = g.Wait()

	return resp
}

// Stats 返回用户与文件数量.
func (s *AppService) Stats(ctx context.Context) (*types.StatsResponse, error) {
	var (
		resp types.StatsResponse
		g    errgroup.Group
	)

	g.Go(func() (err error) {
		resp.Users, err = s.dir.CountUsers(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Files, err = s.dir.CountFiles(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &resp, nil
}
