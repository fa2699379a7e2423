// Package storage 聚合服务依赖的存储资源：数据库、会话缓存、任务消息代理与内容存储.
//
// Example:
//
//	mgr, err := storage.New(ctx, cfg, storage.Options{MQ: true})
//	if err != nil {
//		// 处理错误
//	}
//	defer mgr.Close()
//
//	alive := mgr.IsAlive(ctx)
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/directory"
	"github.com/yeisme/filevault/pkg/internal/storage/content"
	dbc "github.com/yeisme/filevault/pkg/internal/storage/db"
	"github.com/yeisme/filevault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/filevault/pkg/internal/storage/mq"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// Manager 持有全部存储句柄.
type Manager struct {
	DB        *dbc.Client
	Directory *directory.Directory
	KV        kv.KVStore
	Content   content.Store
	// MQ 仅在任务经消息代理投递时创建，否则为 nil
	MQ *mqc.Client
}

// Options 控制可选资源.
type Options struct {
	// MQ 是否连接消息代理
	MQ bool
	// Registerer 非空时为 watermill 启用 prometheus 指标
	Registerer prometheus.Registerer
	// DBMetrics 启用 gorm prometheus 插件
	DBMetrics bool
}

// Liveness 各组件连通状态.
type Liveness struct {
	DB      bool `json:"db"`
	KV      bool `json:"kv"`
	Content bool `json:"content"`
}

// New 按配置依次建立连接并迁移表结构，任一步失败时关闭已打开的资源.
func New(ctx context.Context, cfg configs.AppConfig, opts Options) (*Manager, error) {
	m := &Manager{}

	db, err := dbc.New(ctx, cfg.DB, dbc.Options{Metrics: opts.DBMetrics})
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}

	m.DB = db
	m.Directory = directory.New(db)

	if err := m.Directory.Migrate(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if m.KV, err = kv.New(ctx, cfg.KV); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("init kv: %w", err)
	}

	if m.Content, err = content.New(ctx, cfg.Content); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("init content: %w", err)
	}

	if opts.MQ {
		if m.MQ, err = mqc.New(ctx, cfg.MQ, mqc.Options{Registerer: opts.Registerer}); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("init mq: %w", err)
		}
	}

	nlog.Logger().Info().
		Str("db", string(cfg.DB.Type)).
		Str("kv", string(cfg.KV.Type)).
		Str("content", m.Content.Backend()).
		Bool("mq", m.MQ != nil).
		Msg("storage manager initialized")

	return m, nil
}

// IsAlive 并发探测数据库、会话缓存与内容存储.
func (m *Manager) IsAlive(ctx context.Context) Liveness {
	var (
		l Liveness
		g errgroup.Group
	)

	g.Go(func() error {
		l.DB = m.DB != nil && m.DB.Ping(ctx) == nil
		return nil
	})
	g.Go(func() error {
		l.KV = m.KV != nil && m.KV.Ping(ctx) == nil
		return nil
	})
	g.Go(func() error {
		l.Content = m.Content != nil && m.Content.Ping(ctx) == nil
		return nil
	})

	_ = g.Wait()

	return l
}

// Close 关闭全部已打开的资源.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}
