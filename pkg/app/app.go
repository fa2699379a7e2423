// Package app 组装配置、存储、业务服务、HTTP 服务与后台工作池.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/yeisme/filevault/pkg/api"
	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/jobs"
	"github.com/yeisme/filevault/pkg/internal/pipeline"
	"github.com/yeisme/filevault/pkg/internal/router"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/session"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/internal/worker"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/middleware"
	"github.com/yeisme/filevault/pkg/queue"
	"github.com/yeisme/filevault/pkg/rule"
	"github.com/yeisme/filevault/pkg/scheduler"
	"github.com/yeisme/filevault/pkg/tracing"
)

const (
	shutdownTimeout = 10 * time.Second
	statsCacheTTL   = 5 * time.Second
	statsKeyPrefix  = "resp_"
)

// App 一个 filevault 进程.
type App struct {
	Engine *gin.Engine

	config   *configs.AppConfig
	manager  *storage.Manager
	pool     *worker.Pool
	services *service.Services
	logger   zerolog.Logger
}

// New 读取配置并初始化全部依赖.
func New(ctx context.Context, configPath string) (*App, error) {
	if err := configs.InitConfig(configPath); err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}

	cfg := configs.GetConfig()

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig 使用给定配置初始化，用于测试与嵌入.
func NewWithConfig(ctx context.Context, cfg *configs.AppConfig) (*App, error) {
	if err := rule.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log.Setup(cfg.Log, cfg.Server.Debug)

	if err := tracing.InitTracer(cfg.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	var registerer prometheus.Registerer
	if cfg.Metrics.Enabled {
		registerer = metrics.GetRegistry()
	}

	brokered := cfg.Worker.Transport == configs.TransportMQ

	mgr, err := storage.New(ctx, *cfg, storage.Options{
		MQ:         brokered,
		Registerer: registerer,
		DBMetrics:  cfg.Metrics.Enabled && cfg.Metrics.DBMetrics,
	})
	if err != nil {
		return nil, err
	}

	pool := worker.NewPool(cfg.Worker)
	pipeline.Register(pool, mgr.Directory, mgr.Content, cfg.Worker.ThumbnailWidths)

	var jobQueue queue.Enqueuer = pool
	if brokered {
		jobQueue = worker.NewBrokerQueue(mgr.MQ)
	}

	kvCache := cache.NewCache(mgr.KV)
	svc := service.New(service.Deps{
		Directory: mgr.Directory,
		Content:   mgr.Content,
		Sessions:  session.New(kvCache, cfg.Auth),
		Jobs:      jobQueue,
		Cache:     mgr.KV,
	}, *cfg)

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.MaxMultipartMemory = int64(cfg.Server.BodyLimitMB) << 20
	engine.Use(middleware.Default(cfg)...)

	api.Register(engine, svc, cfg.Server, router.Options{
		StatsCache: kvCache.WithPrefix(statsKeyPrefix),
		StatsTTL:   statsCacheTTL,
	})

	if err := metrics.StartMetricsServer(cfg.Metrics, engine); err != nil {
		_ = mgr.Close()
		return nil, fmt.Errorf("start metrics: %w", err)
	}

	return &App{
		Engine:   engine,
		config:   cfg,
		manager:  mgr,
		pool:     pool,
		services: svc,
		logger:   log.Component("app"),
	}, nil
}

// Serve 运行 HTTP 服务与进程内工作池，ctx 结束后优雅退出.
func (a *App) Serve(ctx context.Context) error {
	sched, err := a.startBackground(ctx)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.config.Server.Addr(),
		Handler:           http.MaxBytesHandler(a.Engine, int64(a.config.Server.BodyLimitMB)<<20),
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", srv.Addr).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if e := srv.Shutdown(shutdownCtx); e != nil {
		a.logger.Warn().Err(e).Msg("http server shutdown")
	}

	return errors.Join(err, a.stop(shutdownCtx, sched))
}

// Work 只运行工作池，从消息代理消费任务.
func (a *App) Work(ctx context.Context) error {
	if a.manager.MQ == nil {
		return errors.New("worker requires worker.transport=mq")
	}

	sched, err := a.startBackground(ctx)
	if err != nil {
		return err
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	return a.stop(shutdownCtx, sched)
}

// startBackground 启动工作池、消息订阅与定时任务.
func (a *App) startBackground(ctx context.Context) (*scheduler.Scheduler, error) {
	// 退出时由 Close 排空队列，worker 不随 ctx 立即结束
	a.pool.Start(context.WithoutCancel(ctx))

	if a.manager.MQ != nil {
		if err := worker.Bridge(ctx, a.manager.MQ, a.pool, a.pool.Topics()...); err != nil {
			return nil, err
		}
	}

	sched, err := scheduler.New()
	if err != nil {
		return nil, err
	}

	if err := jobs.Register(sched, a.manager, a.config.Metrics.CollectInterval); err != nil {
		return nil, err
	}

	sched.Start()

	return sched, nil
}

func (a *App) stop(ctx context.Context, sched *scheduler.Scheduler) error {
	errs := []error{sched.Shutdown(), a.pool.Close(), a.manager.Close()}

	if err := tracing.ShutdownTracer(ctx); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info().Msg("shutdown complete")

	return errors.Join(errs...)
}

// Close 释放工作池与存储资源，用于未调用 Serve/Work 的实例.
func (a *App) Close() error {
	return errors.Join(a.pool.Close(), a.manager.Close())
}

// Manager 返回存储管理器.
func (a *App) Manager() *storage.Manager {
	return a.manager
}

// Services 返回业务服务.
func (a *App) Services() *service.Services {
	return a.services
}
