// Package jobs 注册服务进程内的周期任务：过期会话清理与依赖健康探测.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/internal/storage/kv"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/scheduler"
)

// Register 向调度器注册任务，probeEvery<=0 时使用默认探测间隔.
func Register(sched *scheduler.Scheduler, mgr *storage.Manager, probeEvery time.Duration) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if mgr == nil {
		return errors.New("storage manager is nil")
	}

	// 只有不支持按键过期的后端需要清理
	if sweeper, ok := mgr.KV.(kv.Sweeper); ok {
		if err := sched.AddInterval(JobSessionSweep, SessionSweepInterval, func(ctx context.Context) error {
			_, err := SweepSessions(ctx, sweeper)
			return err
		}); err != nil {
			return err
		}
	}

	if probeEvery <= 0 {
		probeEvery = HealthProbeInterval
	}

	return sched.AddInterval(JobHealthProbe, probeEvery, func(ctx context.Context) error {
		ProbeDependencies(ctx, mgr)
		return nil
	})
}

// SweepSessions 删除已过期的会话键.
func SweepSessions(ctx context.Context, s kv.Sweeper) (int, error) {
	n, err := s.Sweep(ctx)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		log.Logger().Info().Str("job", JobSessionSweep).Int("removed", n).Msg("expired sessions swept")
	}

	return n, nil
}

// ProbeDependencies 探测存储组件并更新 filevault_dependency_up 指标.
func ProbeDependencies(ctx context.Context, mgr *storage.Manager) storage.Liveness {
	alive := mgr.IsAlive(ctx)

	metrics.SetDependency("db", alive.DB)
	metrics.SetDependency("kv", alive.KV)
	metrics.SetDependency("content", alive.Content)

	if !alive.DB || !alive.KV || !alive.Content {
		log.Logger().Warn().
			Bool("db", alive.DB).
			Bool("kv", alive.KV).
			Bool("content", alive.Content).
			Msg("dependency unhealthy")
	}

	return alive
}
