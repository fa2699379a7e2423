// Package scheduler 基于 gocron/v2 提供按名称管理的周期任务，并记录每个任务的运行状态.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yeisme/filevault/pkg/log"
)

// JobStatus 任务状态.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled" // 等待下次运行
	StatusRunning   JobStatus = "running"   // 正在运行
	StatusError     JobStatus = "error"     // 上次运行失败
)

// JobInfo 任务信息快照.
type JobInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Schedule    string    `json:"schedule"`
	NextRun     time.Time `json:"next_run"`
	LastRun     time.Time `json:"last_run"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	Runs        int       `json:"runs"`
	CreatedAt   time.Time `json:"created_at"`
}

// JobFunc 任务函数，返回的错误记录到任务状态.
type JobFunc func(ctx context.Context) error

// Scheduler 按名称管理的定时任务调度器.
type Scheduler struct {
	scheduler gocron.Scheduler
	mu        sync.RWMutex
	jobs      map[string]gocron.Job
	infos     map[string]*JobInfo
	logger    *zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// New 创建调度器，任务上下文在 Shutdown 时取消.
func New() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		scheduler: s,
		jobs:      make(map[string]gocron.Job),
		infos:     make(map[string]*JobInfo),
		logger:    log.Logger(),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// AddInterval 添加固定间隔任务.
func (s *Scheduler) AddInterval(name string, every time.Duration, job JobFunc) error {
	if every <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}

	return s.add(name, every.String(), gocron.DurationJob(every), job)
}

// AddCron 添加 cron 表达式任务.
func (s *Scheduler) AddCron(name, expr string, job JobFunc) error {
	return s.add(name, expr, gocron.CronJob(expr, false), job)
}

func (s *Scheduler) add(name, schedule string, def gocron.JobDefinition, job JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job with name %s already exists", name)
	}

	j, err := s.scheduler.NewJob(
		def,
		gocron.NewTask(func(ctx context.Context) error { return job(ctx) }, s.ctx),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithEventListeners(
			gocron.BeforeJobRuns(func(_ uuid.UUID, jobName string) {
				s.update(jobName, func(info *JobInfo) { info.Status = StatusRunning })
			}),
			gocron.AfterJobRuns(func(_ uuid.UUID, jobName string) {
				s.update(jobName, func(info *JobInfo) {
					info.Status = StatusScheduled
					info.Error = ""
					info.LastSuccess = time.Now()
				})
			}),
			gocron.AfterJobRunsWithError(func(_ uuid.UUID, jobName string, err error) {
				s.logger.Warn().Err(err).Str("job", jobName).Msg("job failed")
				s.update(jobName, func(info *JobInfo) {
					info.Status = StatusError
					info.Error = err.Error()
				})
			}),
			gocron.AfterJobRunsWithPanic(func(_ uuid.UUID, jobName string, recovered any) {
				s.logger.Error().Str("job", jobName).Interface("panic", recovered).Msg("job panicked")
				s.update(jobName, func(info *JobInfo) {
					info.Status = StatusError
					info.Error = fmt.Sprintf("panic: %v", recovered)
				})
			}),
		),
	)
	if err != nil {
		return err
	}

	s.jobs[name] = j
	s.infos[name] = &JobInfo{
		ID:        j.ID().String(),
		Name:      name,
		Schedule:  schedule,
		Status:    StatusScheduled,
		CreatedAt: time.Now(),
	}

	s.logger.Info().Str("job", name).Str("schedule", schedule).Msg("Added job")

	return nil
}

func (s *Scheduler) update(name string, fn func(info *JobInfo)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.infos[name]
	if !ok {
		return
	}

	fn(info)

	if info.Status != StatusRunning {
		info.Runs++
		info.LastRun = time.Now()
	}
}

// Remove 按名称移除任务.
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job with name %s does not exist", name)
	}

	if err := s.scheduler.RemoveJob(job.ID()); err != nil {
		return err
	}

	delete(s.jobs, name)
	delete(s.infos, name)

	s.logger.Info().Str("job", name).Msg("Removed job")

	return nil
}

// RunNow 立即执行一次指定任务，不影响原有调度.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job with name %s does not exist", name)
	}

	return job.RunNow()
}

// Start 启动调度器.
func (s *Scheduler) Start() {
	s.logger.Info().Int("jobs", len(s.JobInfos())).Msg("Starting scheduler")
	s.scheduler.Start()
}

// Shutdown 取消任务上下文并等待运行中的任务结束.
func (s *Scheduler) Shutdown() error {
	s.logger.Info().Msg("Stopping scheduler")
	s.cancel()

	return s.scheduler.Shutdown()
}

// JobInfos 返回按名称排序的任务信息.
func (s *Scheduler) JobInfos() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobInfo, 0, len(s.infos))

	for name, info := range s.infos {
		snapshot := *info
		if next, err := s.jobs[name].NextRun(); err == nil {
			snapshot.NextRun = next
		}

		out = append(out, snapshot)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}
