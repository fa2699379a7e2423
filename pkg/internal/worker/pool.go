// Package worker 提供有界的后台任务工作池.
//
// 请求路径只负责投递任务，缩略图与欢迎通知在池中异步执行。
// 任务可以直接进入进程内队列，也可以经 MQ 投递后由 Bridge 转入工作池.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/metrics"
)

var (
	// ErrPoolClosed 工作池已关闭.
	ErrPoolClosed = errors.New("worker pool closed")

	errQueueFull = errors.New("worker queue full")
)

// permanentError 标记重试也无法成功的失败，如任务数据无效.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent 包装不可重试的错误，工作池不再重试并确认消息，避免消息代理反复投递.
func Permanent(err error) error {
	if err == nil {
		return nil
	}

	return &permanentError{err: err}
}

// IsPermanent 判断错误是否不可重试.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Handler 处理单条任务消息，返回错误表示本次尝试失败.
type Handler func(ctx context.Context, msg *message.Message) error

type job struct {
	topic   string
	msg     *message.Message
	attempt int
}

// Pool 固定数量 worker 的任务池.
type Pool struct {
	cfg      configs.WorkerConfig
	mu       sync.RWMutex
	handlers map[string]Handler

	jobs      chan job
	// closing 先于 done 关闭，唤醒阻塞的投递方；sendMu 保证 done 关闭后不再有任务入队.
	closing   chan struct{}
	done      chan struct{}
	sendMu    sync.RWMutex
	closeOnce sync.Once
	startOnce sync.Once
	wg        sync.WaitGroup
	pending   atomic.Int64

	logger zerolog.Logger
}

// NewPool 创建工作池，调用 Start 后开始消费.
func NewPool(cfg configs.WorkerConfig) *Pool {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = configs.DefaultWorkerPoolSize
	}

	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = configs.DefaultWorkerQueueDepth
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	return &Pool{
		cfg:      cfg,
		handlers: make(map[string]Handler),
		jobs:     make(chan job, cfg.QueueDepth),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
		logger:   log.Component("worker"),
	}
}

// Handle 为主题注册处理函数，重复注册会覆盖.
func (p *Pool) Handle(topic string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.handlers[topic] = h
}

// Topics 返回已注册处理函数的主题.
func (p *Pool) Topics() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	topics := make([]string, 0, len(p.handlers))
	for t := range p.handlers {
		topics = append(topics, t)
	}

	return topics
}

// Enqueue 投递任务，队列满时阻塞直到有空位、ctx 结束或池关闭.
func (p *Pool) Enqueue(ctx context.Context, topic string, msg *message.Message) error {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()

	select {
	case <-p.closing:
		return ErrPoolClosed
	default:
	}

	p.pending.Add(1)

	select {
	case p.jobs <- job{topic: topic, msg: msg, attempt: 1}:
		metrics.QueueDepth.Set(float64(len(p.jobs)))
		return nil
	case <-ctx.Done():
		p.pending.Add(-1)
		return ctx.Err()
	case <-p.closing:
		p.pending.Add(-1)
		return ErrPoolClosed
	}
}

// Pending 返回已接受但尚未结束的任务数（含等待重试的任务）.
func (p *Pool) Pending() int64 {
	return p.pending.Load()
}

// Start 启动 worker，ctx 结束或 Close 后退出.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		for i := range p.cfg.PoolSize {
			p.wg.Add(1)

			go p.loop(ctx, i)
		}

		p.logger.Info().Int("size", p.cfg.PoolSize).Int("queue_depth", p.cfg.QueueDepth).Msg("worker pool started")
	})
}

// Close 停止接收新任务，处理完已排队的任务后返回.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		close(p.closing)

		p.sendMu.Lock()
		close(p.done)
		p.sendMu.Unlock()
	})

	p.wg.Wait()

	return nil
}

func (p *Pool) loop(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			p.drain(ctx)
			return
		case j := <-p.jobs:
			p.run(ctx, id, j)
		}
	}
}

func (p *Pool) drain(ctx context.Context) {
	for {
		select {
		case j := <-p.jobs:
			p.run(ctx, -1, j)
		default:
			return
		}
	}
}

func (p *Pool) handler(topic string) Handler {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.handlers[topic]
}

func (p *Pool) run(ctx context.Context, id int, j job) {
	metrics.QueueDepth.Set(float64(len(p.jobs)))

	l := p.logger.With().Str("topic", j.topic).Str("msg_id", j.msg.UUID).Int("attempt", j.attempt).Int("worker", id).Logger()

	h := p.handler(j.topic)
	if h == nil {
		l.Warn().Msg("no handler registered for topic")
		p.fail(j)

		return
	}

	start := time.Now()
	err := invoke(ctx, h, j.msg)
	metrics.JobDuration.WithLabelValues(j.topic).Observe(time.Since(start).Seconds())

	if err == nil {
		j.msg.Ack()
		metrics.JobsProcessed.WithLabelValues(j.topic, metrics.JobStatusSuccess).Inc()
		p.pending.Add(-1)

		return
	}

	if IsPermanent(err) {
		l.Error().Err(err).Msg("job rejected")
		j.msg.Ack()
		metrics.JobsProcessed.WithLabelValues(j.topic, metrics.JobStatusFailed).Inc()
		p.pending.Add(-1)

		return
	}

	if j.attempt < p.cfg.MaxAttempts {
		l.Warn().Err(err).Dur("retry_in", p.cfg.RetryDelay).Msg("job failed, retrying")
		metrics.JobsProcessed.WithLabelValues(j.topic, metrics.JobStatusRetry).Inc()
		p.retry(j)

		return
	}

	l.Error().Err(err).Msg("job failed")
	p.fail(j)
}

func (p *Pool) retry(j job) {
	j.attempt++

	time.AfterFunc(p.cfg.RetryDelay, func() {
		p.sendMu.RLock()
		defer p.sendMu.RUnlock()

		select {
		case <-p.closing:
			p.drop(j, ErrPoolClosed)
			return
		default:
		}

		select {
		case p.jobs <- j:
			metrics.QueueDepth.Set(float64(len(p.jobs)))
		default:
			p.drop(j, errQueueFull)
		}
	})
}

func (p *Pool) drop(j job, reason error) {
	p.logger.Warn().Err(reason).Str("topic", j.topic).Str("msg_id", j.msg.UUID).Msg("retry dropped")
	p.fail(j)
}

func (p *Pool) fail(j job) {
	j.msg.Nack()
	metrics.JobsProcessed.WithLabelValues(j.topic, metrics.JobStatusFailed).Inc()
	p.pending.Add(-1)
}

func invoke(ctx context.Context, h Handler, msg *message.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return h(ctx, msg)
}
