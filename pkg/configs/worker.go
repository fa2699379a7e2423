package configs

import (
	"time"

	"github.com/spf13/viper"
)

// WorkerTransport 任务投递方式.
type WorkerTransport string

const (
	// TransportLocal 任务直接进入进程内的有界工作池.
	TransportLocal WorkerTransport = "local"
	// TransportMQ 任务经消息代理投递，由 worker 进程订阅后送入工作池.
	TransportMQ WorkerTransport = "mq"

	DefaultWorkerPoolSize   = 4
	DefaultWorkerQueueDepth = 128
	DefaultMaxAttempts      = 1
	DefaultRetryDelay       = 2 * time.Second
)

// DefaultThumbnailWidths 缩略图目标宽度.
var DefaultThumbnailWidths = []int{500, 250, 100}

// WorkerConfig 后台任务（缩略图、欢迎通知）配置.
type WorkerConfig struct {
	Transport       WorkerTransport `mapstructure:"transport"        rule:"oneof=local mq"`
	PoolSize        int             `mapstructure:"pool_size"        rule:"min=1,max=256"`
	QueueDepth      int             `mapstructure:"queue_depth"      rule:"min=1"`
	MaxAttempts     int             `mapstructure:"max_attempts"     rule:"min=1,max=20"`
	RetryDelay      time.Duration   `mapstructure:"retry_delay"`
	ThumbnailWidths []int           `mapstructure:"thumbnail_widths" rule:"min=1,dive,min=1"`
}

func (c *WorkerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("worker.transport", TransportLocal)
	v.SetDefault("worker.pool_size", DefaultWorkerPoolSize)
	v.SetDefault("worker.queue_depth", DefaultWorkerQueueDepth)
	v.SetDefault("worker.max_attempts", DefaultMaxAttempts)
	v.SetDefault("worker.retry_delay", DefaultRetryDelay)
	v.SetDefault("worker.thumbnail_widths", DefaultThumbnailWidths)
}
