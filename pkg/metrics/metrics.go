// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP、后台任务与依赖健康指标.
//
// Example:
//
//	import "github.com/yeisme/filevault/pkg/metrics"
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.RequestCounter.WithLabelValues("GET", "/files", "200").Inc()
//	metrics.JobsProcessed.WithLabelValues(queue.TopicThumbnail, metrics.JobStatusSuccess).Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/filevault/pkg/configs"
)

// 任务处理结果标签.
const (
	JobStatusSuccess = "success"
	JobStatusRetry   = "retry"
	JobStatusFailed  = "failed"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 活跃连接数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	// JobsProcessed 后台任务处理计数.
	JobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filevault_jobs_processed_total",
			Help: "Background jobs processed by topic and outcome",
		},
		[]string{"topic", "status"},
	)

	// JobDuration 后台任务耗时.
	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filevault_job_duration_seconds",
			Help:    "Background job duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	// QueueDepth 工作池中等待处理的任务数.
	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "filevault_job_queue_depth",
			Help: "Jobs waiting in the in-process worker pool",
		},
	)

	// ThumbnailsGenerated 缩略图生成结果.
	ThumbnailsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filevault_thumbnails_total",
			Help: "Thumbnail variants by width and outcome",
		},
		[]string{"width", "status"},
	)

	// DependencyUp 依赖健康状态，1 为可用.
	DependencyUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filevault_dependency_up",
			Help: "Whether a backing dependency answered its last probe",
		},
		[]string{"dependency"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()

	initOnce sync.Once
)

// InitMetrics 初始化Metrics，重复调用只生效一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	initOnce.Do(func() {
		// 注册标准收集器
		if config.RuntimeMetrics {
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		registry.MustRegister(
			RequestCounter, RequestDuration, ActiveConnections,
			JobsProcessed, JobDuration, QueueDepth,
			ThumbnailsGenerated, DependencyUp,
		)
	})

	return nil
}

// StartMetricsServer 在调试引擎上挂载指标端点.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	path := config.Path
	if path == "" {
		path = "/metrics"
	}

	debugEngine.GET(path, gin.WrapH(Handler()))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// Handler 返回注册表的 HTTP 处理器.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// SetDependency 记录依赖探测结果.
func SetDependency(name string, up bool) {
	v := 0.0
	if up {
		v = 1
	}

	DependencyUp.WithLabelValues(name).Set(v)
}
