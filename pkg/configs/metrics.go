package configs

import (
	"time"

	"github.com/spf13/viper"
)

// MetricsConfig Metrics相关配置.
type MetricsConfig struct {
	Enabled         bool              `mapstructure:"enabled"`          // 是否启用Metrics
	ServiceName     string            `mapstructure:"service_name"`     // 服务名称
	ServiceVersion  string            `mapstructure:"service_version"`  // 服务版本
	Path            string            `mapstructure:"path"`             // 暴露指标的 HTTP 路径
	CollectInterval time.Duration     `mapstructure:"collect_interval"` // 健康探测间隔
	RuntimeMetrics  bool              `mapstructure:"runtime_metrics"`  // 是否收集运行时指标
	DBMetrics       bool              `mapstructure:"db_metrics"`       // 是否启用 gorm prometheus 插件
	Pprof           bool              `mapstructure:"pprof"`            // 是否暴露 pprof 端点
	Labels          map[string]string `mapstructure:"labels"`           // 默认标签
}

// setDefaults 设置Metrics配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.service_name", "filevault")
	v.SetDefault("metrics.service_version", AppVersion)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.collect_interval", "15s")
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.db_metrics", false)
	v.SetDefault("metrics.pprof", false)
	v.SetDefault("metrics.labels", map[string]string{
		"service": "filevault",
		"version": AppVersion,
	})
}
