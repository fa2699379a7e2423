package configs

import "github.com/spf13/viper"

const (
	// 默认熔断配置.
	DefaultCBEnabled           = false
	DefaultCBFailureRate       = 0.5
	DefaultCBMinRequests       = 20
	DefaultCBIntervalSeconds   = 60
	DefaultCBTimeoutSeconds    = 30
	DefaultCBMaxRequestsInHalf = 5
)

// DefaultCBSkipPaths 不经过熔断的路由.
var DefaultCBSkipPaths = []string{"/status"}

// CircuitBreakerConfig 熔断配置，5xx 响应计为失败.
type CircuitBreakerConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	FailureRate       float64  `mapstructure:"failure_rate"         rule:"gte=0,lte=1"`
	MinRequests       uint32   `mapstructure:"min_requests"`
	IntervalSeconds   int      `mapstructure:"interval_seconds"     rule:"gte=0"`
	TimeoutSeconds    int      `mapstructure:"timeout_seconds"      rule:"gte=0"`
	MaxRequestsInHalf uint32   `mapstructure:"max_requests_in_half"`
	SkipPaths         []string `mapstructure:"skip_paths"`
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", DefaultCBEnabled)
	v.SetDefault("circuit_breaker.failure_rate", DefaultCBFailureRate)
	v.SetDefault("circuit_breaker.min_requests", DefaultCBMinRequests)
	v.SetDefault("circuit_breaker.interval_seconds", DefaultCBIntervalSeconds)
	v.SetDefault("circuit_breaker.timeout_seconds", DefaultCBTimeoutSeconds)
	v.SetDefault("circuit_breaker.max_requests_in_half", DefaultCBMaxRequestsInHalf)
	v.SetDefault("circuit_breaker.skip_paths", DefaultCBSkipPaths)
}
