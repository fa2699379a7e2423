package configs

import "github.com/spf13/viper"

const (
	// 默认限流配置，上传单独限流.
	DefaultRateLimitEnabled     = false
	DefaultRateLimitRPS         = 50.0
	DefaultRateLimitBurst       = 100
	DefaultRateLimitKey         = "token"
	DefaultRateLimitUploadRPS   = 2.0
	DefaultRateLimitUploadBurst = 10
)

// RateLimitConfig 限流配置.
//
// Key 选择限流维度：global、ip、token（按会话令牌，未登录时按 IP）、header:Header-Name.
// UploadRPS 大于 0 时 POST /files 额外按同一维度限流.
type RateLimitConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	RPS         float64 `mapstructure:"rps"          rule:"gte=0"`
	Burst       int     `mapstructure:"burst"        rule:"gte=0"`
	Key         string  `mapstructure:"key"`
	UploadRPS   float64 `mapstructure:"upload_rps"   rule:"gte=0"`
	UploadBurst int     `mapstructure:"upload_burst" rule:"gte=0"`
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", DefaultRateLimitEnabled)
	v.SetDefault("rate_limit.rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit.key", DefaultRateLimitKey)
	v.SetDefault("rate_limit.upload_rps", DefaultRateLimitUploadRPS)
	v.SetDefault("rate_limit.upload_burst", DefaultRateLimitUploadBurst)
}
