package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultTokenHeader   = "X-Token"
	DefaultSessionTTL    = 24 * time.Hour
	DefaultSessionPrefix = "auth_"
	DefaultBcryptCost    = 10
)

// AuthConfig 会话令牌与口令哈希配置.
type AuthConfig struct {
	TokenHeader   string        `mapstructure:"token_header"   rule:"required"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"    rule:"gt=0"`
	SessionPrefix string        `mapstructure:"session_prefix"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"    rule:"min=4,max=31"`
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.token_header", DefaultTokenHeader)
	v.SetDefault("auth.session_ttl", DefaultSessionTTL)
	v.SetDefault("auth.session_prefix", DefaultSessionPrefix)
	v.SetDefault("auth.bcrypt_cost", DefaultBcryptCost)
}
