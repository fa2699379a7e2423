package configs

import (
	"github.com/spf13/viper"
)

// KVType 键值存储类型.
type KVType string

const (
	KVTypeMemory KVType = "memory"
	KVTypeRedis  KVType = "redis"
	KVTypeNATS   KVType = "nats"
)

// KVConfig 会话缓存使用的键值存储配置.
type KVConfig struct {
	Type  KVType        `mapstructure:"type"  rule:"oneof=memory redis nats"`
	Redis RedisKVConfig `mapstructure:"redis"`
	NATS  NATSKVConfig  `mapstructure:"nats"`
}

// RedisKVConfig Redis KV 配置.
type RedisKVConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

// NATSKVConfig NATS KV 配置.
// NATS KV 只能在桶级别设置 TTL，桶的 TTL 应不小于会话有效期.
type NATSKVConfig struct {
	URL      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Bucket   string `mapstructure:"bucket"   rule:"required"`
}

// GetKVType 返回当前配置的 KV 类型.
func (c *KVConfig) GetKVType() KVType {
	return c.Type
}

// setDefaults 设置 KV 配置的默认值.
func (c *KVConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("kv.type", KVTypeMemory)

	v.SetDefault("kv.redis.addr", "localhost:6379")
	v.SetDefault("kv.redis.password", "")
	v.SetDefault("kv.redis.db", 0)

	v.SetDefault("kv.nats.url", "nats://localhost:4222")
	v.SetDefault("kv.nats.user", "")
	v.SetDefault("kv.nats.password", "")
	v.SetDefault("kv.nats.bucket", "filevault-sessions")
}
