package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeNATS      MQType = "nats"
	MQTypeRedis     MQType = "redis"
	MQTypeGoChannel MQType = "gochannel" // 进程内，仅用于单机与测试

	DefaultMQURL         = "nats://localhost:4222"
	DefaultMaxReconnects = 5                // 默认最大重连次数.
	DefaultReconnectWait = 5                // 默认重连等待时间（秒）.
	DefaultMQClientID    = "filevault-app"  // 默认客户端ID
	DefaultQueueGroup    = "filevault-jobs" // 默认竞争消费组

	DefaultConsumerAckWait    = 30 // 默认消费者确认等待时间 (秒)
	DefaultConsumerMaxDeliver = 3  // 默认消费者最大投递次数
	DefaultChannelBuffer      = 64 // gochannel 输出缓冲
)

// MQConfig 任务队列使用的消息代理配置.
type MQConfig struct {
	Type      MQType            `mapstructure:"type"      rule:"oneof=nats redis gochannel"`
	Common    MQCommonConfig    `mapstructure:"common"`
	NATS      MQNATSConfig      `mapstructure:"nats"`
	Redis     MQRedisConfig     `mapstructure:"redis"`
	GoChannel MQGoChannelConfig `mapstructure:"gochannel"`
}

// MQCommonConfig 通用MQ配置.
type MQCommonConfig struct {
	URL           string `mapstructure:"url"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	ClientID      string `mapstructure:"client_id"`
	QueueGroup    string `mapstructure:"queue_group"`
	MaxReconnects int    `mapstructure:"max_reconnects" rule:"min=0,max=100"`
	ReconnectWait int    `mapstructure:"reconnect_wait" rule:"min=1,max=300"`
}

// MQNATSConfig NATS MQ 配置.
type MQNATSConfig struct {
	JetStreamEnabled       bool   `mapstructure:"jetstream_enabled"`
	JetStreamAutoProvision bool   `mapstructure:"jetstream_auto_provision"`
	JetStreamTrackMsgID    bool   `mapstructure:"jetstream_track_msg_id"`
	JetStreamDurablePrefix string `mapstructure:"jetstream_durable_prefix"`
	ConsumerAckWait        int    `mapstructure:"consumer_ack_wait"`
	ConsumerMaxDeliver     int    `mapstructure:"consumer_max_deliver"`
}

// MQRedisConfig Redis Pub/Sub 配置.
type MQRedisConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

// MQGoChannelConfig 进程内 gochannel 配置.
type MQGoChannelConfig struct {
	OutputChannelBuffer int64 `mapstructure:"output_channel_buffer"`
	Persistent          bool  `mapstructure:"persistent"`
}

// GetMQType 返回当前配置的消息队列类型.
func (c *MQConfig) GetMQType() MQType {
	return c.Type
}

// setDefaults 设置MQ配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeNATS)

	v.SetDefault("mq.common.url", DefaultMQURL)
	v.SetDefault("mq.common.user", "")
	v.SetDefault("mq.common.password", "")
	v.SetDefault("mq.common.client_id", DefaultMQClientID)
	v.SetDefault("mq.common.queue_group", DefaultQueueGroup)
	v.SetDefault("mq.common.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.common.reconnect_wait", DefaultReconnectWait)

	v.SetDefault("mq.nats.jetstream_enabled", true)
	v.SetDefault("mq.nats.jetstream_auto_provision", true)
	v.SetDefault("mq.nats.jetstream_track_msg_id", true)
	v.SetDefault("mq.nats.jetstream_durable_prefix", "filevault-durable")
	v.SetDefault("mq.nats.consumer_ack_wait", DefaultConsumerAckWait)
	v.SetDefault("mq.nats.consumer_max_deliver", DefaultConsumerMaxDeliver)

	v.SetDefault("mq.redis.addr", "localhost:6379")
	v.SetDefault("mq.redis.password", "")
	v.SetDefault("mq.redis.db", 0)

	v.SetDefault("mq.gochannel.output_channel_buffer", DefaultChannelBuffer)
	v.SetDefault("mq.gochannel.persistent", false)
}
