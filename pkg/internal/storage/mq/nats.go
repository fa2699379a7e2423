package mq

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/yeisme/filevault/pkg/configs"
)

const (
	DefaultDrainTimeout   = 30 * time.Second
	DefaultFlusherTimeout = 10 * time.Second
)

func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

// buildNatsOptions 构建 NATS 连接选项.
func buildNatsOptions(cfg configs.MQConfig) []nc.Option {
	opts := []nc.Option{
		nc.Name(cfg.Common.ClientID),
		nc.MaxReconnects(cfg.Common.MaxReconnects),
		nc.ReconnectWait(time.Duration(cfg.Common.ReconnectWait) * time.Second),
		nc.DrainTimeout(DefaultDrainTimeout),
		nc.FlusherTimeout(DefaultFlusherTimeout),
		nc.RetryOnFailedConnect(true),
	}

	if cfg.Common.User != "" {
		opts = append(opts, nc.UserInfo(cfg.Common.User, cfg.Common.Password))
	}

	return opts
}

// buildJetStreamConfig 构建 JetStream 配置，消费者的投递上限即任务的重试上限.
func buildJetStreamConfig(cfg configs.MQConfig) nats.JetStreamConfig {
	js := cfg.NATS
	jsCfg := nats.JetStreamConfig{Disabled: !js.JetStreamEnabled}

	if !js.JetStreamEnabled {
		return jsCfg
	}

	jsCfg.AutoProvision = js.JetStreamAutoProvision
	jsCfg.TrackMsgId = js.JetStreamTrackMsgID
	jsCfg.DurablePrefix = js.JetStreamDurablePrefix
	jsCfg.SubscribeOptions = []nc.SubOpt{
		nc.ManualAck(),
		nc.AckWait(time.Duration(js.ConsumerAckWait) * time.Second),
		nc.MaxDeliver(js.ConsumerMaxDeliver),
	}

	return jsCfg
}

// natsFactory 创建 NATS Publisher & Subscriber，订阅端使用队列组实现多 worker 进程竞争消费.
func natsFactory(
	_ context.Context,
	cfg configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	opts := buildNatsOptions(cfg)
	jsCfg := buildJetStreamConfig(cfg)
	marshaler := &nats.JSONMarshaler{}

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         cfg.Common.URL,
		NatsOptions: opts,
		JetStream:   jsCfg,
		Marshaler:   marshaler,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:              cfg.Common.URL,
		NatsOptions:      opts,
		JetStream:        jsCfg,
		Unmarshaler:      marshaler,
		QueueGroupPrefix: cfg.Common.QueueGroup,
		AckWaitTimeout:   time.Duration(cfg.NATS.ConsumerAckWait) * time.Second,
	}, logger)
	if err != nil {
		_ = pub.Close()

		return nil, nil, err
	}

	logger.Info("NATS 消息代理已连接", watermill.LogFields{
		"url":         cfg.Common.URL,
		"jetstream":   cfg.NATS.JetStreamEnabled,
		"queue_group": cfg.Common.QueueGroup,
	})

	return pub, sub, nil
}
