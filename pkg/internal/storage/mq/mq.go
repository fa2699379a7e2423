// Package mq 基于 Watermill 封装任务消息代理，通过工厂注册 nats、redis 与 gochannel 实现.
//
// 使用示例：
//
//	client, err := mq.New(ctx, cfg.MQ, mq.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	msg := message.NewMessage(watermill.NewUUID(), payload)
//	err = client.Publish(ctx, queue.TopicThumbnail, msg)
//
//	ch, err := client.Subscribe(ctx, queue.TopicThumbnail)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sort"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/filevault/pkg/configs"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的类型.
func GetRegisteredMQTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	mqType     configs.MQType
	publisher  message.Publisher
	subscriber message.Subscriber
}

// Options 控制客户端的可选行为.
type Options struct {
	// Registerer 非空时以 watermill prometheus 指标装饰 Publisher/Subscriber.
	Registerer prometheus.Registerer
}

// New 根据配置创建客户端.
func New(ctx context.Context, cfg configs.MQConfig, opts Options) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := NewLoggerAdapter(nlog.Logger())

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	if opts.Registerer != nil {
		builder := metrics.NewPrometheusMetricsBuilder(opts.Registerer, "filevault", "mq")

		if pub, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("MQ 客户端已初始化")

	return &Client{mqType: cfg.Type, publisher: pub, subscriber: sub}, nil
}

// NewFromPubSub 以已有的 Publisher/Subscriber 构造客户端，主要用于测试.
func NewFromPubSub(t configs.MQType, pub message.Publisher, sub message.Subscriber) *Client {
	return &Client{mqType: t, publisher: pub, subscriber: sub}
}

// Type 返回代理类型.
func (c *Client) Type() configs.MQType {
	return c.mqType
}

// Publish 发布消息.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return errors.New("mq publisher not initialized")
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 订阅主题，消息需由调用方 Ack/Nack.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, errors.New("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Close 关闭资源.
func (c *Client) Close() error {
	var errs []error

	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}

	if c.subscriber != nil && any(c.subscriber) != any(c.publisher) {
		errs = append(errs, c.subscriber.Close())
	}

	return errors.Join(errs...)
}
