package mq

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/yeisme/filevault/pkg/configs"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// DefaultChannelBufferSize 默认通道缓冲区大小.
const DefaultChannelBufferSize = 100

// redisEnvelope Redis Pub/Sub 上传输的消息，保留 UUID 与元数据.
type redisEnvelope struct {
	UUID     string            `json:"uuid"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Payload  []byte            `json:"payload"`
}

// RedisPublisher Redis Publisher 实现.
type RedisPublisher struct {
	client *redis.Client
}

// RedisSubscriber Redis Subscriber 实现.
// Pub/Sub 不保存消息，也无法重投，Nack 只记录日志.
type RedisSubscriber struct {
	client  *redis.Client
	mu      sync.Mutex
	subs    []*redis.PubSub
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

// redisFactory 创建 Redis Publisher & Subscriber.
func redisFactory(
	ctx context.Context,
	cfg configs.MQConfig,
	_ watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	pubClient := redis.NewClient(opts)
	if err := pubClient.Ping(ctx).Err(); err != nil {
		_ = pubClient.Close()

		return nil, nil, err
	}

	return &RedisPublisher{client: pubClient},
		&RedisSubscriber{client: redis.NewClient(opts), closeCh: make(chan struct{})},
		nil
}

// Publish 实现 Publisher 接口.
func (p *RedisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		data, err := sonic.Marshal(redisEnvelope{UUID: msg.UUID, Metadata: msg.Metadata, Payload: msg.Payload})
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}

		ctx := msg.Context()
		if err := p.client.Publish(ctx, topic, data).Err(); err != nil {
			return err
		}
	}

	return nil
}

// Close 实现 Publisher 接口.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Subscribe 实现 Subscriber 接口，每个主题一个独立的 PubSub.
func (s *RedisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("redis subscriber closed")
	}

	ps := s.client.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()

		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	s.subs = append(s.subs, ps)
	out := make(chan *message.Message, DefaultChannelBufferSize)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer close(out)

		in := ps.Channel()

		for {
			select {
			case <-s.closeCh:
				return
			case <-ctx.Done():
				return
			case raw, ok := <-in:
				if !ok {
					return
				}

				msg := decodeRedisMessage(raw.Payload)

				select {
				case out <- msg:
					go watchAck(topic, msg)
				case <-s.closeCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func decodeRedisMessage(raw string) *message.Message {
	var env redisEnvelope
	if err := sonic.UnmarshalString(raw, &env); err != nil || env.UUID == "" {
		return message.NewMessage(watermill.NewUUID(), []byte(raw))
	}

	msg := message.NewMessage(env.UUID, env.Payload)
	for k, v := range env.Metadata {
		msg.Metadata.Set(k, v)
	}

	return msg
}

func watchAck(topic string, msg *message.Message) {
	select {
	case <-msg.Acked():
	case <-msg.Nacked():
		nlog.Logger().Warn().Str("topic", topic).Str("uuid", msg.UUID).
			Msg("redis pub/sub 不支持重投，消息已丢弃")
	}
}

// Close 实现 Subscriber 接口.
func (s *RedisSubscriber) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	close(s.closeCh)

	for _, ps := range s.subs {
		_ = ps.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()

	return s.client.Close()
}
