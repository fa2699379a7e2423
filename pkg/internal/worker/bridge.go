package worker

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Bridge 订阅主题并把消息转入工作池，Ack/Nack 由工作池在任务结束后完成.
// 订阅在 ctx 结束时停止.
func Bridge(ctx context.Context, sub Subscriber, pool *Pool, topics ...string) error {
	for _, topic := range topics {
		ch, err := sub.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}

		go forward(ctx, topic, ch, pool)
	}

	return nil
}

func forward(ctx context.Context, topic string, ch <-chan *message.Message, pool *Pool) {
	for msg := range ch {
		if err := pool.Enqueue(ctx, topic, msg); err != nil {
			pool.logger.Warn().Err(err).Str("topic", topic).Str("msg_id", msg.UUID).Msg("bridge enqueue failed")
			msg.Nack()
		}
	}
}
