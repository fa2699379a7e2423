package worker

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Publisher 是 mq.Client 的发布能力.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// Subscriber 是 mq.Client 的订阅能力.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// BrokerQueue 把任务发布到消息代理，由 worker 进程消费.
type BrokerQueue struct {
	pub Publisher
}

// NewBrokerQueue 创建 BrokerQueue.
func NewBrokerQueue(pub Publisher) *BrokerQueue {
	return &BrokerQueue{pub: pub}
}

// Enqueue 发布任务消息.
func (q *BrokerQueue) Enqueue(ctx context.Context, topic string, msg *message.Message) error {
	return q.pub.Publish(ctx, topic, msg)
}
