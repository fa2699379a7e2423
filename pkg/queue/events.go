package queue

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Enqueuer 接收任务消息，可以是进程内 worker 池，也可以是 MQ 发布端.
type Enqueuer interface {
	Enqueue(ctx context.Context, topic string, msg *message.Message) error
}

// EnqueueThumbnailJob 提交缩略图任务.
func EnqueueThumbnailJob(ctx context.Context, q Enqueuer, payload ThumbnailJobPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicThumbnail, payload, opts...)
	if err != nil {
		return err
	}

	return q.Enqueue(ctx, TopicThumbnail, msg)
}

// ParseThumbnailJob 解析缩略图任务.
func ParseThumbnailJob(msg *message.Message) (Message[ThumbnailJobPayload], error) {
	return ParseWatermillMessage[ThumbnailJobPayload](msg)
}

// EnqueueWelcomeJob 提交欢迎任务.
func EnqueueWelcomeJob(ctx context.Context, q Enqueuer, payload WelcomeJobPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicWelcome, payload, opts...)
	if err != nil {
		return err
	}

	return q.Enqueue(ctx, TopicWelcome, msg)
}

// ParseWelcomeJob 解析欢迎任务.
func ParseWelcomeJob(msg *message.Message) (Message[WelcomeJobPayload], error) {
	return ParseWatermillMessage[WelcomeJobPayload](msg)
}
