package mq

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/yeisme/filevault/pkg/configs"
)

func init() {
	RegisterFactory(configs.MQTypeGoChannel, goChannelFactory)
}

// goChannelFactory 进程内 Pub/Sub，Publisher 与 Subscriber 为同一实例.
func goChannelFactory(
	_ context.Context,
	cfg configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.GoChannel.OutputChannelBuffer,
		Persistent:          cfg.GoChannel.Persistent,
	}, logger)

	return ch, ch, nil
}
