package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// ThumbnailJobPayload 缩略图任务负载.
// 字段允许为空，消费者负责校验.
type ThumbnailJobPayload struct {
	FileID string `json:"fileId,omitempty"`
	UserID string `json:"userId,omitempty"`
}

// WelcomeJobPayload 欢迎任务负载.
type WelcomeJobPayload struct {
	UserID string `json:"userId,omitempty"`
}
