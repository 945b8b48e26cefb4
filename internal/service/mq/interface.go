package mq

import "context"

// Message 代表一条通用的业务消息
type Message struct {
	ID       string            // 消息ID (Redis Stream ID 或 Kafka partition/offset)
	Topic    string            // 主题 (例如 "relay_events_tx_submitted")
	Key      string            // 分区键 (sender address), 同样用于 Kafka Partition
	Payload  []byte            // 消息体 (JSON)
	Metadata map[string]string // 元数据
}

// Producer 生产者接口
type Producer interface {
	// Publish 发送消息
	// key: 用于分区排序 (Partition Key). 传空字符串则随机分区.
	Publish(ctx context.Context, topic string, key string, payload []byte) error

	Close() error
}

// Consumer 消费者接口
type Consumer interface {
	// Subscribe 订阅主题, blocking until ctx is done.
	// handler: 消息处理函数，返回 error 则不确认该消息
	Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error

	// Close 关闭消费者
	Close() error
}

// NopProducer drops every message. Used when events.publisher is "none".
type NopProducer struct{}

func (NopProducer) Publish(context.Context, string, string, []byte) error { return nil }

func (NopProducer) Close() error { return nil }
