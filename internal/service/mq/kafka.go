package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/Mahd-Mehn/dao-voting/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaProducer 实现 Producer 接口
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer 创建 Kafka 生产者
// brokers: Kafka 节点地址列表 (e.g. ["localhost:9092"])
// topic: 默认主题
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // 按 sender 哈希，同一发送者的事件有序
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &KafkaProducer{writer: writer}
}

// Publish 发送消息到 Kafka. topic must match the writer's topic.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	if topic != p.writer.Topic {
		return fmt.Errorf("kafka producer is bound to topic %q, got %q", p.writer.Topic, topic)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write error: %w", err)
	}
	return nil
}

// Close 关闭连接
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// KafkaConsumer 实现 Consumer 接口
type KafkaConsumer struct {
	brokers []string
	groupID string
	reader  *kafka.Reader
	log     *zap.Logger
}

// NewKafkaConsumer 创建 Kafka 消费者
func NewKafkaConsumer(brokers []string, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		brokers: brokers,
		groupID: groupID,
		log:     logger.Named("mq.kafka"),
	}
}

// Subscribe 订阅 Kafka 主题
func (c *KafkaConsumer) Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error {
	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.brokers,
		GroupID:     c.groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		StartOffset: kafka.LastOffset,
	})

	c.log.Info("Listening on topic", zap.String("topic", topic), zap.String("group", c.groupID))

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Warn("Fetch message failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		msg := &Message{
			ID:      fmt.Sprintf("%d/%d", m.Partition, m.Offset),
			Topic:   topic,
			Key:     string(m.Key),
			Payload: m.Value,
		}
		if err := handler(msg); err != nil {
			// Kafka 不支持单条 Nack; the offset is committed anyway
			c.log.Warn("Handler failed", zap.String("id", msg.ID), zap.Error(err))
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.log.Warn("Commit offset failed", zap.Error(err))
		}
	}
}

// Close 关闭消费者
func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
