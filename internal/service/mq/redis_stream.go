package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mahd-Mehn/dao-voting/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// streamMaxLen caps each stream; events are notifications, not a ledger.
const streamMaxLen = 10000

// RedisProducer 实现 Producer 接口
type RedisProducer struct {
	client *redis.Client
}

// NewRedisProducer 创建 Redis 生产者
func NewRedisProducer(client *redis.Client) *RedisProducer {
	return &RedisProducer{client: client}
}

// Publish 发送消息到 Redis Stream (XADD, approximate MAXLEN trim)
func (p *RedisProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"key":     key,
			"payload": payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis xadd error: %w", err)
	}
	return nil
}

// Close is a no-op; the client is owned by the caller.
func (p *RedisProducer) Close() error {
	return nil
}

// RedisConsumer 实现 Consumer 接口
type RedisConsumer struct {
	client *redis.Client
	group  string
	name   string
	log    *zap.Logger
}

// NewRedisConsumer 创建 Redis 消费者
func NewRedisConsumer(client *redis.Client, group, name string) *RedisConsumer {
	return &RedisConsumer{
		client: client,
		group:  group,
		name:   name,
		log:    logger.Named("mq.redis"),
	}
}

// Subscribe 订阅 Redis Stream
func (c *RedisConsumer) Subscribe(ctx context.Context, topic string, handler func(msg *Message) error) error {
	// XGROUP CREATE <stream> <group> $ MKSTREAM
	err := c.client.XGroupCreateMkStream(ctx, topic, c.group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}

	c.log.Info("Listening on stream", zap.String("topic", topic), zap.String("group", c.group))

	for {
		if ctx.Err() != nil {
			return nil
		}
		// XREADGROUP GROUP <group> <consumer> BLOCK 2000 COUNT 10 STREAMS <topic> >
		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.name,
			Streams:  []string{topic, ">"},
			Count:    10,
			Block:    2 * time.Second,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue // 超时无消息
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Warn("Read stream failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, xMessage := range stream.Messages {
				c.dispatch(ctx, topic, xMessage, handler)
			}
		}
	}
}

func (c *RedisConsumer) dispatch(ctx context.Context, topic string, xMessage redis.XMessage, handler func(msg *Message) error) {
	payload, ok := xMessage.Values["payload"].(string)
	if !ok {
		c.log.Warn("Dropping message without payload", zap.String("id", xMessage.ID))
		c.ack(ctx, topic, xMessage.ID)
		return
	}
	key, _ := xMessage.Values["key"].(string)

	msg := &Message{
		ID:      xMessage.ID,
		Topic:   topic,
		Key:     key,
		Payload: []byte(payload),
	}
	if err := handler(msg); err != nil {
		// left pending for XCLAIM by another consumer
		c.log.Warn("Handler failed", zap.String("id", xMessage.ID), zap.Error(err))
		return
	}
	c.ack(ctx, topic, xMessage.ID)
}

func (c *RedisConsumer) ack(ctx context.Context, topic, id string) {
	if err := c.client.XAck(ctx, topic, c.group, id).Err(); err != nil {
		c.log.Warn("XACK failed", zap.String("id", id), zap.Error(err))
	}
}

func (c *RedisConsumer) Close() error {
	return c.client.Close()
}
