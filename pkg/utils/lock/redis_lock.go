package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned by AcquireWait when ctx ends before the lock
// is free.
var ErrNotAcquired = errors.New("lock not acquired")

// DistributedLock 定义分布式锁接口
type DistributedLock interface {
	// Acquire 尝试获取锁 (non-blocking)
	// key: 锁的唯一标识
	// ttl: 锁的过期时间
	// 返回: (是否成功, error)
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release 释放锁
	Release(ctx context.Context, key string) error
}

// AcquireWait polls l every interval until the lock is taken or ctx ends.
func AcquireWait(ctx context.Context, l DistributedLock, key string, ttl, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		ok, err := l.Acquire(ctx, key, ttl)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ErrNotAcquired
		case <-ticker.C:
		}
	}
}

// releaseScript 只删除属于自己的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock 基于 Redis SET NX 的实现. Each acquisition stores a random
// token so Release never deletes a lock that expired and was re-taken by
// another replica.
type RedisLock struct {
	client *redis.Client
	tokens sync.Map // key -> token
}

func NewRedisLock(client *redis.Client) *RedisLock {
	return &RedisLock{client: client}
}

func redisKey(key string) string {
	return "lock:" + key
}

func (l *RedisLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token, err := newToken()
	if err != nil {
		return false, err
	}
	// SET key token NX PX ttl
	success, err := l.client.SetNX(ctx, redisKey(key), token, ttl).Result()
	if err != nil {
		return false, err
	}
	if success {
		l.tokens.Store(key, token)
	}
	return success, nil
}

func (l *RedisLock) Release(ctx context.Context, key string) error {
	token, ok := l.tokens.LoadAndDelete(key)
	if !ok {
		return nil
	}
	return releaseScript.Run(ctx, l.client, []string{redisKey(key)}, token).Err()
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
