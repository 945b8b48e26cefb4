package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Mahd-Mehn/dao-voting/pkg/config"
	"github.com/Mahd-Mehn/dao-voting/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis 连接到 Redis 并 Ping 一次
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 测试连接
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return rdb, nil
}
