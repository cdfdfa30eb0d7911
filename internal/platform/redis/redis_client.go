package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"blog_backend/internal/platform/config"
)

// NewRedisClient connects to Redis and verifies the connection with PING.
// It returns (nil, nil) when no host is configured so callers can run without a cache.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, l *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled() {
		l.Info("Redis not configured, post cache disabled")
		return nil, nil
	}

	addr := cfg.Address()
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		l.Error("Redis connection failed", zap.String("address", addr), zap.Error(err))
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	l.Info("Redis connection successful", zap.String("address", addr))
	return rdb, nil
}
