package infrastructure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"user-crud-console/internal/config"
	redisclient "user-crud-console/pkg/redis"
)

// NewRedisClient connects to the configured Redis. It returns nil, nil when Redis is
// disabled.
func NewRedisClient(ctx context.Context, cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled {
		l.Info("redis disabled, serving without cache or rate limiting")
		return nil, nil
	}

	rdb, err := redisclient.NewClient(ctx, redisclient.Config{
		Addr:        cfg.Redis.RedisAddr(),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
