package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-crud-console/cmd/userapi/infrastructure"
	"user-crud-console/internal/adapter/cache"
	"user-crud-console/internal/adapter/db/gormrepo"
	ginhandler "user-crud-console/internal/adapter/gin/handler"
	"user-crud-console/internal/adapter/gin/middleware"
	"user-crud-console/internal/adapter/repository/cached"
	"user-crud-console/internal/config"
	"user-crud-console/internal/usecase/user"
	redisclient "user-crud-console/pkg/redis"
)

// Container holds all dependencies of the reference user API
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (_ *Container, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}
	defer func() {
		if err != nil {
			err = multierr.Append(err, c.Close())
		}
	}()

	c.DB, err = infrastructure.NewDatabase(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c.RedisClient, err = infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	dbRepo := gormrepo.NewUserRepo(c.DB, l)
	if cfg.DB.SeedDemoUsers {
		if err = infrastructure.SeedIfEmpty(ctx, dbRepo, l); err != nil {
			return nil, err
		}
	}

	// an untyped nil keeps the cached repository in pass-through mode
	var userCache cache.UserCache
	if c.RedisClient != nil {
		userCache = cache.NewRedisUserCache(
			c.RedisClient.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		c.RateLimiter = middleware.NewRateLimiter(
			c.RedisClient.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			l,
		)
	}
	repo := cached.NewUserRepository(dbRepo, userCache, l)

	c.UserUC = user.New(repo, l)
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var err error

	if c.RedisClient != nil {
		err = multierr.Append(err, c.RedisClient.Close())
	}
	if c.DB != nil {
		err = multierr.Append(err, infrastructure.CloseDatabase(c.DB))
	}

	return err
}
