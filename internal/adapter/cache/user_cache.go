package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-crud-console/internal/domain/user"
)

// UserCache defines the caching operations of the reference API.
// Lookups report a miss as (nil, nil).
type UserCache interface {
	// Get retrieves a user from cache by ID.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	// Delete removes a user from cache by ID.
	Delete(ctx context.Context, id int64) error

	// GetList retrieves the cached result of listing with query.
	GetList(ctx context.Context, query string) ([]domain.User, error)

	// SetList caches the result of listing with query.
	SetList(ctx context.Context, query string, users []domain.User) error

	// InvalidateLists drops every cached list.
	InvalidateLists(ctx context.Context) error
}

const listVersionKey = "users:list:version"

// RedisUserCache implements UserCache using Redis as the backing store.
//
// List keys embed a version number; InvalidateLists bumps it so older lists are never
// read again and expire on their own.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// cacheKey generates a Redis key for a user ID.
func (c *RedisUserCache) cacheKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

func (c *RedisUserCache) listKey(ctx context.Context, query string) (string, error) {
	version, err := c.client.Get(ctx, listVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("users:list:v%d:%s", version, query), nil
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	hit, err := c.getJSON(ctx, c.cacheKey(id), &user)
	if err != nil {
		c.log.Error("failed to get user from cache", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}
	if !hit {
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return &user, nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}

	if err := c.setJSON(ctx, c.cacheKey(user.ID), user); err != nil {
		c.log.Error("failed to set cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes a user from Redis cache.
func (c *RedisUserCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.Int64("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.Int64("user_id", id))
	return nil
}

// GetList retrieves a cached list.
func (c *RedisUserCache) GetList(ctx context.Context, query string) ([]domain.User, error) {
	key, err := c.listKey(ctx, query)
	if err != nil {
		return nil, err
	}

	var users []domain.User
	hit, err := c.getJSON(ctx, key, &users)
	if err != nil {
		c.log.Error("failed to get list from cache", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	if !hit {
		c.log.Debug("list cache miss", zap.String("query", query))
		return nil, nil
	}
	if users == nil {
		users = []domain.User{}
	}

	c.log.Debug("list cache hit", zap.String("query", query), zap.Int("count", len(users)))
	return users, nil
}

// SetList caches a list under the current version.
func (c *RedisUserCache) SetList(ctx context.Context, query string, users []domain.User) error {
	key, err := c.listKey(ctx, query)
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.User{}
	}

	if err := c.setJSON(ctx, key, users); err != nil {
		c.log.Error("failed to cache list", zap.String("query", query), zap.Error(err))
		return err
	}
	return nil
}

// InvalidateLists bumps the list version.
func (c *RedisUserCache) InvalidateLists(ctx context.Context) error {
	version, err := c.client.Incr(ctx, listVersionKey).Result()
	if err != nil {
		c.log.Error("failed to invalidate cached lists", zap.Error(err))
		return err
	}

	c.log.Debug("invalidated cached lists", zap.Int64("version", version))
	return nil
}

func (c *RedisUserCache) getJSON(ctx context.Context, key string, out any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisUserCache) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s for cache: %w", key, err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
