package di

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-crud-console/internal/adapter/db/gormrepo"
	"user-crud-console/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.API.BaseURL = "http://localhost:8080"
	cfg.API.TimeoutSeconds = 5
	cfg.API.DeletePolicy = config.DeletePolicyUnconditional
	cfg.DB.Driver = "sqlite"
	cfg.DB.SQLitePath = ":memory:"
	cfg.DB.MaxIdleConns = 1
	cfg.DB.SeedDemoUsers = true
	cfg.Redis.CacheTTL = 60
	cfg.RateLimit.RequestsPerSecond = 10
	cfg.RateLimit.BurstCapacity = 20
	cfg.App.ShutdownTimeoutSeconds = 1
	cfg.Logger.Level = "error"
	return cfg
}

func TestNewContainer_SQLiteWithoutRedis(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Nil(t, c.RedisClient)
	assert.Nil(t, c.RateLimiter)

	users, err := c.UserUC.ListUsers(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, users, len(gormrepo.DemoUsers))
}

func TestNewContainer_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Host, cfg.Redis.Port = mr.Host(), mr.Port()
	cfg.RateLimit.Enabled = true

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NotNil(t, c.RedisClient)
	assert.NotNil(t, c.RateLimiter)

	_, err = c.UserUC.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists("user:1"))
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.DB.Driver = "mysql"

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))

	assert.Nil(t, c)
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestNewContainer_RedisDownClosesDatabase(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Host, cfg.Redis.Port = mr.Host(), mr.Port()
	mr.Close()

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))

	assert.Nil(t, c)
	assert.ErrorContains(t, err, "failed to initialize Redis")
}
