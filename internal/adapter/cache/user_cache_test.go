package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-crud-console/internal/domain/user"
)

// setupTestCache creates a cache on a miniredis instance
func setupTestCache(t *testing.T) (*RedisUserCache, *redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t)), client, mr
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:       1,
		Name:     "Leanne Graham",
		Username: "Bret",
		Email:    "Sincere@april.biz",
		Phone:    "1-770-736-8031 x56442",
		Address:  domain.Address{Street: "Kulas Light", Suite: "Apt. 556", City: "Gwenborough", Zipcode: "92998-3874"},
		Website:  "hildegard.org",
	}
}

func TestRedisUserCache_SetStoresJSONWithTTL(t *testing.T) {
	cache, client, mr := setupTestCache(t)
	user := sampleUser()

	require.NoError(t, cache.Set(context.Background(), user))

	data, err := client.Get(context.Background(), "user:1").Bytes()
	require.NoError(t, err)
	var cached domain.User
	require.NoError(t, json.Unmarshal(data, &cached))
	assert.Equal(t, *user, cached)
	assert.Equal(t, 5*time.Minute, mr.TTL("user:1"))
}

func TestRedisUserCache_SetNil(t *testing.T) {
	cache, _, _ := setupTestCache(t)

	err := cache.Set(context.Background(), nil)

	assert.ErrorContains(t, err, "cannot cache nil user")
}

func TestRedisUserCache_GetHitMissAndDelete(t *testing.T) {
	cache, _, _ := setupTestCache(t)
	ctx := context.Background()

	miss, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, cache.Set(ctx, sampleUser()))
	hit, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sampleUser(), hit)

	require.NoError(t, cache.Delete(ctx, 1))
	gone, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRedisUserCache_GetCorruptedEntry(t *testing.T) {
	cache, _, mr := setupTestCache(t)
	require.NoError(t, mr.Set("user:1", "{not json"))

	_, err := cache.Get(context.Background(), 1)

	assert.Error(t, err)
}

func TestRedisUserCache_ExpiredEntryIsAMiss(t *testing.T) {
	cache, _, mr := setupTestCache(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, sampleUser()))

	mr.FastForward(6 * time.Minute)

	got, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_Lists(t *testing.T) {
	cache, _, _ := setupTestCache(t)
	ctx := context.Background()

	miss, err := cache.GetList(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, miss)

	all := []domain.User{*sampleUser(), {ID: 2, Name: "Ervin Howell"}}
	require.NoError(t, cache.SetList(ctx, "", all))
	require.NoError(t, cache.SetList(ctx, "zzz", nil))

	got, err := cache.GetList(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, all, got)

	empty, err := cache.GetList(ctx, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, empty, "a cached empty result is a hit")
	assert.Empty(t, empty)

	require.NoError(t, cache.InvalidateLists(ctx))

	after, err := cache.GetList(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, after)
}

func TestRedisUserCache_RedisDown(t *testing.T) {
	cache, _, mr := setupTestCache(t)
	mr.Close()
	ctx := context.Background()

	_, err := cache.Get(ctx, 1)
	assert.Error(t, err)
	_, err = cache.GetList(ctx, "")
	assert.Error(t, err)
	assert.Error(t, cache.InvalidateLists(ctx))
}
