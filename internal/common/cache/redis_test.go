package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/config"
)

func setupMiniRedis(t *testing.T) *miniredis.Miniredis {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func setupStore(t *testing.T, s *miniredis.Miniredis) *Store {
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client)
}

// ==================== Init 测试 ====================

func TestInit_Success(t *testing.T) {
	s := setupMiniRedis(t)

	client, err := Init(&config.RedisConfig{
		Host:     s.Host(),
		Port:     s.Server().Addr().Port,
		PoolSize: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = Close()
		rdb = nil
	})
	assert.Equal(t, client, GetClient())
}

func TestInit_ConnectionRefused(t *testing.T) {
	_, err := Init(&config.RedisConfig{Host: "127.0.0.1", Port: 1, DialTimeout: 1})
	assert.Error(t, err)
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "hotel:rooms:browse:all", BuildKey(KeyPrefixRoomBrowse, "all"))
	assert.Equal(t, "hotel:ratelimit:booking:10.0.0.1", BuildKey(KeyPrefixRateLimit, "booking", "10.0.0.1"))
}

// ==================== Store 测试 ====================

type cachedRoom struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestStore_JSONRoundTrip(t *testing.T) {
	s := setupMiniRedis(t)
	store := setupStore(t, s)
	ctx := context.Background()

	var got []cachedRoom
	hit, err := store.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, store.SetJSON(ctx, "k", []cachedRoom{{ID: 1, Name: "101"}}, time.Minute))
	hit, err = store.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []cachedRoom{{ID: 1, Name: "101"}}, got)

	s.FastForward(2 * time.Minute)
	hit, err = store.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStore_DeletePrefix(t *testing.T) {
	s := setupMiniRedis(t)
	store := setupStore(t, s)
	ctx := context.Background()

	require.NoError(t, store.SetJSON(ctx, KeyPrefixRoomBrowse+"a", 1, 0))
	require.NoError(t, store.SetJSON(ctx, KeyPrefixRoomBrowse+"b", 2, 0))
	require.NoError(t, store.SetJSON(ctx, "other", 3, 0))

	require.NoError(t, store.DeletePrefix(ctx, KeyPrefixRoomBrowse))
	assert.False(t, s.Exists(KeyPrefixRoomBrowse+"a"))
	assert.False(t, s.Exists(KeyPrefixRoomBrowse+"b"))
	assert.True(t, s.Exists("other"))
}

func TestStore_IncrWindow(t *testing.T) {
	s := setupMiniRedis(t)
	store := setupStore(t, s)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := store.IncrWindow(ctx, "rl", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	assert.Equal(t, time.Minute, s.TTL("rl"))

	s.FastForward(time.Minute + time.Second)
	n, err := store.IncrWindow(ctx, "rl", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_Disabled(t *testing.T) {
	var store *Store
	ctx := context.Background()

	assert.False(t, store.Enabled())
	hit, err := store.GetJSON(ctx, "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, store.SetJSON(ctx, "k", 1, time.Minute))
	assert.NoError(t, store.DeletePrefix(ctx, "k"))
	n, err := store.IncrWindow(ctx, "k", time.Minute)
	assert.NoError(t, err)
	assert.Zero(t, n)

	assert.False(t, NewStore(nil).Enabled())
}
