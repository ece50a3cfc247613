package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, "pw:", time.Minute), mr
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	require.NoError(t, c.Set(ctx, "wallet:7", map[string]int{"balance": 10}, 0))
	assert.True(t, mr.Exists("pw:wallet:7"))

	var got map[string]int
	found, err := c.Get(ctx, "wallet:7", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 10, got["balance"])

	require.NoError(t, c.Delete(ctx, "wallet:7"))
	found, err = c.Get(ctx, "wallet:7", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	require.NoError(t, c.Set(ctx, "k", 1, 5*time.Second))
	mr.FastForward(6 * time.Second)

	var v int
	found, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_InvalidateWallet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	require.NoError(t, c.Set(ctx, WalletKey(1), 1, 0))
	require.NoError(t, c.Set(ctx, WalletDetailsKey(1), 1, 0))
	require.NoError(t, c.Set(ctx, WalletDetailsKey(12), 1, 0))
	require.NoError(t, c.Set(ctx, WalletListKey(1, 10, "a*b"), 1, 0))
	require.NoError(t, mr.Set("other:key", "x"))

	require.NoError(t, InvalidateWallet(ctx, c, 1))

	assert.False(t, mr.Exists("pw:"+WalletKey(1)))
	assert.False(t, mr.Exists("pw:"+WalletDetailsKey(1)))
	assert.False(t, mr.Exists("pw:"+WalletListKey(1, 10, "a*b")))
	assert.True(t, mr.Exists("pw:"+WalletDetailsKey(12)))
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisCache_ClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, mr.Set("other:key", "x"))

	require.NoError(t, c.Clear(ctx))
	assert.False(t, mr.Exists("pw:a"))
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisCache_HealthCheck(t *testing.T) {
	c, mr := newTestRedisCache(t)
	require.NoError(t, c.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, c.HealthCheck(context.Background()))
}
