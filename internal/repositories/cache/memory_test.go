package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestMemoryCache() (*MemoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(time.Minute)
	c.now = clock.Now
	return c, clock
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache()

	type payload struct {
		Code    int64
		Balance decimal.Decimal
	}
	require.NoError(t, c.Set(ctx, "wallet:1:details", payload{Code: 1, Balance: decimal.NewFromInt(50)}, 0))

	var got payload
	found, err := c.Get(ctx, "wallet:1:details", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(1), got.Code)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(50)))

	found, err = c.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_ExpiresLazilyOnRead(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestMemoryCache()

	require.NoError(t, c.Set(ctx, "k", "v", 10*time.Second))
	clock.Advance(9 * time.Second)

	var v string
	found, _ := c.Get(ctx, "k", &v)
	assert.True(t, found)

	clock.Advance(time.Second)
	found, _ = c.Get(ctx, "k", &v)
	assert.False(t, found)
	assert.Equal(t, 0, c.Stats().Size, "expired entry should be evicted on read")
}

func TestMemoryCache_ClearExpired(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestMemoryCache()

	require.NoError(t, c.Set(ctx, "short", 1, time.Second))
	require.NoError(t, c.Set(ctx, "long", 2, time.Hour))
	clock.Advance(2 * time.Second)

	assert.Equal(t, 1, c.ClearExpired())
	assert.Equal(t, []string{"long"}, c.Stats().Keys)
}

func TestMemoryCache_ValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache()

	items := []int{1, 2, 3}
	require.NoError(t, c.Set(ctx, "items", items, 0))
	items[0] = 99

	var got []int
	_, err := c.Get(ctx, "items", &got)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestInvalidateWallet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache()

	keys := []string{
		WalletKey(1),
		WalletDetailsKey(1),
		WalletDetailsKey(12),
		WalletListKey(1, 10, "", "createdAt_desc", "all"),
		LotteryEligibleKey(decimal.NewFromInt(50)),
	}
	for _, k := range keys {
		require.NoError(t, c.Set(ctx, k, true, 0))
	}

	require.NoError(t, InvalidateWallet(ctx, c, 1))

	assert.Equal(t, []string{LotteryEligibleKey(decimal.NewFromInt(50)), WalletDetailsKey(12)}, c.Stats().Keys)
}

func TestInvalidateLottery(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache()

	require.NoError(t, c.Set(ctx, LotteryEligibleKey(decimal.NewFromInt(10)), 1, 0))
	require.NoError(t, c.Set(ctx, LotteryEligibleKey(decimal.NewFromInt(50)), 1, 0))
	require.NoError(t, c.Set(ctx, WalletDetailsKey(3), 1, 0))

	require.NoError(t, InvalidateLottery(ctx, c))
	assert.Equal(t, []string{WalletDetailsKey(3)}, c.Stats().Keys)
}

func TestMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestMemoryCache()

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 1, 0))
	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Stats().Size)
}
