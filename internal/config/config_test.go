package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 60*time.Second, cfg.Cache.WalletTTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.LotteryTTL)
	assert.Equal(t, 3, cfg.DB.TxMaxRetries)
	assert.Equal(t, "10", cfg.Lottery.EntryPrice)
	assert.Equal(t, "America/Sao_Paulo", cfg.Reports.Timezone)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("CACHE_WALLET_TTL", "2m")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_TX_MAX_RETRIES", "5")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 2*time.Minute, cfg.Cache.WalletTTL)
	assert.Equal(t, 5, cfg.DB.TxMaxRetries)
	assert.True(t, cfg.IsProduction())
	assert.Contains(t, cfg.DB.DSN(), "host=db.internal")
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("CACHE_LIST_TTL", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SEED_TEST_VALUE", "42")

	assert.Equal(t, "42", GetEnv("SEED_TEST_VALUE", "x"))
	assert.Equal(t, "x", GetEnv("SEED_TEST_MISSING", "x"))
	assert.Equal(t, 42, GetIntEnv("SEED_TEST_VALUE", 0))
	assert.Equal(t, 7, GetIntEnv("SEED_TEST_MISSING", 7))
}
