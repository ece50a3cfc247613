package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port        string        `env:"PORT" envDefault:"3000"`
	Env         string        `env:"ENV" envDefault:"development"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string        `env:"LOG_FORMAT" envDefault:"text"`
	CORSOrigins string        `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`
	Store       string        `env:"STORE" envDefault:"postgres"`
	StatsEvery  time.Duration `env:"STATS_INTERVAL" envDefault:"1m"`
	DB          DBConfig      `envPrefix:"DB_"`
	Cache       CacheConfig
	Lottery     LotteryConfig
	Reports     ReportsConfig
}

type DBConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            string        `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER" envDefault:"postgres"`
	Password        string        `env:"PASSWORD" envDefault:"postgres"`
	Name            string        `env:"NAME" envDefault:"prizewallet"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"30m"`
	TxMaxRetries    int           `env:"TX_MAX_RETRIES" envDefault:"3"`
}

// DSN returns the Postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

type CacheConfig struct {
	Driver        string        `env:"CACHE_DRIVER" envDefault:"memory"`
	Prefix        string        `env:"CACHE_PREFIX" envDefault:"prizewallet:"`
	WalletTTL     time.Duration `env:"CACHE_WALLET_TTL" envDefault:"60s"`
	ListTTL       time.Duration `env:"CACHE_LIST_TTL" envDefault:"30s"`
	LotteryTTL    time.Duration `env:"CACHE_LOTTERY_TTL" envDefault:"30s"`
	ProductTTL    time.Duration `env:"CACHE_PRODUCT_TTL" envDefault:"10m"`
	SweepInterval time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"5m"`
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string        `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisPoolSize int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RedisMinIdle  int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"5"`
	RedisDialTO   time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	RedisReadTO   time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	RedisWriteTO  time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type LotteryConfig struct {
	// EntryPrice is the default credit per entry used by wallet listings.
	EntryPrice string `env:"LOTTERY_ENTRY_PRICE" envDefault:"10"`
}

type ReportsConfig struct {
	// Timezone decides where a reporting day starts and ends.
	Timezone string `env:"REPORTS_TIMEZONE" envDefault:"America/Sao_Paulo"`
}

// Load reads .env if present and parses the environment.
func Load() (*Config, error) {
	LoadEnv()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
