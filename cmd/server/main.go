// Package main is the entry point for the PrizeWallet API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prizewallet/internal/config"
	"prizewallet/internal/handlers"
	"prizewallet/internal/logger"
	"prizewallet/internal/middleware"
	"prizewallet/internal/repositories"
	"prizewallet/internal/repositories/cache"
	"prizewallet/internal/routes"
	"prizewallet/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	deps := routes.Dependencies{
		Config:  cfg,
		Metrics: wallet.NewStatsCollector(),
		Log:     log,
	}

	switch cfg.Store {
	case "memory":
		store := repositories.NewMemoryStore()
		deps.Wallets = store.Wallets()
		deps.Products = store.Products()
		log.Warn("using the in-memory store; data is lost on exit")
	case "postgres":
		db, err := repositories.NewPostgres(cfg.DB)
		if err != nil {
			return err
		}
		defer func() {
			if err := repositories.Close(db); err != nil {
				log.WithError(err).Warn("failed to close database connection")
			}
		}()
		deps.Wallets = repositories.NewWalletRepository(db, cfg.DB.TxMaxRetries)
		deps.Products = repositories.NewProductRepository(db)
		go monitorDB(ctx, db, cfg.StatsEvery, log)
		log.Info("connected to database with connection pooling")
	default:
		return fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	switch cfg.Cache.Driver {
	case "memory":
		mc := cache.NewMemoryCache(cfg.Cache.WalletTTL)
		mc.StartJanitor(ctx, cfg.Cache.SweepInterval)
		deps.Cache = mc
	case "redis":
		client := cache.NewRedisClient(&cache.RedisConfig{
			Host:         cfg.Cache.RedisHost,
			Port:         cfg.Cache.RedisPort,
			Password:     cfg.Cache.RedisPassword,
			DB:           cfg.Cache.RedisDB,
			PoolSize:     cfg.Cache.RedisPoolSize,
			MinIdleConns: cfg.Cache.RedisMinIdle,
			DialTimeout:  cfg.Cache.RedisDialTO,
			ReadTimeout:  cfg.Cache.RedisReadTO,
			WriteTimeout: cfg.Cache.RedisWriteTO,
		})
		rc := cache.NewRedisCache(client, cfg.Cache.Prefix, cfg.Cache.WalletTTL)
		defer func() {
			if err := rc.Close(); err != nil {
				log.WithError(err).Warn("failed to close redis connection")
			}
		}()
		if err := rc.HealthCheck(ctx); err != nil {
			return err
		}
		// Entries written by a previous deployment may not match the
		// current encoding.
		if err := rc.Clear(ctx); err != nil {
			log.WithError(err).Warn("failed to flush cache on startup")
		}
		go monitorRedis(ctx, client, cfg.StatsEvery, log)
		deps.Cache = rc
	default:
		return fmt.Errorf("unknown CACHE_DRIVER %q", cfg.Cache.Driver)
	}

	app := fiber.New(fiber.Config{
		AppName:      "prizewallet",
		ErrorHandler: handlers.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))

	if err := routes.SetupRoutes(app, deps); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	log.WithFields(logrus.Fields{
		"port":  cfg.Port,
		"store": cfg.Store,
		"cache": cfg.Cache.Driver,
	}).Info("server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func monitorDB(ctx context.Context, db *gorm.DB, every time.Duration, log logrus.FieldLogger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Warn("database stats unavailable")
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := sqlDB.Stats()
			log.WithFields(logrus.Fields{
				"open":         stats.OpenConnections,
				"idle":         stats.Idle,
				"inUse":        stats.InUse,
				"waitCount":    stats.WaitCount,
				"waitDuration": stats.WaitDuration.String(),
			}).Debug("db pool stats")
		}
	}
}

func monitorRedis(ctx context.Context, client *redis.Client, every time.Duration, log logrus.FieldLogger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := client.PoolStats()
			log.WithFields(logrus.Fields{
				"hits":       stats.Hits,
				"misses":     stats.Misses,
				"timeouts":   stats.Timeouts,
				"totalConns": stats.TotalConns,
				"idleConns":  stats.IdleConns,
				"staleConns": stats.StaleConns,
			}).Debug("redis pool stats")
		}
	}
}
