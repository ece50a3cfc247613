package handlers

import (
	"context"
	"time"

	"prizewallet/internal/repositories/cache"
	"prizewallet/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type cacheHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type cacheStatser interface {
	Stats() cache.Stats
}

type HealthHandler struct {
	store   Pinger
	cache   cache.Cache
	stats   *wallet.StatsCollector
	version string
	log     logrus.FieldLogger
}

// NewHealthHandler builds the health endpoint. stats may be nil.
func NewHealthHandler(store Pinger, c cache.Cache, stats *wallet.StatsCollector, version string, log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		cache:   c,
		stats:   stats,
		version: version,
		log:     log.WithField("handler", "health"),
	}
}

// Check answers 503 when the store is down. A failing cache only degrades
// the status since every read falls back to the store.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	status := "ok"
	code := fiber.StatusOK
	services := fiber.Map{"database": "connected", "cache": "connected"}

	if err := h.store.Ping(ctx); err != nil {
		h.log.WithError(err).Error("store ping failed")
		services["database"] = "unreachable"
		status = "unavailable"
		code = fiber.StatusServiceUnavailable
	}
	if hc, ok := h.cache.(cacheHealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			h.log.WithError(err).Warn("cache ping failed")
			services["cache"] = "unreachable"
			if code == fiber.StatusOK {
				status = "degraded"
			}
		}
	}

	body := fiber.Map{
		"status":   status,
		"version":  h.version,
		"services": services,
	}
	if s, ok := h.cache.(cacheStatser); ok {
		body["cache_stats"] = s.Stats()
	}
	if h.stats != nil {
		body["ledger_stats"] = h.stats.Snapshot()
	}
	return c.Status(code).JSON(body)
}
