// Package routes builds the services and mounts the HTTP API.
package routes

import (
	"fmt"
	"time"

	"prizewallet/internal/config"
	"prizewallet/internal/handlers"
	"prizewallet/internal/repositories"
	"prizewallet/internal/repositories/cache"
	"prizewallet/internal/services/lottery"
	"prizewallet/internal/services/product"
	"prizewallet/internal/services/reports"
	"prizewallet/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const Version = "1.0.0"

// Dependencies are the adapters the API runs on. Metrics is optional; a
// *wallet.StatsCollector is also reported on /health.
type Dependencies struct {
	Config   *config.Config
	Wallets  repositories.WalletRepository
	Products repositories.ProductRepository
	Cache    cache.Cache
	Metrics  wallet.MetricsCollector
	Log      logrus.FieldLogger
}

// SetupRoutes wires the services and registers every route on app.
func SetupRoutes(app *fiber.App, deps Dependencies) error {
	cfg := deps.Config

	entryPrice, err := decimal.NewFromString(cfg.Lottery.EntryPrice)
	if err != nil || !entryPrice.IsPositive() {
		return fmt.Errorf("invalid LOTTERY_ENTRY_PRICE %q", cfg.Lottery.EntryPrice)
	}
	loc, err := time.LoadLocation(cfg.Reports.Timezone)
	if err != nil {
		return fmt.Errorf("invalid REPORTS_TIMEZONE: %w", err)
	}

	productService := product.NewService(deps.Products, deps.Cache, cfg.Cache.ProductTTL, deps.Log)
	walletService := wallet.NewService(
		deps.Wallets,
		deps.Cache,
		productService,
		wallet.Config{
			WalletTTL:         cfg.Cache.WalletTTL,
			ListTTL:           cfg.Cache.ListTTL,
			DefaultEntryPrice: entryPrice,
		},
		deps.Metrics,
		deps.Log,
	)
	lotteryService := lottery.NewService(
		deps.Wallets,
		deps.Cache,
		walletService,
		lottery.Config{EligibleTTL: cfg.Cache.LotteryTTL},
		deps.Log,
	)
	reportsService := reports.NewService(deps.Products, loc)

	stats, _ := deps.Metrics.(*wallet.StatsCollector)
	app.Get("/health", handlers.NewHealthHandler(deps.Wallets, deps.Cache, stats, Version, deps.Log).Check)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the PrizeWallet API",
			"version": Version,
			"docs":    "/api",
		})
	})

	api := app.Group("/api")
	setupWalletRoutes(api, handlers.NewWalletHandler(walletService, deps.Log))
	setupLotteryRoutes(api, handlers.NewLotteryHandler(lotteryService, entryPrice, deps.Log))
	setupProductRoutes(api, handlers.NewProductHandler(productService, deps.Log))
	setupReportRoutes(api, handlers.NewReportsHandler(reportsService, deps.Log))

	return nil
}

func setupWalletRoutes(router fiber.Router, h *handlers.WalletHandler) {
	wallets := router.Group("/wallets")
	wallets.Post("/", h.Register)
	wallets.Get("/", h.List)
	wallets.Get("/:code", h.Get)
	wallets.Delete("/:code", h.Remove)

	// Ledger operations
	wallets.Post("/:code/credit", h.Credit)
	wallets.Post("/:code/debit", h.Debit)
	wallets.Post("/:code/transfer", h.Transfer)
	wallets.Post("/:code/cancel", h.CancelTransaction)
	wallets.Post("/:code/winner", h.MarkAsWinner)
}

func setupLotteryRoutes(router fiber.Router, h *handlers.LotteryHandler) {
	lotteryGroup := router.Group("/lottery")
	lotteryGroup.Post("/draw", h.Draw)
	lotteryGroup.Get("/entries", h.Entries)
}

func setupProductRoutes(router fiber.Router, h *handlers.ProductHandler) {
	products := router.Group("/products")
	products.Post("/", h.Create)
	products.Get("/", h.List)
	products.Get("/active", h.ListActive)
	products.Get("/:id", h.Get)
	products.Patch("/:id", h.Update)
	products.Delete("/:id", h.Deactivate)
	products.Post("/:id/activate", h.Activate)
}

func setupReportRoutes(router fiber.Router, h *handlers.ReportsHandler) {
	sales := router.Group("/reports/sales")
	sales.Get("/today", h.SalesToday)
	sales.Get("/product/:productId", h.SalesByProduct)
	sales.Get("/period", h.SalesByPeriod)
}
