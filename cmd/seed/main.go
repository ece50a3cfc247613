// Command seed loads a sample product catalog and, optionally, a batch of
// demo wallets into the configured Postgres database.
package main

import (
	"context"
	"fmt"

	"prizewallet/internal/config"
	apperrors "prizewallet/internal/errors"
	"prizewallet/internal/logger"
	"prizewallet/internal/repositories"
	"prizewallet/internal/repositories/cache"
	"prizewallet/internal/services/product"
	"prizewallet/internal/services/wallet"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type sampleProduct struct {
	name     string
	category string
	price    string
}

var catalog = []sampleProduct{
	{"Cerveja Lata", "Bebidas", "8.00"},
	{"Refrigerante", "Bebidas", "6.00"},
	{"Água Mineral", "Bebidas", "4.00"},
	{"Espetinho de Carne", "Comidas", "12.00"},
	{"Pastel", "Comidas", "10.00"},
	{"Pipoca", "Comidas", "5.00"},
	{"Bingo Cartela", "Jogos", "15.00"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := repositories.NewPostgres(cfg.DB)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.WithError(err).Warn("failed to close database connection")
		}
	}()

	ctx := context.Background()
	// Seeding bypasses any shared cache; the server flushes on startup.
	c := cache.NewMemoryCache(0)
	products := product.NewService(repositories.NewProductRepository(db), c, 0, log)

	created := 0
	for _, p := range catalog {
		_, err := products.Create(ctx, product.CreateRequest{
			Name:         p.name,
			Category:     p.category,
			CurrentPrice: decimal.RequireFromString(p.price),
		})
		switch {
		case err == nil:
			created++
		case apperrors.KindOf(err) == apperrors.KindConflict:
			log.WithField("product", p.name).Info("product already exists")
		default:
			log.WithError(err).WithField("product", p.name).Fatal("failed to seed product")
		}
	}
	log.WithField("created", created).Info("products seeded")

	n := config.GetIntEnv("SEED_WALLETS", 0)
	if n <= 0 {
		return
	}
	balance, err := decimal.NewFromString(config.GetEnv("SEED_WALLET_BALANCE", "50"))
	if err != nil {
		log.WithError(err).Fatal("invalid SEED_WALLET_BALANCE")
	}

	wallets := wallet.NewService(repositories.NewWalletRepository(db, cfg.DB.TxMaxRetries), c, products, wallet.Config{}, nil, log)
	for code := int64(1); code <= int64(n); code++ {
		_, err := wallets.Create(ctx, wallet.CreateWalletRequest{
			Code:           code,
			User:           wallet.UserInput{Name: fmt.Sprintf("Participant %d", code)},
			InitialBalance: balance,
		})
		if err != nil && apperrors.KindOf(err) != apperrors.KindConflict {
			log.WithError(err).WithField("code", code).Fatal("failed to seed wallet")
		}
	}
	log.WithField("wallets", n).Info("wallets seeded")
}
