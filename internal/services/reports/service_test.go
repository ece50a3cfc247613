package reports

import (
	"context"
	"testing"
	"time"

	apperrors "prizewallet/internal/errors"
	"prizewallet/internal/models"
	"prizewallet/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var brt = time.FixedZone("BRT", -3*60*60)

func sale(productID, name string, price int64, qty int, at time.Time) *models.ProductSale {
	p := decimal.NewFromInt(price)
	return &models.ProductSale{
		TransactionID: "tx-" + productID,
		ProductID:     productID,
		ProductName:   name,
		PriceAtSale:   p,
		Quantity:      qty,
		Subtotal:      p.Mul(decimal.NewFromInt(int64(qty))),
		SoldAt:        at,
	}
}

func newTestStore(t *testing.T, sales ...*models.ProductSale) *repositories.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	recorded := make(map[string]bool)
	for _, s := range sales {
		if recorded[s.TransactionID] {
			continue
		}
		recorded[s.TransactionID] = true
		require.NoError(t, store.Wallets().CreateTransaction(ctx, &models.Transaction{
			ID:          s.TransactionID,
			WalletCode:  1,
			Value:       s.Subtotal,
			Type:        models.TransactionTypeDebit,
			Status:      models.TransactionStatusActive,
			Date:        s.SoldAt,
			HasProducts: true,
		}))
	}
	require.NoError(t, store.Wallets().CreateProductSales(ctx, sales))
	return store
}

func newTestService(t *testing.T, now time.Time, sales ...*models.ProductSale) Service {
	t.Helper()
	store := newTestStore(t, sales...)
	return NewService(store.Products(), brt, WithClock(func() time.Time { return now }))
}

func TestReports_SalesToday(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, brt)
	svc := newTestService(t, now,
		sale("coffee", "Coffee", 4, 2, time.Date(2024, 3, 10, 8, 0, 0, 0, brt)),
		sale("coffee", "Coffee", 4, 1, time.Date(2024, 3, 10, 9, 0, 0, 0, brt)),
		sale("cake", "Cake", 7, 1, time.Date(2024, 3, 10, 0, 30, 0, 0, brt)),
		// 23:30 the day before in Brasilia, already the 10th in UTC
		sale("cake", "Cake", 7, 5, time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC)),
	)

	report, err := svc.SalesToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", report.Date)
	assert.Equal(t, 3, report.Summary.SalesCount)
	assert.Equal(t, 4, report.Summary.TotalQuantity)
	assert.True(t, report.Summary.TotalValue.Equal(decimal.NewFromInt(19)))

	require.Len(t, report.Products, 2)
	assert.Equal(t, "Cake", report.Products[0].ProductName)
	assert.Equal(t, "Coffee", report.Products[1].ProductName)
	assert.Equal(t, 3, report.Products[1].TotalQuantity)
	assert.Len(t, report.Products[1].Sales, 2)
}

func TestReports_SalesByProduct(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, brt)
	svc := newTestService(t, now,
		sale("coffee", "Coffee", 4, 2, now.Add(-48*time.Hour)),
		sale("coffee", "Coffee", 4, 1, now.Add(-time.Hour)),
		sale("cake", "Cake", 7, 1, now),
	)

	report, err := svc.SalesByProduct(context.Background(), "coffee")
	require.NoError(t, err)
	assert.Equal(t, "Coffee", report.ProductName)
	assert.Equal(t, 2, report.Summary.SalesCount)
	assert.Equal(t, 3, report.Summary.TotalQuantity)
	require.Len(t, report.Sales, 2)
	assert.True(t, report.Sales[0].SoldAt.After(report.Sales[1].SoldAt))

	empty, err := svc.SalesByProduct(context.Background(), "tea")
	require.NoError(t, err)
	assert.Empty(t, empty.Sales)
	assert.True(t, empty.Summary.TotalValue.IsZero())
}

func TestReports_SalesByPeriod(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, brt)
	svc := newTestService(t, now,
		sale("coffee", "Coffee", 4, 1, time.Date(2024, 3, 1, 10, 0, 0, 0, brt)),
		sale("coffee", "Coffee", 4, 2, time.Date(2024, 3, 3, 23, 59, 0, 0, brt)),
		sale("cake", "Cake", 7, 1, time.Date(2024, 3, 3, 12, 0, 0, 0, brt)),
		sale("cake", "Cake", 7, 1, time.Date(2024, 3, 4, 0, 0, 0, 0, brt)),
	)

	report, err := svc.SalesByPeriod(context.Background(), "2024-03-01", "2024-03-03")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Summary.SalesCount)
	assert.Equal(t, 2, report.DaysWithSale)
	require.Len(t, report.Days, 2)
	assert.Equal(t, "2024-03-01", report.Days[0].Date)
	assert.Equal(t, "2024-03-03", report.Days[1].Date)
	assert.True(t, report.Days[1].TotalValue.Equal(decimal.NewFromInt(15)))

	t.Run("invalid ranges", func(t *testing.T) {
		_, err := svc.SalesByPeriod(context.Background(), "2024-03-05", "2024-03-01")
		assert.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))

		_, err = svc.SalesByPeriod(context.Background(), "03/01/2024", "2024-03-01")
		assert.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))
	})
}

func TestReports_CancelledDebitIsNotRevenue(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, brt)
	kept := sale("coffee", "Coffee", 4, 1, now.Add(-2*time.Hour))
	refunded := sale("coffee", "Coffee", 4, 3, now.Add(-time.Hour))
	refunded.TransactionID = "tx-refunded"

	store := newTestStore(t, kept, refunded)
	require.NoError(t, store.Wallets().CancelTransaction(context.Background(), refunded.TransactionID, now))
	svc := NewService(store.Products(), brt, WithClock(func() time.Time { return now }))

	byProduct, err := svc.SalesByProduct(context.Background(), "coffee")
	require.NoError(t, err)
	assert.Equal(t, 1, byProduct.Summary.SalesCount)
	assert.Equal(t, 1, byProduct.Summary.TotalQuantity)
	assert.True(t, byProduct.Summary.TotalValue.Equal(decimal.NewFromInt(4)))

	today, err := svc.SalesToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, today.Summary.SalesCount)

	period, err := svc.SalesByPeriod(context.Background(), "2024-03-10", "2024-03-10")
	require.NoError(t, err)
	assert.True(t, period.Summary.TotalValue.Equal(decimal.NewFromInt(4)))
}
