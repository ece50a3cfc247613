package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"prizewallet/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWallet(t *testing.T, repo WalletRepository, code int64, name string, credit int64) *models.Wallet {
	t.Helper()
	ctx := context.Background()

	var w *models.Wallet
	err := repo.ExecuteInTransaction(ctx, func(tx WalletRepository) error {
		user := &models.User{Name: name}
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		w = &models.Wallet{
			Code:        code,
			Balance:     decimal.NewFromInt(credit),
			TotalCredit: decimal.NewFromInt(credit),
			UserID:      user.ID,
		}
		return tx.CreateWallet(ctx, w)
	})
	require.NoError(t, err)
	return w
}

func TestMemoryExecuteInTransactionRollsBack(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Wallets()
	ctx := context.Background()
	seedWallet(t, repo, 1, "Ana", 10)

	boom := errors.New("boom")
	err := repo.ExecuteInTransaction(ctx, func(tx WalletRepository) error {
		w, err := tx.GetByCode(ctx, 1)
		require.NoError(t, err)
		w.Balance = decimal.NewFromInt(999)
		require.NoError(t, tx.UpdateWallet(ctx, w))
		require.NoError(t, tx.CreateTransaction(ctx, &models.Transaction{
			ID:         uuid.NewString(),
			WalletCode: 1,
			Value:      decimal.NewFromInt(989),
			Type:       models.TransactionTypeCredit,
			Status:     models.TransactionStatusActive,
		}))

		// Reads inside the section see its own writes.
		again, err := tx.GetByCode(ctx, 1)
		require.NoError(t, err)
		assert.True(t, again.Balance.Equal(decimal.NewFromInt(999)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	w, err := repo.GetByCode(ctx, 1)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 0, store.Counts().Transactions)
}

func TestMemoryDuplicateWalletLeavesNoOrphanUser(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Wallets()
	seedWallet(t, repo, 1, "Ana", 0)

	ctx := context.Background()
	err := repo.ExecuteInTransaction(ctx, func(tx WalletRepository) error {
		user := &models.User{Name: "Bia"}
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.CreateWallet(ctx, &models.Wallet{Code: 1, UserID: user.ID})
	})
	assert.ErrorIs(t, err, ErrDuplicateWallet)

	counts := store.Counts()
	assert.Equal(t, 1, counts.Users)
	assert.Equal(t, 1, counts.Wallets)
}

func TestMemoryCancelTransactionOnlyOnce(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Wallets()
	ctx := context.Background()
	seedWallet(t, repo, 1, "Ana", 0)

	tx := &models.Transaction{
		ID:         uuid.NewString(),
		WalletCode: 1,
		Value:      decimal.NewFromInt(5),
		Type:       models.TransactionTypeCredit,
		Status:     models.TransactionStatusActive,
	}
	require.NoError(t, repo.CreateTransaction(ctx, tx))

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CancelTransaction(ctx, tx.ID, at))
	assert.ErrorIs(t, repo.CancelTransaction(ctx, tx.ID, at), ErrTransactionNotActive)
	assert.ErrorIs(t, repo.CancelTransaction(ctx, "missing", at), ErrTransactionNotFound)

	got, err := repo.GetTransactionByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)
	assert.True(t, got.CancelledAt.Equal(at))
}

func TestMemoryHistoryNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Wallets()
	ctx := context.Background()
	seedWallet(t, repo, 1, "Ana", 0)

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		tx := &models.Transaction{
			ID:         uuid.NewString(),
			WalletCode: 1,
			Value:      decimal.NewFromInt(int64(i + 1)),
			Type:       models.TransactionTypeCredit,
			Status:     models.TransactionStatusActive,
			Date:       at,
		}
		require.NoError(t, repo.CreateTransaction(ctx, tx))
		ids = append(ids, tx.ID)
	}

	history, err := repo.GetTransactionHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{history[0].ID, history[1].ID, history[2].ID})
	assert.Greater(t, history[0].Seq, history[1].Seq)
	assert.Greater(t, history[1].Seq, history[2].Seq)
}

func TestMemoryCreateTransactionAssignsSeq(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Wallets()
	ctx := context.Background()
	seedWallet(t, repo, 1, "Ana", 0)

	first := &models.Transaction{ID: uuid.NewString(), WalletCode: 1, Value: decimal.NewFromInt(1), Type: models.TransactionTypeCredit, Status: models.TransactionStatusActive}
	second := &models.Transaction{ID: uuid.NewString(), WalletCode: 1, Value: decimal.NewFromInt(2), Type: models.TransactionTypeCredit, Status: models.TransactionStatusActive}
	require.NoError(t, repo.CreateTransaction(ctx, first))
	require.NoError(t, repo.CreateTransaction(ctx, second))
	assert.Greater(t, second.Seq, first.Seq)

	stored, err := repo.GetTransactionByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Seq, stored.Seq)
}

func TestMemoryListProductSalesSkipsCancelledDebits(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Wallets()
	ctx := context.Background()
	seedWallet(t, repo, 1, "Ana", 10)

	var sales []*models.ProductSale
	var debits []*models.Transaction
	for i := 0; i < 2; i++ {
		debit := &models.Transaction{
			ID:          uuid.NewString(),
			WalletCode:  1,
			Value:       decimal.NewFromInt(3),
			Type:        models.TransactionTypeDebit,
			Status:      models.TransactionStatusActive,
			HasProducts: true,
			ItemsCount:  1,
		}
		require.NoError(t, repo.CreateTransaction(ctx, debit))
		debits = append(debits, debit)
		sales = append(sales, &models.ProductSale{
			TransactionID: debit.ID,
			ProductID:     "p1",
			ProductName:   "Pastel",
			PriceAtSale:   decimal.NewFromInt(3),
			Quantity:      1,
			Subtotal:      decimal.NewFromInt(3),
		})
	}
	require.NoError(t, repo.CreateProductSales(ctx, sales))
	require.NoError(t, repo.CancelTransaction(ctx, debits[0].ID, time.Now()))

	got, err := store.Products().ListProductSales(ctx, SaleFilter{ProductID: "p1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, debits[1].ID, got[0].TransactionID)
}

func TestMemoryDeleteWalletCascades(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Wallets()
	ctx := context.Background()
	seedWallet(t, repo, 1, "Ana", 0)
	seedWallet(t, repo, 2, "Bia", 0)

	debit := &models.Transaction{
		ID:          uuid.NewString(),
		WalletCode:  1,
		Value:       decimal.NewFromInt(4),
		Type:        models.TransactionTypeDebit,
		Status:      models.TransactionStatusActive,
		HasProducts: true,
		ItemsCount:  2,
	}
	other := &models.Transaction{
		ID:         uuid.NewString(),
		WalletCode: 2,
		Value:      decimal.NewFromInt(1),
		Type:       models.TransactionTypeCredit,
		Status:     models.TransactionStatusActive,
	}
	require.NoError(t, repo.CreateTransaction(ctx, debit))
	require.NoError(t, repo.CreateTransaction(ctx, other))
	require.NoError(t, repo.CreateProductSales(ctx, []*models.ProductSale{{
		TransactionID: debit.ID,
		ProductID:     "p1",
		ProductName:   "Pipoca",
		PriceAtSale:   decimal.NewFromInt(2),
		Quantity:      2,
		Subtotal:      decimal.NewFromInt(4),
	}}))

	require.NoError(t, repo.DeleteWallet(ctx, 1))
	assert.ErrorIs(t, repo.DeleteWallet(ctx, 1), ErrWalletNotFound)

	counts := store.Counts()
	assert.Equal(t, 1, counts.Wallets)
	assert.Equal(t, 1, counts.Users)
	assert.Equal(t, 1, counts.Transactions)
	assert.Equal(t, 0, counts.ProductSales)

	_, err := repo.GetByCode(ctx, 1)
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestMemoryListWallets(t *testing.T) {
	store := NewMemoryStore()
	repo := store.Wallets()
	ctx := context.Background()
	seedWallet(t, repo, 3, "Caio", 30)
	seedWallet(t, repo, 1, "Ana", 10)
	seedWallet(t, repo, 2, "Bruna", 10)

	wallets, total, err := repo.ListWallets(ctx, WalletFilter{
		SortField: SortBalance,
		SortDesc:  true,
		Limit:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, wallets, 2)
	assert.Equal(t, int64(3), wallets[0].Code)
	assert.Equal(t, int64(1), wallets[1].Code, "equal balances fall back to code order")

	wallets, total, err = repo.ListWallets(ctx, WalletFilter{Search: "BRU", SortField: SortCode})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, wallets, 1)
	assert.Equal(t, "Bruna", wallets[0].User.Name)

	_, total, err = repo.ListWallets(ctx, WalletFilter{
		Status:     StatusEligible,
		EntryPrice: decimal.NewFromInt(20),
		SortField:  SortCode,
		Offset:     10,
		Limit:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
