package repositories

import (
	"context"
	"errors"
	"time"

	"prizewallet/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrDuplicateWallet      = errors.New("wallet already exists")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrTransactionNotActive = errors.New("transaction is not active")
)

// Wallet list sort keys
const (
	SortBalance     = "balance"
	SortTotalCredit = "totalCredit"
	SortCreatedAt   = "createdAt"
	SortUserName    = "userName"
	SortCode        = "code"
)

// Wallet list status filters
const (
	StatusAll        = "all"
	StatusWinner     = "winner"
	StatusEligible   = "eligible"
	StatusIneligible = "ineligible"
)

// WalletFilter selects one page of wallets.
type WalletFilter struct {
	Search     string
	SortField  string
	SortDesc   bool
	Status     string
	EntryPrice decimal.Decimal
	Offset     int
	Limit      int
}

// WalletRepository is the store adapter for wallets and their ledger.
//
// ExecuteInTransaction runs fn as one atomic section: every read and write
// made through the repository handed to fn commits together or not at all.
// fn may be run more than once when the store detects a conflict, so it
// must not carry side effects other than through that repository.
type WalletRepository interface {
	// Wallets
	CreateUser(ctx context.Context, user *models.User) error
	CreateWallet(ctx context.Context, wallet *models.Wallet) error
	GetByCode(ctx context.Context, code int64) (*models.Wallet, error)
	// GetByCodesForUpdate locks the wallets in ascending code order. Codes
	// with no wallet are absent from the result.
	GetByCodesForUpdate(ctx context.Context, codes ...int64) (map[int64]*models.Wallet, error)
	UpdateWallet(ctx context.Context, wallet *models.Wallet) error
	// DeleteWallet removes the wallet, its owner, its transactions and their product sales.
	DeleteWallet(ctx context.Context, code int64) error
	ListWallets(ctx context.Context, filter WalletFilter) ([]*models.Wallet, int64, error)
	ListEligibleWallets(ctx context.Context, entryPrice decimal.Decimal) ([]*models.Wallet, error)

	// Transactions
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error)
	GetTransactionsByTransferID(ctx context.Context, transferID string) ([]*models.Transaction, error)
	// CancelTransaction flips an active transaction to cancelled. It returns
	// ErrTransactionNotActive when the row was already cancelled.
	CancelTransaction(ctx context.Context, id string, at time.Time) error
	// GetTransactionHistory returns the wallet's transactions newest first.
	GetTransactionHistory(ctx context.Context, code int64) ([]*models.Transaction, error)

	// Product sales
	CreateProductSales(ctx context.Context, sales []*models.ProductSale) error
	GetProductSalesByTransactionIDs(ctx context.Context, ids []string) ([]*models.ProductSale, error)

	// Lottery
	CreateWinnerLog(ctx context.Context, log *models.WinnerLog) error

	ExecuteInTransaction(ctx context.Context, fn func(WalletRepository) error) error
	Ping(ctx context.Context) error
}
