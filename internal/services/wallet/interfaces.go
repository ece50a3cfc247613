package wallet

import (
	"context"

	"prizewallet/internal/models"

	"github.com/shopspring/decimal"
)

// Service defines the wallet ledger operations.
type Service interface {
	// Wallet management
	Create(ctx context.Context, req CreateWalletRequest) (*models.Wallet, error)
	FindOne(ctx context.Context, code int64) (*WalletDetails, error)
	Remove(ctx context.Context, code int64) error
	ListWallets(ctx context.Context, params ListWalletsParams) (*WalletPage, error)

	// Balance operations
	Credit(ctx context.Context, code int64, value decimal.Decimal) (*OperationResult, error)
	Debit(ctx context.Context, code int64, req DebitRequest) (*OperationResult, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	CancelTransaction(ctx context.Context, code int64, transactionID string) (*CancelResult, error)

	// Lottery
	MarkAsWinner(ctx context.Context, code int64) (*models.Wallet, error)
}

// ProductCatalog resolves the products named in a debit.
type ProductCatalog interface {
	FindOne(ctx context.Context, id string) (*models.Product, error)
}
