package wallet

import (
	"time"

	"prizewallet/internal/models"

	"github.com/shopspring/decimal"
)

// Config holds configuration for the wallet service
type Config struct {
	WalletTTL time.Duration
	ListTTL   time.Duration
	// DefaultEntryPrice is used by listings that filter on lottery eligibility
	// without naming a price.
	DefaultEntryPrice decimal.Decimal
}

type UserInput struct {
	Name  string
	Phone string
}

type CreateWalletRequest struct {
	Code           int64
	User           UserInput
	InitialBalance decimal.Decimal
}

type DebitItem struct {
	ProductID string
	Quantity  int
}

// DebitRequest pays either for a list of products or for a free-form value.
// Items win when both are set.
type DebitRequest struct {
	Items       []DebitItem
	Value       decimal.Decimal
	Description string
}

// TransferRequest represents a wallet to wallet transfer
type TransferRequest struct {
	FromCode int64
	ToCode   int64
	Value    decimal.Decimal
}

type OperationResult struct {
	Wallet      *models.Wallet        `json:"wallet"`
	Transaction *models.Transaction   `json:"transaction"`
	Sales       []*models.ProductSale `json:"products,omitempty"`
}

type TransferResult struct {
	TransferID string              `json:"transferId"`
	From       *models.Wallet      `json:"from"`
	To         *models.Wallet      `json:"to"`
	Outgoing   *models.Transaction `json:"outgoing"`
	Incoming   *models.Transaction `json:"incoming"`
}

// CancelResult lists the rows flipped to cancelled, the reversal rows
// appended for them and the wallets as they stand afterwards.
type CancelResult struct {
	Cancelled []*models.Transaction `json:"cancelled"`
	Reversals []*models.Transaction `json:"reversals"`
	Wallets   []*models.Wallet      `json:"wallets"`
}

// WalletDetails is a wallet with its full history, newest first.
type WalletDetails struct {
	Code           int64                       `json:"code"`
	Balance        decimal.Decimal             `json:"balance"`
	TotalCredit    decimal.Decimal             `json:"totalCredit"`
	AlreadyWinner  bool                        `json:"alreadyWinner"`
	WinnerMarkedAt *time.Time                  `json:"winnerMarkedAt,omitempty"`
	OwnerID        uint                        `json:"ownerId"`
	User           models.User                 `json:"user"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
	Transactions   []models.TransactionHistory `json:"transactions"`
}

// ListWalletsParams selects one page of wallets. Zero values take the
// listing defaults.
type ListWalletsParams struct {
	Page       int
	Limit      int
	Search     string
	SortBy     string
	Status     string
	EntryPrice decimal.Decimal
}

type WalletListItem struct {
	models.Wallet
	Eligible bool  `json:"eligible"`
	Entries  int64 `json:"entries"`
}

type WalletPage struct {
	Items      []WalletListItem `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	// Cache metrics
	RecordCacheHit(key string)
	RecordCacheMiss(key string)

	// Balance metrics
	RecordBalanceChange(code int64, oldBalance, newBalance decimal.Decimal)

	// Error metrics
	RecordError(operation, errType string)

	// Transaction metrics
	RecordTransaction(txType string, value decimal.Decimal)
}
