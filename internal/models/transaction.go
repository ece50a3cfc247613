package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TransactionTypeCredit      = "credit"
	TransactionTypeDebit       = "debit"
	TransactionTypeTransferOut = "transfer_out"
	TransactionTypeTransferIn  = "transfer_in"
)

// Transaction statuses
const (
	TransactionStatusActive    = "active"
	TransactionStatusCancelled = "cancelled"
)

// Transaction is an append-only ledger row. Status is the only field that
// changes after insert, and only from active to cancelled.
type Transaction struct {
	ID                    string          `gorm:"primarykey;type:varchar(36)" json:"id"`
	Seq                   int64           `gorm:"autoIncrement;not null;uniqueIndex" json:"-"`
	WalletCode            int64           `gorm:"not null;index" json:"walletCode"`
	Value                 decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"value"`
	Type                  string          `gorm:"not null;type:varchar(16)" json:"type"`
	Status                string          `gorm:"not null;type:varchar(16);default:'active'" json:"status"`
	Date                  time.Time       `gorm:"not null;index" json:"date"`
	TransferID            string          `gorm:"index;type:varchar(36)" json:"transferId,omitempty"`
	RelatedWalletCode     *int64          `json:"relatedWalletCode,omitempty"`
	OriginalTransactionID string          `gorm:"index;type:varchar(36)" json:"originalTransactionId,omitempty"`
	Description           string          `json:"description,omitempty"`
	HasProducts           bool            `gorm:"not null;default:false" json:"hasProducts"`
	ItemsCount            int             `gorm:"not null;default:0" json:"itemsCount"`
	CancelledAt           *time.Time      `json:"cancelledAt,omitempty"`
}

func (t *Transaction) IsActive() bool {
	return t.Status == TransactionStatusActive
}

func (t *Transaction) IsTransfer() bool {
	return t.Type == TransactionTypeTransferOut || t.Type == TransactionTypeTransferIn
}

func (t *Transaction) IsReversal() bool {
	return t.OriginalTransactionID != ""
}

// SignedValue is the contribution of a transaction to its wallet balance.
// A cancelled row contributes nothing, and neither does the reversal that
// records its cancellation: the pair nets out.
func (t *Transaction) SignedValue() decimal.Decimal {
	if !t.IsActive() || t.IsReversal() {
		return decimal.Zero
	}
	switch t.Type {
	case TransactionTypeCredit, TransactionTypeTransferIn:
		return t.Value
	case TransactionTypeDebit, TransactionTypeTransferOut:
		return t.Value.Neg()
	}
	return decimal.Zero
}
