package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Wallet struct {
	ID             uint            `gorm:"primarykey" json:"-"`
	Code           int64           `gorm:"uniqueIndex;not null" json:"code"`
	Balance        decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"balance"`
	TotalCredit    decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"totalCredit"`
	AlreadyWinner  bool            `gorm:"not null;default:false;index" json:"alreadyWinner"`
	WinnerMarkedAt *time.Time      `json:"winnerMarkedAt,omitempty"`
	UserID         uint            `gorm:"uniqueIndex;not null" json:"ownerId"`
	User           User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// BeforeCreate keeps negative opening balances out of the table.
func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.Balance.IsNegative() {
		w.Balance = decimal.Zero
	}
	return nil
}

// IsEligible reports whether the wallet may take part in a draw priced at entryPrice.
func (w *Wallet) IsEligible(entryPrice decimal.Decimal) bool {
	return !w.AlreadyWinner && entryPrice.IsPositive() && w.TotalCredit.GreaterThanOrEqual(entryPrice)
}

// Entries returns floor(TotalCredit / entryPrice).
func (w *Wallet) Entries(entryPrice decimal.Decimal) int64 {
	if !entryPrice.IsPositive() {
		return 0
	}
	return w.TotalCredit.Div(entryPrice).Floor().IntPart()
}
