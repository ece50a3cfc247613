package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WinnerLog is written once per MarkAsWinner and never updated.
type WinnerLog struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	WalletCode  int64           `gorm:"not null;index" json:"walletCode"`
	UserName    string          `json:"userName"`
	TotalCredit decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"totalCredit"`
	MarkedAt    time.Time       `gorm:"not null" json:"markedAt"`
}
