package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           string          `gorm:"primarykey;type:varchar(36)" json:"id"`
	Name         string          `gorm:"not null;index" json:"name"`
	Category     string          `gorm:"not null" json:"category"`
	CurrentPrice decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"currentPrice"`
	IsActive     bool            `gorm:"not null;default:true;index" json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ProductSale links one product line to the debit transaction that paid for it.
// Reporting reads these rows directly, so the field set is a durable contract.
type ProductSale struct {
	ID            uint            `gorm:"primarykey" json:"-"`
	TransactionID string          `gorm:"not null;index;type:varchar(36)" json:"transactionId"`
	ProductID     string          `gorm:"not null;index;type:varchar(36)" json:"productId"`
	ProductName   string          `gorm:"not null" json:"productName"`
	PriceAtSale   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"priceAtSale"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"subtotal"`
	SoldAt        time.Time       `gorm:"not null;index" json:"soldAt"`
}
