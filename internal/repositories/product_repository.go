package repositories

import (
	"context"
	"errors"
	"time"

	"prizewallet/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

// SaleFilter narrows product sales for reporting. Zero values match everything.
type SaleFilter struct {
	ProductID string
	From      time.Time
	To        time.Time
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	FindActiveProductByName(ctx context.Context, name string) (*models.Product, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	// ListProductSales returns matching sales, most recent first. Sales whose
	// debit was cancelled are left out.
	ListProductSales(ctx context.Context, filter SaleFilter) ([]*models.ProductSale, error)
}
