package repositories

import (
	"context"
	"errors"
	"fmt"

	"prizewallet/internal/models"

	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (r *productRepository) FindActiveProductByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (r *productRepository) ListProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var products []*models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	result := r.db.WithContext(ctx).Save(product)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	return nil
}

func (r *productRepository) ListProductSales(ctx context.Context, filter SaleFilter) ([]*models.ProductSale, error) {
	query := r.db.WithContext(ctx).
		Select("product_sales.*").
		Joins("JOIN transactions ON transactions.id = product_sales.transaction_id AND transactions.status = ?", models.TransactionStatusActive).
		Order("product_sales.sold_at DESC")
	if filter.ProductID != "" {
		query = query.Where("product_sales.product_id = ?", filter.ProductID)
	}
	if !filter.From.IsZero() {
		query = query.Where("product_sales.sold_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("product_sales.sold_at <= ?", filter.To)
	}

	var sales []*models.ProductSale
	if err := query.Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to list product sales: %w", err)
	}
	return sales, nil
}
