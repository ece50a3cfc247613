// Package product manages the catalog of items wallets can pay for.
// Products are never deleted; deactivating one keeps its sales history intact.
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "prizewallet/internal/errors"
	"prizewallet/internal/logger"
	"prizewallet/internal/models"
	"prizewallet/internal/repositories"
	"prizewallet/internal/repositories/cache"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const DefaultCacheTTL = 10 * time.Minute

// Price bounds
var (
	MinPrice = decimal.RequireFromString("0.01")
	MaxPrice = decimal.NewFromInt(10000)
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*models.Product, error)
	FindOne(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Product, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*models.Product, error)
	Deactivate(ctx context.Context, id string) error
	Activate(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name         string
	Category     string
	CurrentPrice decimal.Decimal
}

// UpdateRequest changes only the fields that are set.
type UpdateRequest struct {
	Name         *string
	Category     *string
	CurrentPrice *decimal.Decimal
}

type service struct {
	repo  repositories.ProductRepository
	cache cache.Cache
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewService(repo repositories.ProductRepository, c cache.Cache, ttl time.Duration, log logrus.FieldLogger) Service {
	if repo == nil {
		panic("repo is required")
	}
	if c == nil {
		panic("cache is required")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.Discard()
	}
	return &service{
		repo:  repo,
		cache: c,
		ttl:   ttl,
		log:   log.WithField("component", "product"),
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	category := strings.TrimSpace(req.Category)
	if name == "" || category == "" {
		return nil, apperrors.ErrInvalidArgument.Withf("product name and category are required")
	}
	if err := validatePrice(req.CurrentPrice); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:           uuid.NewString(),
		Name:         name,
		Category:     category,
		CurrentPrice: req.CurrentPrice,
		IsActive:     true,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.invalidate(ctx, product.ID)
	s.log.WithFields(logrus.Fields{"id": product.ID, "name": name}).Info("product created")
	return product, nil
}

func (s *service) FindOne(ctx context.Context, id string) (*models.Product, error) {
	key := cache.ProductKey(id)
	var cached models.Product
	if found, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
	} else if found {
		return &cached, nil
	}

	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.set(ctx, key, product)
	return product, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]*models.Product, error) {
	key := cache.ProductListKey(activeOnly)
	var cached []*models.Product
	if found, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
	} else if found {
		return cached, nil
	}

	products, err := s.repo.ListProducts(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if products == nil {
		products = []*models.Product{}
	}
	s.set(ctx, key, products)
	return products, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*models.Product, error) {
	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.ErrInvalidArgument.Withf("product name cannot be empty")
		}
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		product.Name = name
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return nil, apperrors.ErrInvalidArgument.Withf("product category cannot be empty")
		}
		product.Category = category
	}
	if req.CurrentPrice != nil {
		if err := validatePrice(*req.CurrentPrice); err != nil {
			return nil, err
		}
		product.CurrentPrice = *req.CurrentPrice
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, translate(err)
	}
	s.invalidate(ctx, id)
	s.log.WithField("id", id).Info("product updated")
	return product, nil
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *service) Activate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

func (s *service) setActive(ctx context.Context, id string, active bool) error {
	product, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if product.IsActive == active {
		return nil
	}
	if active {
		if err := s.ensureNameFree(ctx, product.Name, id); err != nil {
			return err
		}
	}

	product.IsActive = active
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return translate(err)
	}
	s.invalidate(ctx, id)
	s.log.WithFields(logrus.Fields{"id": id, "active": active}).Info("product status changed")
	return nil
}

func (s *service) get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return product, nil
}

// ensureNameFree fails when another active product already uses name.
func (s *service) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.FindActiveProductByName(ctx, name)
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		return nil
	case err != nil:
		return apperrors.Internal(err)
	case existing.ID != selfID:
		return apperrors.ErrProductExists
	}
	return nil
}

func (s *service) set(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func (s *service) invalidate(ctx context.Context, id string) {
	if err := cache.InvalidateProduct(ctx, s.cache, id); err != nil {
		s.log.WithError(err).WithField("id", id).Warn("failed to invalidate product cache")
	}
}

func validatePrice(price decimal.Decimal) error {
	if price.LessThan(MinPrice) || price.GreaterThan(MaxPrice) {
		return apperrors.ErrInvalidAmount.Withf("price must be between %s and %s", MinPrice.StringFixed(2), MaxPrice.StringFixed(2))
	}
	if !price.Equal(price.Round(2)) {
		return apperrors.ErrInvalidAmount.Withf("price must have at most 2 decimal places")
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return apperrors.ErrProductNotFound
	}
	return apperrors.Internal(err)
}
