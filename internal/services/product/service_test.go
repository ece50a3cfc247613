package product

import (
	"context"
	"testing"
	"time"

	apperrors "prizewallet/internal/errors"
	"prizewallet/internal/repositories"
	"prizewallet/internal/repositories/cache"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() Service {
	store := repositories.NewMemoryStore()
	return NewService(store.Products(), cache.NewMemoryCache(time.Minute), 0, nil)
}

func TestProductService_CreateAndFind(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateRequest{Name: "Coffee", Category: "Drinks", CurrentPrice: decimal.RequireFromString("4.50")})
	require.NoError(t, err)
	assert.True(t, p.IsActive)
	assert.NotEmpty(t, p.ID)

	found, err := svc.FindOne(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", found.Name)
	assert.True(t, found.CurrentPrice.Equal(decimal.RequireFromString("4.5")))

	_, err = svc.FindOne(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func TestProductService_CreateValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{name: "no name", req: CreateRequest{Category: "x", CurrentPrice: decimal.NewFromInt(1)}},
		{name: "no category", req: CreateRequest{Name: "x", CurrentPrice: decimal.NewFromInt(1)}},
		{name: "zero price", req: CreateRequest{Name: "x", Category: "x"}},
		{name: "price too high", req: CreateRequest{Name: "x", Category: "x", CurrentPrice: decimal.NewFromInt(10001)}},
		{name: "fractional cents", req: CreateRequest{Name: "x", Category: "x", CurrentPrice: decimal.RequireFromString("1.001")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))
		})
	}
}

func TestProductService_DuplicateNames(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	req := CreateRequest{Name: "Cake", Category: "Food", CurrentPrice: decimal.NewFromInt(7)}

	first, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrProductExists)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	require.NoError(t, svc.Deactivate(ctx, first.ID))
	second, err := svc.Create(ctx, req)
	require.NoError(t, err)

	err = svc.Activate(ctx, first.ID)
	assert.ErrorIs(t, err, apperrors.ErrProductExists)

	name := "Cake"
	_, err = svc.Update(ctx, second.ID, UpdateRequest{Name: &name})
	assert.NoError(t, err)
}

func TestProductService_UpdateRefreshesCache(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateRequest{Name: "Tea", Category: "Drinks", CurrentPrice: decimal.NewFromInt(3)})
	require.NoError(t, err)
	_, err = svc.FindOne(ctx, p.ID)
	require.NoError(t, err)
	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)

	price := decimal.RequireFromString("3.25")
	_, err = svc.Update(ctx, p.ID, UpdateRequest{CurrentPrice: &price})
	require.NoError(t, err)

	found, err := svc.FindOne(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, found.CurrentPrice.Equal(price))

	require.NoError(t, svc.Deactivate(ctx, p.ID))
	active, err = svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)
}
