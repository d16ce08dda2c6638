package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemory()
	repo := NewCartRepository(mem, time.Hour)

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	c := &model.Cart{ID: "u1", MerchantID: "m1", Items: []model.CartItem{
		{ProductID: "p1", UnitPrice: decimal.RequireFromString("19.99"), Quantity: 2},
	}}
	require.NoError(t, repo.Save(ctx, c))

	_, stored := mem.Raw("cart:u1")
	assert.True(t, stored)

	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("19.99")))

	require.NoError(t, repo.Delete(ctx, "u1"))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
