package repository

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
)

const keyPrefix = "cart:"

type cartRepository struct {
	store cache.Store
	ttl   time.Duration
}

// NewCartRepository stores each cart as one JSON document that expires ttl
// after its last write.
func NewCartRepository(store cache.Store, ttl time.Duration) cart.Repository {
	return &cartRepository{store: store, ttl: ttl}
}

func Key(id string) string {
	return keyPrefix + id
}

func (r *cartRepository) Get(ctx context.Context, id string) (*model.Cart, error) {
	var c model.Cart
	found, err := r.store.GetJSON(ctx, Key(id), &c)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &c, nil
}

func (r *cartRepository) Save(ctx context.Context, c *model.Cart) error {
	return r.store.SetJSON(ctx, Key(c.ID), c, r.ttl)
}

func (r *cartRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, Key(id))
}
