package product

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/search"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, merchantID, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, merchantID string, ids []string) ([]model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, merchantID, id string) error

	// Check SKU/Barcode uniqueness
	IsSKUUnique(ctx context.Context, merchantID, sku, excludeID string) (bool, error)
	IsBarcodeUnique(ctx context.Context, merchantID, barcode, excludeID string) (bool, error)
}

// SearchIndex is the full-text side of the catalog.
type SearchIndex interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
	Delete(ctx context.Context, index, id string) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResponse, error)
}
