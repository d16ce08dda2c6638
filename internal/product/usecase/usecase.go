package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	indexName    = "products"
	listCacheTTL = 5 * time.Minute
	// upper bound on ES candidates that are post-filtered in memory
	searchCandidates = 500
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"merchant_id": { "type": "keyword" },
			"category_id": { "type": "keyword" },
			"name": { "type": "text" },
			"description": { "type": "text" },
			"sku": { "type": "keyword" },
			"barcode": { "type": "keyword" },
			"base_price": { "type": "double" },
			"rating": { "type": "double" },
			"stock": { "type": "integer" },
			"is_active": { "type": "boolean" },
			"created_at": { "type": "date" }
		}
	}
}`

type productUseCase struct {
	repo   product.Repository
	cache  cache.Store
	es     product.SearchIndex
	logger logger.ZapLogger
}

// NewProductUseCase wires the catalog. es may be nil, in which case search
// always goes to Postgres.
func NewProductUseCase(repo product.Repository, store cache.Store, es product.SearchIndex, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  store,
		es:     es,
		logger: log,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if err := uc.checkUnique(ctx, input.MerchantID, input.SKU, input.Barcode, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	costPrice := input.CostPrice
	p := &model.Product{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		MerchantID:   input.MerchantID,
		CategoryID:   optional(input.CategoryID),
		SKU:          input.SKU,
		Barcode:      optional(input.Barcode),
		Name:         input.Name,
		Description:  optional(input.Description),
		BasePrice:    input.BasePrice,
		CostPrice:    &costPrice,
		Stock:        input.Stock,
		ReorderPoint: input.ReorderPoint,
		ImageURL:     optional(input.ImageURL),
		IsActive:     true,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	uc.invalidateProductCache(ctx, p.MerchantID)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) checkUnique(ctx context.Context, merchantID, sku, barcode, excludeID string) error {
	if sku != "" {
		unique, err := uc.repo.IsSKUUnique(ctx, merchantID, sku, excludeID)
		if err != nil {
			return err
		}
		if !unique {
			return product.ErrSKUTaken
		}
	}

	if barcode != "" {
		unique, err := uc.repo.IsBarcodeUnique(ctx, merchantID, barcode, excludeID)
		if err != nil {
			return err
		}
		if !unique {
			return product.ErrBarcodeTaken
		}
	}
	return nil
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	// index creation is idempotent, an existing index is not an error
	_ = uc.es.CreateIndex(ctx, indexName, indexMapping)

	if err := uc.es.Index(ctx, indexName, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) GetProduct(ctx context.Context, merchantID, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

type cachedList struct {
	Products []model.Product `json:"products"`
	Count    int             `json:"count"`
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	cacheKey, err := generateCacheKey(filters)
	if err == nil {
		var hit cachedList
		found, err := uc.cache.GetJSON(ctx, cacheKey, &hit)
		if err != nil {
			uc.logger.Warn("product list cache read failed", zap.Error(err))
		}
		if found {
			return hit.Products, hit.Count, nil
		}
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" {
		if err := uc.cache.SetJSON(ctx, cacheKey, cachedList{Products: products, Count: count}, listCacheTTL); err != nil {
			uc.logger.Warn("product list cache write failed", zap.Error(err))
		}
	}

	return products, count, nil
}

// SearchProducts runs the text query through Elasticsearch, loads the current
// rows for the hits and applies the structured filters in memory. Any ES failure falls back to the
// ILIKE search in Postgres.
func (uc *productUseCase) SearchProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters.SearchQuery == "" || uc.es == nil {
		return uc.ListProducts(ctx, filters)
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"query_string": map[string]interface{}{
							"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
							"fields": []string{"name^3", "sku", "barcode", "description"},
						},
					},
					{
						"term": map[string]interface{}{
							"merchant_id": filters.MerchantID,
						},
					},
				},
			},
		},
		"size": searchCandidates,
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
		return uc.repo.FindAll(ctx, filters)
	}

	// hits only pick and rank ids; stock and prices come from Postgres
	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	rows, err := uc.repo.FindByIDs(ctx, filters.MerchantID, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("load search hits: %w", err)
	}
	byID := make(map[string]model.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	candidates := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			candidates = append(candidates, p)
		}
	}

	// ES already matched the text, the rest of the filter chain runs here
	structured := *filters
	structured.SearchQuery = ""
	products, total := product.FilterProducts(candidates, &structured)
	return products, total, nil
}

func generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%s:%x", filters.MerchantID, md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context, merchantID string) {
	if err := uc.cache.DeletePattern(ctx, product.ListCachePattern(merchantID)); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.String("merchant_id", merchantID), zap.Error(err))
	}
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.MerchantID, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrProductNotFound
	}

	sku, barcode := "", ""
	if p.SKU != input.SKU {
		sku = input.SKU
	}
	if p.Barcode == nil || *p.Barcode != input.Barcode {
		barcode = input.Barcode
	}
	if err := uc.checkUnique(ctx, input.MerchantID, sku, barcode, p.ID); err != nil {
		return nil, err
	}

	p.SKU = input.SKU
	p.Name = input.Name
	p.Description = optional(input.Description)
	p.BasePrice = input.BasePrice
	cost := input.CostPrice
	p.CostPrice = &cost
	p.ReorderPoint = input.ReorderPoint
	p.Rating = input.Rating
	p.ReviewCount = input.ReviewCount
	p.ImageURL = optional(input.ImageURL)
	p.IsActive = input.IsActive
	p.CategoryID = optional(input.CategoryID)
	p.Barcode = optional(input.Barcode)
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	uc.invalidateProductCache(ctx, p.MerchantID)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, merchantID, id string) error {
	p, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return err
	}
	if p == nil {
		return product.ErrProductNotFound
	}

	if err := uc.repo.Delete(ctx, merchantID, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	uc.invalidateProductCache(ctx, merchantID)
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), indexName, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.String("product_id", id), zap.Error(err))
			}
		}()
	}

	return nil
}
