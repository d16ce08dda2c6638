package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/category"
	"github.com/fekuna/omnipos-storefront-service/internal/category/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo   category.Repository
	store  cache.Store
	logger logger.ZapLogger
}

// NewCategoryUseCase takes the product list cache so deletes, which
// uncategorize products, can drop stale listings. store may be nil.
func NewCategoryUseCase(repo category.Repository, store cache.Store, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		store:  store,
		logger: log,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func normalizeParent(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	parentID := normalizeParent(input.ParentID)
	if parentID != nil {
		parent, err := uc.repo.FindByID(ctx, input.MerchantID, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, category.ErrParentNotFound
		}
	}

	now := time.Now()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MerchantID:  input.MerchantID,
		ParentID:    parentID,
		Name:        input.Name,
		Description: optional(input.Description),
		ImageURL:    optional(input.ImageURL),
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, merchantID, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, category.ErrCategoryNotFound
	}
	return cat, nil
}

// ListCategories returns a flat page, or with IncludeChildren a page of root
// categories each carrying its subtree.
func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	if !filters.IncludeChildren {
		return uc.repo.FindAll(ctx, filters)
	}

	all, _, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{MerchantID: filters.MerchantID, IsActive: filters.IsActive})
	if err != nil {
		return nil, 0, err
	}
	tree := category.BuildTree(all)

	if filters.ParentID != nil && *filters.ParentID != "" {
		tree = subtree(tree, *filters.ParentID)
	}

	total := len(tree)
	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filters.PageSize
		if start > total {
			start = total
		}
		end := start + filters.PageSize
		if end > total {
			end = total
		}
		tree = tree[start:end]
	}
	return tree, total, nil
}

func subtree(tree []model.Category, parentID string) []model.Category {
	for _, c := range tree {
		if c.ID == parentID {
			return c.Children
		}
		if found := subtree(c.Children, parentID); found != nil {
			return found
		}
	}
	return nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, input.MerchantID, input.ID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, category.ErrCategoryNotFound
	}

	parentID := normalizeParent(input.ParentID)
	if parentID != nil {
		if err := uc.checkAncestry(ctx, input.MerchantID, cat.ID, *parentID); err != nil {
			return nil, err
		}
	}

	cat.Name = input.Name
	cat.Description = optional(input.Description)
	cat.ImageURL = optional(input.ImageURL)
	cat.SortOrder = input.SortOrder
	cat.IsActive = input.IsActive
	cat.ParentID = parentID
	cat.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return cat, nil
}

// checkAncestry walks up from the proposed parent and fails if it reaches id.
func (uc *categoryUseCase) checkAncestry(ctx context.Context, merchantID, id, parentID string) error {
	seen := map[string]bool{}
	current := parentID
	for current != "" {
		if current == id {
			return category.ErrCyclicParent
		}
		if seen[current] {
			uc.logger.Warn("existing category cycle detected", zap.String("category_id", current))
			return category.ErrCyclicParent
		}
		seen[current] = true

		c, err := uc.repo.FindByID(ctx, merchantID, current)
		if err != nil {
			return err
		}
		if c == nil {
			if current == parentID {
				return category.ErrParentNotFound
			}
			return nil
		}
		if c.ParentID == nil {
			return nil
		}
		current = *c.ParentID
	}
	return nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, merchantID, id string) error {
	cat, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return err
	}
	if cat == nil {
		return category.ErrCategoryNotFound
	}
	if err := uc.repo.Delete(ctx, merchantID, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if uc.store != nil {
		if err := uc.store.DeletePattern(ctx, product.ListCachePattern(merchantID)); err != nil {
			uc.logger.Warn("failed to invalidate product lists", zap.String("merchant_id", merchantID), zap.Error(err))
		}
	}
	return nil
}
