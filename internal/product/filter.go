package product

import (
	"sort"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
)

// FilterProducts applies f to an in-memory candidate set, sorts it, and returns
// the requested page together with the total match count. Without SortBy the
// input order is kept, so relevance-ranked search hits stay ranked.
func FilterProducts(products []model.Product, f *dto.ProductFilters) ([]model.Product, int) {
	query := strings.ToLower(strings.TrimSpace(f.SearchQuery))

	matched := make([]model.Product, 0, len(products))
	for _, p := range products {
		if f.MerchantID != "" && p.MerchantID != f.MerchantID {
			continue
		}
		if f.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != f.CategoryID) {
			continue
		}
		if f.IsActive != nil && p.IsActive != *f.IsActive {
			continue
		}
		if f.InStock != nil && p.InStock() != *f.InStock {
			continue
		}
		if f.MinPrice != nil && p.BasePrice < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.BasePrice > *f.MaxPrice {
			continue
		}
		if f.MinRating != nil && p.Rating < *f.MinRating {
			continue
		}
		if query != "" && !matchesQuery(&p, query) {
			continue
		}
		matched = append(matched, p)
	}

	if f.SortBy != "" {
		desc := strings.EqualFold(f.SortOrder, "desc")
		less := sortKey(f.SortBy)
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := &matched[i], &matched[j]
			if c := less(a, b); c != 0 {
				if desc {
					return c > 0
				}
				return c < 0
			}
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.ID < b.ID
		})
	}

	total := len(matched)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PageSize
		if start >= total {
			return []model.Product{}, total
		}
		end := start + f.PageSize
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total
}

func matchesQuery(p *model.Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.SKU), q) {
		return true
	}
	return p.Barcode != nil && strings.Contains(strings.ToLower(*p.Barcode), q)
}

func sortKey(by string) func(a, b *model.Product) int {
	switch by {
	case "price":
		return func(a, b *model.Product) int { return compareFloat(a.BasePrice, b.BasePrice) }
	case "rating":
		return func(a, b *model.Product) int { return compareFloat(a.Rating, b.Rating) }
	case "stock":
		return func(a, b *model.Product) int { return a.Stock - b.Stock }
	case "created_at":
		return func(a, b *model.Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return func(a, b *model.Product) int { return strings.Compare(a.Name, b.Name) }
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
