package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
)

const productColumns = `id, merchant_id, category_id, sku, barcode, name, description,
	base_price, cost_price, stock, reorder_point, rating, review_count,
	image_url, is_active, created_at, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, merchant_id, category_id, sku, barcode, name, description,
            base_price, cost_price, stock, reorder_point, rating, review_count,
            image_url, is_active, created_at, updated_at
        )
        VALUES (
            :id, :merchant_id, :category_id, :sku, :barcode, :name, :description,
            :base_price, :cost_price, :stock, :reorder_point, :rating, :review_count,
            :image_url, :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Product, error) {
	var product model.Product
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND merchant_id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, id, merchantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the given products in one round trip. Missing ids are simply
// absent from the result.
func (r *PGRepository) FindByIDs(ctx context.Context, merchantID string, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE merchant_id = ? AND id IN (?)`, merchantID, ids)
	if err != nil {
		return nil, err
	}

	var products []model.Product
	if err := r.DB.SelectContext(ctx, &products, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	return products, nil
}

func buildWhere(f *dto.ProductFilters) (string, map[string]interface{}) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.MerchantID != "" {
		conditions = append(conditions, "merchant_id = :merchant_id")
		args["merchant_id"] = f.MerchantID
	}
	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.InStock != nil {
		if *f.InStock {
			conditions = append(conditions, "stock > 0")
		} else {
			conditions = append(conditions, "stock <= 0")
		}
	}
	if f.MinPrice != nil {
		conditions = append(conditions, "base_price >= :min_price")
		args["min_price"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, "base_price <= :max_price")
		args["max_price"] = *f.MaxPrice
	}
	if f.MinRating != nil {
		conditions = append(conditions, "rating >= :min_rating")
		args["min_rating"] = *f.MinRating
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR sku ILIKE :search OR barcode ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func orderBy(f *dto.ProductFilters) string {
	if f.SortBy == "" {
		return "created_at DESC, id"
	}

	// whitelist, sort keys never reach the query verbatim
	column := "created_at"
	switch f.SortBy {
	case "name":
		column = "name"
	case "price":
		column = "base_price"
	case "rating":
		column = "rating"
	case "stock":
		column = "stock"
	}
	dir := "ASC"
	if strings.EqualFold(f.SortOrder, "desc") {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, name ASC, id ASC", column, dir)
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	whereClause, args := buildWhere(f)

	var count int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM products"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY %s", productColumns, whereClause, orderBy(f))
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	products := []model.Product{}
	if err := r.DB.SelectContext(ctx, &products, r.DB.Rebind(listQuery), listArgs...); err != nil {
		return nil, 0, err
	}

	return products, count, nil
}

// Update never touches stock; stock only moves through the inventory ledger.
func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET category_id = :category_id,
            sku = :sku,
            barcode = :barcode,
            name = :name,
            description = :description,
            base_price = :base_price,
            cost_price = :cost_price,
            reorder_point = :reorder_point,
            rating = :rating,
            review_count = :review_count,
            image_url = :image_url,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND merchant_id = :merchant_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, merchantID, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = $1 AND merchant_id = $2", id, merchantID)
	return err
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, merchantID, sku, excludeID string) (bool, error) {
	var count int
	query := `SELECT count(*) FROM products WHERE merchant_id = $1 AND sku = $2`
	args := []interface{}{merchantID, sku}
	if excludeID != "" {
		query += ` AND id != $3`
		args = append(args, excludeID)
	}

	err := r.DB.GetContext(ctx, &count, query, args...)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *PGRepository) IsBarcodeUnique(ctx context.Context, merchantID, barcode, excludeID string) (bool, error) {
	if barcode == "" {
		return true, nil
	}
	var count int
	query := `SELECT count(*) FROM products WHERE merchant_id = $1 AND barcode = $2`
	args := []interface{}{merchantID, barcode}
	if excludeID != "" {
		query += ` AND id != $3`
		args = append(args, excludeID)
	}

	err := r.DB.GetContext(ctx, &count, query, args...)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
