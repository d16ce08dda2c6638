package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/category/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/jmoiron/sqlx"
)

// navSelect reads categories the way the storefront navigation shows them,
// with the count of sellable products in each.
const navSelect = `
        SELECT c.id, c.merchant_id, c.parent_id, c.name, c.description, c.image_url,
               c.sort_order, c.is_active, c.created_at, c.updated_at,
               (SELECT count(*) FROM products p
                 WHERE p.category_id = c.id AND p.merchant_id = c.merchant_id AND p.is_active) AS product_count
        FROM categories c`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, merchant_id, parent_id, name, description, image_url, sort_order, is_active, created_at, updated_at)
        VALUES (:id, :merchant_id, :parent_id, :name, :description, :image_url, :sort_order, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Category, error) {
	var c model.Category
	err := r.DB.GetContext(ctx, &c, navSelect+` WHERE c.id = $1 AND c.merchant_id = $2`, id, merchantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func categoryWhere(f *dto.CategoryFilters) (string, map[string]interface{}) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.MerchantID != "" {
		conditions = append(conditions, "c.merchant_id = :merchant_id")
		args["merchant_id"] = f.MerchantID
	}
	if f.ParentID != nil {
		if *f.ParentID == "" {
			conditions = append(conditions, "c.parent_id IS NULL")
		} else {
			conditions = append(conditions, "c.parent_id = :parent_id")
			args["parent_id"] = *f.ParentID
		}
	}
	if f.IsActive != nil {
		conditions = append(conditions, "c.is_active = :is_active")
		args["is_active"] = *f.IsActive
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	where, args := categoryWhere(f)

	var total int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM categories c"+where, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &total, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := navSelect + where + " ORDER BY c.sort_order ASC, c.name ASC"
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
	categories := []model.Category{}
	if err := r.DB.SelectContext(ctx, &categories, r.DB.Rebind(listQuery), listArgs...); err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET parent_id = :parent_id, name = :name, description = :description, image_url = :image_url,
            sort_order = :sort_order, is_active = :is_active, updated_at = :updated_at
        WHERE id = :id AND merchant_id = :merchant_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

// Delete leaves cleanup to the foreign keys: child categories move to the
// root and products become uncategorized (both ON DELETE SET NULL).
func (r *PGRepository) Delete(ctx context.Context, merchantID, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = $1 AND merchant_id = $2", id, merchantID)
	return err
}
