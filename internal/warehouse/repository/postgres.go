package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/warehouse"
	"github.com/fekuna/omnipos-storefront-service/internal/warehouse/dto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

const warehouseColumns = `id, merchant_id, code, name, address, is_active, created_at, updated_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, w *model.Warehouse) error {
	query := `
        INSERT INTO warehouses (id, merchant_id, code, name, address, is_active, created_at, updated_at)
        VALUES (:id, :merchant_id, :code, :name, :address, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, w)
	if pqCode(err) == pqUniqueViolation {
		return warehouse.ErrCodeTaken
	}
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Warehouse, error) {
	var w model.Warehouse
	err := r.DB.GetContext(ctx, &w, `SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1 AND merchant_id = $2`, id, merchantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.WarehouseFilters) ([]model.Warehouse, int, error) {
	conditions := []string{"merchant_id = $1"}
	args := []interface{}{f.MerchantID}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = $2")
		args = append(args, *f.IsActive)
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	var count int
	if err := r.DB.GetContext(ctx, &count, "SELECT count(*) FROM warehouses"+whereClause, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + warehouseColumns + " FROM warehouses" + whereClause + " ORDER BY code ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	items := []model.Warehouse{}
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *PGRepository) Update(ctx context.Context, w *model.Warehouse) error {
	query := `
        UPDATE warehouses
        SET code = :code, name = :name, address = :address, is_active = :is_active, updated_at = :updated_at
        WHERE id = :id AND merchant_id = :merchant_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, w)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, merchantID, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM warehouses WHERE id = $1 AND merchant_id = $2", id, merchantID)
	return err
}

func (r *PGRepository) IsCodeUnique(ctx context.Context, merchantID, code, excludeID string) (bool, error) {
	var count int
	query := `SELECT count(*) FROM warehouses WHERE merchant_id = $1 AND code = $2`
	args := []interface{}{merchantID, code}
	if excludeID != "" {
		query += ` AND id != $3`
		args = append(args, excludeID)
	}
	if err := r.DB.GetContext(ctx, &count, query, args...); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *PGRepository) TotalQuantity(ctx context.Context, warehouseID string) (int, error) {
	var total int
	err := r.DB.GetContext(ctx, &total, `SELECT COALESCE(SUM(quantity), 0) FROM warehouse_stock WHERE warehouse_id = $1`, warehouseID)
	return total, err
}

func (r *PGRepository) ListStock(ctx context.Context, merchantID, warehouseID string) ([]dto.StockLine, error) {
	lines := []dto.StockLine{}
	err := r.DB.SelectContext(ctx, &lines, `
        SELECT ws.product_id, p.sku, p.name, ws.quantity, ws.reorder_point, ws.updated_at
        FROM warehouse_stock ws
        JOIN products p ON p.id = ws.product_id
        WHERE ws.merchant_id = $1 AND ws.warehouse_id = $2
        ORDER BY p.name ASC
    `, merchantID, warehouseID)
	return lines, err
}

// SetReorderPoint creates the stock row with zero quantity when the product
// has never been received here.
func (r *PGRepository) SetReorderPoint(ctx context.Context, merchantID, warehouseID, productID string, reorderPoint int) (*model.WarehouseStock, error) {
	var ws model.WarehouseStock
	err := r.DB.GetContext(ctx, &ws, `
        INSERT INTO warehouse_stock (id, merchant_id, warehouse_id, product_id, quantity, reorder_point, updated_at)
        VALUES ($1, $2, $3, $4, 0, $5, NOW())
        ON CONFLICT (warehouse_id, product_id)
        DO UPDATE SET reorder_point = EXCLUDED.reorder_point, updated_at = NOW()
        RETURNING id, merchant_id, warehouse_id, product_id, quantity, reorder_point, updated_at
    `, uuid.New().String(), merchantID, warehouseID, productID, reorderPoint)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return nil, warehouse.ErrProductNotFound
		}
		return nil, err
	}
	return &ws, nil
}
