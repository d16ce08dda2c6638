package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/inventory"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const adjustmentColumns = `id, merchant_id, product_id, warehouse_id, delta, previous_stock, new_stock,
	reason, reference_type, reference_id, notes, created_by, created_at`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// ApplyProductDelta moves the catalog stock of a product with a conditional
// relative update and returns the new stock. It is exported so checkout can
// run it inside its own transaction.
func ApplyProductDelta(ctx context.Context, ext sqlx.ExtContext, merchantID, productID string, delta int) (int, error) {
	var newStock int
	err := sqlx.GetContext(ctx, ext, &newStock, `
        UPDATE products
        SET stock = stock + $1, updated_at = NOW()
        WHERE id = $2 AND merchant_id = $3 AND stock + $1 >= 0
        RETURNING stock
    `, delta, productID, merchantID)
	if err == nil {
		return newStock, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	var exists bool
	if err := sqlx.GetContext(ctx, ext, &exists, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1 AND merchant_id = $2)`, productID, merchantID); err != nil {
		return 0, err
	}
	if !exists {
		return 0, inventory.ErrProductNotFound
	}
	return 0, inventory.ErrInsufficientStock
}

// ApplyWarehouseDelta moves the quantity of a product held in one warehouse,
// creating the warehouse_stock row on first receipt. It returns the previous
// and new quantity.
func ApplyWarehouseDelta(ctx context.Context, ext sqlx.ExtContext, merchantID, warehouseID, productID string, delta int) (int, int, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, ext, &exists, `SELECT EXISTS(SELECT 1 FROM warehouses WHERE id = $1 AND merchant_id = $2)`, warehouseID, merchantID); err != nil {
		return 0, 0, err
	}
	if !exists {
		return 0, 0, inventory.ErrWarehouseNotFound
	}

	var current int
	err := sqlx.GetContext(ctx, ext, &current, `
        SELECT quantity FROM warehouse_stock
        WHERE warehouse_id = $1 AND product_id = $2
        FOR UPDATE
    `, warehouseID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		if delta < 0 {
			return 0, 0, inventory.ErrInsufficientStock
		}
		_, err = ext.ExecContext(ctx, `
            INSERT INTO warehouse_stock (id, merchant_id, warehouse_id, product_id, quantity, reorder_point, updated_at)
            VALUES ($1, $2, $3, $4, $5, 0, NOW())
        `, uuid.New().String(), merchantID, warehouseID, productID, delta)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to create warehouse stock: %w", err)
		}
		return 0, delta, nil
	}
	if err != nil {
		return 0, 0, err
	}

	next := current + delta
	if next < 0 {
		return 0, 0, inventory.ErrInsufficientStock
	}
	_, err = ext.ExecContext(ctx, `
        UPDATE warehouse_stock SET quantity = $1, updated_at = NOW()
        WHERE warehouse_id = $2 AND product_id = $3
    `, next, warehouseID, productID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to update warehouse stock: %w", err)
	}
	return current, next, nil
}

// InsertAdjustment appends one ledger entry using ext, which may be a transaction.
func InsertAdjustment(ctx context.Context, ext sqlx.ExtContext, adj *model.InventoryAdjustment) error {
	if adj.ID == "" {
		adj.ID = uuid.New().String()
	}
	if adj.CreatedAt.IsZero() {
		adj.CreatedAt = time.Now()
	}
	_, err := sqlx.NamedExecContext(ctx, ext, `
        INSERT INTO inventory_adjustments (
            id, merchant_id, product_id, warehouse_id, delta, previous_stock, new_stock,
            reason, reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :merchant_id, :product_id, :warehouse_id, :delta, :previous_stock, :new_stock,
            :reason, :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `, adj)
	if err != nil {
		return fmt.Errorf("failed to log adjustment: %w", err)
	}
	return nil
}

func (r *PGRepository) ApplyAdjustment(ctx context.Context, adj *model.InventoryAdjustment) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if adj.WarehouseID != nil {
		prev, next, err := ApplyWarehouseDelta(ctx, tx, adj.MerchantID, *adj.WarehouseID, adj.ProductID, adj.Delta)
		if err != nil {
			return err
		}
		if _, err := ApplyProductDelta(ctx, tx, adj.MerchantID, adj.ProductID, adj.Delta); err != nil {
			return err
		}
		adj.PreviousStock, adj.NewStock = prev, next
	} else {
		next, err := ApplyProductDelta(ctx, tx, adj.MerchantID, adj.ProductID, adj.Delta)
		if err != nil {
			return err
		}
		adj.PreviousStock, adj.NewStock = next-adj.Delta, next
	}

	if err := InsertAdjustment(ctx, tx, adj); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepository) Transfer(ctx context.Context, out, in *model.InventoryAdjustment) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, leg := range []*model.InventoryAdjustment{out, in} {
		prev, next, err := ApplyWarehouseDelta(ctx, tx, leg.MerchantID, *leg.WarehouseID, leg.ProductID, leg.Delta)
		if err != nil {
			return err
		}
		leg.PreviousStock, leg.NewStock = prev, next
		if err := InsertAdjustment(ctx, tx, leg); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PGRepository) ListAdjustments(ctx context.Context, f *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error) {
	conditions := []string{"merchant_id = :merchant_id"}
	args := map[string]interface{}{"merchant_id": f.MerchantID}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.WarehouseID != "" {
		conditions = append(conditions, "warehouse_id = :warehouse_id")
		args["warehouse_id"] = f.WarehouseID
	}
	if f.Reason != "" {
		conditions = append(conditions, "reason = :reason")
		args["reason"] = f.Reason
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at < :end_date")
		args["end_date"] = *f.EndDate
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	var count int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM inventory_adjustments"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + adjustmentColumns + " FROM inventory_adjustments" + whereClause + " ORDER BY created_at DESC, id"
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
	items := []model.InventoryAdjustment{}
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(listQuery), listArgs...); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *PGRepository) ListLowStock(ctx context.Context, f *dto.LowStockFilters) ([]dto.LowStockItem, int, error) {
	var from, selectCols string
	args := []interface{}{f.MerchantID}

	if f.WarehouseID == "" {
		selectCols = "p.id AS product_id, p.sku, p.name, NULL AS warehouse_id, p.stock AS quantity, p.reorder_point"
		from = " FROM products p WHERE p.merchant_id = $1 AND p.is_active AND p.stock <= p.reorder_point"
	} else {
		selectCols = "p.id AS product_id, p.sku, p.name, ws.warehouse_id, ws.quantity, ws.reorder_point"
		from = ` FROM warehouse_stock ws JOIN products p ON p.id = ws.product_id
            WHERE ws.merchant_id = $1 AND ws.warehouse_id = $2 AND ws.quantity <= ws.reorder_point`
		args = append(args, f.WarehouseID)
	}

	var count int
	if err := r.DB.GetContext(ctx, &count, "SELECT count(*)"+from, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + selectCols + from + " ORDER BY quantity ASC, p.name ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	items := []dto.LowStockItem{}
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}
