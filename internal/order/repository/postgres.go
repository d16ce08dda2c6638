package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory"
	invrepo "github.com/fekuna/omnipos-storefront-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order"
	"github.com/fekuna/omnipos-storefront-service/internal/order/dto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const orderColumns = `id, merchant_id, user_id, order_number, status, subtotal, discount, shipping, tax, total,
	promo_code, shipping_name, shipping_line1, shipping_city, shipping_postal_code, shipping_country,
	created_at, updated_at`

const itemColumns = `id, order_id, product_id, sku, name, unit_price, quantity, line_total`

// ReferenceType tags ledger entries written on behalf of an order.
const ReferenceType = "order"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO orders (
            id, merchant_id, user_id, order_number, status, subtotal, discount, shipping, tax, total,
            promo_code, shipping_name, shipping_line1, shipping_city, shipping_postal_code, shipping_country,
            created_at, updated_at
        )
        VALUES (
            :id, :merchant_id, :user_id, :order_number, :status, :subtotal, :discount, :shipping, :tax, :total,
            :promo_code, :shipping_name, :shipping_line1, :shipping_city, :shipping_postal_code, :shipping_country,
            :created_at, :updated_at
        )
    `, o)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		if err := reserve(ctx, tx, o, item); err != nil {
			return err
		}

		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.OrderID = o.ID
		_, err = tx.NamedExecContext(ctx, `
            INSERT INTO order_items (id, order_id, product_id, sku, name, unit_price, quantity, line_total)
            VALUES (:id, :order_id, :product_id, :sku, :name, :unit_price, :quantity, :line_total)
        `, item)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if len(o.History) > 0 {
		if err := insertEvent(ctx, tx, &o.History[0]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// reserve takes the line quantity off catalog stock and records the sale.
// The product row stays locked until commit so it cannot be deactivated
// mid-checkout.
func reserve(ctx context.Context, tx *sqlx.Tx, o *model.Order, item *model.OrderItem) error {
	var active bool
	err := tx.GetContext(ctx, &active, `SELECT is_active FROM products WHERE id = $1 AND merchant_id = $2 FOR UPDATE`, item.ProductID, o.MerchantID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("product %s: %w", item.ProductID, inventory.ErrProductNotFound)
	}
	if err != nil {
		return err
	}
	if !active {
		return fmt.Errorf("product %s: %w", item.ProductID, cart.ErrProductInactive)
	}

	next, err := invrepo.ApplyProductDelta(ctx, tx, o.MerchantID, item.ProductID, -item.Quantity)
	if err != nil {
		if errors.Is(err, inventory.ErrInsufficientStock) || errors.Is(err, inventory.ErrProductNotFound) {
			return fmt.Errorf("product %s: %w", item.ProductID, err)
		}
		return err
	}
	return invrepo.InsertAdjustment(ctx, tx, saleEntry(o, item.ProductID, -item.Quantity, next, model.ReasonSale))
}

func saleEntry(o *model.Order, productID string, delta, newStock int, reason string) *model.InventoryAdjustment {
	refType, refID, actor := ReferenceType, o.ID, o.UserID
	return &model.InventoryAdjustment{
		MerchantID:    o.MerchantID,
		ProductID:     productID,
		Delta:         delta,
		PreviousStock: newStock - delta,
		NewStock:      newStock,
		Reason:        reason,
		ReferenceType: &refType,
		ReferenceID:   &refID,
		Notes:         o.OrderNumber,
		CreatedBy:     &actor,
	}
}

func insertEvent(ctx context.Context, ext sqlx.ExtContext, ev *model.OrderStatusEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	_, err := sqlx.NamedExecContext(ctx, ext, `
        INSERT INTO order_status_events (id, order_id, status, note, created_by, created_at)
        VALUES (:id, :order_id, :status, :note, :created_by, :created_at)
    `, ev)
	if err != nil {
		return fmt.Errorf("failed to insert status event: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND merchant_id = $2`, id, merchantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	orders := []model.Order{o}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	where := []string{"merchant_id = :merchant_id"}
	args := map[string]interface{}{"merchant_id": f.MerchantID}
	if f.UserID != "" {
		where = append(where, "user_id = :user_id")
		args["user_id"] = f.UserID
	}
	if f.Status != "" {
		where = append(where, "status = :status")
		args["status"] = f.Status
	}
	clause := strings.Join(where, " AND ")

	var total int
	countQuery, countArgs, err := sqlx.Named(`SELECT COUNT(*) FROM orders WHERE `+clause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &total, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + clause + ` ORDER BY created_at DESC, id`
	if f.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}
	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}

	orders := []model.Order{}
	if err := r.DB.SelectContext(ctx, &orders, r.DB.Rebind(listQuery), listArgs...); err != nil {
		return nil, 0, err
	}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// loadItems fills Items for every order with one query.
func (r *PGRepository) loadItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []model.OrderItem{}
	}

	query, args, err := sqlx.In(`SELECT `+itemColumns+` FROM order_items WHERE order_id IN (?) ORDER BY name, id`, ids)
	if err != nil {
		return err
	}
	var items []model.OrderItem
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return err
	}
	for _, item := range items {
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return nil
}

func (r *PGRepository) History(ctx context.Context, orderID string) ([]model.OrderStatusEvent, error) {
	events := []model.OrderStatusEvent{}
	err := r.DB.SelectContext(ctx, &events, `
        SELECT id, order_id, status, note, created_by, created_at
        FROM order_status_events
        WHERE order_id = $1
        ORDER BY created_at, id
    `, orderID)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, o *model.Order, ev *model.OrderStatusEvent, restock bool) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// the status guard makes a concurrent move of the same order lose cleanly
	res, err := tx.ExecContext(ctx, `
        UPDATE orders SET status = $1, updated_at = NOW()
        WHERE id = $2 AND merchant_id = $3 AND status = $4
    `, ev.Status, o.ID, o.MerchantID, o.Status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &order.TransitionError{From: o.Status, To: ev.Status}
	}

	if restock {
		for _, item := range o.Items {
			next, err := invrepo.ApplyProductDelta(ctx, tx, o.MerchantID, item.ProductID, item.Quantity)
			if errors.Is(err, inventory.ErrProductNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			entry := saleEntry(o, item.ProductID, item.Quantity, next, model.ReasonOrderCancelled)
			entry.CreatedBy = ev.CreatedBy
			if err := invrepo.InsertAdjustment(ctx, tx, entry); err != nil {
				return err
			}
		}
	}

	ev.OrderID = o.ID
	if err := insertEvent(ctx, tx, ev); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	o.Status = ev.Status
	return nil
}
