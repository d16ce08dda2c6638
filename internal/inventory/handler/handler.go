package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/httputil"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

type adjustStockRequest struct {
	ProductID     string  `json:"product_id" validate:"required"`
	WarehouseID   *string `json:"warehouse_id" validate:"omitempty,min=1"`
	Delta         int     `json:"delta" validate:"required"`
	Reason        string  `json:"reason" validate:"omitempty,oneof=manual_adjustment restock sale return damage"`
	ReferenceType string  `json:"reference_type"`
	ReferenceID   string  `json:"reference_id"`
	Notes         string  `json:"notes" validate:"max=500"`
}

type transferStockRequest struct {
	ProductID       string `json:"product_id" validate:"required"`
	FromWarehouseID string `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string `json:"to_warehouse_id" validate:"required"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	Notes           string `json:"notes" validate:"max=500"`
}

func (h *InventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req adjustStockRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	adj, err := h.uc.AdjustStock(r.Context(), &dto.AdjustStockInput{
		MerchantID:    auth.GetMerchantID(r.Context()),
		ProductID:     req.ProductID,
		WarehouseID:   req.WarehouseID,
		Delta:         req.Delta,
		Reason:        req.Reason,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Notes:         req.Notes,
		UserID:        auth.GetUserID(r.Context()),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, adj)
}

func (h *InventoryHandler) TransferStock(w http.ResponseWriter, r *http.Request) {
	var req transferStockRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	legs, err := h.uc.TransferStock(r.Context(), &dto.TransferStockInput{
		MerchantID:      auth.GetMerchantID(r.Context()),
		FromWarehouseID: req.FromWarehouseID,
		ToWarehouseID:   req.ToWarehouseID,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		Notes:           req.Notes,
		UserID:          auth.GetUserID(r.Context()),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, legs)
}

// parseTime accepts RFC 3339 timestamps or plain dates.
func parseTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

func (h *InventoryHandler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := &dto.AdjustmentFilters{
		MerchantID:  auth.GetMerchantID(r.Context()),
		ProductID:   q.Get("product_id"),
		WarehouseID: q.Get("warehouse_id"),
		Reason:      q.Get("reason"),
		StartDate:   parseTime(q.Get("from")),
		EndDate:     parseTime(q.Get("to")),
		Page:        httputil.QueryInt(r, "page", 1),
		PageSize:    httputil.QueryInt(r, "page_size", 50),
	}

	items, total, err := h.uc.ListAdjustments(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.ListResponse{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize})
}

func (h *InventoryHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	f := &dto.LowStockFilters{
		MerchantID:  auth.GetMerchantID(r.Context()),
		WarehouseID: r.URL.Query().Get("warehouse_id"),
		Page:        httputil.QueryInt(r, "page", 1),
		PageSize:    httputil.QueryInt(r, "page_size", 50),
	}

	items, total, err := h.uc.ListLowStock(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.ListResponse{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize})
}

func (h *InventoryHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, inventory.ErrInsufficientStock):
		httputil.WriteError(w, r, http.StatusConflict, i18n.MsgStockNegative, nil)
	case errors.Is(err, inventory.ErrProductNotFound):
		httputil.WriteError(w, r, http.StatusNotFound, i18n.MsgProductNotFound, nil)
	case errors.Is(err, inventory.ErrWarehouseNotFound):
		httputil.WriteError(w, r, http.StatusNotFound, i18n.MsgWarehouseNotFound, nil)
	case errors.Is(err, inventory.ErrSameWarehouse):
		httputil.WriteError(w, r, http.StatusBadRequest, i18n.MsgSameWarehouse, nil)
	case errors.Is(err, inventory.ErrInvalidQuantity):
		httputil.WriteError(w, r, http.StatusBadRequest, i18n.MsgValidationFailed, nil)
	case errors.Is(err, inventory.ErrSystemBusy):
		httputil.WriteError(w, r, http.StatusServiceUnavailable, i18n.MsgSystemBusy, nil)
	default:
		h.logger.Error("inventory request failed", zap.String("path", r.URL.Path), zap.Error(err))
		httputil.WriteError(w, r, http.StatusInternalServerError, i18n.MsgInternal, nil)
	}
}
