package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/warehouse"
	"github.com/fekuna/omnipos-storefront-service/internal/warehouse/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/httputil"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type WarehouseHandler struct {
	uc     warehouse.UseCase
	logger logger.ZapLogger
}

func NewWarehouseHandler(uc warehouse.UseCase, log logger.ZapLogger) *WarehouseHandler {
	return &WarehouseHandler{uc: uc, logger: log}
}

type warehouseRequest struct {
	Code     string `json:"code" validate:"required,max=32"`
	Name     string `json:"name" validate:"required,max=255"`
	Address  string `json:"address" validate:"max=500"`
	IsActive *bool  `json:"is_active"`
}

type reorderPointRequest struct {
	ReorderPoint int `json:"reorder_point" validate:"gte=0"`
}

func (h *WarehouseHandler) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req warehouseRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	wh, err := h.uc.CreateWarehouse(r.Context(), &dto.CreateWarehouseInput{
		MerchantID: auth.GetMerchantID(r.Context()),
		Code:       req.Code,
		Name:       req.Name,
		Address:    req.Address,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, wh)
}

func (h *WarehouseHandler) GetWarehouse(w http.ResponseWriter, r *http.Request) {
	wh, err := h.uc.GetWarehouse(r.Context(), auth.GetMerchantID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, wh)
}

func (h *WarehouseHandler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	f := &dto.WarehouseFilters{
		MerchantID: auth.GetMerchantID(r.Context()),
		IsActive:   httputil.QueryBool(r, "is_active"),
		Page:       httputil.QueryInt(r, "page", 1),
		PageSize:   httputil.QueryInt(r, "page_size", 0),
	}
	items, total, err := h.uc.ListWarehouses(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.ListResponse{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize})
}

func (h *WarehouseHandler) UpdateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req warehouseRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	wh, err := h.uc.UpdateWarehouse(r.Context(), &dto.UpdateWarehouseInput{
		ID:         mux.Vars(r)["id"],
		MerchantID: auth.GetMerchantID(r.Context()),
		Code:       req.Code,
		Name:       req.Name,
		Address:    req.Address,
		IsActive:   active,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, wh)
}

func (h *WarehouseHandler) DeleteWarehouse(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteWarehouse(r.Context(), auth.GetMerchantID(r.Context()), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WarehouseHandler) GetWarehouseStock(w http.ResponseWriter, r *http.Request) {
	lines, err := h.uc.GetWarehouseStock(r.Context(), auth.GetMerchantID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.ListResponse{Items: lines, Total: len(lines)})
}

func (h *WarehouseHandler) SetReorderPoint(w http.ResponseWriter, r *http.Request) {
	var req reorderPointRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	ws, err := h.uc.SetReorderPoint(r.Context(), auth.GetMerchantID(r.Context()), vars["id"], vars["productId"], req.ReorderPoint)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ws)
}

func (h *WarehouseHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, warehouse.ErrWarehouseNotFound):
		httputil.WriteError(w, r, http.StatusNotFound, i18n.MsgWarehouseNotFound, nil)
	case errors.Is(err, warehouse.ErrProductNotFound):
		httputil.WriteError(w, r, http.StatusNotFound, i18n.MsgProductNotFound, nil)
	case errors.Is(err, warehouse.ErrCodeTaken):
		httputil.WriteError(w, r, http.StatusConflict, i18n.MsgWarehouseCodeTaken, nil)
	case errors.Is(err, warehouse.ErrWarehouseNotEmpty):
		httputil.WriteError(w, r, http.StatusConflict, i18n.MsgWarehouseNotEmpty, nil)
	default:
		h.logger.Error("warehouse request failed", zap.String("path", r.URL.Path), zap.Error(err))
		httputil.WriteError(w, r, http.StatusInternalServerError, i18n.MsgInternal, nil)
	}
}
