package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory"
	"github.com/fekuna/omnipos-storefront-service/internal/order"
	"github.com/fekuna/omnipos-storefront-service/internal/order/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/httputil"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: log,
	}
}

type checkoutRequest struct {
	Shipping dto.ShippingAddress `json:"shipping"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
	Note   string `json:"note" validate:"max=500"`
}

func viewer(r *http.Request) dto.Viewer {
	ctx := r.Context()
	return dto.Viewer{
		MerchantID: auth.GetMerchantID(ctx),
		UserID:     auth.GetUserID(ctx),
		Staff:      auth.IsStaff(ctx),
	}
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	userID := auth.GetUserID(r.Context())
	o, err := h.uc.Checkout(r.Context(), &dto.CheckoutInput{
		MerchantID: auth.GetMerchantID(r.Context()),
		UserID:     userID,
		CartID:     cart.ID(userID, ""),
		Shipping:   req.Shipping,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	v := viewer(r)
	f := &dto.OrderFilters{
		MerchantID: v.MerchantID,
		UserID:     v.UserID,
		Status:     r.URL.Query().Get("status"),
		Page:       httputil.QueryInt(r, "page", 1),
		PageSize:   httputil.QueryInt(r, "page_size", 20),
	}
	if v.Staff {
		f.UserID = r.URL.Query().Get("user_id")
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}

	orders, total, err := h.uc.ListOrders(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":      orders,
		"total":     total,
		"page":      f.Page,
		"page_size": f.PageSize,
	})
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.GetOrder(r.Context(), viewer(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	history, err := h.uc.TrackOrder(r.Context(), viewer(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": history})
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	o, err := h.uc.UpdateStatus(r.Context(), &dto.UpdateStatusInput{
		MerchantID: auth.GetMerchantID(r.Context()),
		OrderID:    mux.Vars(r)["id"],
		Status:     req.Status,
		Note:       req.Note,
		ActorID:    auth.GetUserID(r.Context()),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var te *order.TransitionError
	switch {
	case errors.As(err, &te):
		httputil.WriteError(w, r, http.StatusConflict, i18n.MsgInvalidTransition, map[string]interface{}{"From": te.From, "To": te.To})
	case errors.Is(err, order.ErrOrderNotFound):
		httputil.WriteError(w, r, http.StatusNotFound, i18n.MsgOrderNotFound, nil)
	case errors.Is(err, order.ErrInvalidStatus):
		httputil.WriteError(w, r, http.StatusBadRequest, i18n.MsgValidationFailed, nil)
	case errors.Is(err, cart.ErrCartEmpty):
		httputil.WriteError(w, r, http.StatusBadRequest, i18n.MsgCartEmpty, nil)
	case errors.Is(err, cart.ErrNoCartIdentity):
		httputil.WriteError(w, r, http.StatusUnauthorized, i18n.MsgUnauthorized, nil)
	case errors.Is(err, inventory.ErrInsufficientStock):
		httputil.WriteError(w, r, http.StatusConflict, i18n.MsgInsufficientStock, nil)
	case errors.Is(err, inventory.ErrProductNotFound):
		httputil.WriteError(w, r, http.StatusConflict, i18n.MsgProductNotFound, nil)
	case errors.Is(err, cart.ErrProductInactive):
		httputil.WriteError(w, r, http.StatusUnprocessableEntity, i18n.MsgProductInactive, nil)
	default:
		h.logger.Error("order request failed", zap.String("path", r.URL.Path), zap.Error(err))
		httputil.WriteError(w, r, http.StatusInternalServerError, i18n.MsgInternal, nil)
	}
}
