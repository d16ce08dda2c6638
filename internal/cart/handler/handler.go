package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/promo"
	"github.com/fekuna/omnipos-storefront-service/pkg/httputil"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SessionHeader carries the guest cart session for shoppers who are not signed in.
const SessionHeader = "X-Cart-Session"

type CartHandler struct {
	uc     cart.UseCase
	logger logger.ZapLogger
}

func NewCartHandler(uc cart.UseCase, log logger.ZapLogger) *CartHandler {
	return &CartHandler{
		uc:     uc,
		logger: log,
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type applyPromoRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// CartID resolves the cart of the current request.
func CartID(r *http.Request) string {
	return cart.ID(auth.GetUserID(r.Context()), r.Header.Get(SessionHeader))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.uc.GetCart(r.Context(), auth.GetMerchantID(r.Context()), CartID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	view, err := h.uc.AddItem(r.Context(), auth.GetMerchantID(r.Context()), CartID(r), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	productID := mux.Vars(r)["productId"]
	view, err := h.uc.UpdateQuantity(r.Context(), auth.GetMerchantID(r.Context()), CartID(r), productID, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["productId"]
	view, err := h.uc.RemoveItem(r.Context(), auth.GetMerchantID(r.Context()), CartID(r), productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Clear(r.Context(), auth.GetMerchantID(r.Context()), CartID(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req applyPromoRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	view, err := h.uc.ApplyPromo(r.Context(), auth.GetMerchantID(r.Context()), CartID(r), req.Code)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemovePromo(w http.ResponseWriter, r *http.Request) {
	view, err := h.uc.RemovePromo(r.Context(), auth.GetMerchantID(r.Context()), CartID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *CartHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrNoCartIdentity):
		httputil.WriteError(w, r, http.StatusBadRequest, i18n.MsgCartSessionRequired, nil)
	case errors.Is(err, cart.ErrInvalidQuantity):
		httputil.WriteError(w, r, http.StatusBadRequest, i18n.MsgValidationFailed, nil)
	case errors.Is(err, promo.ErrInvalidPromoCode):
		httputil.WriteError(w, r, http.StatusBadRequest, i18n.MsgInvalidPromoCode, nil)
	case errors.Is(err, cart.ErrProductNotFound):
		httputil.WriteError(w, r, http.StatusNotFound, i18n.MsgProductNotFound, nil)
	case errors.Is(err, cart.ErrItemNotFound):
		httputil.WriteError(w, r, http.StatusNotFound, i18n.MsgCartItemNotFound, nil)
	case errors.Is(err, cart.ErrProductInactive):
		httputil.WriteError(w, r, http.StatusUnprocessableEntity, i18n.MsgProductInactive, nil)
	case errors.Is(err, cart.ErrInsufficientStock):
		httputil.WriteError(w, r, http.StatusConflict, i18n.MsgInsufficientStock, nil)
	default:
		h.logger.Error("cart request failed", zap.String("path", r.URL.Path), zap.Error(err))
		httputil.WriteError(w, r, http.StatusInternalServerError, i18n.MsgInternal, nil)
	}
}
