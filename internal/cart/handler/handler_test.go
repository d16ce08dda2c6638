package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/promo"
	"github.com/fekuna/omnipos-storefront-service/pkg/httputil"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	cart.UseCase
	cartID    string
	productID string
	quantity  int
	err       error
}

func (s *stubUseCase) view(cartID string) *model.CartView {
	return &model.CartView{Cart: &model.Cart{ID: cartID, MerchantID: "m1", Items: []model.CartItem{}}}
}

func (s *stubUseCase) GetCart(_ context.Context, _, cartID string) (*model.CartView, error) {
	s.cartID = cartID
	if cartID == "" {
		return nil, cart.ErrNoCartIdentity
	}
	return s.view(cartID), nil
}

func (s *stubUseCase) AddItem(_ context.Context, _, cartID, productID string, quantity int) (*model.CartView, error) {
	s.cartID, s.productID, s.quantity = cartID, productID, quantity
	if s.err != nil {
		return nil, s.err
	}
	return s.view(cartID), nil
}

func (s *stubUseCase) UpdateQuantity(_ context.Context, _, cartID, productID string, quantity int) (*model.CartView, error) {
	s.cartID, s.productID, s.quantity = cartID, productID, quantity
	return s.view(cartID), nil
}

func (s *stubUseCase) ApplyPromo(_ context.Context, _, cartID, _ string) (*model.CartView, error) {
	s.cartID = cartID
	if s.err != nil {
		return nil, s.err
	}
	return s.view(cartID), nil
}

func guestRequest(method, target, body, session string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	return req.WithContext(auth.WithUser(req.Context(), auth.UserContext{MerchantID: "m1"}))
}

func TestGetCart_GuestSession(t *testing.T) {
	uc := &stubUseCase{}
	h := NewCartHandler(uc, logger.NewNop())
	rec := httptest.NewRecorder()

	h.GetCart(rec, guestRequest(http.MethodGet, "/cart", "", "abc"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "guest-abc", uc.cartID)
}

func TestGetCart_SignedInUserWins(t *testing.T) {
	uc := &stubUseCase{}
	h := NewCartHandler(uc, logger.NewNop())
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(SessionHeader, "abc")
	req = req.WithContext(auth.WithUser(req.Context(), auth.UserContext{MerchantID: "m1", UserID: "u1", Role: model.RoleCustomer}))
	h.GetCart(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", uc.cartID)
}

func TestGetCart_NoIdentity(t *testing.T) {
	i18n.Init()
	h := NewCartHandler(&stubUseCase{}, logger.NewNop())
	rec := httptest.NewRecorder()

	h.GetCart(rec, guestRequest(http.MethodGet, "/cart", "", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, i18n.MsgCartSessionRequired, body.Error.Code)
}

func TestAddItem_Validation(t *testing.T) {
	uc := &stubUseCase{}
	h := NewCartHandler(uc, logger.NewNop())
	rec := httptest.NewRecorder()

	h.AddItem(rec, guestRequest(http.MethodPost, "/cart/items", `{"product_id":"p1","quantity":0}`, "abc"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, uc.productID)
}

func TestAddItem_InsufficientStock(t *testing.T) {
	i18n.Init()
	uc := &stubUseCase{err: cart.ErrInsufficientStock}
	h := NewCartHandler(uc, logger.NewNop())
	rec := httptest.NewRecorder()

	h.AddItem(rec, guestRequest(http.MethodPost, "/cart/items", `{"product_id":"p1","quantity":3}`, "abc"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 3, uc.quantity)
}

func TestUpdateItem_UsesPathProduct(t *testing.T) {
	uc := &stubUseCase{}
	h := NewCartHandler(uc, logger.NewNop())
	rec := httptest.NewRecorder()

	req := guestRequest(http.MethodPut, "/cart/items/p9", `{"quantity":0}`, "abc")
	req = mux.SetURLVars(req, map[string]string{"productId": "p9"})
	h.UpdateItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p9", uc.productID)
	assert.Equal(t, 0, uc.quantity)
}

func TestApplyPromo_Invalid(t *testing.T) {
	i18n.Init()
	uc := &stubUseCase{err: promo.ErrInvalidPromoCode}
	h := NewCartHandler(uc, logger.NewNop())
	rec := httptest.NewRecorder()

	h.ApplyPromo(rec, guestRequest(http.MethodPost, "/cart/promo", `{"code":"NOPE"}`, "abc"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid promo code", body.Error.Message)
}
