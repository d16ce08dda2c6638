package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	carthandler "github.com/fekuna/omnipos-storefront-service/internal/cart/handler"
	"github.com/fekuna/omnipos-storefront-service/internal/user"
	"github.com/fekuna/omnipos-storefront-service/internal/user/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/httputil"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
)

type UserHandler struct {
	uc     user.UseCase
	logger logger.ZapLogger
}

func NewUserHandler(uc user.UseCase, log logger.ZapLogger) *UserHandler {
	return &UserHandler{
		uc:     uc,
		logger: log,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=120"`
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=120"`
	Role     string `json:"role" validate:"required,oneof=customer staff admin"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	res, err := h.uc.Register(r.Context(), &dto.RegisterInput{
		MerchantID:  auth.GetMerchantID(r.Context()),
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		GuestCartID: cart.GuestID(r.Header.Get(carthandler.SessionHeader)),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	res, err := h.uc.Login(r.Context(), &dto.LoginInput{
		MerchantID:  auth.GetMerchantID(r.Context()),
		Email:       req.Email,
		Password:    req.Password,
		GuestCartID: cart.GuestID(r.Header.Get(carthandler.SessionHeader)),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.uc.Me(r.Context(), auth.GetMerchantID(r.Context()), auth.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	u, err := h.uc.CreateUser(r.Context(), &dto.CreateUserInput{
		MerchantID: auth.GetMerchantID(r.Context()),
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Role:       req.Role,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, user.ErrInvalidCredentials):
		httputil.WriteError(w, r, http.StatusUnauthorized, i18n.MsgInvalidCredentials, nil)
	case errors.Is(err, user.ErrEmailTaken):
		httputil.WriteError(w, r, http.StatusConflict, i18n.MsgEmailTaken, nil)
	case errors.Is(err, user.ErrInvalidRole):
		httputil.WriteError(w, r, http.StatusBadRequest, i18n.MsgValidationFailed, nil)
	case errors.Is(err, user.ErrUserNotFound):
		httputil.WriteError(w, r, http.StatusUnauthorized, i18n.MsgUnauthorized, nil)
	default:
		h.logger.Error("auth request failed", zap.String("path", r.URL.Path), zap.Error(err))
		httputil.WriteError(w, r, http.StatusInternalServerError, i18n.MsgInternal, nil)
	}
}
