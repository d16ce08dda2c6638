package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/category"
	"github.com/fekuna/omnipos-storefront-service/internal/category/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/httputil"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

type categoryRequest struct {
	ParentID    *string `json:"parent_id"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
	SortOrder   int     `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	cat, err := h.uc.CreateCategory(r.Context(), &dto.CreateCategoryInput{
		MerchantID:  auth.GetMerchantID(r.Context()),
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, cat)
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.uc.GetCategory(r.Context(), auth.GetMerchantID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cat)
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	f := &dto.CategoryFilters{
		MerchantID:      auth.GetMerchantID(r.Context()),
		ParentID:        httputil.QueryString(r, "parent_id"),
		IsActive:        httputil.QueryBool(r, "is_active"),
		IncludeChildren: r.URL.Query().Get("include_children") == "true",
		Page:            httputil.QueryInt(r, "page", 1),
		PageSize:        httputil.QueryInt(r, "page_size", 0),
	}
	if !auth.IsStaff(r.Context()) {
		active := true
		f.IsActive = &active
	}

	cats, total, err := h.uc.ListCategories(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.ListResponse{Items: cats, Total: total, Page: f.Page, PageSize: f.PageSize})
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	cat, err := h.uc.UpdateCategory(r.Context(), &dto.UpdateCategoryInput{
		ID:          mux.Vars(r)["id"],
		MerchantID:  auth.GetMerchantID(r.Context()),
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		IsActive:    active,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cat)
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteCategory(r.Context(), auth.GetMerchantID(r.Context()), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, category.ErrCategoryNotFound), errors.Is(err, category.ErrParentNotFound):
		httputil.WriteError(w, r, http.StatusNotFound, i18n.MsgCategoryNotFound, nil)
	case errors.Is(err, category.ErrCyclicParent):
		httputil.WriteError(w, r, http.StatusUnprocessableEntity, i18n.MsgCategoryCycle, nil)
	default:
		h.logger.Error("category request failed", zap.String("path", r.URL.Path), zap.Error(err))
		httputil.WriteError(w, r, http.StatusInternalServerError, i18n.MsgInternal, nil)
	}
}
