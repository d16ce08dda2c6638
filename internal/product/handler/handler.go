package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/product"
	"github.com/fekuna/omnipos-storefront-service/internal/product/dto"
	"github.com/fekuna/omnipos-storefront-service/pkg/httputil"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

type createProductRequest struct {
	CategoryID   string  `json:"category_id" validate:"omitempty,uuid"`
	SKU          string  `json:"sku" validate:"required,max=64"`
	Barcode      string  `json:"barcode" validate:"max=64"`
	Name         string  `json:"name" validate:"required,max=255"`
	Description  string  `json:"description"`
	BasePrice    float64 `json:"base_price" validate:"gte=0"`
	CostPrice    float64 `json:"cost_price" validate:"gte=0"`
	Stock        int     `json:"stock" validate:"gte=0"`
	ReorderPoint int     `json:"reorder_point" validate:"gte=0"`
	ImageURL     string  `json:"image_url" validate:"omitempty,url"`
}

type updateProductRequest struct {
	CategoryID   string  `json:"category_id" validate:"omitempty,uuid"`
	SKU          string  `json:"sku" validate:"required,max=64"`
	Barcode      string  `json:"barcode" validate:"max=64"`
	Name         string  `json:"name" validate:"required,max=255"`
	Description  string  `json:"description"`
	BasePrice    float64 `json:"base_price" validate:"gte=0"`
	CostPrice    float64 `json:"cost_price" validate:"gte=0"`
	ReorderPoint int     `json:"reorder_point" validate:"gte=0"`
	Rating       float64 `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount  int     `json:"review_count" validate:"gte=0"`
	ImageURL     string  `json:"image_url" validate:"omitempty,url"`
	IsActive     *bool   `json:"is_active" validate:"required"`
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	p, err := h.uc.CreateProduct(r.Context(), &dto.CreateProductInput{
		MerchantID:   auth.GetMerchantID(r.Context()),
		CategoryID:   req.CategoryID,
		SKU:          req.SKU,
		Barcode:      req.Barcode,
		Name:         req.Name,
		Description:  req.Description,
		BasePrice:    req.BasePrice,
		CostPrice:    req.CostPrice,
		Stock:        req.Stock,
		ReorderPoint: req.ReorderPoint,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetProduct(r.Context(), auth.GetMerchantID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !p.IsActive && !auth.IsStaff(r.Context()) {
		h.writeError(w, r, product.ErrProductNotFound)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, p)
}

// ParseFilters reads the catalog filter set from the query string. Shoppers
// only ever see active products.
func ParseFilters(r *http.Request) *dto.ProductFilters {
	f := &dto.ProductFilters{
		MerchantID:  auth.GetMerchantID(r.Context()),
		CategoryID:  r.URL.Query().Get("category_id"),
		IsActive:    httputil.QueryBool(r, "is_active"),
		InStock:     httputil.QueryBool(r, "in_stock"),
		MinPrice:    httputil.QueryFloat(r, "min_price"),
		MaxPrice:    httputil.QueryFloat(r, "max_price"),
		MinRating:   httputil.QueryFloat(r, "min_rating"),
		SearchQuery: r.URL.Query().Get("search"),
		SortBy:      r.URL.Query().Get("sort_by"),
		SortOrder:   r.URL.Query().Get("sort_order"),
		Page:        httputil.QueryInt(r, "page", 1),
		PageSize:    httputil.QueryInt(r, "page_size", defaultPageSize),
	}
	if q := r.URL.Query().Get("q"); q != "" && f.SearchQuery == "" {
		f.SearchQuery = q
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > maxPageSize {
		f.PageSize = defaultPageSize
	}
	if !auth.IsStaff(r.Context()) {
		active := true
		f.IsActive = &active
	}
	return f
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f := ParseFilters(r)
	products, total, err := h.uc.ListProducts(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.ListResponse{Items: products, Total: total, Page: f.Page, PageSize: f.PageSize})
}

func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	f := ParseFilters(r)
	products, total, err := h.uc.SearchProducts(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.ListResponse{Items: products, Total: total, Page: f.Page, PageSize: f.PageSize})
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	p, err := h.uc.UpdateProduct(r.Context(), &dto.UpdateProductInput{
		ID:           mux.Vars(r)["id"],
		MerchantID:   auth.GetMerchantID(r.Context()),
		CategoryID:   req.CategoryID,
		SKU:          req.SKU,
		Barcode:      req.Barcode,
		Name:         req.Name,
		Description:  req.Description,
		BasePrice:    req.BasePrice,
		CostPrice:    req.CostPrice,
		ReorderPoint: req.ReorderPoint,
		Rating:       req.Rating,
		ReviewCount:  req.ReviewCount,
		ImageURL:     req.ImageURL,
		IsActive:     *req.IsActive,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteProduct(r.Context(), auth.GetMerchantID(r.Context()), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		httputil.WriteError(w, r, http.StatusNotFound, i18n.MsgProductNotFound, nil)
	case errors.Is(err, product.ErrSKUTaken):
		httputil.WriteError(w, r, http.StatusConflict, i18n.MsgSKUTaken, nil)
	case errors.Is(err, product.ErrBarcodeTaken):
		httputil.WriteError(w, r, http.StatusConflict, i18n.MsgBarcodeTaken, nil)
	default:
		h.logger.Error("product request failed", zap.String("path", r.URL.Path), zap.Error(err))
		httputil.WriteError(w, r, http.StatusInternalServerError, i18n.MsgInternal, nil)
	}
}
