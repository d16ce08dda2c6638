// Package server assembles the HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	carthandler "github.com/fekuna/omnipos-storefront-service/internal/cart/handler"
	cathandler "github.com/fekuna/omnipos-storefront-service/internal/category/handler"
	"github.com/fekuna/omnipos-storefront-service/internal/docs"
	invhandler "github.com/fekuna/omnipos-storefront-service/internal/inventory/handler"
	orderhandler "github.com/fekuna/omnipos-storefront-service/internal/order/handler"
	prodhandler "github.com/fekuna/omnipos-storefront-service/internal/product/handler"
	reporthandler "github.com/fekuna/omnipos-storefront-service/internal/report/handler"
	userhandler "github.com/fekuna/omnipos-storefront-service/internal/user/handler"
	whhandler "github.com/fekuna/omnipos-storefront-service/internal/warehouse/handler"
	"github.com/fekuna/omnipos-storefront-service/pkg/httputil"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/pkg/middleware"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handlers struct {
	User      *userhandler.UserHandler
	Category  *cathandler.CategoryHandler
	Product   *prodhandler.ProductHandler
	Cart      *carthandler.CartHandler
	Order     *orderhandler.OrderHandler
	Inventory *invhandler.InventoryHandler
	Warehouse *whhandler.WarehouseHandler
	Report    *reporthandler.ReportHandler
}

// HealthCheck reports one dependency.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Handlers Handlers
	Auth     *auth.Middleware
	Metrics  *middleware.Metrics
	Limiter  *middleware.RateLimiter
	Logger   logger.ZapLogger
	Health   map[string]HealthCheck
}

type route struct {
	name    string
	method  string
	path    string
	handler http.HandlerFunc
	meta    docs.Meta
}

// access wraps h with the checks meta asks for.
func access(meta docs.Meta, h http.Handler) http.Handler {
	switch {
	case meta.Permission != "":
		return auth.RequirePermission(auth.Permission(meta.Permission), h)
	case meta.Auth:
		return auth.RequireAuth(h)
	}
	return h
}

func perm(p auth.Permission, description string) docs.Meta {
	return docs.Meta{Description: description, Permission: string(p), Auth: true}
}

func signedIn(description string) docs.Meta {
	return docs.Meta{Description: description, Auth: true}
}

func public(description string) docs.Meta {
	return docs.Meta{Description: description}
}

func routes(h Handlers) []route {
	return []route{
		{"auth.register", http.MethodPost, "/auth/register", h.User.Register, public("Create a customer account")},
		{"auth.login", http.MethodPost, "/auth/login", h.User.Login, public("Sign in and receive a bearer token; merges the guest cart")},
		{"auth.me", http.MethodGet, "/auth/me", h.User.Me, signedIn("Current user and permissions")},
		{"users.create", http.MethodPost, "/users", h.User.CreateUser, perm(auth.PermUsersManage, "Create a customer, staff or admin account")},

		{"categories.list", http.MethodGet, "/categories", h.Category.ListCategories, public("List categories, flat or as a tree")},
		{"categories.create", http.MethodPost, "/categories", h.Category.CreateCategory, perm(auth.PermCategoriesWrite, "Create a category")},
		{"categories.get", http.MethodGet, "/categories/{id}", h.Category.GetCategory, public("Get a category")},
		{"categories.update", http.MethodPut, "/categories/{id}", h.Category.UpdateCategory, perm(auth.PermCategoriesWrite, "Update a category")},
		{"categories.delete", http.MethodDelete, "/categories/{id}", h.Category.DeleteCategory, perm(auth.PermCategoriesWrite, "Delete a category")},

		{"products.list", http.MethodGet, "/products", h.Product.ListProducts, public("List products with filters, sorting and pagination")},
		{"products.search", http.MethodGet, "/products/search", h.Product.SearchProducts, public("Full text product search")},
		{"products.create", http.MethodPost, "/products", h.Product.CreateProduct, perm(auth.PermProductsWrite, "Create a product")},
		{"products.get", http.MethodGet, "/products/{id}", h.Product.GetProduct, public("Get a product")},
		{"products.update", http.MethodPut, "/products/{id}", h.Product.UpdateProduct, perm(auth.PermProductsWrite, "Update a product")},
		{"products.delete", http.MethodDelete, "/products/{id}", h.Product.DeleteProduct, perm(auth.PermProductsWrite, "Delete a product")},

		{"cart.get", http.MethodGet, "/cart", h.Cart.GetCart, public("Current cart with totals")},
		{"cart.clear", http.MethodDelete, "/cart", h.Cart.ClearCart, public("Empty the cart")},
		{"cart.items.add", http.MethodPost, "/cart/items", h.Cart.AddItem, public("Add a product to the cart")},
		{"cart.items.update", http.MethodPut, "/cart/items/{productId}", h.Cart.UpdateItem, public("Set a line quantity; zero removes it")},
		{"cart.items.remove", http.MethodDelete, "/cart/items/{productId}", h.Cart.RemoveItem, public("Remove a line")},
		{"cart.promo.apply", http.MethodPost, "/cart/promo", h.Cart.ApplyPromo, public("Apply a promo code")},
		{"cart.promo.remove", http.MethodDelete, "/cart/promo", h.Cart.RemovePromo, public("Remove the promo code")},

		{"orders.checkout", http.MethodPost, "/orders/checkout", h.Order.Checkout, signedIn("Place an order from the cart")},
		{"orders.list", http.MethodGet, "/orders", h.Order.ListOrders, signedIn("Own orders; staff see all")},
		{"orders.get", http.MethodGet, "/orders/{id}", h.Order.GetOrder, signedIn("Get an order")},
		{"orders.tracking", http.MethodGet, "/orders/{id}/tracking", h.Order.TrackOrder, signedIn("Order status timeline")},
		{"orders.status", http.MethodPut, "/orders/{id}/status", h.Order.UpdateStatus, perm(auth.PermOrdersManage, "Move an order to its next status")},

		{"inventory.adjust", http.MethodPost, "/inventory/adjustments", h.Inventory.AdjustStock, perm(auth.PermInventoryWrite, "Adjust stock and record it on the ledger")},
		{"inventory.adjustments", http.MethodGet, "/inventory/adjustments", h.Inventory.ListAdjustments, perm(auth.PermInventoryRead, "Browse the adjustment ledger")},
		{"inventory.low_stock", http.MethodGet, "/inventory/low-stock", h.Inventory.ListLowStock, perm(auth.PermInventoryRead, "Products at or below their reorder point")},
		{"inventory.transfer", http.MethodPost, "/inventory/transfers", h.Inventory.TransferStock, perm(auth.PermInventoryWrite, "Move stock between warehouses")},

		{"warehouses.list", http.MethodGet, "/warehouses", h.Warehouse.ListWarehouses, perm(auth.PermInventoryRead, "List warehouses")},
		{"warehouses.create", http.MethodPost, "/warehouses", h.Warehouse.CreateWarehouse, perm(auth.PermWarehousesWrite, "Create a warehouse")},
		{"warehouses.get", http.MethodGet, "/warehouses/{id}", h.Warehouse.GetWarehouse, perm(auth.PermInventoryRead, "Get a warehouse")},
		{"warehouses.update", http.MethodPut, "/warehouses/{id}", h.Warehouse.UpdateWarehouse, perm(auth.PermWarehousesWrite, "Update a warehouse")},
		{"warehouses.delete", http.MethodDelete, "/warehouses/{id}", h.Warehouse.DeleteWarehouse, perm(auth.PermWarehousesWrite, "Delete an empty warehouse")},
		{"warehouses.stock", http.MethodGet, "/warehouses/{id}/stock", h.Warehouse.GetWarehouseStock, perm(auth.PermInventoryRead, "Stock held in a warehouse")},
		{"warehouses.reorder_point", http.MethodPut, "/warehouses/{id}/stock/{productId}", h.Warehouse.SetReorderPoint, perm(auth.PermInventoryWrite, "Set a product's reorder point in a warehouse")},

		{"reports.dashboard", http.MethodGet, "/reports/dashboard", h.Report.Dashboard, perm(auth.PermReportsRead, "Dashboard summary")},
	}
}

// NewRouter registers every API route, /health, /metrics and /api/docs.
func NewRouter(d Deps) (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(middleware.Recover(d.Logger), middleware.Logging(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet).Name("metrics")
	}
	r.HandleFunc("/health", healthHandler(d.Health, d.Logger)).Methods(http.MethodGet).Name("health")

	api := r.PathPrefix("/api/v1").Subrouter()
	if d.Limiter != nil {
		api.Use(d.Limiter.Handler)
	}
	api.Use(d.Auth.Authenticate)

	meta := map[string]docs.Meta{
		"health":  public("Liveness and dependency status"),
		"metrics": public("Prometheus metrics"),
		"docs":    public("This route catalog"),
	}
	for _, rt := range routes(d.Handlers) {
		api.Handle(rt.path, access(rt.meta, rt.handler)).Methods(rt.method).Name(rt.name)
		meta[rt.name] = rt.meta
	}

	docsRoute := r.NewRoute().Path("/api/docs").Methods(http.MethodGet).Name("docs")
	catalog, err := docs.Build(r, meta)
	if err != nil {
		return nil, err
	}
	catalog = append(catalog, docs.Route{Name: "docs", Method: http.MethodGet, Path: "/api/docs", Description: meta["docs"].Description})
	docsRoute.Handler(docs.Handler(catalog))
	return r, nil
}

func healthHandler(checks map[string]HealthCheck, log logger.ZapLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
				deps[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "up"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]interface{}{"status": state, "dependencies": deps})
	}
}
