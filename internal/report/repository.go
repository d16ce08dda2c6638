// Package report builds the merchant dashboard and the scheduled stock alerts.
package report

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type Repository interface {
	// Dashboard aggregates catalog, stock and sales figures. Orders count
	// from since; cancelled orders are left out.
	Dashboard(ctx context.Context, merchantID string, since time.Time, topN int) (*model.DashboardSummary, error)
	// Merchants lists every merchant with at least one active product.
	Merchants(ctx context.Context) ([]string, error)
}

type UseCase interface {
	// Dashboard serves the cached summary when there is one.
	Dashboard(ctx context.Context, merchantID string) (*model.DashboardSummary, error)
	// Refresh recomputes the summary and replaces the cached copy.
	Refresh(ctx context.Context, merchantID string) (*model.DashboardSummary, error)
	Merchants(ctx context.Context) ([]string, error)
}
