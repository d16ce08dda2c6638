package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/inventory"
	"github.com/fekuna/omnipos-storefront-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/report"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	alertPageSize = 100
	runTimeout    = 2 * time.Minute
)

// Scheduler periodically warms every merchant's dashboard and logs the
// products that have fallen to their reorder point.
type Scheduler struct {
	cron      *cron.Cron
	reports   report.UseCase
	inventory inventory.UseCase
	logger    logger.ZapLogger
}

func NewScheduler(spec string, reports report.UseCase, inv inventory.UseCase, log logger.ZapLogger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		reports:   reports,
		inventory: inv,
		logger:    log,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Starting report scheduler")
	s.cron.Start()
}

// Stop waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("report scheduler stop timed out")
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	s.RunOnce(ctx)
}

// RunOnce does one pass over every merchant.
func (s *Scheduler) RunOnce(ctx context.Context) {
	merchants, err := s.reports.Merchants(ctx)
	if err != nil {
		s.logger.Error("failed to list merchants for reports", zap.Error(err))
		return
	}

	for _, merchantID := range merchants {
		if _, err := s.reports.Refresh(ctx, merchantID); err != nil {
			s.logger.Error("failed to refresh dashboard", zap.String("merchant_id", merchantID), zap.Error(err))
		}
		s.alertLowStock(ctx, merchantID)
	}
}

func (s *Scheduler) alertLowStock(ctx context.Context, merchantID string) {
	items, total, err := s.inventory.ListLowStock(ctx, &dto.LowStockFilters{
		MerchantID: merchantID,
		Page:       1,
		PageSize:   alertPageSize,
	})
	if err != nil {
		s.logger.Error("failed to list low stock", zap.String("merchant_id", merchantID), zap.Error(err))
		return
	}
	if total == 0 {
		return
	}

	s.logger.Warn("low stock products", zap.String("merchant_id", merchantID), zap.Int("count", total))
	for _, item := range items {
		s.logger.Warn("low stock",
			zap.String("merchant_id", merchantID),
			zap.String("product_id", item.ProductID),
			zap.String("sku", item.SKU),
			zap.Int("quantity", item.Quantity),
			zap.Int("reorder_point", item.ReorderPoint))
	}
}
