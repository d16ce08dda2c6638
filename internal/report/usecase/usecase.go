package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/report"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
)

const (
	summaryTTL  = 15 * time.Minute
	topProducts = 5
)

type reportUseCase struct {
	repo   report.Repository
	cache  cache.Store
	logger logger.ZapLogger
	now    func() time.Time
}

func NewReportUseCase(repo report.Repository, store cache.Store, log logger.ZapLogger) report.UseCase {
	return &reportUseCase{
		repo:   repo,
		cache:  store,
		logger: log,
		now:    time.Now,
	}
}

func summaryKey(merchantID string) string {
	return fmt.Sprintf("report:dashboard:%s", merchantID)
}

func (uc *reportUseCase) Dashboard(ctx context.Context, merchantID string) (*model.DashboardSummary, error) {
	var cached model.DashboardSummary
	found, err := uc.cache.GetJSON(ctx, summaryKey(merchantID), &cached)
	if err != nil {
		uc.logger.Warn("failed to read dashboard cache", zap.String("merchant_id", merchantID), zap.Error(err))
	}
	if found {
		return &cached, nil
	}
	return uc.Refresh(ctx, merchantID)
}

func (uc *reportUseCase) Refresh(ctx context.Context, merchantID string) (*model.DashboardSummary, error) {
	now := uc.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	summary, err := uc.repo.Dashboard(ctx, merchantID, startOfDay, topProducts)
	if err != nil {
		return nil, err
	}
	summary.GeneratedAt = now

	if err := uc.cache.SetJSON(ctx, summaryKey(merchantID), summary, summaryTTL); err != nil {
		uc.logger.Warn("failed to cache dashboard", zap.String("merchant_id", merchantID), zap.Error(err))
	}
	return summary, nil
}

func (uc *reportUseCase) Merchants(ctx context.Context) ([]string, error) {
	return uc.repo.Merchants(ctx)
}
