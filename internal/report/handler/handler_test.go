package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/report"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
)

type stubUseCase struct {
	report.UseCase
	called string
}

func (s *stubUseCase) Dashboard(_ context.Context, merchantID string) (*model.DashboardSummary, error) {
	s.called = "cached"
	return &model.DashboardSummary{MerchantID: merchantID}, nil
}

func (s *stubUseCase) Refresh(_ context.Context, merchantID string) (*model.DashboardSummary, error) {
	s.called = "refresh"
	return &model.DashboardSummary{MerchantID: merchantID}, nil
}

func staff(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(auth.WithUser(req.Context(), auth.UserContext{MerchantID: "m1", UserID: "s1", Role: model.RoleStaff}))
}

func TestDashboard(t *testing.T) {
	uc := &stubUseCase{}
	h := NewReportHandler(uc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Dashboard(rec, staff("/reports/dashboard"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cached", uc.called)

	rec = httptest.NewRecorder()
	h.Dashboard(rec, staff("/reports/dashboard?refresh=true"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "refresh", uc.called)
}
