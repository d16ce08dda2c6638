package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/report"
	"github.com/fekuna/omnipos-storefront-service/pkg/httputil"
	"github.com/fekuna/omnipos-storefront-service/pkg/i18n"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
)

type ReportHandler struct {
	uc     report.UseCase
	logger logger.ZapLogger
}

func NewReportHandler(uc report.UseCase, log logger.ZapLogger) *ReportHandler {
	return &ReportHandler{
		uc:     uc,
		logger: log,
	}
}

// Dashboard serves the cached summary; ?refresh=true recomputes it.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	merchantID := auth.GetMerchantID(r.Context())

	get := h.uc.Dashboard
	if refresh := httputil.QueryBool(r, "refresh"); refresh != nil && *refresh {
		get = h.uc.Refresh
	}

	summary, err := get(r.Context(), merchantID)
	if err != nil {
		h.logger.Error("failed to build dashboard", zap.String("merchant_id", merchantID), zap.Error(err))
		httputil.WriteError(w, r, http.StatusInternalServerError, i18n.MsgInternal, nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}
