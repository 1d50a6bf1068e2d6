package handler

import (
	"net/http"
	"time"

	"github.com/wm-metals/trade-api/internal/daterange"
	"github.com/wm-metals/trade-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// rangeParams parses the range filter and optional custom bounds.
// Custom bounds accept plain dates (2006-01-02) or RFC3339.
func rangeParams(r *http.Request) (daterange.Filter, *daterange.Custom) {
	filter := daterange.ParseFilter(r.URL.Query().Get("range"))
	if filter != daterange.FilterCustom {
		return filter, nil
	}

	custom := &daterange.Custom{}
	if from, ok := parseDateParam(r.URL.Query().Get("from")); ok {
		custom.From = from
	}
	if to, ok := parseDateParam(r.URL.Query().Get("to")); ok {
		custom.To = to
	}
	if custom.From.IsZero() && custom.To.IsZero() {
		return filter, nil
	}
	return filter, custom
}

func parseDateParam(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FinancialSummary godoc
// @Summary Financial summary
// @Description Ledger totals over the resolved date range
// @Tags Dashboard
// @Produce json
// @Param range query string false "Date range" Enums(today, last-7-days, last-30-days, last-90-days, this-week, this-month, this-year, custom) default(today)
// @Param from query string false "Custom range start (2006-01-02)"
// @Param to query string false "Custom range end (2006-01-02)"
// @Success 200 {object} domain.FinancialSummaryDTO
// @Security BearerAuth
// @Router /dashboard/financial-summary [get]
func (h *DashboardHandler) FinancialSummary(w http.ResponseWriter, r *http.Request) {
	filter, custom := rangeParams(r)

	summary, err := h.dashboardService.FinancialSummary(r.Context(), filter, custom)
	if err != nil {
		h.logger.Error("failed to build financial summary", zap.Error(err))
		respondServiceError(w, err, "Failed to build financial summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// SalesAnalytics godoc
// @Summary Sales analytics
// @Description Pipeline counts, values and conversion over the resolved date range
// @Tags Dashboard
// @Produce json
// @Param range query string false "Date range" Enums(today, last-7-days, last-30-days, last-90-days, this-week, this-month, this-year, custom) default(today)
// @Param from query string false "Custom range start (2006-01-02)"
// @Param to query string false "Custom range end (2006-01-02)"
// @Success 200 {object} domain.SalesAnalyticsDTO
// @Security BearerAuth
// @Router /dashboard/sales-analytics [get]
func (h *DashboardHandler) SalesAnalytics(w http.ResponseWriter, r *http.Request) {
	filter, custom := rangeParams(r)

	analytics, err := h.dashboardService.SalesAnalytics(r.Context(), filter, custom)
	if err != nil {
		h.logger.Error("failed to build sales analytics", zap.Error(err))
		respondServiceError(w, err, "Failed to build sales analytics")
		return
	}

	respondJSON(w, http.StatusOK, analytics)
}
