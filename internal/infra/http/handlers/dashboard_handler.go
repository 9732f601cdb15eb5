package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/export"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardUseCase interface {
	Finance(ctx context.Context, f entity.DashboardFilter) (*usecase.FinanceDashboard, error)
	FinanceSummary(ctx context.Context, f entity.DashboardFilter) (*usecase.FinanceSummary, error)
	ExpensesByCategory(ctx context.Context, f entity.DashboardFilter) ([]usecase.CategoryAmount, error)
	PDCSummary(ctx context.Context, f entity.DashboardFilter) (*usecase.PDCSummary, error)
	MonthlyTrend(ctx context.Context, f entity.DashboardFilter) ([]usecase.MonthlyPoint, error)
	Portfolio(ctx context.Context, f entity.DashboardFilter) (*usecase.PortfolioDashboard, error)
	Occupancy(ctx context.Context, propertyID string) (*usecase.Occupancy, error)
	LeadFunnel(ctx context.Context, f entity.DashboardFilter) (*usecase.LeadFunnel, error)
}

type DashboardHandler struct {
	Dashboard DashboardUseCase
	logger    *zap.Logger
	now       func() time.Time
}

func NewDashboardHandler(dashboard DashboardUseCase, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard, logger: logger, now: time.Now}
}

func (h *DashboardHandler) Routes(r chi.Router) {
	r.Get("/finance", h.Finance)
	r.Get("/finance/summary", serveFiltered(h, h.Dashboard.FinanceSummary))
	r.Get("/finance/expenses-by-category", serveFiltered(h, h.Dashboard.ExpensesByCategory))
	r.Get("/finance/pdc", serveFiltered(h, h.Dashboard.PDCSummary))
	r.Get("/finance/monthly-trend", serveFiltered(h, h.Dashboard.MonthlyTrend))
	r.Get("/finance/export", h.ExportFinance)
	r.Get("/portfolio", serveFiltered(h, h.Dashboard.Portfolio))
	r.Get("/portfolio/occupancy", h.Occupancy)
	r.Get("/portfolio/lead-funnel", serveFiltered(h, h.Dashboard.LeadFunnel))
}

// filter reads property_id, date_from and date_to. Missing dates default to
// the current month up to today.
func (h *DashboardHandler) filter(r *http.Request) (entity.DashboardFilter, error) {
	from, err := queryDate(r, "date_from")
	if err != nil {
		return entity.DashboardFilter{}, err
	}
	to, err := queryDate(r, "date_to")
	if err != nil {
		return entity.DashboardFilter{}, err
	}
	now := h.now().UTC()
	f := entity.DashboardFilter{
		PropertyID: r.URL.Query().Get("property_id"),
		From:       time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		To:         time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	if from != nil {
		f.From = *from
	}
	if to != nil {
		f.To = *to
	}
	return f, nil
}

func serveFiltered[T any](h *DashboardHandler, fn func(context.Context, entity.DashboardFilter) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := h.filter(r)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		out, err := fn(r.Context(), f)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (h *DashboardHandler) Finance(w http.ResponseWriter, r *http.Request) {
	serveFiltered(h, h.Dashboard.Finance)(w, r)
}

func (h *DashboardHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	out, err := h.Dashboard.Occupancy(r.Context(), r.URL.Query().Get("property_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *DashboardHandler) ExportFinance(w http.ResponseWriter, r *http.Request) {
	f, err := h.filter(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	d, err := h.Dashboard.Finance(r.Context(), f)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	body, err := export.FinanceWorkbook(d, f)
	if err != nil {
		writeError(w, h.logger, &usecase.TechnicalError{Code: "EXPORT_ERROR", Message: "failed to build workbook", Err: err})
		return
	}

	name := fmt.Sprintf("finance_%s_%s.xlsx", f.From.Format("20060102"), f.To.Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
