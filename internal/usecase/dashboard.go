package usecase

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type FinanceSummary struct {
	ExpectedRevenueCents  int64    `json:"expected_revenue_cents"`
	CollectedRevenueCents int64    `json:"collected_revenue_cents"`
	CollectionRate        float64  `json:"collection_rate"`
	TotalExpensesCents    int64    `json:"total_expenses_cents"`
	NetIncomeCents        int64    `json:"net_income_cents"`
	RevenueTrend          *float64 `json:"revenue_trend"`
	ExpenseTrend          *float64 `json:"expense_trend"`
	NetIncomeTrend        *float64 `json:"net_income_trend"`
}

type CategoryAmount struct {
	Category    string  `json:"category"`
	Count       int64   `json:"count"`
	AmountCents int64   `json:"amount_cents"`
	Percentage  float64 `json:"percentage"`
}

type StatusAmount struct {
	Count       int64 `json:"count"`
	AmountCents int64 `json:"amount_cents"`
}

type PDCSummary struct {
	Pending StatusAmount `json:"pending"`
	Cleared StatusAmount `json:"cleared"`
	Bounced StatusAmount `json:"bounced"`
	Total   StatusAmount `json:"total"`
}

type MonthlyPoint struct {
	Month        string `json:"month"`
	RevenueCents int64  `json:"revenue_cents"`
	ExpenseCents int64  `json:"expense_cents"`
	NetCents     int64  `json:"net_cents"`
}

type FinanceDashboard struct {
	Summary            *FinanceSummary  `json:"summary"`
	ExpensesByCategory []CategoryAmount `json:"expenses_by_category"`
	PDC                *PDCSummary      `json:"pdc"`
	MonthlyTrend       []MonthlyPoint   `json:"monthly_trend"`
}

type StatusCount struct {
	Status     string  `json:"status"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Occupancy struct {
	TotalUnits    int64         `json:"total_units"`
	OccupiedUnits int64         `json:"occupied_units"`
	OccupancyRate float64       `json:"occupancy_rate"`
	ByStatus      []StatusCount `json:"by_status"`
}

type LeadFunnel struct {
	TotalLeads     int64         `json:"total_leads"`
	Converted      int64         `json:"converted"`
	ConversionRate float64       `json:"conversion_rate"`
	ByStatus       []StatusCount `json:"by_status"`
}

type PortfolioDashboard struct {
	Occupancy  *Occupancy  `json:"occupancy"`
	LeadFunnel *LeadFunnel `json:"lead_funnel"`
}

type DashboardService struct {
	Repo entity.DashboardRepository
}

func NewDashboardService(repo entity.DashboardRepository) *DashboardService {
	return &DashboardService{Repo: repo}
}

func (s *DashboardService) FinanceSummary(ctx context.Context, f entity.DashboardFilter) (*FinanceSummary, error) {
	if err := checkWindow(f); err != nil {
		return nil, err
	}
	var cur, prev periodTotals
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { cur, err = s.periodTotals(gctx, f); return })
	g.Go(func() (err error) { prev, err = s.periodTotals(gctx, f.Previous()); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &FinanceSummary{
		ExpectedRevenueCents:  cur.expected,
		CollectedRevenueCents: cur.collected,
		CollectionRate:        percentage(cur.collected, cur.expected),
		TotalExpensesCents:    cur.expenses,
		NetIncomeCents:        cur.collected - cur.expenses,
		RevenueTrend:          trend(cur.collected, prev.collected),
		ExpenseTrend:          trend(cur.expenses, prev.expenses),
		NetIncomeTrend:        trend(cur.collected-cur.expenses, prev.collected-prev.expenses),
	}, nil
}

func (s *DashboardService) ExpensesByCategory(ctx context.Context, f entity.DashboardFilter) ([]CategoryAmount, error) {
	if err := checkWindow(f); err != nil {
		return nil, err
	}
	rows, err := s.Repo.ExpenseTotalsByCategory(ctx, f)
	if err != nil {
		return nil, dbError("failed to aggregate expenses", err)
	}
	var total int64
	for _, r := range rows {
		total += r.AmountCents
	}
	out := make([]CategoryAmount, 0, len(rows))
	for _, r := range rows {
		out = append(out, CategoryAmount{
			Category:    r.Key,
			Count:       r.Count,
			AmountCents: r.AmountCents,
			Percentage:  percentage(r.AmountCents, total),
		})
	}
	return out, nil
}

func (s *DashboardService) PDCSummary(ctx context.Context, f entity.DashboardFilter) (*PDCSummary, error) {
	if err := checkWindow(f); err != nil {
		return nil, err
	}
	rows, err := s.Repo.ChequeTotalsByStatus(ctx, f)
	if err != nil {
		return nil, dbError("failed to aggregate cheques", err)
	}
	out := &PDCSummary{}
	for _, r := range rows {
		amt := StatusAmount{Count: r.Count, AmountCents: r.AmountCents}
		switch entity.ChequeStatus(r.Key) {
		case entity.ChequePending:
			out.Pending = amt
		case entity.ChequeCleared:
			out.Cleared = amt
		case entity.ChequeBounced:
			out.Bounced = amt
		}
		out.Total.Count += r.Count
		out.Total.AmountCents += r.AmountCents
	}
	return out, nil
}

// MonthlyTrend returns one point per month from January up to the month of
// f.To, zero-filled.
func (s *DashboardService) MonthlyTrend(ctx context.Context, f entity.DashboardFilter) ([]MonthlyPoint, error) {
	if err := checkWindow(f); err != nil {
		return nil, err
	}
	rows, err := s.Repo.MonthlyTotals(ctx, f.PropertyID, f.To.Year())
	if err != nil {
		return nil, dbError("failed to aggregate monthly totals", err)
	}
	byMonth := make(map[time.Month]entity.MonthTotal, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r
	}
	out := make([]MonthlyPoint, 0, int(f.To.Month()))
	for m := time.January; m <= f.To.Month(); m++ {
		r := byMonth[m]
		out = append(out, MonthlyPoint{
			Month:        time.Date(f.To.Year(), m, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
			RevenueCents: r.RevenueCents,
			ExpenseCents: r.ExpenseCents,
			NetCents:     r.RevenueCents - r.ExpenseCents,
		})
	}
	return out, nil
}

func (s *DashboardService) Finance(ctx context.Context, f entity.DashboardFilter) (*FinanceDashboard, error) {
	if err := checkWindow(f); err != nil {
		return nil, err
	}
	out := &FinanceDashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.Summary, err = s.FinanceSummary(gctx, f); return })
	g.Go(func() (err error) { out.ExpensesByCategory, err = s.ExpensesByCategory(gctx, f); return })
	g.Go(func() (err error) { out.PDC, err = s.PDCSummary(gctx, f); return })
	g.Go(func() (err error) { out.MonthlyTrend, err = s.MonthlyTrend(gctx, f); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DashboardService) Occupancy(ctx context.Context, propertyID string) (*Occupancy, error) {
	rows, err := s.Repo.UnitCountsByStatus(ctx, propertyID)
	if err != nil {
		return nil, dbError("failed to aggregate units", err)
	}
	out := &Occupancy{}
	for _, r := range rows {
		out.TotalUnits += r.Count
		if entity.UnitStatus(r.Key) == entity.UnitOccupied {
			out.OccupiedUnits = r.Count
		}
	}
	out.OccupancyRate = percentage(out.OccupiedUnits, out.TotalUnits)
	out.ByStatus = statusCounts(rows, out.TotalUnits)
	return out, nil
}

func (s *DashboardService) LeadFunnel(ctx context.Context, f entity.DashboardFilter) (*LeadFunnel, error) {
	if err := checkWindow(f); err != nil {
		return nil, err
	}
	rows, err := s.Repo.LeadCountsByStatus(ctx, f)
	if err != nil {
		return nil, dbError("failed to aggregate leads", err)
	}
	out := &LeadFunnel{}
	for _, r := range rows {
		out.TotalLeads += r.Count
		if entity.LeadStatus(r.Key) == entity.LeadConverted {
			out.Converted = r.Count
		}
	}
	out.ConversionRate = percentage(out.Converted, out.TotalLeads)
	out.ByStatus = statusCounts(rows, out.TotalLeads)
	return out, nil
}

func (s *DashboardService) Portfolio(ctx context.Context, f entity.DashboardFilter) (*PortfolioDashboard, error) {
	if err := checkWindow(f); err != nil {
		return nil, err
	}
	out := &PortfolioDashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.Occupancy, err = s.Occupancy(gctx, f.PropertyID); return })
	g.Go(func() (err error) { out.LeadFunnel, err = s.LeadFunnel(gctx, f); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type periodTotals struct {
	expected  int64
	collected int64
	expenses  int64
}

func (s *DashboardService) periodTotals(ctx context.Context, f entity.DashboardFilter) (periodTotals, error) {
	var t periodTotals
	cheques, err := s.Repo.ChequeTotalsByStatus(ctx, f)
	if err != nil {
		return t, dbError("failed to aggregate cheques", err)
	}
	for _, r := range cheques {
		t.expected += r.AmountCents
		if entity.ChequeStatus(r.Key) == entity.ChequeCleared {
			t.collected += r.AmountCents
		}
	}
	expenses, err := s.Repo.ExpenseTotalsByCategory(ctx, f)
	if err != nil {
		return t, dbError("failed to aggregate expenses", err)
	}
	for _, r := range expenses {
		t.expenses += r.AmountCents
	}
	return t, nil
}

func checkWindow(f entity.DashboardFilter) error {
	if f.From.IsZero() || f.To.IsZero() {
		return Validation("date_from and date_to are required")
	}
	if f.From.After(f.To) {
		return Validation("date_from must not be after date_to")
	}
	return nil
}

func statusCounts(rows []entity.GroupTotal, total int64) []StatusCount {
	out := make([]StatusCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, StatusCount{Status: r.Key, Count: r.Count, Percentage: percentage(r.Count, total)})
	}
	return out
}

// percentage is part/whole*100 rounded to two decimals; 0 when whole is 0.
func percentage(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

// trend is the change from previous to current in percent. A zero previous
// value has no defined trend and yields nil.
func trend(current, previous int64) *float64 {
	if previous == 0 {
		return nil
	}
	v := round2(float64(current-previous) / math.Abs(float64(previous)) * 100)
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
