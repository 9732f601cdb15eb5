package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

// DashboardRepository serves pre-aggregated rows for the dashboards.
type DashboardRepository struct {
	DB *sql.DB
}

func NewDashboardRepository(db *sql.DB) *DashboardRepository {
	return &DashboardRepository{DB: db}
}

func (r *DashboardRepository) ChequeTotalsByStatus(ctx context.Context, f entity.DashboardFilter) ([]entity.GroupTotal, error) {
	return r.groupTotals(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(amount_cents), 0)
		FROM cheques
		WHERE due_date >= $1 AND due_date <= $2 AND ($3 = '' OR property_id::text = $3)
		GROUP BY status ORDER BY status`, f.From, f.To, f.PropertyID)
}

func (r *DashboardRepository) ExpenseTotalsByCategory(ctx context.Context, f entity.DashboardFilter) ([]entity.GroupTotal, error) {
	return r.groupTotals(ctx, `
		SELECT category, COUNT(*), COALESCE(SUM(amount_cents), 0)
		FROM expenses
		WHERE NOT deleted AND status <> 'CANCELLED'
		  AND expense_date >= $1 AND expense_date <= $2 AND ($3 = '' OR property_id::text = $3)
		GROUP BY category ORDER BY 3 DESC`, f.From, f.To, f.PropertyID)
}

func (r *DashboardRepository) UnitCountsByStatus(ctx context.Context, propertyID string) ([]entity.GroupTotal, error) {
	return r.groupTotals(ctx, `
		SELECT u.status, COUNT(*), COALESCE(SUM(u.annual_rent_cents), 0)
		FROM units u JOIN properties p ON p.id = u.property_id
		WHERE NOT p.deleted AND ($1 = '' OR u.property_id::text = $1)
		GROUP BY u.status ORDER BY u.status`, propertyID)
}

func (r *DashboardRepository) LeadCountsByStatus(ctx context.Context, f entity.DashboardFilter) ([]entity.GroupTotal, error) {
	return r.groupTotals(ctx, `
		SELECT status, COUNT(*), 0
		FROM leads
		WHERE NOT deleted AND created_at >= $1 AND created_at < $2 AND ($3 = '' OR property_id::text = $3)
		GROUP BY status ORDER BY status`, f.From, f.To.AddDate(0, 0, 1), f.PropertyID)
}

// MonthlyTotals returns cleared cheque revenue and paid expenses per month of year.
func (r *DashboardRepository) MonthlyTotals(ctx context.Context, propertyID string, year int) ([]entity.MonthTotal, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	rows, err := r.DB.QueryContext(ctx, `
		WITH revenue AS (
			SELECT EXTRACT(MONTH FROM due_date)::int AS month, SUM(amount_cents) AS amount
			FROM cheques
			WHERE status = 'CLEARED' AND due_date >= $1 AND due_date < $2 AND ($3 = '' OR property_id::text = $3)
			GROUP BY 1
		), spend AS (
			SELECT EXTRACT(MONTH FROM expense_date)::int AS month, SUM(amount_cents) AS amount
			FROM expenses
			WHERE NOT deleted AND status = 'PAID' AND expense_date >= $1 AND expense_date < $2
			  AND ($3 = '' OR property_id::text = $3)
			GROUP BY 1
		)
		SELECT COALESCE(r.month, s.month), COALESCE(r.amount, 0), COALESCE(s.amount, 0)
		FROM revenue r FULL OUTER JOIN spend s ON s.month = r.month
		ORDER BY 1`, from, to, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.MonthTotal
	for rows.Next() {
		var m entity.MonthTotal
		var month int
		if err := rows.Scan(&month, &m.RevenueCents, &m.ExpenseCents); err != nil {
			return nil, err
		}
		m.Month = time.Month(month)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *DashboardRepository) groupTotals(ctx context.Context, query string, args ...any) ([]entity.GroupTotal, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.GroupTotal
	for rows.Next() {
		var g entity.GroupTotal
		if err := rows.Scan(&g.Key, &g.Count, &g.AmountCents); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
