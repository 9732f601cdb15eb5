package entity

import (
	"context"
	"time"
)

// DashboardFilter bounds are calendar dates and both are inclusive.
type DashboardFilter struct {
	PropertyID string
	From       time.Time
	To         time.Time
}

// Previous is the window covering the same number of days that ends the day
// before f.From. Both bounds are inclusive dates.
func (f DashboardFilter) Previous() DashboardFilter {
	span := f.To.Sub(f.From)
	to := f.From.AddDate(0, 0, -1)
	return DashboardFilter{PropertyID: f.PropertyID, From: to.Add(-span), To: to}
}

// GroupTotal is one pre-aggregated row: a grouping key with its count and sum.
type GroupTotal struct {
	Key         string
	Count       int64
	AmountCents int64
}

type MonthTotal struct {
	Month        time.Month
	RevenueCents int64
	ExpenseCents int64
}

type DashboardRepository interface {
	// ChequeTotalsByStatus groups cheques due inside the window by status.
	ChequeTotalsByStatus(ctx context.Context, f DashboardFilter) ([]GroupTotal, error)
	// ExpenseTotalsByCategory groups non-cancelled expenses dated inside the window.
	ExpenseTotalsByCategory(ctx context.Context, f DashboardFilter) ([]GroupTotal, error)
	MonthlyTotals(ctx context.Context, propertyID string, year int) ([]MonthTotal, error)
	UnitCountsByStatus(ctx context.Context, propertyID string) ([]GroupTotal, error)
	LeadCountsByStatus(ctx context.Context, f DashboardFilter) ([]GroupTotal, error)
}
