package entity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChequeStatus tracks a post-dated rent cheque.
type ChequeStatus string

const (
	ChequePending ChequeStatus = "PENDING"
	ChequeCleared ChequeStatus = "CLEARED"
	ChequeBounced ChequeStatus = "BOUNCED"
)

type Cheque struct {
	ID           string       `json:"id"`
	TenantID     string       `json:"tenant_id"`
	PropertyID   string       `json:"property_id"`
	ChequeNumber string       `json:"cheque_number"`
	AmountCents  int64        `json:"amount_cents"`
	DueDate      time.Time    `json:"due_date"`
	Status       ChequeStatus `json:"status"`
	ClearedAt    *time.Time   `json:"cleared_at,omitempty"`
	BouncedAt    *time.Time   `json:"bounced_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ChequeSchedule splits total into n cheques spaced evenly over months,
// the first one due on start. Rounding remainder goes to the first cheque.
func ChequeSchedule(tenantID, propertyID string, total int64, n, months int, start time.Time) []*Cheque {
	if n < 1 {
		n = 1
	}
	step := months / n
	if step < 1 {
		step = 1
	}
	base := total / int64(n)
	rem := total - base*int64(n)
	now := time.Now()

	out := make([]*Cheque, 0, n)
	for i := 0; i < n; i++ {
		amount := base
		if i == 0 {
			amount += rem
		}
		out = append(out, &Cheque{
			ID:           uuid.New().String(),
			TenantID:     tenantID,
			PropertyID:   propertyID,
			ChequeNumber: fmt.Sprintf("PDC-%s-%02d", shortID(tenantID), i+1),
			AmountCents:  amount,
			DueDate:      start.AddDate(0, i*step, 0),
			Status:       ChequePending,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type ChequeRepository interface {
	CreateBatch(ctx context.Context, cheques []*Cheque) error
	FindByID(ctx context.Context, id string) (*Cheque, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Cheque, error)
	Update(ctx context.Context, c *Cheque) error
	DeleteByTenant(ctx context.Context, tenantID string) error
}
