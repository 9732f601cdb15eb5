package entity

import (
	"context"
	"time"
)

type QuotationStatus string

const (
	QuotationDraft     QuotationStatus = "DRAFT"
	QuotationSent      QuotationStatus = "SENT"
	QuotationAccepted  QuotationStatus = "ACCEPTED"
	QuotationRejected  QuotationStatus = "REJECTED"
	QuotationExpired   QuotationStatus = "EXPIRED"
	QuotationConverted QuotationStatus = "CONVERTED"
)

type Quotation struct {
	ID                   string          `json:"id"`
	QuotationNumber      string          `json:"quotation_number"`
	LeadID               string          `json:"lead_id"`
	PropertyID           string          `json:"property_id"`
	UnitID               string          `json:"unit_id"`
	AnnualRentCents      int64           `json:"annual_rent_cents"`
	SecurityDepositCents int64           `json:"security_deposit_cents"`
	NumberOfCheques      int             `json:"number_of_cheques"`
	LeaseStart           time.Time       `json:"lease_start"`
	LeaseMonths          int             `json:"lease_months"`
	ValidUntil           time.Time       `json:"valid_until"`
	Status               QuotationStatus `json:"status"`
	TenantID             string          `json:"tenant_id,omitempty"`
	SentAt               *time.Time      `json:"sent_at,omitempty"`
	RespondedAt          *time.Time      `json:"responded_at,omitempty"`
	CreatedBy            string          `json:"created_by"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (q *Quotation) LeaseEnd() time.Time {
	return q.LeaseStart.AddDate(0, q.LeaseMonths, 0).AddDate(0, 0, -1)
}

func (q *Quotation) ExpiredAt(now time.Time) bool {
	return now.After(q.ValidUntil)
}

type QuotationFilter struct {
	Status     QuotationStatus
	LeadID     string
	PropertyID string
}

type QuotationRepository interface {
	Create(ctx context.Context, q *Quotation) error
	FindByID(ctx context.Context, id string) (*Quotation, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int, error)
	List(ctx context.Context, filter QuotationFilter, page PageRequest) (*Page[*Quotation], error)
	Update(ctx context.Context, q *Quotation) error
	ListSentValidBefore(ctx context.Context, before time.Time) ([]*Quotation, error)
}
