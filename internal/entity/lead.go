package entity

import (
	"context"
	"time"
)

type LeadStatus string

const (
	LeadNew           LeadStatus = "NEW"
	LeadContacted     LeadStatus = "CONTACTED"
	LeadQuotationSent LeadStatus = "QUOTATION_SENT"
	LeadConverted     LeadStatus = "CONVERTED"
	LeadLost          LeadStatus = "LOST"
)

var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadNew:           {LeadContacted, LeadQuotationSent, LeadLost},
	LeadContacted:     {LeadQuotationSent, LeadLost},
	LeadQuotationSent: {LeadConverted, LeadContacted, LeadLost},
}

func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	for _, allowed := range leadTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Open reports whether the lead is still being worked.
func (s LeadStatus) Open() bool {
	return s != LeadConverted && s != LeadLost
}

type Lead struct {
	ID         string     `json:"id"`
	LeadNumber string     `json:"lead_number"`
	FullName   string     `json:"full_name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone,omitempty"`
	Source     string     `json:"source,omitempty"` // WEBSITE, REFERRAL, WALK_IN, PORTAL
	PropertyID string     `json:"property_id,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Status     LeadStatus `json:"status"`
	LostReason string     `json:"lost_reason,omitempty"`
	Deleted    bool       `json:"-"`
	DeletedBy  string     `json:"-"`
	DeletedAt  *time.Time `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (l *Lead) SoftDelete(by string, at time.Time) {
	l.Deleted = true
	l.DeletedBy = by
	l.DeletedAt = &at
	l.UpdatedAt = at
}

type LeadFilter struct {
	Status     LeadStatus
	Source     string
	PropertyID string
	Search     string
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	ExistsOpenByEmail(ctx context.Context, email string) (bool, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int, error)
	List(ctx context.Context, filter LeadFilter, page PageRequest) (*Page[*Lead], error)
	Update(ctx context.Context, lead *Lead) error
}
