package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TenantStatus string

const (
	TenantPending    TenantStatus = "PENDING"
	TenantActive     TenantStatus = "ACTIVE"
	TenantTerminated TenantStatus = "TERMINATED"
)

type Tenant struct {
	ID             string       `json:"id"`
	FullName       string       `json:"full_name"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone,omitempty"`
	Nationality    string       `json:"nationality,omitempty"`
	EmiratesID     string       `json:"emirates_id,omitempty"`
	PassportNumber string       `json:"passport_number,omitempty"`
	PropertyID     string       `json:"property_id"`
	UnitID         string       `json:"unit_id"`
	LeadID         string       `json:"lead_id,omitempty"`
	QuotationID    string       `json:"quotation_id,omitempty"`
	LeaseStart     time.Time    `json:"lease_start"`
	LeaseEnd       time.Time    `json:"lease_end"`
	Status         TenantStatus `json:"status"`
	Deleted        bool         `json:"-"`
	DeletedBy      string       `json:"-"`
	DeletedAt      *time.Time   `json:"-"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func NewTenant(fullName, email, propertyID, unitID string, leaseStart, leaseEnd time.Time) (*Tenant, error) {
	now := time.Now()
	t := &Tenant{
		ID:         uuid.New().String(),
		FullName:   strings.TrimSpace(fullName),
		Email:      strings.TrimSpace(email),
		PropertyID: propertyID,
		UnitID:     unitID,
		LeaseStart: leaseStart,
		LeaseEnd:   leaseEnd,
		Status:     TenantPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tenant) Validate() error {
	if t.FullName == "" {
		return errors.New("full name is required")
	}
	if t.Email == "" {
		return errors.New("email is required")
	}
	if t.PropertyID == "" || t.UnitID == "" {
		return errors.New("property and unit are required")
	}
	if !t.LeaseEnd.After(t.LeaseStart) {
		return errors.New("lease end must be after lease start")
	}
	return nil
}

func (t *Tenant) SoftDelete(by string, at time.Time) {
	t.Deleted = true
	t.DeletedBy = by
	t.DeletedAt = &at
	t.UpdatedAt = at
}

type TenantFilter struct {
	Status     TenantStatus
	PropertyID string
	Search     string
	// LeaseEndingBefore selects leases ending on or before the given date.
	LeaseEndingBefore *time.Time
}

type TenantRepository interface {
	Create(ctx context.Context, t *Tenant) error
	FindByID(ctx context.Context, id string) (*Tenant, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	List(ctx context.Context, filter TenantFilter, page PageRequest) (*Page[*Tenant], error)
	Update(ctx context.Context, t *Tenant) error
	// Delete physically removes a row; only used to compensate a failed conversion.
	Delete(ctx context.Context, id string) error
}
