package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PropertyType string

const (
	PropertyResidential PropertyType = "RESIDENTIAL"
	PropertyCommercial  PropertyType = "COMMERCIAL"
	PropertyMixedUse    PropertyType = "MIXED_USE"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyResidential, PropertyCommercial, PropertyMixedUse:
		return true
	}
	return false
}

type Property struct {
	ID         string       `json:"id"`
	Code       string       `json:"code"`
	Name       string       `json:"name"`
	Type       PropertyType `json:"type"`
	Address    string       `json:"address"`
	City       string       `json:"city"`
	TotalUnits int          `json:"total_units"`
	ManagerID  string       `json:"manager_id,omitempty"`
	Deleted    bool         `json:"-"`
	DeletedBy  string       `json:"-"`
	DeletedAt  *time.Time   `json:"-"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func NewProperty(code, name string, typ PropertyType, address, city string) (*Property, error) {
	now := time.Now()
	p := &Property{
		ID:        uuid.New().String(),
		Code:      strings.ToUpper(strings.TrimSpace(code)),
		Name:      strings.TrimSpace(name),
		Type:      typ,
		Address:   address,
		City:      city,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Property) Validate() error {
	if p.Code == "" {
		return errors.New("code is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if !p.Type.Valid() {
		return errors.New("property type is invalid")
	}
	return nil
}

func (p *Property) SoftDelete(by string, at time.Time) {
	p.Deleted = true
	p.DeletedBy = by
	p.DeletedAt = &at
	p.UpdatedAt = at
}

type UnitStatus string

const (
	UnitVacant      UnitStatus = "VACANT"
	UnitReserved    UnitStatus = "RESERVED"
	UnitOccupied    UnitStatus = "OCCUPIED"
	UnitMaintenance UnitStatus = "MAINTENANCE"
)

func (s UnitStatus) Valid() bool {
	switch s {
	case UnitVacant, UnitReserved, UnitOccupied, UnitMaintenance:
		return true
	}
	return false
}

type Unit struct {
	ID              string     `json:"id"`
	PropertyID      string     `json:"property_id"`
	UnitNumber      string     `json:"unit_number"`
	Bedrooms        int        `json:"bedrooms"`
	AreaSqft        int        `json:"area_sqft"`
	AnnualRentCents int64      `json:"annual_rent_cents"`
	Status          UnitStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Leasable reports whether a tenant can be placed in the unit.
func (u *Unit) Leasable() bool {
	return u.Status == UnitVacant || u.Status == UnitReserved
}

type PropertyFilter struct {
	Type      PropertyType
	City      string
	ManagerID string
	Search    string
}

type PropertyRepository interface {
	Create(ctx context.Context, p *Property) error
	FindByID(ctx context.Context, id string) (*Property, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	List(ctx context.Context, filter PropertyFilter, page PageRequest) (*Page[*Property], error)
	Update(ctx context.Context, p *Property) error

	CreateUnit(ctx context.Context, u *Unit) error
	FindUnitByID(ctx context.Context, id string) (*Unit, error)
	ListUnits(ctx context.Context, propertyID string) ([]*Unit, error)
	UnitNumberExists(ctx context.Context, propertyID, unitNumber string) (bool, error)
	UpdateUnit(ctx context.Context, u *Unit) error
	CountUnitsByStatus(ctx context.Context, propertyID string, status UnitStatus) (int, error)
}
