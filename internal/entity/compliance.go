package entity

import (
	"context"
	"time"
)

type ComplianceFrequency string

const (
	FrequencyOneTime   ComplianceFrequency = "ONE_TIME"
	FrequencyMonthly   ComplianceFrequency = "MONTHLY"
	FrequencyQuarterly ComplianceFrequency = "QUARTERLY"
	FrequencyAnnual    ComplianceFrequency = "ANNUAL"
)

func (f ComplianceFrequency) Valid() bool {
	switch f {
	case FrequencyOneTime, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnual:
		return true
	}
	return false
}

// Next returns the following due date for recurring requirements.
func (f ComplianceFrequency) Next(from time.Time) (time.Time, bool) {
	switch f {
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0), true
	case FrequencyQuarterly:
		return from.AddDate(0, 3, 0), true
	case FrequencyAnnual:
		return from.AddDate(1, 0, 0), true
	}
	return time.Time{}, false
}

type ComplianceStatus string

const (
	CompliancePending      ComplianceStatus = "PENDING"
	ComplianceCompliant    ComplianceStatus = "COMPLIANT"
	ComplianceNonCompliant ComplianceStatus = "NON_COMPLIANT"
)

type ComplianceRequirement struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description,omitempty"`
	PropertyID      string              `json:"property_id,omitempty"`
	Frequency       ComplianceFrequency `json:"frequency"`
	DueDate         time.Time           `json:"due_date"`
	Status          ComplianceStatus    `json:"status"`
	LastCompliantAt *time.Time          `json:"last_compliant_at,omitempty"`
	Deleted         bool                `json:"-"`
	DeletedBy       string              `json:"-"`
	DeletedAt       *time.Time          `json:"-"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func (c *ComplianceRequirement) SoftDelete(by string, at time.Time) {
	c.Deleted = true
	c.DeletedBy = by
	c.DeletedAt = &at
	c.UpdatedAt = at
}

type ComplianceFilter struct {
	Status     ComplianceStatus
	PropertyID string
}

type ComplianceRepository interface {
	Create(ctx context.Context, c *ComplianceRequirement) error
	FindByID(ctx context.Context, id string) (*ComplianceRequirement, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	List(ctx context.Context, filter ComplianceFilter, page PageRequest) (*Page[*ComplianceRequirement], error)
	ListOverdue(ctx context.Context, now time.Time) ([]*ComplianceRequirement, error)
	Update(ctx context.Context, c *ComplianceRequirement) error
}
