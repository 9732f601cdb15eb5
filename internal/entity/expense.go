package entity

import (
	"context"
	"time"
)

type ExpenseStatus string

const (
	ExpensePending   ExpenseStatus = "PENDING"
	ExpensePaid      ExpenseStatus = "PAID"
	ExpenseCancelled ExpenseStatus = "CANCELLED"
)

type ExpenseCategory string

const (
	CategoryMaintenance ExpenseCategory = "MAINTENANCE"
	CategoryUtilities   ExpenseCategory = "UTILITIES"
	CategoryInsurance   ExpenseCategory = "INSURANCE"
	CategoryTaxes       ExpenseCategory = "TAXES"
	CategoryManagement  ExpenseCategory = "MANAGEMENT"
	CategoryCleaning    ExpenseCategory = "CLEANING"
	CategoryOther       ExpenseCategory = "OTHER"
)

func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategoryMaintenance, CategoryUtilities, CategoryInsurance, CategoryTaxes,
		CategoryManagement, CategoryCleaning, CategoryOther:
		return true
	}
	return false
}

type Expense struct {
	ID               string          `json:"id"`
	ExpenseNumber    string          `json:"expense_number"`
	Category         ExpenseCategory `json:"category"`
	Description      string          `json:"description"`
	AmountCents      int64           `json:"amount_cents"`
	PropertyID       string          `json:"property_id"`
	VendorName       string          `json:"vendor_name,omitempty"`
	WorkOrderID      string          `json:"work_order_id,omitempty"`
	ExpenseDate      time.Time       `json:"expense_date"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
	Status           ExpenseStatus   `json:"status"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod    string          `json:"payment_method,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	CreatedBy        string          `json:"created_by"`
	Deleted          bool            `json:"-"`
	DeletedBy        string          `json:"-"`
	DeletedAt        *time.Time      `json:"-"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (e *Expense) MarkPaid(method, reference string, at time.Time) {
	e.Status = ExpensePaid
	e.PaymentMethod = method
	e.PaymentReference = reference
	e.PaidAt = &at
	e.UpdatedAt = at
}

func (e *Expense) SoftDelete(by string, at time.Time) {
	e.Deleted = true
	e.DeletedBy = by
	e.DeletedAt = &at
	e.UpdatedAt = at
}

type ExpenseFilter struct {
	Category   ExpenseCategory
	Status     ExpenseStatus
	PropertyID string
	DateFrom   *time.Time
	DateTo     *time.Time
}

type ExpenseRepository interface {
	Create(ctx context.Context, e *Expense) error
	FindByID(ctx context.Context, id string) (*Expense, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int, error)
	List(ctx context.Context, filter ExpenseFilter, page PageRequest) (*Page[*Expense], error)
	Update(ctx context.Context, e *Expense) error
}
