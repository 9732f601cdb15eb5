package entity

import (
	"context"
	"time"
)

type OwnerType string

const (
	OwnerTenant    OwnerType = "TENANT"
	OwnerProperty  OwnerType = "PROPERTY"
	OwnerLead      OwnerType = "LEAD"
	OwnerQuotation OwnerType = "QUOTATION"
	OwnerExpense   OwnerType = "EXPENSE"
	OwnerWorkOrder OwnerType = "WORK_ORDER"
)

func (o OwnerType) Valid() bool {
	switch o {
	case OwnerTenant, OwnerProperty, OwnerLead, OwnerQuotation, OwnerExpense, OwnerWorkOrder:
		return true
	}
	return false
}

type Document struct {
	ID           string     `json:"id"`
	OwnerType    OwnerType  `json:"owner_type"`
	OwnerID      string     `json:"owner_id"`
	DocumentType string     `json:"document_type"` // PASSPORT, EMIRATES_ID, LEASE, INVOICE, ...
	FileName     string     `json:"file_name"`
	ContentType  string     `json:"content_type"`
	SizeBytes    int64      `json:"size_bytes"`
	StorageKey   string     `json:"-"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	UploadedBy   string     `json:"uploaded_by"`
	Deleted      bool       `json:"-"`
	DeletedBy    string     `json:"-"`
	DeletedAt    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (d *Document) SoftDelete(by string, at time.Time) {
	d.Deleted = true
	d.DeletedBy = by
	d.DeletedAt = &at
	d.UpdatedAt = at
}

type DocumentRepository interface {
	Create(ctx context.Context, d *Document) error
	FindByID(ctx context.Context, id string) (*Document, error)
	ListByOwner(ctx context.Context, ownerType OwnerType, ownerID string) ([]*Document, error)
	ListExpiringBefore(ctx context.Context, before time.Time) ([]*Document, error)
	Update(ctx context.Context, d *Document) error
}
