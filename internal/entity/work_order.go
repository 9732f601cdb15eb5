package entity

import (
	"context"
	"time"
)

type WorkOrderStatus string

const (
	WorkOrderOpen       WorkOrderStatus = "OPEN"
	WorkOrderInProgress WorkOrderStatus = "IN_PROGRESS"
	WorkOrderCompleted  WorkOrderStatus = "COMPLETED"
	WorkOrderCancelled  WorkOrderStatus = "CANCELLED"
)

var workOrderTransitions = map[WorkOrderStatus][]WorkOrderStatus{
	WorkOrderOpen:       {WorkOrderInProgress, WorkOrderCancelled},
	WorkOrderInProgress: {WorkOrderCompleted, WorkOrderCancelled},
}

func (s WorkOrderStatus) CanTransitionTo(next WorkOrderStatus) bool {
	for _, allowed := range workOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type WorkOrderPriority string

const (
	PriorityLow    WorkOrderPriority = "LOW"
	PriorityMedium WorkOrderPriority = "MEDIUM"
	PriorityHigh   WorkOrderPriority = "HIGH"
	PriorityUrgent WorkOrderPriority = "URGENT"
)

func (p WorkOrderPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type WorkOrder struct {
	ID                 string            `json:"id"`
	Number             string            `json:"number"`
	PropertyID         string            `json:"property_id"`
	UnitID             string            `json:"unit_id,omitempty"`
	Title              string            `json:"title"`
	Description        string            `json:"description,omitempty"`
	Priority           WorkOrderPriority `json:"priority"`
	Status             WorkOrderStatus   `json:"status"`
	AssignedTo         string            `json:"assigned_to,omitempty"`
	EstimatedCostCents int64             `json:"estimated_cost_cents"`
	CompletedAt        *time.Time        `json:"completed_at,omitempty"`
	CreatedBy          string            `json:"created_by"`
	Deleted            bool              `json:"-"`
	DeletedBy          string            `json:"-"`
	DeletedAt          *time.Time        `json:"-"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func (w *WorkOrder) SoftDelete(by string, at time.Time) {
	w.Deleted = true
	w.DeletedBy = by
	w.DeletedAt = &at
	w.UpdatedAt = at
}

type WorkOrderFilter struct {
	Status     WorkOrderStatus
	Priority   WorkOrderPriority
	PropertyID string
	AssignedTo string
}

type WorkOrderRepository interface {
	Create(ctx context.Context, w *WorkOrder) error
	FindByID(ctx context.Context, id string) (*WorkOrder, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int, error)
	List(ctx context.Context, filter WorkOrderFilter, page PageRequest) (*Page[*WorkOrder], error)
	Update(ctx context.Context, w *WorkOrder) error
}
