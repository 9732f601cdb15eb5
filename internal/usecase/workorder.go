package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type CreateWorkOrderInput struct {
	PropertyID         string `json:"property_id"`
	UnitID             string `json:"unit_id,omitempty"`
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	Priority           string `json:"priority"`
	AssignedTo         string `json:"assigned_to,omitempty"`
	EstimatedCostCents int64  `json:"estimated_cost_cents"`
}

type UpdateWorkOrderInput struct {
	Title              *string `json:"title,omitempty"`
	Description        *string `json:"description,omitempty"`
	Priority           *string `json:"priority,omitempty"`
	AssignedTo         *string `json:"assigned_to,omitempty"`
	EstimatedCostCents *int64  `json:"estimated_cost_cents,omitempty"`
}

type WorkOrderService struct {
	Repo       entity.WorkOrderRepository
	Properties entity.PropertyRepository
	Users      entity.UserRepository
	Notifier   Notifier
	Audit      *AuditLogger
	logger     *zap.Logger
	now        func() time.Time
}

func NewWorkOrderService(
	repo entity.WorkOrderRepository,
	properties entity.PropertyRepository,
	users entity.UserRepository,
	notifier Notifier,
	audit *AuditLogger,
	logger *zap.Logger,
) *WorkOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkOrderService{
		Repo:       repo,
		Properties: properties,
		Users:      users,
		Notifier:   notifier,
		Audit:      audit,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *WorkOrderService) Create(ctx context.Context, actor Actor, input CreateWorkOrderInput) (*entity.WorkOrder, error) {
	var errs []ValidationError
	errs = requireText(errs, "title", input.Title, 3, 200)
	if input.PropertyID == "" {
		errs = append(errs, ValidationError{"property_id", "is required"})
	}
	priority := entity.WorkOrderPriority(strings.ToUpper(input.Priority))
	if priority == "" {
		priority = entity.PriorityMedium
	}
	if !priority.Valid() {
		errs = append(errs, ValidationError{"priority", "must be LOW, MEDIUM, HIGH or URGENT"})
	}
	if input.EstimatedCostCents < 0 {
		errs = append(errs, ValidationError{"estimated_cost_cents", "must not be negative"})
	}
	if err := validationFailed(errs); err != nil {
		return nil, err
	}

	if _, err := s.Properties.FindByID(ctx, input.PropertyID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("property", input.PropertyID)
		}
		return nil, dbError("failed to load property", err)
	}
	if input.UnitID != "" {
		unit, err := s.Properties.FindUnitByID(ctx, input.UnitID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return nil, NotFound("unit", input.UnitID)
			}
			return nil, dbError("failed to load unit", err)
		}
		if unit.PropertyID != input.PropertyID {
			return nil, Validation("unit %s does not belong to property %s", unit.UnitNumber, input.PropertyID)
		}
	}

	now := s.now()
	number, err := nextNumber(ctx, "WO", now, s.Repo.CountByNumberPrefix)
	if err != nil {
		return nil, err
	}
	w := &entity.WorkOrder{
		ID:                 uuid.New().String(),
		Number:             number,
		PropertyID:         input.PropertyID,
		UnitID:             input.UnitID,
		Title:              strings.TrimSpace(input.Title),
		Description:        input.Description,
		Priority:           priority,
		Status:             entity.WorkOrderOpen,
		AssignedTo:         input.AssignedTo,
		EstimatedCostCents: input.EstimatedCostCents,
		CreatedBy:          actor.UserID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.Repo.Create(ctx, w); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, Duplicate("work order %s already exists", number)
		}
		return nil, dbError("failed to create work order", err)
	}
	s.Audit.Record(ctx, actor, "WORK_ORDER_CREATED", "WORK_ORDER", w.ID, map[string]string{"priority": string(priority)})
	return w, nil
}

func (s *WorkOrderService) Get(ctx context.Context, id string) (*entity.WorkOrder, error) {
	w, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("work order", id)
		}
		return nil, dbError("failed to load work order", err)
	}
	return w, nil
}

func (s *WorkOrderService) List(ctx context.Context, filter entity.WorkOrderFilter, page entity.PageRequest) (*entity.Page[*entity.WorkOrder], error) {
	out, err := s.Repo.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, dbError("failed to list work orders", err)
	}
	return out, nil
}

func (s *WorkOrderService) Update(ctx context.Context, actor Actor, id string, input UpdateWorkOrderInput) (*entity.WorkOrder, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status == entity.WorkOrderCompleted || w.Status == entity.WorkOrderCancelled {
		return nil, InvalidState("work order %s is %s", w.Number, w.Status)
	}

	if input.Title != nil {
		t := strings.TrimSpace(*input.Title)
		if len(t) < 3 {
			return nil, Validation("title must have at least 3 characters")
		}
		w.Title = t
	}
	if input.Description != nil {
		w.Description = *input.Description
	}
	if input.Priority != nil {
		p := entity.WorkOrderPriority(strings.ToUpper(*input.Priority))
		if !p.Valid() {
			return nil, Validation("priority %q is invalid", *input.Priority)
		}
		w.Priority = p
	}
	if input.AssignedTo != nil {
		w.AssignedTo = *input.AssignedTo
	}
	if input.EstimatedCostCents != nil {
		if *input.EstimatedCostCents < 0 {
			return nil, Validation("estimated_cost_cents must not be negative")
		}
		w.EstimatedCostCents = *input.EstimatedCostCents
	}
	w.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, w); err != nil {
		return nil, dbError("failed to update work order", err)
	}
	s.Audit.Record(ctx, actor, "WORK_ORDER_UPDATED", "WORK_ORDER", w.ID, nil)
	return w, nil
}

func (s *WorkOrderService) ChangeStatus(ctx context.Context, actor Actor, id string, next entity.WorkOrderStatus) (*entity.WorkOrder, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !w.Status.CanTransitionTo(next) {
		return nil, InvalidState("work order cannot move from %s to %s", w.Status, next)
	}
	now := s.now()
	w.Status = next
	if next == entity.WorkOrderCompleted {
		w.CompletedAt = &now
	}
	w.UpdatedAt = now
	if err := s.Repo.Update(ctx, w); err != nil {
		return nil, dbError("failed to update work order status", err)
	}
	s.Audit.Record(ctx, actor, "WORK_ORDER_STATUS_CHANGED", "WORK_ORDER", w.ID, map[string]string{"status": string(next)})
	s.notifyAssignee(ctx, w)
	return w, nil
}

func (s *WorkOrderService) Delete(ctx context.Context, actor Actor, id string) error {
	w, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if w.Status == entity.WorkOrderCompleted {
		return InvalidState("completed work orders cannot be deleted")
	}
	w.SoftDelete(actor.UserID, s.now())
	if err := s.Repo.Update(ctx, w); err != nil {
		return dbError("failed to delete work order", err)
	}
	s.Audit.Record(ctx, actor, "WORK_ORDER_DELETED", "WORK_ORDER", w.ID, nil)
	return nil
}

func (s *WorkOrderService) notifyAssignee(ctx context.Context, w *entity.WorkOrder) {
	if s.Notifier == nil || s.Users == nil || w.AssignedTo == "" {
		return
	}
	u, err := s.Users.FindByID(ctx, w.AssignedTo)
	if err != nil {
		s.logger.Warn("work order assignee not found", zap.String("work_order_id", w.ID), zap.Error(err))
		return
	}
	if _, err := s.Notifier.Notify(ctx, QueueNotificationInput{
		Type:           entity.NotificationWorkOrderUpdated,
		RecipientEmail: u.Email,
		RecipientName:  u.FullName,
		Subject:        "Work order " + w.Number + " is " + string(w.Status),
		TemplateKey:    "work_order_updated",
		Variables: map[string]string{
			"name":   u.FullName,
			"number": w.Number,
			"title":  w.Title,
			"status": string(w.Status),
		},
		RelatedEntityType: "WORK_ORDER",
		RelatedEntityID:   w.ID,
	}); err != nil {
		s.logger.Warn("work order email not queued", zap.String("work_order_id", w.ID), zap.Error(err))
	}
}
