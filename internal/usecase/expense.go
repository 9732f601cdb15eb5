package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/metrics"
)

type CreateExpenseInput struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	PropertyID  string `json:"property_id"`
	VendorName  string `json:"vendor_name,omitempty"`
	WorkOrderID string `json:"work_order_id,omitempty"`
	ExpenseDate string `json:"expense_date"`
	DueDate     string `json:"due_date,omitempty"`
}

type UpdateExpenseInput struct {
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	AmountCents *int64  `json:"amount_cents,omitempty"`
	VendorName  *string `json:"vendor_name,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

type PayExpenseInput struct {
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference,omitempty"`
}

type BatchPayInput struct {
	ExpenseIDs       []string `json:"expense_ids"`
	PaymentMethod    string   `json:"payment_method"`
	PaymentReference string   `json:"payment_reference,omitempty"`
}

type BatchPayItem struct {
	ExpenseID string `json:"expense_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

type BatchPayResult struct {
	TotalProcessed   int            `json:"total_processed"`
	SuccessCount     int            `json:"success_count"`
	FailedCount      int            `json:"failed_count"`
	TotalAmountCents int64          `json:"total_amount_cents"`
	Results          []BatchPayItem `json:"results"`
}

var paymentMethods = map[string]bool{"BANK_TRANSFER": true, "CHEQUE": true, "CASH": true, "CARD": true}

type ExpenseService struct {
	Repo       entity.ExpenseRepository
	Properties entity.PropertyRepository
	WorkOrders entity.WorkOrderRepository
	Notifier   Notifier
	Audit      *AuditLogger
	// FinanceEmail receives PAYMENT_RECORDED notifications; empty disables them.
	FinanceEmail string
	logger       *zap.Logger
	now          func() time.Time
}

func NewExpenseService(
	repo entity.ExpenseRepository,
	properties entity.PropertyRepository,
	workOrders entity.WorkOrderRepository,
	notifier Notifier,
	audit *AuditLogger,
	financeEmail string,
	logger *zap.Logger,
) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{
		Repo:         repo,
		Properties:   properties,
		WorkOrders:   workOrders,
		Notifier:     notifier,
		Audit:        audit,
		FinanceEmail: financeEmail,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *ExpenseService) Create(ctx context.Context, actor Actor, input CreateExpenseInput) (*entity.Expense, error) {
	var errs []ValidationError
	category := entity.ExpenseCategory(strings.ToUpper(input.Category))
	if !category.Valid() {
		errs = append(errs, ValidationError{"category", "is invalid"})
	}
	errs = requireText(errs, "description", input.Description, 3, 500)
	if input.AmountCents <= 0 {
		errs = append(errs, ValidationError{"amount_cents", "must be greater than zero"})
	}
	if input.PropertyID == "" {
		errs = append(errs, ValidationError{"property_id", "is required"})
	}
	expenseDate, ok := parseDate(input.ExpenseDate)
	if !ok {
		errs = append(errs, ValidationError{"expense_date", "must be a valid date (YYYY-MM-DD)"})
	}
	var due *time.Time
	if input.DueDate != "" {
		d, ok := parseDate(input.DueDate)
		if !ok {
			errs = append(errs, ValidationError{"due_date", "must be a valid date (YYYY-MM-DD)"})
		}
		due = &d
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
	if input.WorkOrderID != "" {
		if _, err := s.WorkOrders.FindByID(ctx, input.WorkOrderID); err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return nil, NotFound("work order", input.WorkOrderID)
			}
			return nil, dbError("failed to load work order", err)
		}
	}

	now := s.now()
	number, err := nextNumber(ctx, "EXP", now, s.Repo.CountByNumberPrefix)
	if err != nil {
		return nil, err
	}
	e := &entity.Expense{
		ID:            uuid.New().String(),
		ExpenseNumber: number,
		Category:      category,
		Description:   strings.TrimSpace(input.Description),
		AmountCents:   input.AmountCents,
		PropertyID:    input.PropertyID,
		VendorName:    input.VendorName,
		WorkOrderID:   input.WorkOrderID,
		ExpenseDate:   expenseDate,
		DueDate:       due,
		Status:        entity.ExpensePending,
		CreatedBy:     actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, e); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, Duplicate("expense %s already exists", number)
		}
		return nil, dbError("failed to create expense", err)
	}
	s.Audit.Record(ctx, actor, "EXPENSE_CREATED", "EXPENSE", e.ID, map[string]string{"amount": formatAmount(e.AmountCents)})
	return e, nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (*entity.Expense, error) {
	e, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("expense", id)
		}
		return nil, dbError("failed to load expense", err)
	}
	return e, nil
}

func (s *ExpenseService) List(ctx context.Context, filter entity.ExpenseFilter, page entity.PageRequest) (*entity.Page[*entity.Expense], error) {
	if err := dateRange(filter.DateFrom, filter.DateTo); err != nil {
		return nil, err
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, Validation("category %q is invalid", filter.Category)
	}
	out, err := s.Repo.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, dbError("failed to list expenses", err)
	}
	return out, nil
}

func (s *ExpenseService) Update(ctx context.Context, actor Actor, id string, input UpdateExpenseInput) (*entity.Expense, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch e.Status {
	case entity.ExpensePaid:
		return nil, InvalidState("cannot edit a paid expense")
	case entity.ExpenseCancelled:
		return nil, InvalidState("cannot edit a cancelled expense")
	}

	if input.Category != nil {
		c := entity.ExpenseCategory(strings.ToUpper(*input.Category))
		if !c.Valid() {
			return nil, Validation("category %q is invalid", *input.Category)
		}
		e.Category = c
	}
	if input.Description != nil {
		d := strings.TrimSpace(*input.Description)
		if len(d) < 3 {
			return nil, Validation("description must have at least 3 characters")
		}
		e.Description = d
	}
	if input.AmountCents != nil {
		if *input.AmountCents <= 0 {
			return nil, Validation("amount_cents must be greater than zero")
		}
		e.AmountCents = *input.AmountCents
	}
	if input.VendorName != nil {
		e.VendorName = *input.VendorName
	}
	if input.DueDate != nil {
		if *input.DueDate == "" {
			e.DueDate = nil
		} else {
			d, ok := parseDate(*input.DueDate)
			if !ok {
				return nil, Validation("due_date must be a valid date (YYYY-MM-DD)")
			}
			e.DueDate = &d
		}
	}
	e.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, e); err != nil {
		return nil, dbError("failed to update expense", err)
	}
	s.Audit.Record(ctx, actor, "EXPENSE_UPDATED", "EXPENSE", e.ID, nil)
	return e, nil
}

func (s *ExpenseService) Pay(ctx context.Context, actor Actor, id string, input PayExpenseInput) (*entity.Expense, error) {
	method := strings.ToUpper(strings.TrimSpace(input.PaymentMethod))
	if !paymentMethods[method] {
		return nil, Validation("payment_method must be BANK_TRANSFER, CHEQUE, CASH or CARD")
	}
	e, err := s.pay(ctx, actor, id, method, input.PaymentReference)
	if err != nil {
		metrics.RecordExpensePayment("failed")
		return nil, err
	}
	metrics.RecordExpensePayment("paid")
	s.notifyPayment(ctx, e)
	return e, nil
}

// BatchPay pays each expense independently. One failure never rolls back the
// others; TotalAmountCents only sums the successful ones.
func (s *ExpenseService) BatchPay(ctx context.Context, actor Actor, input BatchPayInput) (*BatchPayResult, error) {
	if len(input.ExpenseIDs) == 0 {
		return nil, Validation("expense_ids must contain at least one id")
	}
	method := strings.ToUpper(strings.TrimSpace(input.PaymentMethod))
	if !paymentMethods[method] {
		return nil, Validation("payment_method must be BANK_TRANSFER, CHEQUE, CASH or CARD")
	}

	result := &BatchPayResult{Results: make([]BatchPayItem, 0, len(input.ExpenseIDs))}
	for _, id := range input.ExpenseIDs {
		result.TotalProcessed++
		e, err := s.pay(ctx, actor, id, method, input.PaymentReference)
		if err != nil {
			result.FailedCount++
			result.Results = append(result.Results, BatchPayItem{ExpenseID: id, Error: err.Error()})
			metrics.RecordExpensePayment("failed")
			continue
		}
		result.SuccessCount++
		result.TotalAmountCents += e.AmountCents
		result.Results = append(result.Results, BatchPayItem{ExpenseID: id, Success: true})
		metrics.RecordExpensePayment("paid")
		s.notifyPayment(ctx, e)
	}

	s.logger.Info("batch payment processed",
		zap.Int("total", result.TotalProcessed),
		zap.Int("succeeded", result.SuccessCount),
		zap.Int("failed", result.FailedCount))
	return result, nil
}

func (s *ExpenseService) Cancel(ctx context.Context, actor Actor, id string) (*entity.Expense, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status != entity.ExpensePending {
		return nil, InvalidState("only PENDING expenses can be cancelled (current status %s)", e.Status)
	}
	e.Status = entity.ExpenseCancelled
	e.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, e); err != nil {
		return nil, dbError("failed to cancel expense", err)
	}
	s.Audit.Record(ctx, actor, "EXPENSE_CANCELLED", "EXPENSE", e.ID, nil)
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, actor Actor, id string) error {
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.Status == entity.ExpensePaid {
		return InvalidState("cannot delete a paid expense")
	}
	e.SoftDelete(actor.UserID, s.now())
	if err := s.Repo.Update(ctx, e); err != nil {
		return dbError("failed to delete expense", err)
	}
	s.Audit.Record(ctx, actor, "EXPENSE_DELETED", "EXPENSE", e.ID, nil)
	return nil
}

func (s *ExpenseService) pay(ctx context.Context, actor Actor, id, method, reference string) (*entity.Expense, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status != entity.ExpensePending {
		return nil, InvalidState("expense %s is %s", e.ExpenseNumber, e.Status)
	}
	e.MarkPaid(method, reference, s.now())
	if err := s.Repo.Update(ctx, e); err != nil {
		return nil, dbError("failed to record payment", err)
	}
	s.Audit.Record(ctx, actor, "EXPENSE_PAID", "EXPENSE", e.ID, map[string]string{"method": method})
	return e, nil
}

func (s *ExpenseService) notifyPayment(ctx context.Context, e *entity.Expense) {
	if s.Notifier == nil || s.FinanceEmail == "" {
		return
	}
	if _, err := s.Notifier.Notify(ctx, QueueNotificationInput{
		Type:           entity.NotificationPaymentRecorded,
		RecipientEmail: s.FinanceEmail,
		RecipientName:  "Finance",
		Subject:        "Payment recorded for " + e.ExpenseNumber,
		TemplateKey:    "payment_recorded",
		Variables: map[string]string{
			"expense_number": e.ExpenseNumber,
			"description":    e.Description,
			"amount":         formatAmount(e.AmountCents),
			"method":         e.PaymentMethod,
			"reference":      e.PaymentReference,
		},
		RelatedEntityType: "EXPENSE",
		RelatedEntityID:   e.ID,
	}); err != nil {
		s.logger.Warn("payment email not queued", zap.String("expense_id", e.ID), zap.Error(err))
	}
}
