package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type CreateTenantInput struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Nationality     string `json:"nationality"`
	EmiratesID      string `json:"emirates_id"`
	PassportNumber  string `json:"passport_number"`
	PropertyID      string `json:"property_id"`
	UnitID          string `json:"unit_id"`
	LeaseStart      string `json:"lease_start"`
	LeaseEnd        string `json:"lease_end"`
	AnnualRentCents int64  `json:"annual_rent_cents"`
	NumberOfCheques int    `json:"number_of_cheques"`
}

type UpdateTenantInput struct {
	FullName       *string `json:"full_name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Nationality    *string `json:"nationality,omitempty"`
	EmiratesID     *string `json:"emirates_id,omitempty"`
	PassportNumber *string `json:"passport_number,omitempty"`
	LeaseEnd       *string `json:"lease_end,omitempty"`
}

type TenantService struct {
	Repo       entity.TenantRepository
	Properties entity.PropertyRepository
	Cheques    entity.ChequeRepository
	Notifier   Notifier
	Audit      *AuditLogger
	logger     *zap.Logger
}

func NewTenantService(
	repo entity.TenantRepository,
	properties entity.PropertyRepository,
	cheques entity.ChequeRepository,
	notifier Notifier,
	audit *AuditLogger,
	logger *zap.Logger,
) *TenantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{
		Repo:       repo,
		Properties: properties,
		Cheques:    cheques,
		Notifier:   notifier,
		Audit:      audit,
		logger:     logger,
	}
}

func (s *TenantService) Create(ctx context.Context, actor Actor, input CreateTenantInput) (*entity.Tenant, error) {
	var errs []ValidationError
	errs = requireText(errs, "full_name", input.FullName, 2, 150)
	errs = requireEmail(errs, "email", input.Email)
	if input.Phone != "" && !isValidPhoneNumber(input.Phone) {
		errs = append(errs, ValidationError{"phone", "must be a valid phone number"})
	}
	if input.PropertyID == "" {
		errs = append(errs, ValidationError{"property_id", "is required"})
	}
	if input.UnitID == "" {
		errs = append(errs, ValidationError{"unit_id", "is required"})
	}
	start, okStart := parseDate(input.LeaseStart)
	if !okStart {
		errs = append(errs, ValidationError{"lease_start", "must be a valid date (YYYY-MM-DD)"})
	}
	end, okEnd := parseDate(input.LeaseEnd)
	if !okEnd {
		errs = append(errs, ValidationError{"lease_end", "must be a valid date (YYYY-MM-DD)"})
	}
	if okStart && okEnd && !end.After(start) {
		errs = append(errs, ValidationError{"lease_end", "must be after lease_start"})
	}
	if input.AnnualRentCents < 0 || input.NumberOfCheques < 0 || input.NumberOfCheques > 12 {
		errs = append(errs, ValidationError{"number_of_cheques", "must be between 0 and 12 with a non-negative rent"})
	}
	if err := validationFailed(errs); err != nil {
		return nil, err
	}

	t, err := entity.NewTenant(input.FullName, input.Email, input.PropertyID, input.UnitID, start, end)
	if err != nil {
		return nil, Validation("%s", err.Error())
	}
	t.Phone = input.Phone
	t.Nationality = input.Nationality
	t.EmiratesID = input.EmiratesID
	t.PassportNumber = input.PassportNumber

	unit, err := s.checkAvailability(ctx, t)
	if err != nil {
		return nil, err
	}

	var cheques []*entity.Cheque
	if input.AnnualRentCents > 0 && input.NumberOfCheques > 0 {
		cheques = entity.ChequeSchedule(t.ID, t.PropertyID, input.AnnualRentCents, input.NumberOfCheques, monthsBetween(start, end), start)
	}
	prevUnit := unit.Status

	tx := NewTransaction(s.logger)
	tx.AddStep("create tenant",
		func(ctx context.Context) error { return s.Repo.Create(ctx, t) },
		func(ctx context.Context) error { return s.Repo.Delete(ctx, t.ID) })
	tx.AddStep("reserve unit",
		func(ctx context.Context) error {
			unit.Status = entity.UnitReserved
			unit.UpdatedAt = time.Now()
			return s.Properties.UpdateUnit(ctx, unit)
		},
		func(ctx context.Context) error {
			unit.Status = prevUnit
			return s.Properties.UpdateUnit(ctx, unit)
		})
	if len(cheques) > 0 {
		tx.AddStep("create cheques",
			func(ctx context.Context) error { return s.Cheques.CreateBatch(ctx, cheques) }, nil)
	}

	if err := tx.Execute(ctx); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, Duplicate("a tenant with email %s already exists", t.Email)
		}
		return nil, dbError("failed to create tenant", err)
	}

	s.Audit.Record(ctx, actor, "TENANT_CREATED", "TENANT", t.ID, nil)
	return t, nil
}

// checkAvailability rejects duplicate emails and returns the unit the tenant
// will lease once it is known to belong to the property and be leasable.
func (s *TenantService) checkAvailability(ctx context.Context, t *entity.Tenant) (*entity.Unit, error) {
	exists, err := s.Repo.ExistsByEmail(ctx, t.Email, "")
	if err != nil {
		return nil, dbError("failed to check tenant email", err)
	}
	if exists {
		return nil, Duplicate("a tenant with email %s already exists", t.Email)
	}

	if _, err := s.Properties.FindByID(ctx, t.PropertyID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("property", t.PropertyID)
		}
		return nil, dbError("failed to load property", err)
	}
	unit, err := s.Properties.FindUnitByID(ctx, t.UnitID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("unit", t.UnitID)
		}
		return nil, dbError("failed to load unit", err)
	}
	if unit.PropertyID != t.PropertyID {
		return nil, Validation("unit %s does not belong to property %s", unit.UnitNumber, t.PropertyID)
	}
	if !unit.Leasable() {
		return nil, InvalidState("unit %s is %s", unit.UnitNumber, unit.Status)
	}
	return unit, nil
}

func (s *TenantService) Get(ctx context.Context, id string) (*entity.Tenant, error) {
	t, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("tenant", id)
		}
		return nil, dbError("failed to load tenant", err)
	}
	return t, nil
}

func (s *TenantService) List(ctx context.Context, filter entity.TenantFilter, page entity.PageRequest) (*entity.Page[*entity.Tenant], error) {
	out, err := s.Repo.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, dbError("failed to list tenants", err)
	}
	return out, nil
}

func (s *TenantService) Update(ctx context.Context, actor Actor, id string, input UpdateTenantInput) (*entity.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == entity.TenantTerminated {
		return nil, InvalidState("cannot edit a terminated tenancy")
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, Validation("full_name must not be empty")
		}
		t.FullName = name
	}
	if input.Phone != nil {
		if *input.Phone != "" && !isValidPhoneNumber(*input.Phone) {
			return nil, Validation("phone must be a valid phone number")
		}
		t.Phone = *input.Phone
	}
	if input.Nationality != nil {
		t.Nationality = *input.Nationality
	}
	if input.EmiratesID != nil {
		t.EmiratesID = *input.EmiratesID
	}
	if input.PassportNumber != nil {
		t.PassportNumber = *input.PassportNumber
	}
	if input.LeaseEnd != nil {
		end, ok := parseDate(*input.LeaseEnd)
		if !ok {
			return nil, Validation("lease_end must be a valid date (YYYY-MM-DD)")
		}
		if !end.After(t.LeaseStart) {
			return nil, Validation("lease_end must be after lease_start")
		}
		t.LeaseEnd = end
	}
	t.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, t); err != nil {
		return nil, dbError("failed to update tenant", err)
	}
	s.Audit.Record(ctx, actor, "TENANT_UPDATED", "TENANT", t.ID, nil)
	return t, nil
}

func (s *TenantService) Activate(ctx context.Context, actor Actor, id string) (*entity.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != entity.TenantPending {
		return nil, InvalidState("only PENDING tenants can be activated (current status %s)", t.Status)
	}

	if err := s.setUnitStatus(ctx, t.UnitID, entity.UnitOccupied); err != nil {
		return nil, err
	}
	t.Status = entity.TenantActive
	t.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, t); err != nil {
		return nil, dbError("failed to activate tenant", err)
	}
	s.Audit.Record(ctx, actor, "TENANT_ACTIVATED", "TENANT", t.ID, nil)

	if s.Notifier != nil {
		if _, err := s.Notifier.Notify(ctx, QueueNotificationInput{
			Type:           entity.NotificationTenantOnboarded,
			RecipientEmail: t.Email,
			RecipientName:  t.FullName,
			Subject:        "Welcome to your new home",
			TemplateKey:    "tenant_onboarded",
			Variables: map[string]string{
				"name":        t.FullName,
				"lease_start": t.LeaseStart.Format("02 Jan 2006"),
				"lease_end":   t.LeaseEnd.Format("02 Jan 2006"),
			},
			RelatedEntityType: "TENANT",
			RelatedEntityID:   t.ID,
		}); err != nil {
			s.logger.Warn("onboarding email not queued", zap.String("tenant_id", t.ID), zap.Error(err))
		}
	}
	return t, nil
}

func (s *TenantService) Terminate(ctx context.Context, actor Actor, id string) (*entity.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != entity.TenantActive {
		return nil, InvalidState("only ACTIVE tenants can be terminated (current status %s)", t.Status)
	}

	if err := s.setUnitStatus(ctx, t.UnitID, entity.UnitVacant); err != nil {
		return nil, err
	}
	t.Status = entity.TenantTerminated
	t.UpdatedAt = time.Now()
	if err := s.Repo.Update(ctx, t); err != nil {
		return nil, dbError("failed to terminate tenant", err)
	}
	s.Audit.Record(ctx, actor, "TENANT_TERMINATED", "TENANT", t.ID, nil)
	return t, nil
}

func (s *TenantService) Delete(ctx context.Context, actor Actor, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if t.Status == entity.TenantActive {
		return InvalidState("cannot delete an active tenant; terminate the lease first")
	}
	if t.Status == entity.TenantPending {
		if err := s.setUnitStatus(ctx, t.UnitID, entity.UnitVacant); err != nil {
			return err
		}
	}

	t.SoftDelete(actor.UserID, time.Now())
	if err := s.Repo.Update(ctx, t); err != nil {
		return dbError("failed to delete tenant", err)
	}
	s.Audit.Record(ctx, actor, "TENANT_DELETED", "TENANT", t.ID, nil)
	return nil
}

func (s *TenantService) ListCheques(ctx context.Context, tenantID string) ([]*entity.Cheque, error) {
	if _, err := s.Get(ctx, tenantID); err != nil {
		return nil, err
	}
	cheques, err := s.Cheques.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, dbError("failed to list cheques", err)
	}
	return cheques, nil
}

func (s *TenantService) ClearCheque(ctx context.Context, actor Actor, chequeID string) (*entity.Cheque, error) {
	c, err := s.pendingCheque(ctx, chequeID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	c.Status = entity.ChequeCleared
	c.ClearedAt = &now
	c.UpdatedAt = now
	if err := s.Cheques.Update(ctx, c); err != nil {
		return nil, dbError("failed to clear cheque", err)
	}
	s.Audit.Record(ctx, actor, "CHEQUE_CLEARED", "CHEQUE", c.ID, nil)
	s.notifyCheque(ctx, c, entity.NotificationPaymentReceived, "Payment received", "payment_received")
	return c, nil
}

func (s *TenantService) BounceCheque(ctx context.Context, actor Actor, chequeID string) (*entity.Cheque, error) {
	c, err := s.pendingCheque(ctx, chequeID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	c.Status = entity.ChequeBounced
	c.BouncedAt = &now
	c.UpdatedAt = now
	if err := s.Cheques.Update(ctx, c); err != nil {
		return nil, dbError("failed to bounce cheque", err)
	}
	s.Audit.Record(ctx, actor, "CHEQUE_BOUNCED", "CHEQUE", c.ID, nil)
	s.notifyCheque(ctx, c, entity.NotificationChequeBounced, "Cheque returned unpaid", "cheque_bounced")
	return c, nil
}

func (s *TenantService) pendingCheque(ctx context.Context, id string) (*entity.Cheque, error) {
	c, err := s.Cheques.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("cheque", id)
		}
		return nil, dbError("failed to load cheque", err)
	}
	if c.Status != entity.ChequePending {
		return nil, InvalidState("cheque %s is already %s", c.ChequeNumber, c.Status)
	}
	return c, nil
}

func (s *TenantService) notifyCheque(ctx context.Context, c *entity.Cheque, typ entity.NotificationType, subject, template string) {
	if s.Notifier == nil {
		return
	}
	t, err := s.Repo.FindByID(ctx, c.TenantID)
	if err != nil {
		s.logger.Warn("cheque tenant not found", zap.String("cheque_id", c.ID), zap.Error(err))
		return
	}
	if _, err := s.Notifier.Notify(ctx, QueueNotificationInput{
		Type:           typ,
		RecipientEmail: t.Email,
		RecipientName:  t.FullName,
		Subject:        subject,
		TemplateKey:    template,
		Variables: map[string]string{
			"name":          t.FullName,
			"cheque_number": c.ChequeNumber,
			"amount":        formatAmount(c.AmountCents),
			"due_date":      c.DueDate.Format("02 Jan 2006"),
		},
		RelatedEntityType: "CHEQUE",
		RelatedEntityID:   c.ID,
	}); err != nil {
		s.logger.Warn("cheque email not queued", zap.String("cheque_id", c.ID), zap.Error(err))
	}
}

func (s *TenantService) setUnitStatus(ctx context.Context, unitID string, status entity.UnitStatus) error {
	unit, err := s.Properties.FindUnitByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return NotFound("unit", unitID)
		}
		return dbError("failed to load unit", err)
	}
	unit.Status = status
	unit.UpdatedAt = time.Now()
	if err := s.Properties.UpdateUnit(ctx, unit); err != nil {
		return dbError("failed to update unit", err)
	}
	return nil
}

func monthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() >= start.Day() {
		months++
	}
	if months < 1 {
		months = 1
	}
	return months
}
