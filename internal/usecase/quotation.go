package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

const defaultQuotationValidity = 14 * 24 * time.Hour

type CreateQuotationInput struct {
	LeadID               string `json:"lead_id"`
	UnitID               string `json:"unit_id"`
	AnnualRentCents      int64  `json:"annual_rent_cents"`
	SecurityDepositCents int64  `json:"security_deposit_cents"`
	NumberOfCheques      int    `json:"number_of_cheques"`
	LeaseStart           string `json:"lease_start"`
	LeaseMonths          int    `json:"lease_months"`
	ValidUntil           string `json:"valid_until,omitempty"`
}

type UpdateQuotationInput struct {
	AnnualRentCents      *int64  `json:"annual_rent_cents,omitempty"`
	SecurityDepositCents *int64  `json:"security_deposit_cents,omitempty"`
	NumberOfCheques      *int    `json:"number_of_cheques,omitempty"`
	LeaseStart           *string `json:"lease_start,omitempty"`
	LeaseMonths          *int    `json:"lease_months,omitempty"`
	ValidUntil           *string `json:"valid_until,omitempty"`
}

type QuotationService struct {
	Repo       entity.QuotationRepository
	Leads      entity.LeadRepositoryInterface
	Properties entity.PropertyRepository
	Tenants    entity.TenantRepository
	Cheques    entity.ChequeRepository
	Notifier   Notifier
	Audit      *AuditLogger
	logger     *zap.Logger
	now        func() time.Time
}

func NewQuotationService(
	repo entity.QuotationRepository,
	leads entity.LeadRepositoryInterface,
	properties entity.PropertyRepository,
	tenants entity.TenantRepository,
	cheques entity.ChequeRepository,
	notifier Notifier,
	audit *AuditLogger,
	logger *zap.Logger,
) *QuotationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotationService{
		Repo:       repo,
		Leads:      leads,
		Properties: properties,
		Tenants:    tenants,
		Cheques:    cheques,
		Notifier:   notifier,
		Audit:      audit,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *QuotationService) Create(ctx context.Context, actor Actor, input CreateQuotationInput) (*entity.Quotation, error) {
	now := s.now()
	var errs []ValidationError
	if input.LeadID == "" {
		errs = append(errs, ValidationError{"lead_id", "is required"})
	}
	if input.UnitID == "" {
		errs = append(errs, ValidationError{"unit_id", "is required"})
	}
	errs = checkTerms(errs, input.AnnualRentCents, input.SecurityDepositCents, input.NumberOfCheques, input.LeaseMonths)
	start, ok := parseDate(input.LeaseStart)
	if !ok {
		errs = append(errs, ValidationError{"lease_start", "must be a valid date (YYYY-MM-DD)"})
	}
	validUntil := now.Add(defaultQuotationValidity)
	if input.ValidUntil != "" {
		v, ok := parseDate(input.ValidUntil)
		if !ok || !v.After(now) {
			errs = append(errs, ValidationError{"valid_until", "must be a future date"})
		}
		validUntil = v
	}
	if err := validationFailed(errs); err != nil {
		return nil, err
	}

	lead, err := s.lead(ctx, input.LeadID)
	if err != nil {
		return nil, err
	}
	if !lead.Status.Open() {
		return nil, InvalidState("lead %s is %s", lead.LeadNumber, lead.Status)
	}
	unit, err := s.unit(ctx, input.UnitID)
	if err != nil {
		return nil, err
	}
	if !unit.Leasable() {
		return nil, InvalidState("unit %s is %s", unit.UnitNumber, unit.Status)
	}

	number, err := nextNumber(ctx, "QT", now, s.Repo.CountByNumberPrefix)
	if err != nil {
		return nil, err
	}

	q := &entity.Quotation{
		ID:                   uuid.New().String(),
		QuotationNumber:      number,
		LeadID:               lead.ID,
		PropertyID:           unit.PropertyID,
		UnitID:               unit.ID,
		AnnualRentCents:      input.AnnualRentCents,
		SecurityDepositCents: input.SecurityDepositCents,
		NumberOfCheques:      input.NumberOfCheques,
		LeaseStart:           start,
		LeaseMonths:          input.LeaseMonths,
		ValidUntil:           validUntil,
		Status:               entity.QuotationDraft,
		CreatedBy:            actor.UserID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.Repo.Create(ctx, q); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, Duplicate("quotation %s already exists", number)
		}
		return nil, dbError("failed to create quotation", err)
	}
	s.Audit.Record(ctx, actor, "QUOTATION_CREATED", "QUOTATION", q.ID, map[string]string{"lead_id": lead.ID})
	return q, nil
}

func (s *QuotationService) Get(ctx context.Context, id string) (*entity.Quotation, error) {
	q, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("quotation", id)
		}
		return nil, dbError("failed to load quotation", err)
	}
	return q, nil
}

func (s *QuotationService) List(ctx context.Context, filter entity.QuotationFilter, page entity.PageRequest) (*entity.Page[*entity.Quotation], error) {
	out, err := s.Repo.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, dbError("failed to list quotations", err)
	}
	return out, nil
}

func (s *QuotationService) Update(ctx context.Context, actor Actor, id string, input UpdateQuotationInput) (*entity.Quotation, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != entity.QuotationDraft {
		return nil, InvalidState("only DRAFT quotations can be edited (current status %s)", q.Status)
	}

	if input.AnnualRentCents != nil {
		q.AnnualRentCents = *input.AnnualRentCents
	}
	if input.SecurityDepositCents != nil {
		q.SecurityDepositCents = *input.SecurityDepositCents
	}
	if input.NumberOfCheques != nil {
		q.NumberOfCheques = *input.NumberOfCheques
	}
	if input.LeaseMonths != nil {
		q.LeaseMonths = *input.LeaseMonths
	}
	if input.LeaseStart != nil {
		start, ok := parseDate(*input.LeaseStart)
		if !ok {
			return nil, Validation("lease_start must be a valid date (YYYY-MM-DD)")
		}
		q.LeaseStart = start
	}
	if input.ValidUntil != nil {
		v, ok := parseDate(*input.ValidUntil)
		if !ok || !v.After(s.now()) {
			return nil, Validation("valid_until must be a future date")
		}
		q.ValidUntil = v
	}
	if err := validationFailed(checkTerms(nil, q.AnnualRentCents, q.SecurityDepositCents, q.NumberOfCheques, q.LeaseMonths)); err != nil {
		return nil, err
	}
	q.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, q); err != nil {
		return nil, dbError("failed to update quotation", err)
	}
	s.Audit.Record(ctx, actor, "QUOTATION_UPDATED", "QUOTATION", q.ID, nil)
	return q, nil
}

func (s *QuotationService) Send(ctx context.Context, actor Actor, id string) (*entity.Quotation, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != entity.QuotationDraft {
		return nil, InvalidState("only DRAFT quotations can be sent (current status %s)", q.Status)
	}
	now := s.now()
	if q.ExpiredAt(now) {
		return nil, InvalidState("quotation %s validity ended on %s", q.QuotationNumber, q.ValidUntil.Format("2006-01-02"))
	}
	lead, err := s.lead(ctx, q.LeadID)
	if err != nil {
		return nil, err
	}
	if lead.Status != entity.LeadQuotationSent {
		if !lead.Status.CanTransitionTo(entity.LeadQuotationSent) {
			return nil, InvalidState("lead cannot move from %s to %s", lead.Status, entity.LeadQuotationSent)
		}
		lead.Status = entity.LeadQuotationSent
		lead.UpdatedAt = now
		if err := s.Leads.Update(ctx, lead); err != nil {
			return nil, dbError("failed to update lead status", err)
		}
	}

	q.Status = entity.QuotationSent
	q.SentAt = &now
	q.UpdatedAt = now
	if err := s.Repo.Update(ctx, q); err != nil {
		return nil, dbError("failed to send quotation", err)
	}
	s.Audit.Record(ctx, actor, "QUOTATION_SENT", "QUOTATION", q.ID, nil)

	if s.Notifier != nil {
		if _, err := s.Notifier.Notify(ctx, QueueNotificationInput{
			Type:           entity.NotificationQuotationSent,
			RecipientEmail: lead.Email,
			RecipientName:  lead.FullName,
			Subject:        "Your lease quotation " + q.QuotationNumber,
			TemplateKey:    "quotation_sent",
			Variables: map[string]string{
				"name":             lead.FullName,
				"quotation_number": q.QuotationNumber,
				"annual_rent":      formatAmount(q.AnnualRentCents),
				"deposit":          formatAmount(q.SecurityDepositCents),
				"valid_until":      q.ValidUntil.Format("02 Jan 2006"),
			},
			RelatedEntityType: "QUOTATION",
			RelatedEntityID:   q.ID,
		}); err != nil {
			s.logger.Warn("quotation email not queued", zap.String("quotation_id", q.ID), zap.Error(err))
		}
	}
	return q, nil
}

func (s *QuotationService) Accept(ctx context.Context, actor Actor, id string) (*entity.Quotation, error) {
	return s.respond(ctx, actor, id, entity.QuotationAccepted)
}

func (s *QuotationService) Reject(ctx context.Context, actor Actor, id string) (*entity.Quotation, error) {
	return s.respond(ctx, actor, id, entity.QuotationRejected)
}

func (s *QuotationService) respond(ctx context.Context, actor Actor, id string, outcome entity.QuotationStatus) (*entity.Quotation, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != entity.QuotationSent {
		return nil, InvalidState("only SENT quotations can be answered (current status %s)", q.Status)
	}
	now := s.now()
	if q.ExpiredAt(now) {
		if err := s.expire(ctx, q, now); err != nil {
			return nil, err
		}
		return nil, InvalidState("quotation %s expired on %s", q.QuotationNumber, q.ValidUntil.Format("2006-01-02"))
	}

	q.Status = outcome
	q.RespondedAt = &now
	q.UpdatedAt = now
	if err := s.Repo.Update(ctx, q); err != nil {
		return nil, dbError("failed to record quotation response", err)
	}
	s.Audit.Record(ctx, actor, "QUOTATION_"+string(outcome), "QUOTATION", q.ID, nil)
	return q, nil
}

// Convert turns an accepted quotation into a pending tenant with its cheque
// schedule. The unit, tenant, cheques and lead are written step by step and
// unwound if any step fails.
func (s *QuotationService) Convert(ctx context.Context, actor Actor, id string) (*entity.Tenant, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != entity.QuotationAccepted {
		return nil, InvalidState("only ACCEPTED quotations can be converted (current status %s)", q.Status)
	}
	lead, err := s.lead(ctx, q.LeadID)
	if err != nil {
		return nil, err
	}
	exists, err := s.Tenants.ExistsByEmail(ctx, lead.Email, "")
	if err != nil {
		return nil, dbError("failed to check tenant email", err)
	}
	if exists {
		return nil, Duplicate("a tenant with email %s already exists", lead.Email)
	}
	unit, err := s.unit(ctx, q.UnitID)
	if err != nil {
		return nil, err
	}
	if !unit.Leasable() {
		return nil, InvalidState("unit %s is %s", unit.UnitNumber, unit.Status)
	}

	tenant, err := entity.NewTenant(lead.FullName, lead.Email, q.PropertyID, q.UnitID, q.LeaseStart, q.LeaseEnd())
	if err != nil {
		return nil, Validation("%s", err.Error())
	}
	tenant.Phone = lead.Phone
	tenant.LeadID = lead.ID
	tenant.QuotationID = q.ID
	cheques := entity.ChequeSchedule(tenant.ID, q.PropertyID, q.AnnualRentCents, q.NumberOfCheques, q.LeaseMonths, q.LeaseStart)

	now := s.now()
	prevUnit := unit.Status
	prevLead := lead.Status

	tx := NewTransaction(s.logger)
	tx.AddStep("reserve unit",
		func(ctx context.Context) error {
			unit.Status = entity.UnitReserved
			unit.UpdatedAt = now
			return s.Properties.UpdateUnit(ctx, unit)
		},
		func(ctx context.Context) error {
			unit.Status = prevUnit
			return s.Properties.UpdateUnit(ctx, unit)
		})
	tx.AddStep("create tenant",
		func(ctx context.Context) error { return s.Tenants.Create(ctx, tenant) },
		func(ctx context.Context) error { return s.Tenants.Delete(ctx, tenant.ID) })
	tx.AddStep("create cheques",
		func(ctx context.Context) error { return s.Cheques.CreateBatch(ctx, cheques) },
		func(ctx context.Context) error { return s.Cheques.DeleteByTenant(ctx, tenant.ID) })
	tx.AddStep("convert lead",
		func(ctx context.Context) error {
			lead.Status = entity.LeadConverted
			lead.UpdatedAt = now
			return s.Leads.Update(ctx, lead)
		},
		func(ctx context.Context) error {
			lead.Status = prevLead
			return s.Leads.Update(ctx, lead)
		})
	tx.AddStep("close quotation",
		func(ctx context.Context) error {
			q.Status = entity.QuotationConverted
			q.TenantID = tenant.ID
			q.UpdatedAt = now
			return s.Repo.Update(ctx, q)
		}, nil)

	if err := tx.Execute(ctx); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, Duplicate("a tenant with email %s already exists", lead.Email)
		}
		return nil, dbError("failed to convert quotation", err)
	}

	s.Audit.Record(ctx, actor, "QUOTATION_CONVERTED", "QUOTATION", q.ID, map[string]string{"tenant_id": tenant.ID})
	s.logger.Info("quotation converted",
		zap.String("quotation_id", q.ID),
		zap.String("tenant_id", tenant.ID),
		zap.Int("cheques", len(cheques)))
	return tenant, nil
}

// ExpireDue marks SENT quotations past their validity as EXPIRED.
func (s *QuotationService) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.Repo.ListSentValidBefore(ctx, now)
	if err != nil {
		return 0, dbError("failed to load quotations to expire", err)
	}
	expired := 0
	for _, q := range due {
		if err := s.expire(ctx, q, now); err != nil {
			s.logger.Error("failed to expire quotation", zap.String("quotation_id", q.ID), zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

func (s *QuotationService) expire(ctx context.Context, q *entity.Quotation, now time.Time) error {
	q.Status = entity.QuotationExpired
	q.UpdatedAt = now
	if err := s.Repo.Update(ctx, q); err != nil {
		return dbError("failed to expire quotation", err)
	}
	return nil
}

func (s *QuotationService) lead(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := s.Leads.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("lead", id)
		}
		return nil, dbError("failed to load lead", err)
	}
	return lead, nil
}

func (s *QuotationService) unit(ctx context.Context, id string) (*entity.Unit, error) {
	u, err := s.Properties.FindUnitByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("unit", id)
		}
		return nil, dbError("failed to load unit", err)
	}
	return u, nil
}

func checkTerms(errs []ValidationError, rent, deposit int64, cheques, months int) []ValidationError {
	if rent <= 0 {
		errs = append(errs, ValidationError{"annual_rent_cents", "must be greater than zero"})
	}
	if deposit < 0 {
		errs = append(errs, ValidationError{"security_deposit_cents", "must not be negative"})
	}
	if cheques < 1 || cheques > 12 {
		errs = append(errs, ValidationError{"number_of_cheques", "must be between 1 and 12"})
	}
	if months < 1 || months > 60 {
		errs = append(errs, ValidationError{"lease_months", "must be between 1 and 60"})
	}
	return errs
}
