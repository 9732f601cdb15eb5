package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type CreateComplianceInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PropertyID  string `json:"property_id,omitempty"`
	Frequency   string `json:"frequency"`
	DueDate     string `json:"due_date"`
}

type UpdateComplianceInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Frequency   *string `json:"frequency,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

type ComplianceService struct {
	Repo  entity.ComplianceRepository
	Audit *AuditLogger
	now   func() time.Time
}

func NewComplianceService(repo entity.ComplianceRepository, audit *AuditLogger) *ComplianceService {
	return &ComplianceService{Repo: repo, Audit: audit, now: time.Now}
}

func (s *ComplianceService) Create(ctx context.Context, actor Actor, input CreateComplianceInput) (*entity.ComplianceRequirement, error) {
	var errs []ValidationError
	errs = requireText(errs, "name", input.Name, 3, 200)
	freq := entity.ComplianceFrequency(strings.ToUpper(input.Frequency))
	if !freq.Valid() {
		errs = append(errs, ValidationError{"frequency", "must be ONE_TIME, MONTHLY, QUARTERLY or ANNUAL"})
	}
	due, ok := parseDate(input.DueDate)
	if !ok {
		errs = append(errs, ValidationError{"due_date", "must be a valid date (YYYY-MM-DD)"})
	}
	if err := validationFailed(errs); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	exists, err := s.Repo.ExistsByName(ctx, name, "")
	if err != nil {
		return nil, dbError("failed to check requirement name", err)
	}
	if exists {
		return nil, Duplicate("a compliance requirement named %s already exists", name)
	}

	now := s.now()
	c := &entity.ComplianceRequirement{
		ID:          uuid.New().String(),
		Name:        name,
		Description: input.Description,
		PropertyID:  input.PropertyID,
		Frequency:   freq,
		DueDate:     due,
		Status:      entity.CompliancePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, Duplicate("a compliance requirement named %s already exists", name)
		}
		return nil, dbError("failed to create requirement", err)
	}
	s.Audit.Record(ctx, actor, "COMPLIANCE_CREATED", "COMPLIANCE", c.ID, nil)
	return c, nil
}

func (s *ComplianceService) Get(ctx context.Context, id string) (*entity.ComplianceRequirement, error) {
	c, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("compliance requirement", id)
		}
		return nil, dbError("failed to load requirement", err)
	}
	return c, nil
}

func (s *ComplianceService) List(ctx context.Context, filter entity.ComplianceFilter, page entity.PageRequest) (*entity.Page[*entity.ComplianceRequirement], error) {
	out, err := s.Repo.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, dbError("failed to list requirements", err)
	}
	return out, nil
}

func (s *ComplianceService) Update(ctx context.Context, actor Actor, id string, input UpdateComplianceInput) (*entity.ComplianceRequirement, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < 3 {
			return nil, Validation("name must have at least 3 characters")
		}
		if name != c.Name {
			exists, err := s.Repo.ExistsByName(ctx, name, c.ID)
			if err != nil {
				return nil, dbError("failed to check requirement name", err)
			}
			if exists {
				return nil, Duplicate("a compliance requirement named %s already exists", name)
			}
			c.Name = name
		}
	}
	if input.Description != nil {
		c.Description = *input.Description
	}
	if input.Frequency != nil {
		f := entity.ComplianceFrequency(strings.ToUpper(*input.Frequency))
		if !f.Valid() {
			return nil, Validation("frequency %q is invalid", *input.Frequency)
		}
		c.Frequency = f
	}
	if input.DueDate != nil {
		d, ok := parseDate(*input.DueDate)
		if !ok {
			return nil, Validation("due_date must be a valid date (YYYY-MM-DD)")
		}
		c.DueDate = d
	}
	c.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, c); err != nil {
		return nil, dbError("failed to update requirement", err)
	}
	s.Audit.Record(ctx, actor, "COMPLIANCE_UPDATED", "COMPLIANCE", c.ID, nil)
	return c, nil
}

// MarkCompliant records compliance. Recurring requirements roll forward to
// their next due date and go back to PENDING.
func (s *ComplianceService) MarkCompliant(ctx context.Context, actor Actor, id string) (*entity.ComplianceRequirement, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	c.LastCompliantAt = &now
	if next, ok := c.Frequency.Next(c.DueDate); ok {
		c.DueDate = next
		c.Status = entity.CompliancePending
	} else {
		c.Status = entity.ComplianceCompliant
	}
	c.UpdatedAt = now
	if err := s.Repo.Update(ctx, c); err != nil {
		return nil, dbError("failed to update requirement", err)
	}
	s.Audit.Record(ctx, actor, "COMPLIANCE_MET", "COMPLIANCE", c.ID, nil)
	return c, nil
}

func (s *ComplianceService) MarkNonCompliant(ctx context.Context, actor Actor, id string) (*entity.ComplianceRequirement, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Status = entity.ComplianceNonCompliant
	c.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, c); err != nil {
		return nil, dbError("failed to update requirement", err)
	}
	s.Audit.Record(ctx, actor, "COMPLIANCE_BREACHED", "COMPLIANCE", c.ID, nil)
	return c, nil
}

func (s *ComplianceService) Delete(ctx context.Context, actor Actor, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	c.SoftDelete(actor.UserID, s.now())
	if err := s.Repo.Update(ctx, c); err != nil {
		return dbError("failed to delete requirement", err)
	}
	s.Audit.Record(ctx, actor, "COMPLIANCE_DELETED", "COMPLIANCE", c.ID, nil)
	return nil
}

func (s *ComplianceService) ListOverdue(ctx context.Context) ([]*entity.ComplianceRequirement, error) {
	out, err := s.Repo.ListOverdue(ctx, s.now())
	if err != nil {
		return nil, dbError("failed to list overdue requirements", err)
	}
	return out, nil
}
