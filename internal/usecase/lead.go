package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type CreateLeadInput struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Source     string `json:"source,omitempty"`
	PropertyID string `json:"property_id,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type UpdateLeadInput struct {
	FullName   *string `json:"full_name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Source     *string `json:"source,omitempty"`
	PropertyID *string `json:"property_id,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

var leadSources = map[string]bool{"WEBSITE": true, "REFERRAL": true, "WALK_IN": true, "PORTAL": true}

type LeadService struct {
	Repo  entity.LeadRepositoryInterface
	Audit *AuditLogger
	now   func() time.Time
}

func NewLeadService(repo entity.LeadRepositoryInterface, audit *AuditLogger) *LeadService {
	return &LeadService{Repo: repo, Audit: audit, now: time.Now}
}

func (s *LeadService) Create(ctx context.Context, actor Actor, input CreateLeadInput) (*entity.Lead, error) {
	var errs []ValidationError
	errs = requireText(errs, "full_name", input.FullName, 2, 150)
	errs = requireEmail(errs, "email", input.Email)
	if input.Phone != "" && !isValidPhoneNumber(input.Phone) {
		errs = append(errs, ValidationError{"phone", "must be a valid phone number"})
	}
	source := strings.ToUpper(strings.TrimSpace(input.Source))
	if source == "" {
		source = "WEBSITE"
	}
	if !leadSources[source] {
		errs = append(errs, ValidationError{"source", "must be WEBSITE, REFERRAL, WALK_IN or PORTAL"})
	}
	if err := validationFailed(errs); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(input.Email)
	exists, err := s.Repo.ExistsOpenByEmail(ctx, email)
	if err != nil {
		return nil, dbError("failed to check lead email", err)
	}
	if exists {
		return nil, Duplicate("an open lead with email %s already exists", email)
	}

	now := s.now()
	number, err := nextNumber(ctx, "LD", now, s.Repo.CountByNumberPrefix)
	if err != nil {
		return nil, err
	}

	lead := &entity.Lead{
		ID:         uuid.New().String(),
		LeadNumber: number,
		FullName:   strings.TrimSpace(input.FullName),
		Email:      email,
		Phone:      input.Phone,
		Source:     source,
		PropertyID: input.PropertyID,
		Notes:      input.Notes,
		Status:     entity.LeadNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, lead); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, Duplicate("lead %s already exists", number)
		}
		return nil, dbError("failed to create lead", err)
	}
	s.Audit.Record(ctx, actor, "LEAD_CREATED", "LEAD", lead.ID, map[string]string{"lead_number": number})
	return lead, nil
}

func (s *LeadService) Get(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("lead", id)
		}
		return nil, dbError("failed to load lead", err)
	}
	return lead, nil
}

func (s *LeadService) List(ctx context.Context, filter entity.LeadFilter, page entity.PageRequest) (*entity.Page[*entity.Lead], error) {
	out, err := s.Repo.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, dbError("failed to list leads", err)
	}
	return out, nil
}

func (s *LeadService) Update(ctx context.Context, actor Actor, id string, input UpdateLeadInput) (*entity.Lead, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lead.Status.Open() {
		return nil, InvalidState("lead %s is %s and can no longer be edited", lead.LeadNumber, lead.Status)
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, Validation("full_name must not be empty")
		}
		lead.FullName = name
	}
	if input.Phone != nil {
		if *input.Phone != "" && !isValidPhoneNumber(*input.Phone) {
			return nil, Validation("phone must be a valid phone number")
		}
		lead.Phone = *input.Phone
	}
	if input.Source != nil {
		src := strings.ToUpper(*input.Source)
		if !leadSources[src] {
			return nil, Validation("source %q is invalid", *input.Source)
		}
		lead.Source = src
	}
	if input.PropertyID != nil {
		lead.PropertyID = *input.PropertyID
	}
	if input.Notes != nil {
		lead.Notes = *input.Notes
	}
	lead.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, lead); err != nil {
		return nil, dbError("failed to update lead", err)
	}
	s.Audit.Record(ctx, actor, "LEAD_UPDATED", "LEAD", lead.ID, nil)
	return lead, nil
}

// ChangeStatus moves a lead along the pipeline. CONVERTED is reserved for
// quotation conversion.
func (s *LeadService) ChangeStatus(ctx context.Context, actor Actor, id string, next entity.LeadStatus) (*entity.Lead, error) {
	if next == entity.LeadConverted {
		return nil, InvalidState("leads are converted by converting an accepted quotation")
	}
	if next == entity.LeadLost {
		return s.MarkLost(ctx, actor, id, "")
	}
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, lead, next); err != nil {
		return nil, err
	}
	s.Audit.Record(ctx, actor, "LEAD_STATUS_CHANGED", "LEAD", lead.ID, map[string]string{"status": string(next)})
	return lead, nil
}

func (s *LeadService) MarkLost(ctx context.Context, actor Actor, id, reason string) (*entity.Lead, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	lead.LostReason = strings.TrimSpace(reason)
	if err := s.transition(ctx, lead, entity.LeadLost); err != nil {
		return nil, err
	}
	s.Audit.Record(ctx, actor, "LEAD_LOST", "LEAD", lead.ID, map[string]string{"reason": lead.LostReason})
	return lead, nil
}

func (s *LeadService) Delete(ctx context.Context, actor Actor, id string) error {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if lead.Status == entity.LeadConverted {
		return InvalidState("converted leads cannot be deleted")
	}
	lead.SoftDelete(actor.UserID, s.now())
	if err := s.Repo.Update(ctx, lead); err != nil {
		return dbError("failed to delete lead", err)
	}
	s.Audit.Record(ctx, actor, "LEAD_DELETED", "LEAD", lead.ID, nil)
	return nil
}

func (s *LeadService) transition(ctx context.Context, lead *entity.Lead, next entity.LeadStatus) error {
	if lead.Status == next {
		return nil
	}
	if !lead.Status.CanTransitionTo(next) {
		return InvalidState("lead cannot move from %s to %s", lead.Status, next)
	}
	lead.Status = next
	lead.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, lead); err != nil {
		return dbError("failed to update lead status", err)
	}
	return nil
}
