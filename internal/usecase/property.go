package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type CreatePropertyInput struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Address   string `json:"address"`
	City      string `json:"city"`
	ManagerID string `json:"manager_id"`
}

type UpdatePropertyInput struct {
	Name      *string `json:"name,omitempty"`
	Address   *string `json:"address,omitempty"`
	City      *string `json:"city,omitempty"`
	ManagerID *string `json:"manager_id,omitempty"`
}

type AddUnitInput struct {
	UnitNumber      string `json:"unit_number"`
	Bedrooms        int    `json:"bedrooms"`
	AreaSqft        int    `json:"area_sqft"`
	AnnualRentCents int64  `json:"annual_rent_cents"`
}

type PropertyService struct {
	Repo  entity.PropertyRepository
	Audit *AuditLogger
}

func NewPropertyService(repo entity.PropertyRepository, audit *AuditLogger) *PropertyService {
	return &PropertyService{Repo: repo, Audit: audit}
}

func (s *PropertyService) Create(ctx context.Context, actor Actor, input CreatePropertyInput) (*entity.Property, error) {
	var errs []ValidationError
	errs = requireText(errs, "code", input.Code, 2, 20)
	errs = requireText(errs, "name", input.Name, 2, 200)
	errs = requireText(errs, "city", input.City, 2, 100)
	if !entity.PropertyType(strings.ToUpper(input.Type)).Valid() {
		errs = append(errs, ValidationError{"type", "must be RESIDENTIAL, COMMERCIAL or MIXED_USE"})
	}
	if err := validationFailed(errs); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, input.Name, input.Code, ""); err != nil {
		return nil, err
	}

	p, err := entity.NewProperty(input.Code, input.Name, entity.PropertyType(strings.ToUpper(input.Type)), input.Address, input.City)
	if err != nil {
		return nil, Validation("%s", err.Error())
	}
	p.ManagerID = input.ManagerID

	if err := s.Repo.Create(ctx, p); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return nil, Duplicate("property %s already exists", input.Name)
		}
		return nil, dbError("failed to create property", err)
	}
	s.Audit.Record(ctx, actor, "PROPERTY_CREATED", "PROPERTY", p.ID, nil)
	return p, nil
}

func (s *PropertyService) Get(ctx context.Context, id string) (*entity.Property, error) {
	p, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("property", id)
		}
		return nil, dbError("failed to load property", err)
	}
	return p, nil
}

func (s *PropertyService) List(ctx context.Context, filter entity.PropertyFilter, page entity.PageRequest) (*entity.Page[*entity.Property], error) {
	out, err := s.Repo.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, dbError("failed to list properties", err)
	}
	return out, nil
}

func (s *PropertyService) Update(ctx context.Context, actor Actor, id string, input UpdatePropertyInput) (*entity.Property, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, Validation("name must not be empty")
		}
		if name != p.Name {
			if err := s.ensureUnique(ctx, name, "", p.ID); err != nil {
				return nil, err
			}
			p.Name = name
		}
	}
	if input.Address != nil {
		p.Address = *input.Address
	}
	if input.City != nil {
		p.City = *input.City
	}
	if input.ManagerID != nil {
		p.ManagerID = *input.ManagerID
	}
	p.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, dbError("failed to update property", err)
	}
	s.Audit.Record(ctx, actor, "PROPERTY_UPDATED", "PROPERTY", p.ID, nil)
	return p, nil
}

func (s *PropertyService) Delete(ctx context.Context, actor Actor, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	occupied, err := s.Repo.CountUnitsByStatus(ctx, p.ID, entity.UnitOccupied)
	if err != nil {
		return dbError("failed to count occupied units", err)
	}
	if occupied > 0 {
		return InvalidState("property %s has %d occupied units", p.Name, occupied)
	}

	p.SoftDelete(actor.UserID, time.Now())
	if err := s.Repo.Update(ctx, p); err != nil {
		return dbError("failed to delete property", err)
	}
	s.Audit.Record(ctx, actor, "PROPERTY_DELETED", "PROPERTY", p.ID, nil)
	return nil
}

func (s *PropertyService) AddUnit(ctx context.Context, actor Actor, propertyID string, input AddUnitInput) (*entity.Unit, error) {
	p, err := s.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	number := strings.TrimSpace(input.UnitNumber)
	if number == "" {
		return nil, Validation("unit_number is required")
	}
	if input.AnnualRentCents < 0 || input.Bedrooms < 0 || input.AreaSqft < 0 {
		return nil, Validation("rent, bedrooms and area must not be negative")
	}

	exists, err := s.Repo.UnitNumberExists(ctx, p.ID, number)
	if err != nil {
		return nil, dbError("failed to check unit number", err)
	}
	if exists {
		return nil, Duplicate("unit %s already exists in property %s", number, p.Name)
	}

	now := time.Now()
	u := &entity.Unit{
		ID:              uuid.New().String(),
		PropertyID:      p.ID,
		UnitNumber:      number,
		Bedrooms:        input.Bedrooms,
		AreaSqft:        input.AreaSqft,
		AnnualRentCents: input.AnnualRentCents,
		Status:          entity.UnitVacant,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.CreateUnit(ctx, u); err != nil {
		return nil, dbError("failed to create unit", err)
	}

	p.TotalUnits++
	p.UpdatedAt = now
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, dbError("failed to update unit count", err)
	}
	s.Audit.Record(ctx, actor, "UNIT_CREATED", "UNIT", u.ID, map[string]string{"property_id": p.ID})
	return u, nil
}

func (s *PropertyService) ListUnits(ctx context.Context, propertyID string) ([]*entity.Unit, error) {
	if _, err := s.Get(ctx, propertyID); err != nil {
		return nil, err
	}
	units, err := s.Repo.ListUnits(ctx, propertyID)
	if err != nil {
		return nil, dbError("failed to list units", err)
	}
	return units, nil
}

func (s *PropertyService) GetUnit(ctx context.Context, id string) (*entity.Unit, error) {
	u, err := s.Repo.FindUnitByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("unit", id)
		}
		return nil, dbError("failed to load unit", err)
	}
	return u, nil
}

// SetUnitStatus is the manual override (maintenance in/out). Occupancy itself
// is driven by tenant activation and termination.
func (s *PropertyService) SetUnitStatus(ctx context.Context, actor Actor, unitID string, status entity.UnitStatus) (*entity.Unit, error) {
	if !status.Valid() {
		return nil, Validation("unit status %q is invalid", status)
	}
	u, err := s.GetUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if u.Status == entity.UnitOccupied && status != entity.UnitOccupied {
		return nil, InvalidState("unit %s is occupied; terminate the tenancy first", u.UnitNumber)
	}
	if status == entity.UnitOccupied && u.Status != entity.UnitOccupied {
		return nil, InvalidState("units become occupied only through tenant activation")
	}

	u.Status = status
	u.UpdatedAt = time.Now()
	if err := s.Repo.UpdateUnit(ctx, u); err != nil {
		return nil, dbError("failed to update unit", err)
	}
	s.Audit.Record(ctx, actor, "UNIT_STATUS_CHANGED", "UNIT", u.ID, map[string]string{"status": string(status)})
	return u, nil
}

func (s *PropertyService) ensureUnique(ctx context.Context, name, code, excludeID string) error {
	if name != "" {
		exists, err := s.Repo.ExistsByName(ctx, strings.TrimSpace(name), excludeID)
		if err != nil {
			return dbError("failed to check property name", err)
		}
		if exists {
			return Duplicate("a property named %s already exists", name)
		}
	}
	if code != "" {
		exists, err := s.Repo.ExistsByCode(ctx, strings.ToUpper(strings.TrimSpace(code)), excludeID)
		if err != nil {
			return dbError("failed to check property code", err)
		}
		if exists {
			return Duplicate("a property with code %s already exists", code)
		}
	}
	return nil
}
