package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type PropertyRepository struct {
	DB *sql.DB
}

func NewPropertyRepository(db *sql.DB) *PropertyRepository {
	return &PropertyRepository{DB: db}
}

const propertyColumns = `id, code, name, type, address, city, total_units, manager_id, created_at, updated_at`

func (r *PropertyRepository) Create(ctx context.Context, p *entity.Property) error {
	query := `
		INSERT INTO properties (id, code, name, type, address, city, total_units, manager_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.DB.ExecContext(ctx, query,
		p.ID, p.Code, p.Name, p.Type, nullString(p.Address), p.City, p.TotalUnits,
		nullString(p.ManagerID), p.CreatedAt, p.UpdatedAt)
	return mapError(err)
}

func (r *PropertyRepository) FindByID(ctx context.Context, id string) (*entity.Property, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1 AND NOT deleted`, id)
	return scanProperty(row)
}

// ExistsByName and ExistsByCode include deleted rows: the unique index does.
func (r *PropertyRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return r.exists(ctx, `LOWER(name) = LOWER($1)`, name, excludeID)
}

func (r *PropertyRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	return r.exists(ctx, `code = $1`, code, excludeID)
}

func (r *PropertyRepository) exists(ctx context.Context, cond, value, excludeID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM properties WHERE `+cond+` AND ($2 = '' OR id::text <> $2))`,
		value, excludeID).Scan(&exists)
	return exists, err
}

func (r *PropertyRepository) List(ctx context.Context, filter entity.PropertyFilter, page entity.PageRequest) (*entity.Page[*entity.Property], error) {
	w := &where{}
	w.add("NOT deleted")
	if filter.Type != "" {
		w.add("type = ?", filter.Type)
	}
	if filter.City != "" {
		w.add("LOWER(city) = LOWER(?)", filter.City)
	}
	if filter.ManagerID != "" {
		w.add("manager_id = ?", filter.ManagerID)
	}
	if filter.Search != "" {
		w.add("(LOWER(name) LIKE ? OR LOWER(code) LIKE ?)", likePattern(filter.Search), likePattern(filter.Search))
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(page)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+propertyColumns+` FROM properties`+w.String()+` ORDER BY name`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entity.NewPage(items, total, page), nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *entity.Property) error {
	query := `
		UPDATE properties
		SET name = $2, address = $3, city = $4, total_units = $5, manager_id = $6,
		    deleted = $7, deleted_by = $8, deleted_at = $9, updated_at = $10
		WHERE id = $1
	`
	return expectOne(r.DB.ExecContext(ctx, query,
		p.ID, p.Name, nullString(p.Address), p.City, p.TotalUnits, nullString(p.ManagerID),
		p.Deleted, nullString(p.DeletedBy), p.DeletedAt, p.UpdatedAt))
}

const unitColumns = `id, property_id, unit_number, bedrooms, area_sqft, annual_rent_cents, status, created_at, updated_at`

func (r *PropertyRepository) CreateUnit(ctx context.Context, u *entity.Unit) error {
	query := `
		INSERT INTO units (` + unitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query,
		u.ID, u.PropertyID, u.UnitNumber, u.Bedrooms, u.AreaSqft, u.AnnualRentCents, u.Status, u.CreatedAt, u.UpdatedAt)
	return mapError(err)
}

func (r *PropertyRepository) FindUnitByID(ctx context.Context, id string) (*entity.Unit, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM units WHERE id = $1`, id)
	return scanUnit(row)
}

func (r *PropertyRepository) ListUnits(ctx context.Context, propertyID string) ([]*entity.Unit, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+unitColumns+` FROM units WHERE property_id = $1 ORDER BY unit_number`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*entity.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *PropertyRepository) UnitNumberExists(ctx context.Context, propertyID, unitNumber string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM units WHERE property_id = $1 AND LOWER(unit_number) = LOWER($2))`,
		propertyID, unitNumber).Scan(&exists)
	return exists, err
}

func (r *PropertyRepository) UpdateUnit(ctx context.Context, u *entity.Unit) error {
	query := `
		UPDATE units
		SET bedrooms = $2, area_sqft = $3, annual_rent_cents = $4, status = $5, updated_at = $6
		WHERE id = $1
	`
	return expectOne(r.DB.ExecContext(ctx, query,
		u.ID, u.Bedrooms, u.AreaSqft, u.AnnualRentCents, u.Status, u.UpdatedAt))
}

func (r *PropertyRepository) CountUnitsByStatus(ctx context.Context, propertyID string, status entity.UnitStatus) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM units WHERE property_id = $1 AND status = $2`, propertyID, status).Scan(&n)
	return n, err
}

func scanProperty(s scanner) (*entity.Property, error) {
	var p entity.Property
	var address, manager sql.NullString
	err := s.Scan(&p.ID, &p.Code, &p.Name, &p.Type, &address, &p.City, &p.TotalUnits, &manager, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	p.Address = fromNull(address)
	p.ManagerID = fromNull(manager)
	return &p, nil
}

func scanUnit(s scanner) (*entity.Unit, error) {
	var u entity.Unit
	err := s.Scan(&u.ID, &u.PropertyID, &u.UnitNumber, &u.Bedrooms, &u.AreaSqft, &u.AnnualRentCents, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}
