package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type ComplianceRepository struct {
	DB *sql.DB
}

func NewComplianceRepository(db *sql.DB) *ComplianceRepository {
	return &ComplianceRepository{DB: db}
}

const complianceColumns = `id, name, description, property_id, frequency, due_date, status, last_compliant_at, created_at, updated_at`

func (r *ComplianceRepository) Create(ctx context.Context, c *entity.ComplianceRequirement) error {
	query := `
		INSERT INTO compliance_requirements (` + complianceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.Name, nullString(c.Description), nullString(c.PropertyID), c.Frequency, c.DueDate, c.Status,
		c.LastCompliantAt, c.CreatedAt, c.UpdatedAt)
	return mapError(err)
}

func (r *ComplianceRepository) FindByID(ctx context.Context, id string) (*entity.ComplianceRequirement, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+complianceColumns+` FROM compliance_requirements WHERE id = $1 AND NOT deleted`, id)
	return scanCompliance(row)
}

func (r *ComplianceRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM compliance_requirements WHERE LOWER(name) = LOWER($1) AND ($2 = '' OR id::text <> $2))`,
		name, excludeID).Scan(&exists)
	return exists, err
}

func (r *ComplianceRepository) List(ctx context.Context, filter entity.ComplianceFilter, page entity.PageRequest) (*entity.Page[*entity.ComplianceRequirement], error) {
	w := &where{}
	w.add("NOT deleted")
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.PropertyID != "" {
		w.add("property_id = ?", filter.PropertyID)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM compliance_requirements`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(page)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+complianceColumns+` FROM compliance_requirements`+w.String()+` ORDER BY due_date`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectCompliance(rows)
	if err != nil {
		return nil, err
	}
	return entity.NewPage(items, total, page), nil
}

func (r *ComplianceRepository) ListOverdue(ctx context.Context, now time.Time) ([]*entity.ComplianceRequirement, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+complianceColumns+` FROM compliance_requirements
		WHERE due_date < $1 AND status <> 'COMPLIANT' AND NOT deleted
		ORDER BY due_date`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCompliance(rows)
}

func (r *ComplianceRepository) Update(ctx context.Context, c *entity.ComplianceRequirement) error {
	return expectOne(r.DB.ExecContext(ctx, `
		UPDATE compliance_requirements
		SET name = $2, description = $3, frequency = $4, due_date = $5, status = $6, last_compliant_at = $7,
		    deleted = $8, deleted_by = $9, deleted_at = $10, updated_at = $11
		WHERE id = $1
	`, c.ID, c.Name, nullString(c.Description), c.Frequency, c.DueDate, c.Status, c.LastCompliantAt,
		c.Deleted, nullString(c.DeletedBy), c.DeletedAt, c.UpdatedAt))
}

func collectCompliance(rows *sql.Rows) ([]*entity.ComplianceRequirement, error) {
	var out []*entity.ComplianceRequirement
	for rows.Next() {
		c, err := scanCompliance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCompliance(s scanner) (*entity.ComplianceRequirement, error) {
	var c entity.ComplianceRequirement
	var description, property sql.NullString
	var last sql.NullTime
	err := s.Scan(&c.ID, &c.Name, &description, &property, &c.Frequency, &c.DueDate, &c.Status, &last,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	c.Description = fromNull(description)
	c.PropertyID = fromNull(property)
	c.LastCompliantAt = timePtr(last)
	return &c, nil
}
