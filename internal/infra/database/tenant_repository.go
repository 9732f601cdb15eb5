package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type TenantRepository struct {
	DB *sql.DB
}

func NewTenantRepository(db *sql.DB) *TenantRepository {
	return &TenantRepository{DB: db}
}

const tenantColumns = `id, full_name, email, phone, nationality, emirates_id, passport_number,
	property_id, unit_id, lead_id, quotation_id, lease_start, lease_end, status, created_at, updated_at`

func (r *TenantRepository) Create(ctx context.Context, t *entity.Tenant) error {
	query := `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.DB.ExecContext(ctx, query,
		t.ID, t.FullName, t.Email, nullString(t.Phone), nullString(t.Nationality),
		nullString(t.EmiratesID), nullString(t.PassportNumber),
		t.PropertyID, t.UnitID, nullString(t.LeadID), nullString(t.QuotationID),
		t.LeaseStart, t.LeaseEnd, t.Status, t.CreatedAt, t.UpdatedAt)
	return mapError(err)
}

func (r *TenantRepository) FindByID(ctx context.Context, id string) (*entity.Tenant, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1 AND NOT deleted`, id)
	return scanTenant(row)
}

func (r *TenantRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tenants WHERE LOWER(email) = LOWER($1) AND ($2 = '' OR id::text <> $2))`,
		email, excludeID).Scan(&exists)
	return exists, err
}

func (r *TenantRepository) List(ctx context.Context, filter entity.TenantFilter, page entity.PageRequest) (*entity.Page[*entity.Tenant], error) {
	w := &where{}
	w.add("NOT deleted")
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.PropertyID != "" {
		w.add("property_id = ?", filter.PropertyID)
	}
	if filter.Search != "" {
		w.add("(LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?)", likePattern(filter.Search), likePattern(filter.Search))
	}
	if filter.LeaseEndingBefore != nil {
		w.add("lease_end <= ?", *filter.LeaseEndingBefore)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(page)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants`+w.String()+` ORDER BY created_at DESC`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entity.NewPage(items, total, page), nil
}

func (r *TenantRepository) Update(ctx context.Context, t *entity.Tenant) error {
	query := `
		UPDATE tenants
		SET full_name = $2, phone = $3, nationality = $4, emirates_id = $5, passport_number = $6,
		    lease_end = $7, status = $8, deleted = $9, deleted_by = $10, deleted_at = $11, updated_at = $12
		WHERE id = $1
	`
	return expectOne(r.DB.ExecContext(ctx, query,
		t.ID, t.FullName, nullString(t.Phone), nullString(t.Nationality), nullString(t.EmiratesID),
		nullString(t.PassportNumber), t.LeaseEnd, t.Status,
		t.Deleted, nullString(t.DeletedBy), t.DeletedAt, t.UpdatedAt))
}

func (r *TenantRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	return err
}

func scanTenant(s scanner) (*entity.Tenant, error) {
	var t entity.Tenant
	var phone, nationality, eid, passport, leadID, quotationID sql.NullString
	err := s.Scan(&t.ID, &t.FullName, &t.Email, &phone, &nationality, &eid, &passport,
		&t.PropertyID, &t.UnitID, &leadID, &quotationID, &t.LeaseStart, &t.LeaseEnd, &t.Status,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	t.Phone = fromNull(phone)
	t.Nationality = fromNull(nationality)
	t.EmiratesID = fromNull(eid)
	t.PassportNumber = fromNull(passport)
	t.LeadID = fromNull(leadID)
	t.QuotationID = fromNull(quotationID)
	return &t, nil
}
