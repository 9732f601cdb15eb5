package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, lead_number, full_name, email, phone, source, property_id, notes, status, lost_reason, created_at, updated_at`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(ctx, query,
		lead.ID, lead.LeadNumber, lead.FullName, lead.Email,
		nullString(lead.Phone), nullString(lead.Source), nullString(lead.PropertyID), nullString(lead.Notes),
		lead.Status, nullString(lead.LostReason), lead.CreatedAt, lead.UpdatedAt)
	return mapError(err)
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1 AND NOT deleted`, id)
	return scanLead(row)
}

func (r *LeadRepository) ExistsOpenByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM leads
			WHERE LOWER(email) = LOWER($1) AND NOT deleted AND status NOT IN ('CONVERTED', 'LOST')
		)`, email).Scan(&exists)
	return exists, err
}

func (r *LeadRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	return countPrefix(ctx, r.DB, "leads", "lead_number", prefix)
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter, page entity.PageRequest) (*entity.Page[*entity.Lead], error) {
	w := &where{}
	w.add("NOT deleted")
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.Source != "" {
		w.add("source = ?", filter.Source)
	}
	if filter.PropertyID != "" {
		w.add("property_id = ?", filter.PropertyID)
	}
	if filter.Search != "" {
		w.add("(LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(lead_number) LIKE ?)",
			likePattern(filter.Search), likePattern(filter.Search), likePattern(filter.Search))
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(page)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads`+w.String()+` ORDER BY created_at DESC`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entity.NewPage(items, total, page), nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads
		SET full_name = $2, phone = $3, source = $4, property_id = $5, notes = $6, status = $7,
		    lost_reason = $8, deleted = $9, deleted_by = $10, deleted_at = $11, updated_at = $12
		WHERE id = $1
	`
	return expectOne(r.DB.ExecContext(ctx, query,
		lead.ID, lead.FullName, nullString(lead.Phone), nullString(lead.Source), nullString(lead.PropertyID),
		nullString(lead.Notes), lead.Status, nullString(lead.LostReason),
		lead.Deleted, nullString(lead.DeletedBy), lead.DeletedAt, lead.UpdatedAt))
}

func scanLead(s scanner) (*entity.Lead, error) {
	var l entity.Lead
	var phone, source, property, notes, lost sql.NullString
	err := s.Scan(&l.ID, &l.LeadNumber, &l.FullName, &l.Email, &phone, &source, &property, &notes,
		&l.Status, &lost, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	l.Phone = fromNull(phone)
	l.Source = fromNull(source)
	l.PropertyID = fromNull(property)
	l.Notes = fromNull(notes)
	l.LostReason = fromNull(lost)
	return &l, nil
}

// countPrefix counts document numbers sharing a monthly prefix, deleted rows
// included so numbers are never reused.
func countPrefix(ctx context.Context, db *sql.DB, table, column, prefix string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE `+column+` LIKE $1`, prefix+"%").Scan(&n)
	return n, err
}
