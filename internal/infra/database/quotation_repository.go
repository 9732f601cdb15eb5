package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type QuotationRepository struct {
	DB *sql.DB
}

func NewQuotationRepository(db *sql.DB) *QuotationRepository {
	return &QuotationRepository{DB: db}
}

const quotationColumns = `id, quotation_number, lead_id, property_id, unit_id, annual_rent_cents, security_deposit_cents,
	number_of_cheques, lease_start, lease_months, valid_until, status, tenant_id, sent_at, responded_at,
	created_by, created_at, updated_at`

func (r *QuotationRepository) Create(ctx context.Context, q *entity.Quotation) error {
	query := `
		INSERT INTO quotations (` + quotationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := r.DB.ExecContext(ctx, query,
		q.ID, q.QuotationNumber, q.LeadID, q.PropertyID, q.UnitID, q.AnnualRentCents, q.SecurityDepositCents,
		q.NumberOfCheques, q.LeaseStart, q.LeaseMonths, q.ValidUntil, q.Status, nullString(q.TenantID),
		q.SentAt, q.RespondedAt, nullString(q.CreatedBy), q.CreatedAt, q.UpdatedAt)
	return mapError(err)
}

func (r *QuotationRepository) FindByID(ctx context.Context, id string) (*entity.Quotation, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id)
	return scanQuotation(row)
}

func (r *QuotationRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	return countPrefix(ctx, r.DB, "quotations", "quotation_number", prefix)
}

func (r *QuotationRepository) List(ctx context.Context, filter entity.QuotationFilter, page entity.PageRequest) (*entity.Page[*entity.Quotation], error) {
	w := &where{}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.LeadID != "" {
		w.add("lead_id = ?", filter.LeadID)
	}
	if filter.PropertyID != "" {
		w.add("property_id = ?", filter.PropertyID)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotations`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(page)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+quotationColumns+` FROM quotations`+w.String()+` ORDER BY created_at DESC`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectQuotations(rows)
	if err != nil {
		return nil, err
	}
	return entity.NewPage(items, total, page), nil
}

func (r *QuotationRepository) Update(ctx context.Context, q *entity.Quotation) error {
	query := `
		UPDATE quotations
		SET annual_rent_cents = $2, security_deposit_cents = $3, number_of_cheques = $4, lease_start = $5,
		    lease_months = $6, valid_until = $7, status = $8, tenant_id = $9, sent_at = $10,
		    responded_at = $11, updated_at = $12
		WHERE id = $1
	`
	return expectOne(r.DB.ExecContext(ctx, query,
		q.ID, q.AnnualRentCents, q.SecurityDepositCents, q.NumberOfCheques, q.LeaseStart,
		q.LeaseMonths, q.ValidUntil, q.Status, nullString(q.TenantID), q.SentAt, q.RespondedAt, q.UpdatedAt))
}

func (r *QuotationRepository) ListSentValidBefore(ctx context.Context, before time.Time) ([]*entity.Quotation, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+quotationColumns+` FROM quotations WHERE status = 'SENT' AND valid_until < $1`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuotations(rows)
}

func collectQuotations(rows *sql.Rows) ([]*entity.Quotation, error) {
	var out []*entity.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func scanQuotation(s scanner) (*entity.Quotation, error) {
	var q entity.Quotation
	var tenantID, createdBy sql.NullString
	var sentAt, respondedAt sql.NullTime
	err := s.Scan(&q.ID, &q.QuotationNumber, &q.LeadID, &q.PropertyID, &q.UnitID, &q.AnnualRentCents,
		&q.SecurityDepositCents, &q.NumberOfCheques, &q.LeaseStart, &q.LeaseMonths, &q.ValidUntil, &q.Status,
		&tenantID, &sentAt, &respondedAt, &createdBy, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	q.TenantID = fromNull(tenantID)
	q.CreatedBy = fromNull(createdBy)
	q.SentAt = timePtr(sentAt)
	q.RespondedAt = timePtr(respondedAt)
	return &q, nil
}
