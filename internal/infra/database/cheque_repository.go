package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type ChequeRepository struct {
	DB *sql.DB
}

func NewChequeRepository(db *sql.DB) *ChequeRepository {
	return &ChequeRepository{DB: db}
}

const chequeColumns = `id, tenant_id, property_id, cheque_number, amount_cents, due_date, status, cleared_at, bounced_at, created_at, updated_at`

// CreateBatch inserts the whole schedule in one transaction.
func (r *ChequeRepository) CreateBatch(ctx context.Context, cheques []*entity.Cheque) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cheques (`+chequeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cheques {
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.TenantID, c.PropertyID, c.ChequeNumber, c.AmountCents, c.DueDate, c.Status,
			c.ClearedAt, c.BouncedAt, c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("insert cheque %s: %w", c.ChequeNumber, mapError(err))
		}
	}
	return tx.Commit()
}

func (r *ChequeRepository) FindByID(ctx context.Context, id string) (*entity.Cheque, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+chequeColumns+` FROM cheques WHERE id = $1`, id)
	return scanCheque(row)
}

func (r *ChequeRepository) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Cheque, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+chequeColumns+` FROM cheques WHERE tenant_id = $1 ORDER BY due_date`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Cheque
	for rows.Next() {
		c, err := scanCheque(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ChequeRepository) Update(ctx context.Context, c *entity.Cheque) error {
	return expectOne(r.DB.ExecContext(ctx, `
		UPDATE cheques SET status = $2, cleared_at = $3, bounced_at = $4, updated_at = $5
		WHERE id = $1
	`, c.ID, c.Status, c.ClearedAt, c.BouncedAt, c.UpdatedAt))
}

func (r *ChequeRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM cheques WHERE tenant_id = $1`, tenantID)
	return err
}

func scanCheque(s scanner) (*entity.Cheque, error) {
	var c entity.Cheque
	var cleared, bounced sql.NullTime
	err := s.Scan(&c.ID, &c.TenantID, &c.PropertyID, &c.ChequeNumber, &c.AmountCents, &c.DueDate, &c.Status,
		&cleared, &bounced, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	c.ClearedAt = timePtr(cleared)
	c.BouncedAt = timePtr(bounced)
	return &c, nil
}
