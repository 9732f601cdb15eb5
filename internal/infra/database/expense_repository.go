package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type ExpenseRepository struct {
	DB *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{DB: db}
}

const expenseColumns = `id, expense_number, category, description, amount_cents, property_id, vendor_name,
	work_order_id, expense_date, due_date, status, paid_at, payment_method, payment_reference,
	created_by, created_at, updated_at`

func (r *ExpenseRepository) Create(ctx context.Context, e *entity.Expense) error {
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.ExpenseNumber, e.Category, e.Description, e.AmountCents, e.PropertyID,
		nullString(e.VendorName), nullString(e.WorkOrderID), e.ExpenseDate, e.DueDate, e.Status,
		e.PaidAt, nullString(e.PaymentMethod), nullString(e.PaymentReference),
		nullString(e.CreatedBy), e.CreatedAt, e.UpdatedAt)
	return mapError(err)
}

func (r *ExpenseRepository) FindByID(ctx context.Context, id string) (*entity.Expense, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1 AND NOT deleted`, id)
	return scanExpense(row)
}

func (r *ExpenseRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	return countPrefix(ctx, r.DB, "expenses", "expense_number", prefix)
}

func (r *ExpenseRepository) List(ctx context.Context, filter entity.ExpenseFilter, page entity.PageRequest) (*entity.Page[*entity.Expense], error) {
	w := &where{}
	w.add("NOT deleted")
	if filter.Category != "" {
		w.add("category = ?", filter.Category)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.PropertyID != "" {
		w.add("property_id = ?", filter.PropertyID)
	}
	if filter.DateFrom != nil {
		w.add("expense_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		w.add("expense_date <= ?", *filter.DateTo)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(page)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses`+w.String()+` ORDER BY expense_date DESC, created_at DESC`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entity.NewPage(items, total, page), nil
}

func (r *ExpenseRepository) Update(ctx context.Context, e *entity.Expense) error {
	query := `
		UPDATE expenses
		SET category = $2, description = $3, amount_cents = $4, vendor_name = $5, due_date = $6,
		    status = $7, paid_at = $8, payment_method = $9, payment_reference = $10,
		    deleted = $11, deleted_by = $12, deleted_at = $13, updated_at = $14
		WHERE id = $1
	`
	return expectOne(r.DB.ExecContext(ctx, query,
		e.ID, e.Category, e.Description, e.AmountCents, nullString(e.VendorName), e.DueDate,
		e.Status, e.PaidAt, nullString(e.PaymentMethod), nullString(e.PaymentReference),
		e.Deleted, nullString(e.DeletedBy), e.DeletedAt, e.UpdatedAt))
}

func scanExpense(s scanner) (*entity.Expense, error) {
	var e entity.Expense
	var vendor, workOrder, method, reference, createdBy sql.NullString
	var due, paid sql.NullTime
	err := s.Scan(&e.ID, &e.ExpenseNumber, &e.Category, &e.Description, &e.AmountCents, &e.PropertyID,
		&vendor, &workOrder, &e.ExpenseDate, &due, &e.Status, &paid, &method, &reference,
		&createdBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	e.VendorName = fromNull(vendor)
	e.WorkOrderID = fromNull(workOrder)
	e.PaymentMethod = fromNull(method)
	e.PaymentReference = fromNull(reference)
	e.CreatedBy = fromNull(createdBy)
	e.DueDate = timePtr(due)
	e.PaidAt = timePtr(paid)
	return &e, nil
}
