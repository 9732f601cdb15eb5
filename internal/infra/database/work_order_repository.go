package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type WorkOrderRepository struct {
	DB *sql.DB
}

func NewWorkOrderRepository(db *sql.DB) *WorkOrderRepository {
	return &WorkOrderRepository{DB: db}
}

const workOrderColumns = `id, number, property_id, unit_id, title, description, priority, status, assigned_to,
	estimated_cost_cents, completed_at, created_by, created_at, updated_at`

func (r *WorkOrderRepository) Create(ctx context.Context, w *entity.WorkOrder) error {
	query := `
		INSERT INTO work_orders (` + workOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.DB.ExecContext(ctx, query,
		w.ID, w.Number, w.PropertyID, nullString(w.UnitID), w.Title, nullString(w.Description),
		w.Priority, w.Status, nullString(w.AssignedTo), w.EstimatedCostCents, w.CompletedAt,
		nullString(w.CreatedBy), w.CreatedAt, w.UpdatedAt)
	return mapError(err)
}

func (r *WorkOrderRepository) FindByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+workOrderColumns+` FROM work_orders WHERE id = $1 AND NOT deleted`, id)
	return scanWorkOrder(row)
}

func (r *WorkOrderRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	return countPrefix(ctx, r.DB, "work_orders", "number", prefix)
}

func (r *WorkOrderRepository) List(ctx context.Context, filter entity.WorkOrderFilter, page entity.PageRequest) (*entity.Page[*entity.WorkOrder], error) {
	w := &where{}
	w.add("NOT deleted")
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		w.add("priority = ?", filter.Priority)
	}
	if filter.PropertyID != "" {
		w.add("property_id = ?", filter.PropertyID)
	}
	if filter.AssignedTo != "" {
		w.add("assigned_to = ?", filter.AssignedTo)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM work_orders`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(page)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+workOrderColumns+` FROM work_orders`+w.String()+` ORDER BY created_at DESC`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, wo)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entity.NewPage(items, total, page), nil
}

func (r *WorkOrderRepository) Update(ctx context.Context, w *entity.WorkOrder) error {
	query := `
		UPDATE work_orders
		SET title = $2, description = $3, priority = $4, status = $5, assigned_to = $6,
		    estimated_cost_cents = $7, completed_at = $8, deleted = $9, deleted_by = $10,
		    deleted_at = $11, updated_at = $12
		WHERE id = $1
	`
	return expectOne(r.DB.ExecContext(ctx, query,
		w.ID, w.Title, nullString(w.Description), w.Priority, w.Status, nullString(w.AssignedTo),
		w.EstimatedCostCents, w.CompletedAt, w.Deleted, nullString(w.DeletedBy), w.DeletedAt, w.UpdatedAt))
}

func scanWorkOrder(s scanner) (*entity.WorkOrder, error) {
	var w entity.WorkOrder
	var unit, description, assigned, createdBy sql.NullString
	var completed sql.NullTime
	err := s.Scan(&w.ID, &w.Number, &w.PropertyID, &unit, &w.Title, &description, &w.Priority, &w.Status,
		&assigned, &w.EstimatedCostCents, &completed, &createdBy, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	w.UnitID = fromNull(unit)
	w.Description = fromNull(description)
	w.AssignedTo = fromNull(assigned)
	w.CreatedBy = fromNull(createdBy)
	w.CompletedAt = timePtr(completed)
	return &w, nil
}
