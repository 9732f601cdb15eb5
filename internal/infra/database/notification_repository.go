package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type NotificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

const notificationColumns = `id, type, recipient_email, recipient_name, subject, body, template_key, status,
	retry_count, next_retry_at, sent_at, failed_at, failure_reason, related_entity_type, related_entity_id,
	created_at, updated_at`

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.DB.ExecContext(ctx, query,
		n.ID, n.Type, n.RecipientEmail, nullString(n.RecipientName), n.Subject, n.Body, nullString(n.TemplateKey),
		n.Status, n.RetryCount, n.NextRetryAt, n.SentAt, n.FailedAt, nullString(n.FailureReason),
		nullString(n.RelatedEntityType), nullString(n.RelatedEntityID), n.CreatedAt, n.UpdatedAt)
	return mapError(err)
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*entity.Notification, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	return scanNotification(row)
}

func (r *NotificationRepository) Update(ctx context.Context, n *entity.Notification) error {
	return expectOne(r.DB.ExecContext(ctx, `
		UPDATE notifications
		SET status = $2, retry_count = $3, next_retry_at = $4, sent_at = $5, failed_at = $6,
		    failure_reason = $7, updated_at = $8
		WHERE id = $1
	`, n.ID, n.Status, n.RetryCount, n.NextRetryAt, n.SentAt, n.FailedAt, nullString(n.FailureReason), n.UpdatedAt))
}

func (r *NotificationRepository) List(ctx context.Context, filter entity.NotificationFilter, page entity.PageRequest) (*entity.Page[*entity.Notification], error) {
	w := &where{}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.Type != "" {
		w.add("type = ?", filter.Type)
	}
	if filter.Recipient != "" {
		w.add("LOWER(recipient_email) LIKE ?", likePattern(filter.Recipient))
	}
	if filter.DateFrom != nil {
		w.add("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		w.add("created_at < ?", filter.DateTo.AddDate(0, 0, 1))
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, err
	}

	limit, args := w.page(page)
	rows, err := r.DB.QueryContext(ctx, `SELECT `+notificationColumns+` FROM notifications`+w.String()+` ORDER BY created_at DESC`+limit, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectNotifications(rows)
	if err != nil {
		return nil, err
	}
	return entity.NewPage(items, total, page), nil
}

func (r *NotificationRepository) CountByStatus(ctx context.Context, from, to time.Time) (map[entity.NotificationStatus]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM notifications
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY status`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[entity.NotificationStatus]int64)
	for rows.Next() {
		var status entity.NotificationStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *NotificationRepository) ListDueForRetry(ctx context.Context, now time.Time, limit int) ([]*entity.Notification, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE status = 'FAILED' AND retry_count < $1 AND next_retry_at IS NOT NULL AND next_retry_at <= $2
		ORDER BY next_retry_at
		LIMIT $3`, entity.MaxNotificationRetries, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func collectNotifications(rows *sql.Rows) ([]*entity.Notification, error) {
	var out []*entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNotification(s scanner) (*entity.Notification, error) {
	var n entity.Notification
	var name, templateKey, reason, relType, relID sql.NullString
	var next, sent, failed sql.NullTime
	err := s.Scan(&n.ID, &n.Type, &n.RecipientEmail, &name, &n.Subject, &n.Body, &templateKey, &n.Status,
		&n.RetryCount, &next, &sent, &failed, &reason, &relType, &relID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	n.RecipientName = fromNull(name)
	n.TemplateKey = fromNull(templateKey)
	n.FailureReason = fromNull(reason)
	n.RelatedEntityType = fromNull(relType)
	n.RelatedEntityID = fromNull(relID)
	n.NextRetryAt = timePtr(next)
	n.SentAt = timePtr(sent)
	n.FailedAt = timePtr(failed)
	return &n, nil
}
