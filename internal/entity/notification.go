package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationWelcome          NotificationType = "WELCOME"
	NotificationPasswordChanged  NotificationType = "PASSWORD_CHANGED"
	NotificationQuotationSent    NotificationType = "QUOTATION_SENT"
	NotificationTenantOnboarded  NotificationType = "TENANT_ONBOARDED"
	NotificationInvoiceGenerated NotificationType = "INVOICE_GENERATED"
	NotificationPaymentReceived  NotificationType = "PAYMENT_RECEIVED"
	NotificationPaymentRecorded  NotificationType = "PAYMENT_RECORDED"
	NotificationChequeBounced    NotificationType = "CHEQUE_BOUNCED"
	NotificationLeaseExpiring    NotificationType = "LEASE_EXPIRING"
	NotificationWorkOrderUpdated NotificationType = "WORK_ORDER_UPDATED"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationQueued  NotificationStatus = "QUEUED"
	NotificationSent    NotificationStatus = "SENT"
	NotificationFailed  NotificationStatus = "FAILED"
)

const (
	MaxNotificationRetries = 3
	retryBaseDelay         = time.Minute
	retryMultiplier        = 5
)

// RetryBackoff is the wait before the next attempt once retryCount attempts
// have failed: 1m, 5m, 25m, ...
func RetryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		return 0
	}
	d := retryBaseDelay
	for i := 1; i < retryCount; i++ {
		d *= retryMultiplier
	}
	return d
}

type Notification struct {
	ID                string             `json:"id"`
	Type              NotificationType   `json:"type"`
	RecipientEmail    string             `json:"recipient_email"`
	RecipientName     string             `json:"recipient_name,omitempty"`
	Subject           string             `json:"subject"`
	Body              string             `json:"-"`
	TemplateKey       string             `json:"template_key"`
	Status            NotificationStatus `json:"status"`
	RetryCount        int                `json:"retry_count"`
	NextRetryAt       *time.Time         `json:"next_retry_at,omitempty"`
	SentAt            *time.Time         `json:"sent_at,omitempty"`
	FailedAt          *time.Time         `json:"failed_at,omitempty"`
	FailureReason     string             `json:"failure_reason,omitempty"`
	RelatedEntityType string             `json:"related_entity_type,omitempty"`
	RelatedEntityID   string             `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func NewNotification(typ NotificationType, email, name, subject, body, templateKey string) *Notification {
	now := time.Now()
	return &Notification{
		ID:             uuid.New().String(),
		Type:           typ,
		RecipientEmail: email,
		RecipientName:  name,
		Subject:        subject,
		Body:           body,
		TemplateKey:    templateKey,
		Status:         NotificationPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (n *Notification) CanRetry() bool {
	return n.Status == NotificationFailed && n.RetryCount < MaxNotificationRetries
}

func (n *Notification) MarkQueued(at time.Time) {
	n.Status = NotificationQueued
	n.UpdatedAt = at
}

func (n *Notification) MarkSent(at time.Time) {
	n.Status = NotificationSent
	n.SentAt = &at
	n.FailedAt = nil
	n.FailureReason = ""
	n.NextRetryAt = nil
	n.UpdatedAt = at
}

// MarkFailed records a failed attempt and schedules the next one while the
// retry budget lasts.
func (n *Notification) MarkFailed(reason string, at time.Time) {
	n.Status = NotificationFailed
	n.FailedAt = &at
	n.FailureReason = reason
	if n.RetryCount < MaxNotificationRetries {
		n.RetryCount++
	}
	n.UpdatedAt = at
	if n.RetryCount < MaxNotificationRetries {
		next := at.Add(RetryBackoff(n.RetryCount))
		n.NextRetryAt = &next
	} else {
		n.NextRetryAt = nil
	}
}

type NotificationFilter struct {
	Status    NotificationStatus
	Type      NotificationType
	Recipient string
	DateFrom  *time.Time
	DateTo    *time.Time // inclusive date
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id string) (*Notification, error)
	Update(ctx context.Context, n *Notification) error
	List(ctx context.Context, filter NotificationFilter, page PageRequest) (*Page[*Notification], error)
	CountByStatus(ctx context.Context, from, to time.Time) (map[NotificationStatus]int64, error)
	ListDueForRetry(ctx context.Context, now time.Time, limit int) ([]*Notification, error)
}
