package usecase

import (
	"context"
	"io"
	"time"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

// MailMessage is a rendered email ready for the transport.
type MailMessage struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
}

type MailSender interface {
	Send(ctx context.Context, msg MailMessage) error
}

type TemplateRenderer interface {
	Render(templateKey string, vars map[string]string) (string, error)
}

// NotificationPublisher hands a queued notification to the async dispatcher.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, notificationID string) error
}

type AuditSink interface {
	Write(ctx context.Context, event entity.AuditEvent) error
}

// AttemptStore is a TTL counter store keyed by string.
type AttemptStore interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Get(ctx context.Context, key string) (int64, bool, error)
	Delete(ctx context.Context, key string) error
}

type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// TextLine is one OCR line with the engine's confidence (0-100).
type TextLine struct {
	Text       string
	Confidence float64
}

type TextDetector interface {
	DetectText(ctx context.Context, image []byte) ([]TextLine, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
