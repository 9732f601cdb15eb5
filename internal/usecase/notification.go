package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/metrics"
)

type QueueNotificationInput struct {
	Type              entity.NotificationType
	RecipientEmail    string
	RecipientName     string
	Subject           string
	TemplateKey       string
	Variables         map[string]string
	RelatedEntityType string
	RelatedEntityID   string
}

// Notifier is what the domain services use to email people.
type Notifier interface {
	Notify(ctx context.Context, input QueueNotificationInput) (*entity.Notification, error)
}

type NotificationStatistics struct {
	Pending int64 `json:"pending"`
	Queued  int64 `json:"queued"`
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
	Total   int64 `json:"total"`
}

type NotificationService struct {
	Repo      entity.NotificationRepository
	Renderer  TemplateRenderer
	Sender    MailSender
	Publisher NotificationPublisher
	logger    *zap.Logger
}

func NewNotificationService(
	repo entity.NotificationRepository,
	renderer TemplateRenderer,
	sender MailSender,
	publisher NotificationPublisher,
	logger *zap.Logger,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		Repo:      repo,
		Renderer:  renderer,
		Sender:    sender,
		Publisher: publisher,
		logger:    logger,
	}
}

// Queue renders the template and stores the notification as PENDING.
func (s *NotificationService) Queue(ctx context.Context, input QueueNotificationInput) (*entity.Notification, error) {
	if input.RecipientEmail == "" {
		return nil, Validation("recipient email is required")
	}

	body, err := s.Renderer.Render(input.TemplateKey, input.Variables)
	if err != nil {
		return nil, fmt.Errorf("render template %q: %w", input.TemplateKey, err)
	}

	n := entity.NewNotification(input.Type, input.RecipientEmail, input.RecipientName, input.Subject, body, input.TemplateKey)
	n.RelatedEntityType = input.RelatedEntityType
	n.RelatedEntityID = input.RelatedEntityID

	if err := s.Repo.Create(ctx, n); err != nil {
		return nil, dbError("failed to persist notification", err)
	}
	return n, nil
}

// Send attempts delivery once. Transport failures end up on the notification,
// never in the returned error.
func (s *NotificationService) Send(ctx context.Context, n *entity.Notification) (*entity.Notification, error) {
	n.MarkQueued(time.Now())
	if err := s.Repo.Update(ctx, n); err != nil {
		return nil, dbError("failed to mark notification queued", err)
	}

	sendErr := s.Sender.Send(ctx, MailMessage{
		To:       n.RecipientEmail,
		ToName:   n.RecipientName,
		Subject:  n.Subject,
		HTMLBody: n.Body,
	})

	now := time.Now()
	if sendErr != nil {
		n.MarkFailed(sendErr.Error(), now)
		metrics.RecordNotification(string(n.Type), string(entity.NotificationFailed))
		s.logger.Warn("notification delivery failed",
			zap.String("notification_id", n.ID),
			zap.String("type", string(n.Type)),
			zap.Int("retry_count", n.RetryCount),
			zap.Error(sendErr))
	} else {
		n.MarkSent(now)
		metrics.RecordNotification(string(n.Type), string(entity.NotificationSent))
		s.logger.Info("notification sent",
			zap.String("notification_id", n.ID),
			zap.String("type", string(n.Type)))
	}

	if err := s.Repo.Update(ctx, n); err != nil {
		return nil, dbError("failed to record delivery outcome", err)
	}
	return n, nil
}

// SendByID delivers a notification that has not been attempted yet. Sent and
// failed notifications are returned unchanged; failed ones are retried on their
// backoff schedule by RetryDue.
func (s *NotificationService) SendByID(ctx context.Context, id string) (*entity.Notification, error) {
	n, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Status != entity.NotificationPending && n.Status != entity.NotificationQueued {
		return n, nil
	}
	return s.Send(ctx, n)
}

func (s *NotificationService) Retry(ctx context.Context, id string) (*entity.Notification, error) {
	n, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Status != entity.NotificationFailed {
		return nil, InvalidState("only FAILED notifications can be retried (current status %s)", n.Status)
	}
	if !n.CanRetry() {
		return nil, InvalidState("notification %s reached the retry limit of %d", n.ID, entity.MaxNotificationRetries)
	}
	return s.Send(ctx, n)
}

// Notify queues and hands the notification to the async dispatcher. When no
// broker is reachable it is sent from a detached goroutine instead.
func (s *NotificationService) Notify(ctx context.Context, input QueueNotificationInput) (*entity.Notification, error) {
	n, err := s.Queue(ctx, input)
	if err != nil {
		return nil, err
	}

	if s.Publisher != nil {
		err := s.Publisher.PublishNotification(ctx, n.ID)
		if err == nil {
			return n, nil
		}
		s.logger.Warn("publish failed, sending inline", zap.String("notification_id", n.ID), zap.Error(err))
	}

	pending := *n
	go func() {
		if _, err := s.Send(context.Background(), &pending); err != nil {
			s.logger.Error("async notification send failed", zap.String("notification_id", pending.ID), zap.Error(err))
		}
	}()
	return n, nil
}

// RetryDue retries failed notifications whose backoff elapsed. It returns how
// many were delivered.
func (s *NotificationService) RetryDue(ctx context.Context, now time.Time, limit int) (int, error) {
	due, err := s.Repo.ListDueForRetry(ctx, now, limit)
	if err != nil {
		return 0, dbError("failed to load notifications due for retry", err)
	}

	delivered := 0
	for _, n := range due {
		if !n.CanRetry() {
			continue
		}
		out, err := s.Send(ctx, n)
		if err != nil {
			s.logger.Error("retry failed", zap.String("notification_id", n.ID), zap.Error(err))
			continue
		}
		if out.Status == entity.NotificationSent {
			delivered++
		}
	}
	return delivered, nil
}

func (s *NotificationService) Get(ctx context.Context, id string) (*entity.Notification, error) {
	return s.get(ctx, id)
}

func (s *NotificationService) List(ctx context.Context, filter entity.NotificationFilter, page entity.PageRequest) (*entity.Page[*entity.Notification], error) {
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return nil, Validation("date_from must not be after date_to")
	}
	out, err := s.Repo.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, dbError("failed to list notifications", err)
	}
	return out, nil
}

func (s *NotificationService) Statistics(ctx context.Context, from, to time.Time) (*NotificationStatistics, error) {
	if from.After(to) {
		return nil, Validation("date_from must not be after date_to")
	}
	counts, err := s.Repo.CountByStatus(ctx, from, to)
	if err != nil {
		return nil, dbError("failed to count notifications", err)
	}
	st := &NotificationStatistics{
		Pending: counts[entity.NotificationPending],
		Queued:  counts[entity.NotificationQueued],
		Sent:    counts[entity.NotificationSent],
		Failed:  counts[entity.NotificationFailed],
	}
	st.Total = st.Pending + st.Queued + st.Sent + st.Failed
	return st, nil
}

func (s *NotificationService) get(ctx context.Context, id string) (*entity.Notification, error) {
	n, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, NotFound("notification", id)
		}
		return nil, dbError("failed to load notification", err)
	}
	return n, nil
}
