package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

// NotificationSender delivers a stored notification by id.
type NotificationSender interface {
	SendByID(ctx context.Context, id string) (*entity.Notification, error)
}

type Worker struct {
	Channel *amqp.Channel
	Sender  NotificationSender
	logger  *zap.Logger
}

func NewWorker(ch *amqp.Channel, sender NotificationSender, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{Channel: ch, Sender: sender, logger: logger}
}

// Start consumes until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	if err := w.Channel.Qos(10, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	msgs, err := w.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer on %s: %w", queueName, err)
	}

	w.logger.Info("notification worker waiting for messages", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var msg NotificationMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.NotificationID == "" {
		w.logger.Error("malformed notification message", zap.ByteString("body", d.Body), zap.Error(err))
		d.Nack(false, false)
		return
	}

	n, err := w.Sender.SendByID(ctx, msg.NotificationID)
	switch {
	case err == nil:
		w.logger.Debug("notification processed",
			zap.String("notification_id", n.ID),
			zap.String("status", string(n.Status)))
		d.Ack(false)
	case usecase.ErrorCode(err) == usecase.CodeNotFound:
		w.logger.Warn("notification no longer exists", zap.String("notification_id", msg.NotificationID))
		d.Nack(false, false)
	case !d.Redelivered:
		w.logger.Warn("notification processing failed, requeueing",
			zap.String("notification_id", msg.NotificationID), zap.Error(err))
		d.Nack(false, true)
	default:
		w.logger.Error("notification processing failed twice, dead-lettering",
			zap.String("notification_id", msg.NotificationID), zap.Error(err))
		d.Nack(false, false)
	}
}
