package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationMessage is the body published for each queued notification.
// The worker reloads everything else from the database.
type NotificationMessage struct {
	NotificationID string    `json:"notification_id"`
	QueuedAt       time.Time `json:"queued_at"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch publisher
}

func NewProducer(ch publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishNotification(ctx context.Context, notificationID string) error {
	body, err := json.Marshal(NotificationMessage{NotificationID: notificationID, QueuedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal notification message: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    notificationID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish notification %s: %w", notificationID, err)
	}
	return nil
}
