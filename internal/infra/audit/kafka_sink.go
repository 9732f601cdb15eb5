package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes audit events keyed by entity id, so all events for one
// record land on the same partition in order.
type KafkaSink struct {
	writer messageWriter
}

func NewKafkaSink(brokers []string, topic string, logger *zap.Logger) *KafkaSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		BatchSize:    100,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				logger.Warn("audit batch not delivered", zap.Int("messages", len(msgs)), zap.Error(err))
			}
		},
	}
	return &KafkaSink{writer: w}
}

func (s *KafkaSink) Write(ctx context.Context, event entity.AuditEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	key := event.EntityID
	if key == "" {
		key = event.ActorID
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: body,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "entity_type", Value: []byte(event.EntityType)},
		},
		Time: event.OccurredAt,
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// LogSink writes audit events to the application log. It is used when no
// Kafka brokers are configured.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("audit")}
}

func (s *LogSink) Write(_ context.Context, event entity.AuditEvent) error {
	s.logger.Info(event.Action,
		zap.String("actor_id", event.ActorID),
		zap.String("entity_type", event.EntityType),
		zap.String("entity_id", event.EntityID),
		zap.String("ip_address", event.IPAddress),
		zap.Any("metadata", event.Metadata),
		zap.Time("occurred_at", event.OccurredAt))
	return nil
}
