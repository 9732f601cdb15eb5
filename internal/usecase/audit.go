package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

// AuditLogger records who did what. Sink failures never reach the caller.
type AuditLogger struct {
	sink   AuditSink
	logger *zap.Logger
}

func NewAuditLogger(sink AuditSink, logger *zap.Logger) *AuditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogger{sink: sink, logger: logger}
}

func (a *AuditLogger) Record(ctx context.Context, actor Actor, action, entityType, entityID string, metadata map[string]string) {
	if a == nil || a.sink == nil {
		return
	}
	event := entity.AuditEvent{
		ActorID:    actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  actor.IP,
		Metadata:   metadata,
		OccurredAt: time.Now().UTC(),
	}
	if err := a.sink.Write(ctx, event); err != nil {
		a.logger.Warn("audit event dropped",
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}
