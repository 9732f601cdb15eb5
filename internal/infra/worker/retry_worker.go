package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const retryBatchSize = 100

type NotificationRetrier interface {
	RetryDue(ctx context.Context, now time.Time, limit int) (int, error)
}

// NotificationRetryWorker resends FAILED notifications whose backoff elapsed.
type NotificationRetryWorker struct {
	svc          NotificationRetrier
	tickInterval time.Duration
	logger       *zap.Logger
}

func NewNotificationRetryWorker(svc NotificationRetrier, interval time.Duration, logger *zap.Logger) *NotificationRetryWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &NotificationRetryWorker{svc: svc, tickInterval: interval, logger: logger.Named("notification_retry")}
}

func (w *NotificationRetryWorker) Start(ctx context.Context) {
	w.logger.Info("notification retry worker started", zap.Duration("interval", w.tickInterval))
	run(ctx, w.tickInterval, w.tick)
	w.logger.Info("notification retry worker stopped")
}

func (w *NotificationRetryWorker) tick(ctx context.Context) {
	delivered, err := w.svc.RetryDue(ctx, time.Now(), retryBatchSize)
	if err != nil {
		w.logger.Error("retry pass failed", zap.Error(err))
		return
	}
	if delivered > 0 {
		w.logger.Info("retried notifications delivered", zap.Int("delivered", delivered))
	}
}

// run calls fn immediately and then on every tick until ctx is done.
func run(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
