package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type QuotationExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

// QuotationExpiryWorker flips SENT quotations past their validity to EXPIRED.
type QuotationExpiryWorker struct {
	svc          QuotationExpirer
	tickInterval time.Duration
	logger       *zap.Logger
}

func NewQuotationExpiryWorker(svc QuotationExpirer, interval time.Duration, logger *zap.Logger) *QuotationExpiryWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &QuotationExpiryWorker{svc: svc, tickInterval: interval, logger: logger.Named("quotation_expiry")}
}

func (w *QuotationExpiryWorker) Start(ctx context.Context) {
	w.logger.Info("quotation expiry worker started", zap.Duration("interval", w.tickInterval))
	run(ctx, w.tickInterval, w.tick)
	w.logger.Info("quotation expiry worker stopped")
}

func (w *QuotationExpiryWorker) tick(ctx context.Context) {
	n, err := w.svc.ExpireDue(ctx, time.Now())
	if err != nil {
		w.logger.Error("expiry pass failed", zap.Error(err))
		return
	}
	if n > 0 {
		w.logger.Info("quotations expired", zap.Int("count", n))
	}
}
