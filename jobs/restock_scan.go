package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/northwind-admin/northwind-admin/internal/jobs"
)

// StockCounter counts active products at or below their reorder level.
type StockCounter interface {
	CountLowStock(ctx context.Context) (int, error)
}

// RestockScanJob publishes the low stock gauge.
type RestockScanJob struct {
	Counter StockCounter
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewRestockScanJob wires dependencies for the restock scan.
func NewRestockScanJob(counter StockCounter, logger *slog.Logger, metrics *jobmetrics.Metrics) *RestockScanJob {
	return &RestockScanJob{Counter: counter, Logger: logger, Metrics: metrics}
}

// Handle processes TaskRestockScan tasks.
func (j *RestockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Counter == nil {
		return errors.New("restock scan: handler not configured")
	}
	var payload RestockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskRestockScan)
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("job", TaskRestockScan))

	count, err := j.Counter.CountLowStock(ctx)
	if err != nil {
		logger.Error("count low stock", slog.Any("error", err))
		return tracker.End(err)
	}
	metrics.SetLowStock(count)
	logger.Info("restock scan finished", slog.Int("low_stock", count), slog.String("scheduled_for", payload.ScheduledFor.Format(time.RFC3339)))
	return tracker.End(nil)
}

// KeyPruner removes processed idempotency keys.
type KeyPruner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// IdempotencyCleanupJob prunes old idempotency keys.
type IdempotencyCleanupJob struct {
	Keys    KeyPruner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle processes TaskIdempotencyCleanup tasks.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Keys == nil {
		return errors.New("idempotency cleanup: handler not configured")
	}
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionHours <= 0 {
		payload.RetentionHours = 72
	}
	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskIdempotencyCleanup)
	removed, err := j.Keys.Cleanup(ctx, time.Duration(payload.RetentionHours)*time.Hour)
	if err != nil {
		return tracker.End(err)
	}
	if j.Logger != nil {
		j.Logger.Info("idempotency keys pruned", slog.Int64("removed", removed))
	}
	return tracker.End(nil)
}
