package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/northwind-admin/northwind-admin/internal/jobs"
	"github.com/northwind-admin/northwind-admin/internal/shared"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// KeyClaimer guards against processing a retried task twice.
type KeyClaimer interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// ProductChangedJob writes the audit trail of product mutations.
type ProductChangedJob struct {
	Audit   AuditRecorder
	Keys    KeyClaimer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewProductChangedJob wires dependencies for the audit handler. keys may be
// nil when deduplication is not wanted.
func NewProductChangedJob(audit AuditRecorder, keys KeyClaimer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ProductChangedJob {
	return &ProductChangedJob{Audit: audit, Keys: keys, Logger: logger, Metrics: metrics}
}

// Handle processes TaskProductChanged tasks.
func (j *ProductChangedJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Audit == nil {
		return errors.New("product changed: handler not configured")
	}
	var payload ProductChangedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ProductID <= 0 || payload.Action == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskProductChanged)
	logger := j.logger().With(slog.Int64("product_id", payload.ProductID), slog.String("action", payload.Action))

	key := ""
	if j.Keys != nil {
		if id, ok := asynq.GetTaskID(ctx); ok {
			key = TaskProductChanged + ":" + id
			if err := j.Keys.CheckAndInsert(ctx, key, "catalog"); err != nil {
				if errors.Is(err, shared.ErrAlreadyProcessed) {
					logger.Info("product change already audited")
					return tracker.End(nil)
				}
				logger.Error("claim idempotency key", slog.Any("error", err))
				return tracker.End(err)
			}
		}
	}

	err := j.Audit.Record(ctx, shared.AuditLog{
		Actor:    payload.Actor,
		Action:   "product." + payload.Action,
		Entity:   "product",
		EntityID: strconv.FormatInt(payload.ProductID, 10),
		Meta:     map[string]any{"name": payload.Name},
		At:       payload.At,
	})
	if err != nil {
		logger.Error("record product audit", slog.Any("error", err))
		if key != "" {
			if delErr := j.Keys.Delete(ctx, key); delErr != nil {
				logger.Warn("release idempotency key", slog.Any("error", delErr))
			}
		}
		return tracker.End(err)
	}
	j.metrics().AddProductChange(payload.Action)
	logger.Info("product change audited")
	return tracker.End(nil)
}

func (j *ProductChangedJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskProductChanged))
	}
	return slog.Default().With(slog.String("job", TaskProductChanged))
}

func (j *ProductChangedJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
