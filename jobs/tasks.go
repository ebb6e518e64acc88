package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/northwind-admin/northwind-admin/internal/catalog/products"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskProductChanged is enqueued after every committed product mutation.
	TaskProductChanged = "catalog:product_changed"
	// TaskRestockScan counts products that need reordering.
	TaskRestockScan = "catalog:restock_scan"
	// TaskIdempotencyCleanup prunes processed job keys.
	TaskIdempotencyCleanup = "catalog:idempotency_cleanup"
)

// ProductChangedPayload describes one product mutation.
type ProductChangedPayload struct {
	Action    string    `json:"action"`
	ProductID int64     `json:"productId"`
	Name      string    `json:"name"`
	Actor     string    `json:"actor"`
	At        time.Time `json:"at"`
}

// NewProductChangedTask constructs an Asynq task for a product change event.
func NewProductChangedTask(event products.ChangeEvent) (*asynq.Task, error) {
	payload := ProductChangedPayload{
		Action:    event.Action,
		ProductID: event.Product.ID,
		Name:      event.Product.Name,
		Actor:     event.Actor,
		At:        event.At.UTC(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProductChanged, body, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// RestockScanPayload carries scheduling metadata.
type RestockScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewRestockScanTask constructs the periodic restock scan task.
func NewRestockScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(RestockScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRestockScan, body, asynq.Queue(QueueDefault)), nil
}

// IdempotencyCleanupPayload sets the retention of processed keys.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewIdempotencyCleanupTask constructs the key pruning task.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: int(retention.Hours())})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, body, asynq.Queue(QueueDefault)), nil
}
