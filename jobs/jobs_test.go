package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northwind-admin/northwind-admin/internal/catalog/products"
	jobmetrics "github.com/northwind-admin/northwind-admin/internal/jobs"
	"github.com/northwind-admin/northwind-admin/internal/shared"
)

type recordingAudit struct {
	logs []shared.AuditLog
	err  error
}

func (r *recordingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	if r.err != nil {
		return r.err
	}
	r.logs = append(r.logs, log)
	return nil
}

type stubCounter struct {
	count int
	err   error
}

func (s stubCounter) CountLowStock(ctx context.Context) (int, error) {
	return s.count, s.err
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewProductChangedTaskPayload(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	task, err := NewProductChangedTask(products.ChangeEvent{
		Action:  products.ActionUpdated,
		Product: products.Product{ID: 7, Name: "Chai"},
		Actor:   "nancy@northwind.test",
		At:      at,
	})
	require.NoError(t, err)
	assert.Equal(t, TaskProductChanged, task.Type())

	var payload ProductChangedPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, ProductChangedPayload{Action: "updated", ProductID: 7, Name: "Chai", Actor: "nancy@northwind.test", At: at}, payload)
}

func TestProductChangedJobRecordsAudit(t *testing.T) {
	audit := &recordingAudit{}
	job := NewProductChangedJob(audit, nil, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewProductChangedTask(products.ChangeEvent{
		Action:  products.ActionDeleted,
		Product: products.Product{ID: 12, Name: "Queso Manchego La Pastora"},
		Actor:   "andrew@northwind.test",
		At:      time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, audit.logs, 1)
	assert.Equal(t, "product.deleted", audit.logs[0].Action)
	assert.Equal(t, "product", audit.logs[0].Entity)
	assert.Equal(t, "12", audit.logs[0].EntityID)
	assert.Equal(t, "andrew@northwind.test", audit.logs[0].Actor)
	assert.Equal(t, "Queso Manchego La Pastora", audit.logs[0].Meta["name"])
}

func TestProductChangedJobRejectsBadPayload(t *testing.T) {
	job := NewProductChangedJob(&recordingAudit{}, nil, quietLogger(), nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskProductChanged, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskProductChanged, []byte(`{"action":"created"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestProductChangedJobPropagatesAuditFailure(t *testing.T) {
	job := NewProductChangedJob(&recordingAudit{err: errors.New("db down")}, nil, quietLogger(), nil)
	task, err := NewProductChangedTask(products.ChangeEvent{Action: products.ActionCreated, Product: products.Product{ID: 1, Name: "Chai"}})
	require.NoError(t, err)

	assert.EqualError(t, job.Handle(context.Background(), task), "db down")
}

func TestRestockScan(t *testing.T) {
	task, err := NewRestockScanTask(time.Now())
	require.NoError(t, err)

	job := NewRestockScanJob(stubCounter{count: 3}, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	assert.NoError(t, job.Handle(context.Background(), task))

	failing := NewRestockScanJob(stubCounter{err: errors.New("timeout")}, quietLogger(), nil)
	assert.Error(t, failing.Handle(context.Background(), task))
}

func TestPublishProductChangeEnqueues(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	err = client.PublishProductChange(context.Background(), products.ChangeEvent{
		Action:  products.ActionCreated,
		Product: products.Product{ID: 78, Name: "Gravad lax"},
		At:      time.Now(),
	})
	require.NoError(t, err)

	pending, err := mr.List("asynq:{default}:pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name      string
		inspector QueueInspector
		status    int
		pending   int
	}{
		{name: "no inspector", inspector: nil, status: http.StatusOK},
		{name: "queue info", inspector: stubInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 4}}, status: http.StatusOK, pending: 4},
		{name: "redis down", inspector: stubInspector{err: errors.New("dial")}, status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Route("/jobs", NewHandler(tt.inspector, quietLogger()).MountRoutes)
			res := httptest.NewRecorder()
			r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

			require.Equal(t, tt.status, res.Code)
			if tt.status != http.StatusOK {
				return
			}
			var body queueHealth
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			assert.Equal(t, "default", body.Queue)
			assert.Equal(t, tt.pending, body.Pending)
		})
	}
}
