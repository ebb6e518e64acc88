package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gathered returns the value of the first sample of name whose labels contain
// every pair in labels.
func gathered(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range family.GetMetric() {
			got := map[string]string{}
			for _, pair := range metric.GetLabel() {
				got[pair.GetName()] = pair.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue metrics
				}
			}
			switch {
			case metric.GetCounter() != nil:
				return metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				return metric.GetGauge().GetValue()
			}
		}
	}
	return 0
}

func TestTrackerRecordsStatus(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	require.NoError(t, m.Track("catalog:product_changed").End(nil))
	err := m.Track("catalog:product_changed").End(errors.New("boom"))
	require.Error(t, err)

	assert.Equal(t, 1.0, gathered(t, registry, "northwind_jobs_total", map[string]string{"job": "catalog:product_changed", "status": "success"}))
	assert.Equal(t, 1.0, gathered(t, registry, "northwind_jobs_total", map[string]string{"job": "catalog:product_changed", "status": "failure"}))
	assert.Equal(t, 1.0, gathered(t, registry, "northwind_jobs_failures_total", map[string]string{"job": "catalog:product_changed"}))
}

func TestProductChangeAndLowStock(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.AddProductChange("created")
	m.AddProductChange("created")
	m.AddProductChange("")
	m.SetLowStock(4)

	assert.Equal(t, 2.0, gathered(t, registry, "northwind_product_changes_total", map[string]string{"action": "created"}))
	assert.Equal(t, 4.0, gathered(t, registry, "northwind_products_low_stock", nil))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.AddProductChange("deleted")
	m.SetLowStock(1)
	assert.NoError(t, m.Track("noop").End(nil))
}
