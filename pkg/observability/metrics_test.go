package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegisters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RequestsTotal.WithLabelValues("GET", "/projects", "ok").Inc()
	m.GuardDenialsTotal.WithLabelValues("forbidden").Inc()
	m.CacheHitsTotal.Inc()
	m.EntitiesTotal.WithLabelValues("projects").Set(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/projects", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GuardDenialsTotal.WithLabelValues("forbidden")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.EntitiesTotal.WithLabelValues("projects")))

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewMetricsNilRegistry(t *testing.T) {
	m := NewMetrics(nil)
	m.SyncJobsAdvancedTotal.Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SyncJobsAdvancedTotal))
}
