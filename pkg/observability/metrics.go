package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the control plane
type Metrics struct {
	// Dispatch metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Authorization metrics
	GuardDenialsTotal *prometheus.CounterVec

	// Dashboard cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Store metrics
	EntitiesTotal *prometheus.GaugeVec

	// Maintenance metrics
	InvitationsExpiredTotal prometheus.Counter
	SyncJobsAdvancedTotal   prometheus.Counter
}

// NewMetrics creates and registers all metrics against the given registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_requests_total",
				Help: "Total number of dispatched requests",
			},
			[]string{"method", "route", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lattice_request_duration_seconds",
				Help:    "Request dispatch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GuardDenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_guard_denials_total",
				Help: "Total number of authorization guard denials",
			},
			[]string{"decision"},
		),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lattice_dashboard_cache_hits_total",
			Help: "Total number of dashboard cache hits",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lattice_dashboard_cache_misses_total",
			Help: "Total number of dashboard cache misses",
		}),
		EntitiesTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lattice_entities_total",
				Help: "Current number of entities in the resource store",
			},
			[]string{"resource"},
		),
		InvitationsExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lattice_invitations_expired_total",
			Help: "Total number of invitations expired by the janitor",
		}),
		SyncJobsAdvancedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lattice_sync_jobs_advanced_total",
			Help: "Total number of sync job state transitions",
		}),
	}

	if registry != nil {
		registry.MustRegister(
			m.RequestsTotal,
			m.RequestDuration,
			m.GuardDenialsTotal,
			m.CacheHitsTotal,
			m.CacheMissesTotal,
			m.EntitiesTotal,
			m.InvitationsExpiredTotal,
			m.SyncJobsAdvancedTotal,
		)
	}

	return m
}
