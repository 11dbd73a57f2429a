package api

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/latticehq/lattice/pkg/observability"
)

// Janitor runs periodic maintenance against the server: it expires overdue
// invitations, advances queued sync jobs and refreshes the entity gauges.
// Ticks take the dispatcher's writer lock, so maintenance never interleaves
// with a mutating request.
type Janitor struct {
	srv    *Server
	cron   *cron.Cron
	logger *observability.Logger
}

// NewJanitor creates a janitor on the given cron schedule
func NewJanitor(s *Server, schedule string, logger *observability.Logger) (*Janitor, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	j := &Janitor{srv: s, cron: cron.New(), logger: logger}
	if _, err := j.cron.AddFunc(schedule, j.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start begins scheduled maintenance
func (j *Janitor) Start() {
	j.cron.Start()
	j.logger.Info("janitor started")
}

// Stop halts the schedule, waiting for a running tick to finish
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("janitor stopped")
}

// RunOnce executes a single maintenance tick
func (j *Janitor) RunOnce() {
	j.srv.mu.Lock()
	expired := j.srv.store.ExpireInvitations()
	advanced := j.srv.store.AdvanceSyncJobs()
	counts := j.srv.store.Counts()
	if expired > 0 || advanced > 0 {
		j.srv.dashboards.purge()
	}
	j.srv.mu.Unlock()

	j.srv.metrics.InvitationsExpiredTotal.Add(float64(expired))
	j.srv.metrics.SyncJobsAdvancedTotal.Add(float64(advanced))
	for resource, n := range counts {
		j.srv.metrics.EntitiesTotal.WithLabelValues(resource).Set(float64(n))
	}

	if expired > 0 || advanced > 0 {
		j.logger.WithFields(map[string]interface{}{
			"invitations_expired": expired,
			"sync_jobs_advanced":  advanced,
		}).Info("maintenance tick")
	}
}
