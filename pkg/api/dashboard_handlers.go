package api

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/latticehq/lattice/pkg/auth"
	"github.com/latticehq/lattice/pkg/store"
)

// dashboardCache memoizes computed dashboard views. Entries expire on a TTL
// and the whole cache is purged after every successful mutation, so a view
// is never served stale across a write.
type dashboardCache struct {
	entries *expirable.LRU[string, interface{}]
}

func newDashboardCache(size int, ttl time.Duration) *dashboardCache {
	return &dashboardCache{
		entries: expirable.NewLRU[string, interface{}](size, nil, ttl),
	}
}

func (dc *dashboardCache) get(key string) (interface{}, bool) {
	return dc.entries.Get(key)
}

func (dc *dashboardCache) add(key string, value interface{}) {
	dc.entries.Add(key, value)
}

func (dc *dashboardCache) purge() {
	dc.entries.Purge()
}

// ExecutiveSummary is the health-and-activity overview shown to leadership
type ExecutiveSummary struct {
	ProjectID      string                   `json:"project_id"`
	Status         store.ProjectStatus      `json:"status"`
	HealthScore    float64                  `json:"health_score"`
	ViolationCount int                      `json:"violation_count"`
	MemberCount    int                      `json:"member_count"`
	ConnectorCount int                      `json:"connector_count"`
	RecentActivity []*store.ProjectActivity `json:"recent_activity"`
}

// ArchitectSummary is the topology-and-sync view for engineers
type ArchitectSummary struct {
	ProjectID           string             `json:"project_id"`
	NodeCount           int                `json:"node_count"`
	EdgeCount           int                `json:"edge_count"`
	SyncIntervalMinutes int                `json:"sync_interval_minutes"`
	Connectors          []*store.Connector `json:"connectors"`
	LastSyncAt          *time.Time         `json:"last_sync_at,omitempty"`
}

// SecuritySummary is the findings view for security reviewers
type SecuritySummary struct {
	ProjectID          string                   `json:"project_id"`
	CriticalCount      int                      `json:"critical_count"`
	WarningCount       int                      `json:"warning_count"`
	PolicyViolations   []*store.ProjectActivity `json:"policy_violations"`
	AuditRetentionDays int                      `json:"audit_retention_days"`
	SSOEnabled         bool                     `json:"sso_enabled"`
}

// DashboardSummary bundles all views of one project. The security section
// is present only when the principal may audit the project.
type DashboardSummary struct {
	Project   *store.Project    `json:"project"`
	Executive *ExecutiveSummary `json:"executive"`
	Architect *ArchitectSummary `json:"architect"`
	Security  *SecuritySummary  `json:"security,omitempty"`
}

const recentActivityLimit = 5

func (c *requestContext) buildExecutiveSummary(projectID string) (*ExecutiveSummary, error) {
	project, err := c.srv.store.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	recent := c.srv.store.ListActivity(projectID, store.ActivityFilter{})
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}
	if recent == nil {
		recent = []*store.ProjectActivity{}
	}
	return &ExecutiveSummary{
		ProjectID:      projectID,
		Status:         project.Status,
		HealthScore:    project.Stats.HealthScore,
		ViolationCount: project.Stats.ViolationCount,
		MemberCount:    len(c.srv.store.ListProjectMembers(projectID)),
		ConnectorCount: len(c.srv.store.ListConnectors(store.ConnectorFilter{ProjectID: projectID})),
		RecentActivity: recent,
	}, nil
}

func (c *requestContext) buildArchitectSummary(projectID string) (*ArchitectSummary, error) {
	project, err := c.srv.store.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	connectors := c.srv.store.ListConnectors(store.ConnectorFilter{ProjectID: projectID})
	if connectors == nil {
		connectors = []*store.Connector{}
	}
	var lastSync *time.Time
	for _, connector := range connectors {
		if connector.LastSyncAt == nil {
			continue
		}
		if lastSync == nil || connector.LastSyncAt.After(*lastSync) {
			lastSync = connector.LastSyncAt
		}
	}
	return &ArchitectSummary{
		ProjectID:           projectID,
		NodeCount:           project.Stats.NodeCount,
		EdgeCount:           project.Stats.EdgeCount,
		SyncIntervalMinutes: project.Settings.SyncIntervalMinutes,
		Connectors:          connectors,
		LastSyncAt:          lastSync,
	}, nil
}

func (c *requestContext) buildSecuritySummary(projectID string) (*SecuritySummary, error) {
	project, err := c.srv.store.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	org, err := c.srv.store.GetOrganization(project.OrganizationID)
	if err != nil {
		return nil, err
	}
	violations := c.srv.store.ListActivity(projectID, store.ActivityFilter{Type: store.ActivityPolicyViolation})
	if violations == nil {
		violations = []*store.ProjectActivity{}
	}
	critical := 0
	warning := 0
	for _, a := range c.srv.store.ListActivity(projectID, store.ActivityFilter{}) {
		switch a.Severity {
		case store.SeverityCritical:
			critical++
		case store.SeverityWarning:
			warning++
		}
	}
	return &SecuritySummary{
		ProjectID:          projectID,
		CriticalCount:      critical,
		WarningCount:       warning,
		PolicyViolations:   violations,
		AuditRetentionDays: org.Settings.AuditRetentionDays,
		SSOEnabled:         org.Settings.SSOEnabled,
	}, nil
}

// handleDashboard assembles the full dashboard for a project. The three
// views are computed concurrently; reads share the dispatcher's read lock
// so the assembly observes one consistent snapshot.
func (c *requestContext) handleDashboard() (*Response, *Error) {
	projectID := c.param("projectId")
	if err := c.guardProject(projectID, auth.PermissionDashboardView); err != nil {
		return nil, err
	}
	includeSecurity := c.srv.checker.CheckProject(c.principal, projectID, auth.PermissionSecurityAudit).Allowed()

	key := "summary:" + projectID
	if !includeSecurity {
		key = "summary-restricted:" + projectID
	}
	if cached, hit := c.srv.dashboards.get(key); hit {
		c.srv.metrics.CacheHitsTotal.Inc()
		return ok(cached), nil
	}
	c.srv.metrics.CacheMissesTotal.Inc()

	project, err := c.srv.store.GetProject(projectID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	summary := &DashboardSummary{Project: project}

	var g errgroup.Group
	g.Go(func() error {
		view, err := c.buildExecutiveSummary(projectID)
		summary.Executive = view
		return err
	})
	g.Go(func() error {
		view, err := c.buildArchitectSummary(projectID)
		summary.Architect = view
		return err
	})
	if includeSecurity {
		g.Go(func() error {
			view, err := c.buildSecuritySummary(projectID)
			summary.Security = view
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, mapStoreError(err)
	}

	c.srv.dashboards.add(key, summary)
	return ok(summary), nil
}

// handleExecutiveView serves the executive view of one project
func (c *requestContext) handleExecutiveView() (*Response, *Error) {
	return c.serveView("executive", auth.PermissionDashboardView, func(projectID string) (interface{}, error) {
		return c.buildExecutiveSummary(projectID)
	})
}

// handleArchitectView serves the architect view of one project
func (c *requestContext) handleArchitectView() (*Response, *Error) {
	return c.serveView("architect", auth.PermissionDashboardView, func(projectID string) (interface{}, error) {
		return c.buildArchitectSummary(projectID)
	})
}

// handleSecurityView serves the security view. It demands the audit
// permission, which the readonly and product roles do not hold.
func (c *requestContext) handleSecurityView() (*Response, *Error) {
	return c.serveView("security", auth.PermissionSecurityAudit, func(projectID string) (interface{}, error) {
		return c.buildSecuritySummary(projectID)
	})
}

func (c *requestContext) serveView(name string, perm auth.Permission, build func(projectID string) (interface{}, error)) (*Response, *Error) {
	projectID := c.param("projectId")
	if err := c.guardProject(projectID, perm); err != nil {
		return nil, err
	}
	key := name + ":" + projectID
	if cached, hit := c.srv.dashboards.get(key); hit {
		c.srv.metrics.CacheHitsTotal.Inc()
		return ok(cached), nil
	}
	c.srv.metrics.CacheMissesTotal.Inc()
	view, err := build(projectID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	c.srv.dashboards.add(key, view)
	return ok(view), nil
}
