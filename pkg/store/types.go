package store

import (
	"strings"
	"time"

	"github.com/latticehq/lattice/pkg/auth"
)

// PlanTier represents subscription plan tiers
type PlanTier string

const (
	PlanFree       PlanTier = "free"
	PlanPro        PlanTier = "pro"
	PlanEnterprise PlanTier = "enterprise"
)

// ProjectStatus represents the project lifecycle state
type ProjectStatus string

const (
	ProjectStatusSetup    ProjectStatus = "setup"
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
)

// InvitationStatus represents the state of a project invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

// ActivityType is the closed enumeration of project activity kinds
type ActivityType string

const (
	ActivityMemberInvited     ActivityType = "member_invited"
	ActivityMemberJoined      ActivityType = "member_joined"
	ActivityMemberRemoved     ActivityType = "member_removed"
	ActivityMemberRoleChanged ActivityType = "member_role_changed"
	ActivityProjectCreated    ActivityType = "project_created"
	ActivityProjectUpdated    ActivityType = "project_updated"
	ActivityProjectArchived   ActivityType = "project_archived"
	ActivityProjectRestored   ActivityType = "project_restored"
	ActivityConnectorCreated  ActivityType = "connector_created"
	ActivitySyncStarted       ActivityType = "sync_started"
	ActivitySyncCompleted     ActivityType = "sync_completed"
	ActivityPolicyViolation   ActivityType = "policy_violation"
)

// Severity represents activity severity
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ConnectorStatus represents the connector state
type ConnectorStatus string

const (
	ConnectorStatusConnected    ConnectorStatus = "connected"
	ConnectorStatusDisconnected ConnectorStatus = "disconnected"
	ConnectorStatusError        ConnectorStatus = "error"
)

// SyncJobStatus represents the state of an asynchronous sync job
type SyncJobStatus string

const (
	SyncJobQueued    SyncJobStatus = "queued"
	SyncJobRunning   SyncJobStatus = "running"
	SyncJobCompleted SyncJobStatus = "completed"
	SyncJobFailed    SyncJobStatus = "failed"
)

// UserPreferences holds per-user display and notification settings. The
// current organization/project selection is persisted by the surrounding
// application; this core only stores and serves it.
type UserPreferences struct {
	Theme                 string `json:"theme" yaml:"theme"`
	DefaultDashboardView  string `json:"default_dashboard_view" yaml:"default_dashboard_view"`
	EmailNotifications    bool   `json:"email_notifications" yaml:"email_notifications"`
	CurrentOrganizationID string `json:"current_organization_id,omitempty" yaml:"current_organization_id,omitempty"`
	CurrentProjectID      string `json:"current_project_id,omitempty" yaml:"current_project_id,omitempty"`
}

// User represents a registered user. Users are never hard-deleted.
type User struct {
	ID          string          `json:"id" yaml:"id"`
	Email       string          `json:"email" yaml:"email"`
	Name        string          `json:"name" yaml:"name"`
	Preferences UserPreferences `json:"preferences" yaml:"preferences"`
	Revision    int64           `json:"revision" yaml:"-"`
	CreatedAt   time.Time       `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time       `json:"updated_at" yaml:"-"`
}

// OrgSettings holds organization-wide defaults
type OrgSettings struct {
	DefaultRole        auth.Role `json:"default_role" yaml:"default_role"`
	SSOEnabled         bool      `json:"sso_enabled" yaml:"sso_enabled"`
	AuditRetentionDays int       `json:"audit_retention_days" yaml:"audit_retention_days"`
}

// OrgLimits holds per-organization usage limits
type OrgLimits struct {
	MaxProjects     int   `json:"max_projects" yaml:"max_projects"`
	MaxUsers        int   `json:"max_users" yaml:"max_users"`
	MaxConnectors   int   `json:"max_connectors" yaml:"max_connectors"`
	MaxStorageBytes int64 `json:"max_storage_bytes" yaml:"max_storage_bytes"`
}

// Organization represents a tenant
type Organization struct {
	ID        string      `json:"id" yaml:"id"`
	Name      string      `json:"name" yaml:"name"`
	Slug      string      `json:"slug" yaml:"slug"`
	PlanTier  PlanTier    `json:"plan_tier" yaml:"plan_tier"`
	Settings  OrgSettings `json:"settings" yaml:"settings"`
	Limits    OrgLimits   `json:"limits" yaml:"limits"`
	Revision  int64       `json:"revision" yaml:"-"`
	CreatedAt time.Time   `json:"created_at" yaml:"-"`
	UpdatedAt time.Time   `json:"updated_at" yaml:"-"`
}

// OrgMember links a user to an organization. Unique per (user, organization).
type OrgMember struct {
	ID             string    `json:"id" yaml:"id"`
	OrganizationID string    `json:"organization_id" yaml:"organization_id"`
	UserID         string    `json:"user_id" yaml:"user_id"`
	Role           auth.Role `json:"role" yaml:"role"`
	InvitedBy      string    `json:"invited_by,omitempty" yaml:"invited_by,omitempty"`
	Revision       int64     `json:"revision" yaml:"-"`
	CreatedAt      time.Time `json:"created_at" yaml:"-"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"-"`
}

// ProjectSettings holds per-project configuration
type ProjectSettings struct {
	Visibility          string `json:"visibility" yaml:"visibility"`
	SyncIntervalMinutes int    `json:"sync_interval_minutes" yaml:"sync_interval_minutes"`
	AlertThreshold      int    `json:"alert_threshold" yaml:"alert_threshold"`
}

// ProjectStats holds rolling statistics for a project's knowledge graph
type ProjectStats struct {
	NodeCount      int     `json:"node_count" yaml:"node_count"`
	EdgeCount      int     `json:"edge_count" yaml:"edge_count"`
	ViolationCount int     `json:"violation_count" yaml:"violation_count"`
	HealthScore    float64 `json:"health_score" yaml:"health_score"`
}

// Project represents an architecture project owned by exactly one organization
type Project struct {
	ID             string          `json:"id" yaml:"id"`
	OrganizationID string          `json:"organization_id" yaml:"organization_id"`
	Name           string          `json:"name" yaml:"name"`
	Slug           string          `json:"slug" yaml:"slug"`
	Status         ProjectStatus   `json:"status" yaml:"status"`
	Settings       ProjectSettings `json:"settings" yaml:"settings"`
	Stats          ProjectStats    `json:"stats" yaml:"stats"`
	Revision       int64           `json:"revision" yaml:"-"`
	CreatedAt      time.Time       `json:"created_at" yaml:"-"`
	UpdatedAt      time.Time       `json:"updated_at" yaml:"-"`
}

// ProjectMember links a user to a project with a role and optional custom
// permission grants. Effective permissions are the union of the role's base
// set and the grants.
type ProjectMember struct {
	ID                string            `json:"id" yaml:"id"`
	ProjectID         string            `json:"project_id" yaml:"project_id"`
	UserID            string            `json:"user_id" yaml:"user_id"`
	Role              auth.Role         `json:"role" yaml:"role"`
	CustomPermissions []auth.Permission `json:"custom_permissions,omitempty" yaml:"custom_permissions,omitempty"`
	InvitedBy         string            `json:"invited_by,omitempty" yaml:"invited_by,omitempty"`
	Revision          int64             `json:"revision" yaml:"-"`
	CreatedAt         time.Time         `json:"created_at" yaml:"-"`
	UpdatedAt         time.Time         `json:"updated_at" yaml:"-"`
}

// Team represents a named group of users within an organization
type Team struct {
	ID             string    `json:"id" yaml:"id"`
	OrganizationID string    `json:"organization_id" yaml:"organization_id"`
	Name           string    `json:"name" yaml:"name"`
	LeadID         string    `json:"lead_id,omitempty" yaml:"lead_id,omitempty"`
	MemberCount    int       `json:"member_count" yaml:"-"`
	Revision       int64     `json:"revision" yaml:"-"`
	CreatedAt      time.Time `json:"created_at" yaml:"-"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"-"`
}

// TeamMember links a user to a team
type TeamMember struct {
	ID        string    `json:"id" yaml:"id"`
	TeamID    string    `json:"team_id" yaml:"team_id"`
	UserID    string    `json:"user_id" yaml:"user_id"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
}

// ProjectInvitation represents a pending invitation to join a project
type ProjectInvitation struct {
	ID             string           `json:"id" yaml:"id"`
	ProjectID      string           `json:"project_id" yaml:"project_id"`
	OrganizationID string           `json:"organization_id" yaml:"organization_id"`
	Email          string           `json:"email" yaml:"email"`
	Role           auth.Role        `json:"role" yaml:"role"`
	Status         InvitationStatus `json:"status" yaml:"status"`
	Token          string           `json:"token,omitempty" yaml:"-"`
	InvitedBy      string           `json:"invited_by,omitempty" yaml:"invited_by,omitempty"`
	ExpiresAt      time.Time        `json:"expires_at" yaml:"-"`
	Revision       int64            `json:"revision" yaml:"-"`
	CreatedAt      time.Time        `json:"created_at" yaml:"-"`
	UpdatedAt      time.Time        `json:"updated_at" yaml:"-"`
}

// ProjectActivity is an append-only log entry. Never mutated after creation.
type ProjectActivity struct {
	ID             string       `json:"id"`
	ProjectID      string       `json:"project_id"`
	OrganizationID string       `json:"organization_id"`
	Type           ActivityType `json:"type"`
	ActorID        string       `json:"actor_id,omitempty"`
	TargetID       string       `json:"target_id,omitempty"`
	Severity       Severity     `json:"severity"`
	Message        string       `json:"message,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Connector represents an external data source feeding a project's graph
type Connector struct {
	ID         string            `json:"id" yaml:"id"`
	ProjectID  string            `json:"project_id" yaml:"project_id"`
	Name       string            `json:"name" yaml:"name"`
	Kind       string            `json:"kind" yaml:"kind"`
	Status     ConnectorStatus   `json:"status" yaml:"status"`
	Config     map[string]string `json:"config,omitempty" yaml:"config,omitempty"`
	LastSyncAt *time.Time        `json:"last_sync_at,omitempty" yaml:"-"`
	Revision   int64             `json:"revision" yaml:"-"`
	CreatedAt  time.Time         `json:"created_at" yaml:"-"`
	UpdatedAt  time.Time         `json:"updated_at" yaml:"-"`
}

// SyncJob represents an asynchronous connector sync, polled by callers
type SyncJob struct {
	ID          string        `json:"id"`
	ConnectorID string        `json:"connector_id"`
	ProjectID   string        `json:"project_id"`
	Status      SyncJobStatus `json:"status"`
	Progress    int           `json:"progress"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// Slugify derives a slug from a name by lower-casing and hyphenating
// whitespace, dropping anything outside [a-z0-9-]
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, slug)
	return slug
}

func (u *User) clone() *User {
	c := *u
	return &c
}

func (o *Organization) clone() *Organization {
	c := *o
	return &c
}

func (m *OrgMember) clone() *OrgMember {
	c := *m
	return &c
}

func (p *Project) clone() *Project {
	c := *p
	return &c
}

func (m *ProjectMember) clone() *ProjectMember {
	c := *m
	c.CustomPermissions = append([]auth.Permission(nil), m.CustomPermissions...)
	return &c
}

func (t *Team) clone() *Team {
	c := *t
	return &c
}

func (m *TeamMember) clone() *TeamMember {
	c := *m
	return &c
}

func (i *ProjectInvitation) clone() *ProjectInvitation {
	c := *i
	return &c
}

func (a *ProjectActivity) clone() *ProjectActivity {
	c := *a
	return &c
}

func (cn *Connector) clone() *Connector {
	c := *cn
	if cn.Config != nil {
		c.Config = make(map[string]string, len(cn.Config))
		for k, v := range cn.Config {
			c.Config[k] = v
		}
	}
	if cn.LastSyncAt != nil {
		t := *cn.LastSyncAt
		c.LastSyncAt = &t
	}
	return &c
}

func (j *SyncJob) clone() *SyncJob {
	c := *j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
