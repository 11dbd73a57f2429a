package store

import (
	"sort"
	"time"

	"github.com/latticehq/lattice/pkg/auth"
)

// Store holds the authoritative in-memory collections, keyed by identity.
// It must be constructed with NewStore and passed explicitly to consumers.
type Store struct {
	users          map[string]*User
	usersByEmail   map[string]string
	orgs           map[string]*Organization
	orgsBySlug     map[string]string
	orgMembers     map[string]*OrgMember
	projects       map[string]*Project
	projectMembers map[string]*ProjectMember
	teams          map[string]*Team
	teamMembers    map[string]*TeamMember
	invitations    map[string]*ProjectInvitation
	activities     []*ProjectActivity
	connectors     map[string]*Connector
	syncJobs       map[string]*SyncJob

	nowFn func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:          make(map[string]*User),
		usersByEmail:   make(map[string]string),
		orgs:           make(map[string]*Organization),
		orgsBySlug:     make(map[string]string),
		orgMembers:     make(map[string]*OrgMember),
		projects:       make(map[string]*Project),
		projectMembers: make(map[string]*ProjectMember),
		teams:          make(map[string]*Team),
		teamMembers:    make(map[string]*TeamMember),
		invitations:    make(map[string]*ProjectInvitation),
		connectors:     make(map[string]*Connector),
		syncJobs:       make(map[string]*SyncJob),
		nowFn:          time.Now,
	}
}

func (s *Store) now() time.Time {
	return s.nowFn().UTC()
}

// Counts returns the current number of entities per collection, keyed by
// resource name. Used to drive store gauges.
func (s *Store) Counts() map[string]int {
	return map[string]int{
		"users":           len(s.users),
		"organizations":   len(s.orgs),
		"org_members":     len(s.orgMembers),
		"projects":        len(s.projects),
		"project_members": len(s.projectMembers),
		"teams":           len(s.teams),
		"team_members":    len(s.teamMembers),
		"invitations":     len(s.invitations),
		"activities":      len(s.activities),
		"connectors":      len(s.connectors),
		"sync_jobs":       len(s.syncJobs),
	}
}

// checkRevision validates a conditional update. expected == 0 means
// unconditional (last writer wins).
func checkRevision(resource, id string, expected, actual int64) error {
	if expected != 0 && expected != actual {
		return &RevisionError{Resource: resource, ID: id, Expected: expected, Actual: actual}
	}
	return nil
}

// --- Users ---

// CreateUser inserts a new user, assigning identity and timestamps.
// Emails are unique.
func (s *Store) CreateUser(u *User) error {
	if _, exists := s.usersByEmail[u.Email]; exists {
		return &ConflictError{Resource: "user", Field: "email", Value: u.Email}
	}
	u.ID = NewID()
	u.Revision = 1
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	if u.Preferences.Theme == "" {
		u.Preferences.Theme = "system"
	}
	if u.Preferences.DefaultDashboardView == "" {
		u.Preferences.DefaultDashboardView = "executive"
	}
	s.users[u.ID] = u.clone()
	s.usersByEmail[u.Email] = u.ID
	return nil
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(id string) (*User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, &NotFoundError{Resource: "user", ID: id}
	}
	return u.clone(), nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(email string) (*User, error) {
	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, &NotFoundError{Resource: "user", ID: email}
	}
	return s.users[id].clone(), nil
}

// UpdateUser replaces a user's mutable fields. Identity and email index stay
// consistent; changing the email to one already in use is a conflict.
func (s *Store) UpdateUser(u *User, expectedRevision int64) (*User, error) {
	current, ok := s.users[u.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "user", ID: u.ID}
	}
	if err := checkRevision("user", u.ID, expectedRevision, current.Revision); err != nil {
		return nil, err
	}
	if u.Email != current.Email {
		if _, taken := s.usersByEmail[u.Email]; taken {
			return nil, &ConflictError{Resource: "user", Field: "email", Value: u.Email}
		}
		delete(s.usersByEmail, current.Email)
		s.usersByEmail[u.Email] = u.ID
	}
	u.CreatedAt = current.CreatedAt
	u.Revision = current.Revision + 1
	u.UpdatedAt = s.now()
	s.users[u.ID] = u.clone()
	return u.clone(), nil
}

// --- Organizations ---

// DefaultLimits returns the usage limits for a plan tier
func DefaultLimits(tier PlanTier) OrgLimits {
	switch tier {
	case PlanPro:
		return OrgLimits{MaxProjects: 25, MaxUsers: 50, MaxConnectors: 25, MaxStorageBytes: 50 << 30}
	case PlanEnterprise:
		return OrgLimits{MaxProjects: 500, MaxUsers: 1000, MaxConnectors: 250, MaxStorageBytes: 1 << 40}
	default:
		return OrgLimits{MaxProjects: 3, MaxUsers: 5, MaxConnectors: 3, MaxStorageBytes: 1 << 30}
	}
}

// CreateOrganization inserts a new organization. The slug is derived from the
// name when absent and must be unique across all organizations.
func (s *Store) CreateOrganization(o *Organization) error {
	if o.Slug == "" {
		o.Slug = Slugify(o.Name)
	}
	if _, exists := s.orgsBySlug[o.Slug]; exists {
		return &ConflictError{Resource: "organization", Field: "slug", Value: o.Slug}
	}
	if o.PlanTier == "" {
		o.PlanTier = PlanFree
	}
	if o.Limits == (OrgLimits{}) {
		o.Limits = DefaultLimits(o.PlanTier)
	}
	if o.Settings.DefaultRole == "" {
		o.Settings.DefaultRole = auth.RoleReadonly
	}
	if o.Settings.AuditRetentionDays == 0 {
		o.Settings.AuditRetentionDays = 90
	}
	o.ID = NewID()
	o.Revision = 1
	o.CreatedAt = s.now()
	o.UpdatedAt = o.CreatedAt
	s.orgs[o.ID] = o.clone()
	s.orgsBySlug[o.Slug] = o.ID
	return nil
}

// GetOrganization retrieves an organization by ID
func (s *Store) GetOrganization(id string) (*Organization, error) {
	o, ok := s.orgs[id]
	if !ok {
		return nil, &NotFoundError{Resource: "organization", ID: id}
	}
	return o.clone(), nil
}

// GetOrganizationBySlug retrieves an organization by slug
func (s *Store) GetOrganizationBySlug(slug string) (*Organization, error) {
	id, ok := s.orgsBySlug[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "organization", ID: slug}
	}
	return s.orgs[id].clone(), nil
}

// ListOrganizationsForUser lists organizations the user is a member of,
// ordered by creation
func (s *Store) ListOrganizationsForUser(userID string) []*Organization {
	var out []*Organization
	for _, m := range s.orgMembers {
		if m.UserID != userID {
			continue
		}
		if o, ok := s.orgs[m.OrganizationID]; ok {
			out = append(out, o.clone())
		}
	}
	sortByID(out, func(o *Organization) string { return o.ID })
	return out
}

// UpdateOrganization replaces an organization's mutable fields. A changed
// slug must remain unique.
func (s *Store) UpdateOrganization(o *Organization, expectedRevision int64) (*Organization, error) {
	current, ok := s.orgs[o.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "organization", ID: o.ID}
	}
	if err := checkRevision("organization", o.ID, expectedRevision, current.Revision); err != nil {
		return nil, err
	}
	if o.Slug != current.Slug {
		if _, taken := s.orgsBySlug[o.Slug]; taken {
			return nil, &ConflictError{Resource: "organization", Field: "slug", Value: o.Slug}
		}
		delete(s.orgsBySlug, current.Slug)
		s.orgsBySlug[o.Slug] = o.ID
	}
	o.CreatedAt = current.CreatedAt
	o.Revision = current.Revision + 1
	o.UpdatedAt = s.now()
	s.orgs[o.ID] = o.clone()
	return o.clone(), nil
}

// DeleteOrganization removes an organization. Deletion is rejected while the
// organization still owns projects; there is no cascade.
func (s *Store) DeleteOrganization(id string) error {
	o, ok := s.orgs[id]
	if !ok {
		return &NotFoundError{Resource: "organization", ID: id}
	}
	if n := s.countProjects(id); n > 0 {
		return &DependentResourcesError{Resource: "organization", Dependent: "projects", Count: n}
	}
	for mid, m := range s.orgMembers {
		if m.OrganizationID == id {
			delete(s.orgMembers, mid)
		}
	}
	for tid, t := range s.teams {
		if t.OrganizationID == id {
			s.removeTeamMembers(tid)
			delete(s.teams, tid)
		}
	}
	delete(s.orgsBySlug, o.Slug)
	delete(s.orgs, id)
	return nil
}

func (s *Store) countProjects(orgID string) int {
	n := 0
	for _, p := range s.projects {
		if p.OrganizationID == orgID {
			n++
		}
	}
	return n
}

func (s *Store) countOrgMembers(orgID string) int {
	n := 0
	for _, m := range s.orgMembers {
		if m.OrganizationID == orgID {
			n++
		}
	}
	return n
}

// --- Organization members ---

// AddOrgMember adds a user to an organization. Membership is unique per
// (user, organization) and bounded by the organization's user limit.
func (s *Store) AddOrgMember(m *OrgMember) error {
	org, ok := s.orgs[m.OrganizationID]
	if !ok {
		return &NotFoundError{Resource: "organization", ID: m.OrganizationID}
	}
	if _, ok := s.users[m.UserID]; !ok {
		return &NotFoundError{Resource: "user", ID: m.UserID}
	}
	for _, existing := range s.orgMembers {
		if existing.OrganizationID == m.OrganizationID && existing.UserID == m.UserID {
			return &ConflictError{Resource: "member", Field: "user_id", Value: m.UserID}
		}
	}
	if n := s.countOrgMembers(m.OrganizationID); n >= org.Limits.MaxUsers {
		return &LimitExceededError{Resource: "users", Current: n, Limit: org.Limits.MaxUsers}
	}
	if m.Role == "" {
		m.Role = org.Settings.DefaultRole
	}
	m.ID = NewID()
	m.Revision = 1
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt
	s.orgMembers[m.ID] = m.clone()
	return nil
}

// GetOrgMember retrieves a membership by organization and user
func (s *Store) GetOrgMember(orgID, userID string) (*OrgMember, error) {
	for _, m := range s.orgMembers {
		if m.OrganizationID == orgID && m.UserID == userID {
			return m.clone(), nil
		}
	}
	return nil, &NotFoundError{Resource: "member", ID: userID}
}

// ListOrgMembers lists members of an organization ordered by join time
func (s *Store) ListOrgMembers(orgID string) []*OrgMember {
	var out []*OrgMember
	for _, m := range s.orgMembers {
		if m.OrganizationID == orgID {
			out = append(out, m.clone())
		}
	}
	sortByID(out, func(m *OrgMember) string { return m.ID })
	return out
}

// UpdateOrgMemberRole changes a member's role
func (s *Store) UpdateOrgMemberRole(orgID, userID string, role auth.Role) (*OrgMember, error) {
	for _, m := range s.orgMembers {
		if m.OrganizationID == orgID && m.UserID == userID {
			m.Role = role
			m.Revision++
			m.UpdatedAt = s.now()
			return m.clone(), nil
		}
	}
	return nil, &NotFoundError{Resource: "member", ID: userID}
}

// RemoveOrgMember removes a user from an organization
func (s *Store) RemoveOrgMember(orgID, userID string) error {
	for id, m := range s.orgMembers {
		if m.OrganizationID == orgID && m.UserID == userID {
			delete(s.orgMembers, id)
			return nil
		}
	}
	return &NotFoundError{Resource: "member", ID: userID}
}

// sortByID orders entities by their ULID, which doubles as creation order
func sortByID[T any](items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
