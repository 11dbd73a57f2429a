package store

import (
	"time"

	"github.com/google/uuid"
)

// ProjectFilter narrows ListProjects. Zero values match everything.
type ProjectFilter struct {
	OrganizationID string
	Status         ProjectStatus
}

// CreateProject inserts a new project under an existing organization. The
// slug is derived from the name when absent and must be unique within the
// organization.
func (s *Store) CreateProject(p *Project) error {
	org, ok := s.orgs[p.OrganizationID]
	if !ok {
		return &NotFoundError{Resource: "organization", ID: p.OrganizationID}
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	for _, existing := range s.projects {
		if existing.OrganizationID == p.OrganizationID && existing.Slug == p.Slug {
			return &ConflictError{Resource: "project", Field: "slug", Value: p.Slug}
		}
	}
	if n := s.countProjects(p.OrganizationID); n >= org.Limits.MaxProjects {
		return &LimitExceededError{Resource: "projects", Current: n, Limit: org.Limits.MaxProjects}
	}
	if p.Status == "" {
		p.Status = ProjectStatusSetup
	}
	if p.Settings.Visibility == "" {
		p.Settings.Visibility = "private"
	}
	if p.Settings.SyncIntervalMinutes == 0 {
		p.Settings.SyncIntervalMinutes = 60
	}
	if p.Stats == (ProjectStats{}) {
		p.Stats.HealthScore = 100
	}
	p.ID = NewID()
	p.Revision = 1
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	s.projects[p.ID] = p.clone()
	return nil
}

// GetProject retrieves a project by ID
func (s *Store) GetProject(id string) (*Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, &NotFoundError{Resource: "project", ID: id}
	}
	return p.clone(), nil
}

// ListProjects lists projects matching the filter, ordered by creation
func (s *Store) ListProjects(filter ProjectFilter) []*Project {
	var out []*Project
	for _, p := range s.projects {
		if filter.OrganizationID != "" && p.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p.clone())
	}
	sortByID(out, func(p *Project) string { return p.ID })
	return out
}

// UpdateProject replaces a project's mutable fields. The owning organization
// is immutable through update; a changed slug must stay unique within it.
func (s *Store) UpdateProject(p *Project, expectedRevision int64) (*Project, error) {
	current, ok := s.projects[p.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "project", ID: p.ID}
	}
	if p.OrganizationID != current.OrganizationID {
		return nil, &ImmutableFieldError{Resource: "project", Field: "organization_id"}
	}
	if err := checkRevision("project", p.ID, expectedRevision, current.Revision); err != nil {
		return nil, err
	}
	if p.Slug != current.Slug {
		for _, other := range s.projects {
			if other.ID != p.ID && other.OrganizationID == p.OrganizationID && other.Slug == p.Slug {
				return nil, &ConflictError{Resource: "project", Field: "slug", Value: p.Slug}
			}
		}
	}
	p.CreatedAt = current.CreatedAt
	p.Revision = current.Revision + 1
	p.UpdatedAt = s.now()
	s.projects[p.ID] = p.clone()
	return p.clone(), nil
}

// SetProjectStatus transitions a project's lifecycle status
func (s *Store) SetProjectStatus(id string, status ProjectStatus) (*Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, &NotFoundError{Resource: "project", ID: id}
	}
	p.Status = status
	p.Revision++
	p.UpdatedAt = s.now()
	return p.clone(), nil
}

// DeleteProject removes a project and its dependent members, invitations,
// connectors, sync jobs and activity. Irreversible.
func (s *Store) DeleteProject(id string) error {
	if _, ok := s.projects[id]; !ok {
		return &NotFoundError{Resource: "project", ID: id}
	}
	for mid, m := range s.projectMembers {
		if m.ProjectID == id {
			delete(s.projectMembers, mid)
		}
	}
	for iid, inv := range s.invitations {
		if inv.ProjectID == id {
			delete(s.invitations, iid)
		}
	}
	for cid, c := range s.connectors {
		if c.ProjectID == id {
			delete(s.connectors, cid)
		}
	}
	for jid, j := range s.syncJobs {
		if j.ProjectID == id {
			delete(s.syncJobs, jid)
		}
	}
	kept := s.activities[:0]
	for _, a := range s.activities {
		if a.ProjectID != id {
			kept = append(kept, a)
		}
	}
	s.activities = kept
	delete(s.projects, id)
	return nil
}

// --- Project members ---

// AddProjectMember adds a user to a project. Unique per (user, project).
func (s *Store) AddProjectMember(m *ProjectMember) error {
	if _, ok := s.projects[m.ProjectID]; !ok {
		return &NotFoundError{Resource: "project", ID: m.ProjectID}
	}
	if _, ok := s.users[m.UserID]; !ok {
		return &NotFoundError{Resource: "user", ID: m.UserID}
	}
	for _, existing := range s.projectMembers {
		if existing.ProjectID == m.ProjectID && existing.UserID == m.UserID {
			return &ConflictError{Resource: "member", Field: "user_id", Value: m.UserID}
		}
	}
	m.ID = NewID()
	m.Revision = 1
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt
	s.projectMembers[m.ID] = m.clone()
	return nil
}

// GetProjectMember retrieves a membership by project and user
func (s *Store) GetProjectMember(projectID, userID string) (*ProjectMember, error) {
	for _, m := range s.projectMembers {
		if m.ProjectID == projectID && m.UserID == userID {
			return m.clone(), nil
		}
	}
	return nil, &NotFoundError{Resource: "member", ID: userID}
}

// ListProjectMembers lists members of a project ordered by join time
func (s *Store) ListProjectMembers(projectID string) []*ProjectMember {
	var out []*ProjectMember
	for _, m := range s.projectMembers {
		if m.ProjectID == projectID {
			out = append(out, m.clone())
		}
	}
	sortByID(out, func(m *ProjectMember) string { return m.ID })
	return out
}

// UpdateProjectMember replaces a project member's role and custom grants.
// Project and user references are immutable.
func (s *Store) UpdateProjectMember(m *ProjectMember, expectedRevision int64) (*ProjectMember, error) {
	current, ok := s.projectMembers[m.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "member", ID: m.ID}
	}
	if m.ProjectID != current.ProjectID {
		return nil, &ImmutableFieldError{Resource: "member", Field: "project_id"}
	}
	if m.UserID != current.UserID {
		return nil, &ImmutableFieldError{Resource: "member", Field: "user_id"}
	}
	if err := checkRevision("member", m.ID, expectedRevision, current.Revision); err != nil {
		return nil, err
	}
	m.CreatedAt = current.CreatedAt
	m.Revision = current.Revision + 1
	m.UpdatedAt = s.now()
	s.projectMembers[m.ID] = m.clone()
	return m.clone(), nil
}

// RemoveProjectMember removes a user from a project
func (s *Store) RemoveProjectMember(projectID, userID string) error {
	for id, m := range s.projectMembers {
		if m.ProjectID == projectID && m.UserID == userID {
			delete(s.projectMembers, id)
			return nil
		}
	}
	return &NotFoundError{Resource: "member", ID: userID}
}

// --- Invitations ---

// CreateInvitation creates a pending project invitation with a fresh token
// and a 7 day expiry unless one is set
func (s *Store) CreateInvitation(inv *ProjectInvitation) error {
	p, ok := s.projects[inv.ProjectID]
	if !ok {
		return &NotFoundError{Resource: "project", ID: inv.ProjectID}
	}
	inv.OrganizationID = p.OrganizationID
	inv.ID = NewID()
	inv.Token = uuid.NewString()
	inv.Status = InvitationPending
	if inv.ExpiresAt.IsZero() {
		inv.ExpiresAt = s.now().Add(7 * 24 * time.Hour)
	}
	inv.Revision = 1
	inv.CreatedAt = s.now()
	inv.UpdatedAt = inv.CreatedAt
	s.invitations[inv.ID] = inv.clone()
	return nil
}

// GetInvitation retrieves an invitation by ID
func (s *Store) GetInvitation(id string) (*ProjectInvitation, error) {
	inv, ok := s.invitations[id]
	if !ok {
		return nil, &NotFoundError{Resource: "invitation", ID: id}
	}
	return inv.clone(), nil
}

// ListInvitations lists invitations for a project ordered by creation
func (s *Store) ListInvitations(projectID string) []*ProjectInvitation {
	var out []*ProjectInvitation
	for _, inv := range s.invitations {
		if inv.ProjectID == projectID {
			out = append(out, inv.clone())
		}
	}
	sortByID(out, func(i *ProjectInvitation) string { return i.ID })
	return out
}

// MarkInvitationAccepted transitions a pending invitation to accepted
func (s *Store) MarkInvitationAccepted(id string) (*ProjectInvitation, error) {
	inv, ok := s.invitations[id]
	if !ok {
		return nil, &NotFoundError{Resource: "invitation", ID: id}
	}
	if inv.Status != InvitationPending {
		return nil, &ConflictError{Resource: "invitation", Field: "status", Value: string(inv.Status)}
	}
	if s.now().After(inv.ExpiresAt) {
		inv.Status = InvitationExpired
		inv.Revision++
		inv.UpdatedAt = s.now()
		return nil, &ConflictError{Resource: "invitation", Field: "status", Value: string(InvitationExpired)}
	}
	inv.Status = InvitationAccepted
	inv.Revision++
	inv.UpdatedAt = s.now()
	return inv.clone(), nil
}

// RemoveInvitation deletes an invitation
func (s *Store) RemoveInvitation(id string) error {
	if _, ok := s.invitations[id]; !ok {
		return &NotFoundError{Resource: "invitation", ID: id}
	}
	delete(s.invitations, id)
	return nil
}

// ExpireInvitations marks pending invitations past their deadline as expired
// and returns how many were transitioned
func (s *Store) ExpireInvitations() int {
	now := s.now()
	n := 0
	for _, inv := range s.invitations {
		if inv.Status == InvitationPending && now.After(inv.ExpiresAt) {
			inv.Status = InvitationExpired
			inv.Revision++
			inv.UpdatedAt = now
			n++
		}
	}
	return n
}

// --- Activity ---

// ActivityFilter narrows ListActivity. Zero values match everything.
type ActivityFilter struct {
	Type     ActivityType
	Severity Severity
}

// AppendActivity appends an entry to a project's activity log. Entries are
// never mutated after creation.
func (s *Store) AppendActivity(a *ProjectActivity) error {
	p, ok := s.projects[a.ProjectID]
	if !ok {
		return &NotFoundError{Resource: "project", ID: a.ProjectID}
	}
	a.OrganizationID = p.OrganizationID
	a.ID = NewID()
	if a.Severity == "" {
		a.Severity = SeverityInfo
	}
	a.CreatedAt = s.now()
	s.activities = append(s.activities, a.clone())
	return nil
}

// ListActivity lists a project's activity, newest first
func (s *Store) ListActivity(projectID string, filter ActivityFilter) []*ProjectActivity {
	var out []*ProjectActivity
	for _, a := range s.activities {
		if a.ProjectID != projectID {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.Severity != "" && a.Severity != filter.Severity {
			continue
		}
		out = append(out, a.clone())
	}
	// Append-only log is in insertion order; reverse for newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
