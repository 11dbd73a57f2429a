package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/pkg/auth"
)

func TestCreateProject(t *testing.T) {
	s := newTestStore(t)
	o := mustOrg(t, s, "Proj Co")

	t.Run("assigns defaults", func(t *testing.T) {
		p := mustProject(t, s, o.ID, "Payment Graph")
		assert.Equal(t, "payment-graph", p.Slug)
		assert.Equal(t, ProjectStatusSetup, p.Status)
		assert.Equal(t, "private", p.Settings.Visibility)
		assert.Equal(t, 60, p.Settings.SyncIntervalMinutes)
		assert.Equal(t, float64(100), p.Stats.HealthScore)
	})

	t.Run("seeded stats keep a zero health score", func(t *testing.T) {
		p := &Project{
			OrganizationID: o.ID,
			Name:           "Seeded Graph",
			Stats:          ProjectStats{NodeCount: 12, HealthScore: 0},
		}
		require.NoError(t, s.CreateProject(p))
		assert.Equal(t, float64(0), p.Stats.HealthScore)
		assert.Equal(t, 12, p.Stats.NodeCount)
	})

	t.Run("slug unique within organization", func(t *testing.T) {
		err := s.CreateProject(&Project{OrganizationID: o.ID, Name: "Payment Graph"})
		require.Error(t, err)
		assert.True(t, IsConflict(err))
	})

	t.Run("same slug allowed in another organization", func(t *testing.T) {
		other := mustOrg(t, s, "Other Co")
		p := &Project{OrganizationID: other.ID, Name: "Payment Graph"}
		require.NoError(t, s.CreateProject(p))
	})

	t.Run("unknown organization is not found", func(t *testing.T) {
		err := s.CreateProject(&Project{OrganizationID: "missing", Name: "Orphan"})
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("project limit enforced", func(t *testing.T) {
		small := mustOrg(t, s, "Tiny Co")
		for i, name := range []string{"One", "Two", "Three"} {
			_ = i
			mustProject(t, s, small.ID, name)
		}
		err := s.CreateProject(&Project{OrganizationID: small.ID, Name: "Four"})
		require.Error(t, err)
		assert.True(t, IsLimitExceeded(err))
	})
}

func TestListProjects(t *testing.T) {
	s := newTestStore(t)
	a := mustOrg(t, s, "List A")
	b := mustOrg(t, s, "List B")
	p1 := mustProject(t, s, a.ID, "Alpha")
	mustProject(t, s, a.ID, "Beta")
	mustProject(t, s, b.ID, "Gamma")
	_, err := s.SetProjectStatus(p1.ID, ProjectStatusArchived)
	require.NoError(t, err)

	t.Run("filter by organization", func(t *testing.T) {
		assert.Len(t, s.ListProjects(ProjectFilter{OrganizationID: a.ID}), 2)
		assert.Len(t, s.ListProjects(ProjectFilter{OrganizationID: b.ID}), 1)
	})

	t.Run("filter by status", func(t *testing.T) {
		archived := s.ListProjects(ProjectFilter{OrganizationID: a.ID, Status: ProjectStatusArchived})
		require.Len(t, archived, 1)
		assert.Equal(t, p1.ID, archived[0].ID)
	})

	t.Run("no filter lists everything in creation order", func(t *testing.T) {
		all := s.ListProjects(ProjectFilter{})
		require.Len(t, all, 3)
		assert.Equal(t, p1.ID, all[0].ID)
	})
}

func TestUpdateProject(t *testing.T) {
	s := newTestStore(t)
	o := mustOrg(t, s, "Update Co")
	p := mustProject(t, s, o.ID, "Mutable")

	t.Run("replaces fields and bumps revision", func(t *testing.T) {
		p.Name = "Renamed"
		p.Stats.NodeCount = 42
		updated, err := s.UpdateProject(p, 0)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, 42, updated.Stats.NodeCount)
		assert.Equal(t, int64(2), updated.Revision)
	})

	t.Run("owning organization is immutable", func(t *testing.T) {
		other := mustOrg(t, s, "Elsewhere Co")
		moved := &Project{ID: p.ID, OrganizationID: other.ID, Name: "Renamed", Slug: p.Slug}
		_, err := s.UpdateProject(moved, 0)
		require.Error(t, err)
		var immutable *ImmutableFieldError
		require.ErrorAs(t, err, &immutable)
		assert.Equal(t, "organization_id", immutable.Field)
	})

	t.Run("stale revision conflicts", func(t *testing.T) {
		stale := &Project{ID: p.ID, OrganizationID: o.ID, Name: "Stale", Slug: p.Slug}
		_, err := s.UpdateProject(stale, 1)
		require.Error(t, err)
		assert.True(t, IsRevisionMismatch(err))
	})
}

func TestArchiveRestore(t *testing.T) {
	s := newTestStore(t)
	o := mustOrg(t, s, "Archive Co")
	p := mustProject(t, s, o.ID, "Cycler")

	before := len(s.ListProjects(ProjectFilter{OrganizationID: o.ID}))

	archived, err := s.SetProjectStatus(p.ID, ProjectStatusArchived)
	require.NoError(t, err)
	assert.Equal(t, ProjectStatusArchived, archived.Status)

	restored, err := s.SetProjectStatus(p.ID, ProjectStatusActive)
	require.NoError(t, err)
	assert.Equal(t, ProjectStatusActive, restored.Status)

	// Archive/restore never changes the organization's project count.
	assert.Equal(t, before, len(s.ListProjects(ProjectFilter{OrganizationID: o.ID})))
}

func TestDeleteProjectCascades(t *testing.T) {
	s := newTestStore(t)
	o := mustOrg(t, s, "Cascade Co")
	u := mustUser(t, s, "member@c.com", "Member")
	p := mustProject(t, s, o.ID, "Doomed")
	require.NoError(t, s.AddProjectMember(&ProjectMember{ProjectID: p.ID, UserID: u.ID, Role: auth.RoleEngineer}))
	require.NoError(t, s.CreateInvitation(&ProjectInvitation{ProjectID: p.ID, Email: "new@c.com", Role: auth.RoleReadonly}))
	c := &Connector{ProjectID: p.ID, Name: "GitHub", Kind: "github"}
	require.NoError(t, s.CreateConnector(c))
	job, err := s.StartSyncJob(c.ID)
	require.NoError(t, err)
	require.NoError(t, s.AppendActivity(&ProjectActivity{ProjectID: p.ID, Type: ActivityProjectCreated}))

	require.NoError(t, s.DeleteProject(p.ID))

	_, err = s.GetProject(p.ID)
	assert.True(t, IsNotFound(err))
	_, err = s.GetProjectMember(p.ID, u.ID)
	assert.True(t, IsNotFound(err))
	_, err = s.GetConnector(c.ID)
	assert.True(t, IsNotFound(err))
	_, err = s.GetSyncJob(job.ID)
	assert.True(t, IsNotFound(err))
	assert.Empty(t, s.ListInvitations(p.ID))
	assert.Empty(t, s.ListActivity(p.ID, ActivityFilter{}))
}

func TestProjectMembers(t *testing.T) {
	s := newTestStore(t)
	o := mustOrg(t, s, "PM Co")
	p := mustProject(t, s, o.ID, "Graph")
	u := mustUser(t, s, "pm@x.com", "PM User")

	t.Run("add with custom permissions", func(t *testing.T) {
		m := &ProjectMember{
			ProjectID:         p.ID,
			UserID:            u.ID,
			Role:              auth.RoleReadonly,
			CustomPermissions: []auth.Permission{auth.PermissionActivityRead},
		}
		require.NoError(t, s.AddProjectMember(m))
		assert.Equal(t, int64(1), m.Revision)
	})

	t.Run("duplicate membership conflicts", func(t *testing.T) {
		err := s.AddProjectMember(&ProjectMember{ProjectID: p.ID, UserID: u.ID, Role: auth.RoleAdmin})
		require.Error(t, err)
		assert.True(t, IsConflict(err))
	})

	t.Run("update role keeps references immutable", func(t *testing.T) {
		m, err := s.GetProjectMember(p.ID, u.ID)
		require.NoError(t, err)
		m.Role = auth.RoleEngineer
		updated, err := s.UpdateProjectMember(m, 0)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleEngineer, updated.Role)

		moved := updated.clone()
		moved.UserID = "someone-else"
		_, err = s.UpdateProjectMember(moved, 0)
		require.Error(t, err)
		var immutable *ImmutableFieldError
		assert.ErrorAs(t, err, &immutable)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, s.RemoveProjectMember(p.ID, u.ID))
		_, err := s.GetProjectMember(p.ID, u.ID)
		assert.True(t, IsNotFound(err))
	})
}

func TestInvitations(t *testing.T) {
	s := newTestStore(t)
	o := mustOrg(t, s, "Invite Co")
	p := mustProject(t, s, o.ID, "Graph")

	t.Run("create sets token, pending status and expiry", func(t *testing.T) {
		inv := &ProjectInvitation{ProjectID: p.ID, Email: "new@i.com", Role: auth.RoleEngineer}
		require.NoError(t, s.CreateInvitation(inv))
		assert.Equal(t, InvitationPending, inv.Status)
		assert.Equal(t, o.ID, inv.OrganizationID)
		assert.NotEmpty(t, inv.Token)
		assert.True(t, inv.ExpiresAt.After(inv.CreatedAt))
	})

	t.Run("accept transitions pending to accepted", func(t *testing.T) {
		inv := &ProjectInvitation{ProjectID: p.ID, Email: "accept@i.com", Role: auth.RoleReadonly}
		require.NoError(t, s.CreateInvitation(inv))
		accepted, err := s.MarkInvitationAccepted(inv.ID)
		require.NoError(t, err)
		assert.Equal(t, InvitationAccepted, accepted.Status)

		_, err = s.MarkInvitationAccepted(inv.ID)
		require.Error(t, err)
		assert.True(t, IsConflict(err))
	})

	t.Run("accept after expiry conflicts", func(t *testing.T) {
		inv := &ProjectInvitation{ProjectID: p.ID, Email: "late@i.com", Role: auth.RoleReadonly, ExpiresAt: s.now().Add(-time.Hour)}
		require.NoError(t, s.CreateInvitation(inv))
		_, err := s.MarkInvitationAccepted(inv.ID)
		require.Error(t, err)
		assert.True(t, IsConflict(err))
	})

	t.Run("janitor expires stale invitations", func(t *testing.T) {
		inv := &ProjectInvitation{ProjectID: p.ID, Email: "stale@i.com", Role: auth.RoleReadonly, ExpiresAt: s.now().Add(-time.Minute)}
		require.NoError(t, s.CreateInvitation(inv))
		n := s.ExpireInvitations()
		assert.GreaterOrEqual(t, n, 1)
		got, err := s.GetInvitation(inv.ID)
		require.NoError(t, err)
		assert.Equal(t, InvitationExpired, got.Status)
	})
}

func TestActivityLog(t *testing.T) {
	s := newTestStore(t)
	o := mustOrg(t, s, "Activity Co")
	p := mustProject(t, s, o.ID, "Graph")

	require.NoError(t, s.AppendActivity(&ProjectActivity{ProjectID: p.ID, Type: ActivityProjectCreated}))
	require.NoError(t, s.AppendActivity(&ProjectActivity{ProjectID: p.ID, Type: ActivityPolicyViolation, Severity: SeverityCritical}))
	require.NoError(t, s.AppendActivity(&ProjectActivity{ProjectID: p.ID, Type: ActivityMemberInvited}))

	t.Run("newest first", func(t *testing.T) {
		entries := s.ListActivity(p.ID, ActivityFilter{})
		require.Len(t, entries, 3)
		assert.Equal(t, ActivityMemberInvited, entries[0].Type)
		assert.Equal(t, ActivityProjectCreated, entries[2].Type)
	})

	t.Run("defaults severity to info", func(t *testing.T) {
		entries := s.ListActivity(p.ID, ActivityFilter{Type: ActivityProjectCreated})
		require.Len(t, entries, 1)
		assert.Equal(t, SeverityInfo, entries[0].Severity)
	})

	t.Run("filter by severity", func(t *testing.T) {
		critical := s.ListActivity(p.ID, ActivityFilter{Severity: SeverityCritical})
		require.Len(t, critical, 1)
		assert.Equal(t, ActivityPolicyViolation, critical[0].Type)
	})

	t.Run("unknown project rejected", func(t *testing.T) {
		err := s.AppendActivity(&ProjectActivity{ProjectID: "missing", Type: ActivityMemberJoined})
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}
