package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/pkg/auth"
	"github.com/latticehq/lattice/pkg/store"
)

type fixture struct {
	store   *store.Store
	checker *Checker
	org     *store.Organization
	project *store.Project
	owner   *store.User
	viewer  *store.User
	outside *store.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewStore()

	owner := &store.User{Email: "owner@f.com", Name: "Owner"}
	require.NoError(t, s.CreateUser(owner))
	viewer := &store.User{Email: "viewer@f.com", Name: "Viewer"}
	require.NoError(t, s.CreateUser(viewer))
	outside := &store.User{Email: "outside@f.com", Name: "Outside"}
	require.NoError(t, s.CreateUser(outside))

	org := &store.Organization{Name: "Fixture Co"}
	require.NoError(t, s.CreateOrganization(org))
	require.NoError(t, s.AddOrgMember(&store.OrgMember{OrganizationID: org.ID, UserID: owner.ID, Role: auth.RoleOwner}))

	project := &store.Project{OrganizationID: org.ID, Name: "Graph"}
	require.NoError(t, s.CreateProject(project))
	require.NoError(t, s.AddProjectMember(&store.ProjectMember{ProjectID: project.ID, UserID: viewer.ID, Role: auth.RoleReadonly}))

	return &fixture{store: s, checker: NewChecker(s), org: org, project: project, owner: owner, viewer: viewer, outside: outside}
}

func TestCheckOrg(t *testing.T) {
	f := newFixture(t)

	t.Run("absent principal denies everything", func(t *testing.T) {
		d := f.checker.CheckOrg(nil, f.org.ID, auth.PermissionOrgRead)
		assert.Equal(t, DenyUnauthorized, d)
		assert.False(t, d.Allowed())
	})

	t.Run("non-member is not visible", func(t *testing.T) {
		d := f.checker.CheckOrg(f.outside, f.org.ID, auth.PermissionOrgRead)
		assert.Equal(t, DenyNotVisible, d)
	})

	t.Run("owner allowed", func(t *testing.T) {
		assert.Equal(t, Allow, f.checker.CheckOrg(f.owner, f.org.ID, auth.PermissionOrgDelete))
	})

	t.Run("unknown organization is not visible", func(t *testing.T) {
		assert.Equal(t, DenyNotVisible, f.checker.CheckOrg(f.owner, "missing", auth.PermissionOrgRead))
	})
}

func TestCheckProject(t *testing.T) {
	f := newFixture(t)

	t.Run("project member permission comes from role plus grants", func(t *testing.T) {
		assert.Equal(t, Allow, f.checker.CheckProject(f.viewer, f.project.ID, auth.PermissionProjectRead))
		assert.Equal(t, DenyForbidden, f.checker.CheckProject(f.viewer, f.project.ID, auth.PermissionProjectArchive))
	})

	t.Run("custom grants widen a readonly member", func(t *testing.T) {
		m, err := f.store.GetProjectMember(f.project.ID, f.viewer.ID)
		require.NoError(t, err)
		m.CustomPermissions = []auth.Permission{auth.PermissionActivityRead}
		_, err = f.store.UpdateProjectMember(m, 0)
		require.NoError(t, err)

		assert.Equal(t, Allow, f.checker.CheckProject(f.viewer, f.project.ID, auth.PermissionActivityRead))
	})

	t.Run("org membership is the fallback scope", func(t *testing.T) {
		assert.Equal(t, Allow, f.checker.CheckProject(f.owner, f.project.ID, auth.PermissionProjectArchive))
	})

	t.Run("no membership at all is not visible", func(t *testing.T) {
		assert.Equal(t, DenyNotVisible, f.checker.CheckProject(f.outside, f.project.ID, auth.PermissionProjectRead))
	})

	t.Run("unknown project is not visible", func(t *testing.T) {
		assert.Equal(t, DenyNotVisible, f.checker.CheckProject(f.owner, "missing", auth.PermissionProjectRead))
	})

	t.Run("absent principal denies", func(t *testing.T) {
		assert.Equal(t, DenyUnauthorized, f.checker.CheckProject(nil, f.project.ID, auth.PermissionProjectRead))
	})
}

func TestProjectVisible(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.checker.ProjectVisible(f.viewer, f.project.ID))
	assert.True(t, f.checker.ProjectVisible(f.owner, f.project.ID))
	assert.False(t, f.checker.ProjectVisible(f.outside, f.project.ID))
	assert.False(t, f.checker.ProjectVisible(nil, f.project.ID))
	assert.False(t, f.checker.ProjectVisible(f.owner, "missing"))
}
