package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/pkg/auth"
	"github.com/latticehq/lattice/pkg/store"
)

type projectFixture struct {
	*orgFixture
	project *store.Project
}

func newProjectFixture(t *testing.T) *projectFixture {
	f := newOrgFixture(t)
	f.login(f.owner.Email)
	resp := f.mustDo("POST", "/projects", map[string]interface{}{
		"organizationId": f.org.ID,
		"name":           "Platform",
	})
	return &projectFixture{orgFixture: f, project: resp.Data.(*store.Project)}
}

func TestCreateProjectDefaults(t *testing.T) {
	f := newProjectFixture(t)

	assert.Equal(t, "platform", f.project.Slug)
	assert.Equal(t, store.ProjectStatusSetup, f.project.Status)
	assert.Equal(t, "private", f.project.Settings.Visibility)
	assert.Equal(t, 60, f.project.Settings.SyncIntervalMinutes)
	assert.Equal(t, float64(100), f.project.Stats.HealthScore)

	// The creator is a project member with the owner role.
	member, err := f.srv.store.GetProjectMember(f.project.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleOwner, member.Role)

	// Creation lands in the activity log.
	resp := f.mustDo("GET", "/projects/"+f.project.ID+"/activity", nil)
	activity := resp.Data.([]*store.ProjectActivity)
	require.NotEmpty(t, activity)
	assert.Equal(t, store.ActivityProjectCreated, activity[len(activity)-1].Type)
}

func TestProjectVisibility(t *testing.T) {
	f := newProjectFixture(t)

	t.Run("outsider sees nothing", func(t *testing.T) {
		f.login(f.outsider.Email)
		_, apiErr := f.do("GET", "/projects/"+f.project.ID, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeNotFound, apiErr.Code)

		resp := f.mustDo("GET", "/projects", nil)
		assert.Empty(t, resp.Data.([]*store.Project))
	})

	t.Run("org member sees via org fallback", func(t *testing.T) {
		reader := f.addMember("rae@acme.test", "Rae", auth.RoleReadonly)
		f.login(reader.Email)
		resp := f.mustDo("GET", "/projects/"+f.project.ID, nil)
		assert.Equal(t, f.project.ID, resp.Data.(*store.Project).ID)
	})
}

func TestUpdateProjectConditional(t *testing.T) {
	f := newProjectFixture(t)

	resp := f.mustDo("PATCH", "/projects/"+f.project.ID, map[string]interface{}{
		"name":  "Platform Graph",
		"stats": map[string]interface{}{"node_count": 40, "edge_count": 95, "violation_count": 2, "health_score": 91.5},
	})
	updated := resp.Data.(*store.Project)
	assert.Equal(t, "Platform Graph", updated.Name)
	assert.Equal(t, 40, updated.Stats.NodeCount)
	assert.Equal(t, f.project.Revision+1, updated.Revision)

	t.Run("stale revision conflicts", func(t *testing.T) {
		_, apiErr := f.do("PATCH", "/projects/"+f.project.ID, map[string]interface{}{
			"name":             "Stale",
			"expectedRevision": f.project.Revision,
		})
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeConflict, apiErr.Code)
		details := apiErr.Details
		require.NotNil(t, details)
		assert.NotEmpty(t, details["expected_revision"])
	})

	t.Run("matching revision succeeds", func(t *testing.T) {
		resp := f.mustDo("PATCH", "/projects/"+f.project.ID, map[string]interface{}{
			"name":             "Platform Graph v2",
			"expectedRevision": updated.Revision,
		})
		assert.Equal(t, "Platform Graph v2", resp.Data.(*store.Project).Name)
	})

	t.Run("same patch applied twice is idempotent", func(t *testing.T) {
		patch := map[string]interface{}{
			"name":     "Converged",
			"settings": map[string]interface{}{"alertThreshold": 7},
		}
		first := f.mustDo("PATCH", "/projects/"+f.project.ID, patch).Data.(*store.Project)
		second := f.mustDo("PATCH", "/projects/"+f.project.ID, patch).Data.(*store.Project)
		assert.Equal(t, first.Name, second.Name)
		assert.Equal(t, first.Slug, second.Slug)
		assert.Equal(t, first.Settings, second.Settings)
		assert.Equal(t, first.Stats, second.Stats)
	})
}

func TestFinishSetupThroughUpdate(t *testing.T) {
	f := newProjectFixture(t)
	require.Equal(t, store.ProjectStatusSetup, f.project.Status)

	resp := f.mustDo("PATCH", "/projects/"+f.project.ID, map[string]interface{}{"status": "active"})
	assert.Equal(t, store.ProjectStatusActive, resp.Data.(*store.Project).Status)

	// Any other transition must go through archive/restore.
	_, apiErr := f.do("PATCH", "/projects/"+f.project.ID, map[string]interface{}{"status": "archived"})
	require.NotNil(t, apiErr)
	assert.Equal(t, CodeValidation, apiErr.Code)
}

func TestArchiveRestoreProject(t *testing.T) {
	f := newProjectFixture(t)

	resp := f.mustDo("POST", "/projects/"+f.project.ID+"/archive", nil)
	assert.Equal(t, store.ProjectStatusArchived, resp.Data.(*store.Project).Status)

	t.Run("archived projects still list", func(t *testing.T) {
		resp := f.mustDo("GET", "/projects", nil)
		assert.Len(t, resp.Data.([]*store.Project), 1)
	})

	t.Run("readonly cannot archive or restore", func(t *testing.T) {
		reader := f.addMember("rae@acme.test", "Rae", auth.RoleReadonly)
		f.login(reader.Email)
		_, apiErr := f.do("POST", "/projects/"+f.project.ID+"/restore", nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeForbidden, apiErr.Code)

		// The failed attempt changed nothing.
		resp := f.mustDo("GET", "/projects/"+f.project.ID, nil)
		assert.Equal(t, store.ProjectStatusArchived, resp.Data.(*store.Project).Status)
		f.login(f.owner.Email)
	})

	t.Run("restore", func(t *testing.T) {
		resp := f.mustDo("POST", "/projects/"+f.project.ID+"/restore", nil)
		assert.Equal(t, store.ProjectStatusActive, resp.Data.(*store.Project).Status)
	})
}

func TestProjectMemberManagement(t *testing.T) {
	f := newProjectFixture(t)
	engineer := f.addMember("eve@acme.test", "Eve", auth.RoleEngineer)

	resp := f.mustDo("POST", "/projects/"+f.project.ID+"/members", map[string]interface{}{
		"userId":            engineer.ID,
		"role":              "engineer",
		"customPermissions": []string{"project:archive"},
	})
	member := resp.Data.(*store.ProjectMember)
	assert.Equal(t, auth.RoleEngineer, member.Role)

	t.Run("custom grants widen access", func(t *testing.T) {
		// Engineers cannot normally archive, but the custom grant allows it.
		f.login(engineer.Email)
		resp := f.mustDo("POST", "/projects/"+f.project.ID+"/archive", nil)
		assert.Equal(t, store.ProjectStatusArchived, resp.Data.(*store.Project).Status)
		f.mustDo("POST", "/projects/"+f.project.ID+"/restore", nil)
		f.login(f.owner.Email)
	})

	t.Run("role and grants update", func(t *testing.T) {
		resp := f.mustDo("PATCH", "/projects/"+f.project.ID+"/members/"+engineer.ID, map[string]interface{}{
			"role":              "security",
			"customPermissions": []string{},
		})
		updated := resp.Data.(*store.ProjectMember)
		assert.Equal(t, auth.RoleSecurity, updated.Role)
		assert.Empty(t, updated.CustomPermissions)
	})

	t.Run("remove", func(t *testing.T) {
		f.mustDo("DELETE", "/projects/"+f.project.ID+"/members/"+engineer.ID, nil)
		_, err := f.srv.store.GetProjectMember(f.project.ID, engineer.ID)
		assert.Error(t, err)
	})
}

func TestInvitationFlow(t *testing.T) {
	f := newProjectFixture(t)

	resp := f.mustDo("POST", "/projects/"+f.project.ID+"/invitations", map[string]interface{}{
		"email": "newcomer@acme.test",
		"role":  "engineer",
	})
	inv := resp.Data.(*store.ProjectInvitation)
	assert.Equal(t, store.InvitationPending, inv.Status)
	assert.NotEmpty(t, inv.Token)

	t.Run("duplicate pending invitation conflicts", func(t *testing.T) {
		_, apiErr := f.do("POST", "/projects/"+f.project.ID+"/invitations", map[string]interface{}{
			"email": "newcomer@acme.test",
		})
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeConflict, apiErr.Code)
	})

	t.Run("wrong user cannot accept", func(t *testing.T) {
		f.login(f.outsider.Email)
		_, apiErr := f.do("POST", "/projects/"+f.project.ID+"/invitations/"+inv.ID+"/accept", nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeForbidden, apiErr.Code)
	})

	t.Run("invitee accepts and joins", func(t *testing.T) {
		f.register("newcomer@acme.test", "Newcomer", "Personal Space")
		resp := f.mustDo("POST", "/projects/"+f.project.ID+"/invitations/"+inv.ID+"/accept", nil)
		member := resp.Data.(*store.ProjectMember)
		assert.Equal(t, auth.RoleEngineer, member.Role)

		// Accepting twice is a conflict.
		_, apiErr := f.do("POST", "/projects/"+f.project.ID+"/invitations/"+inv.ID+"/accept", nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeConflict, apiErr.Code)
		f.login(f.owner.Email)
	})

	t.Run("existing member cannot consume an invitation", func(t *testing.T) {
		resp := f.mustDo("POST", "/projects/"+f.project.ID+"/invitations", map[string]interface{}{
			"email": f.owner.Email,
		})
		redundant := resp.Data.(*store.ProjectInvitation)

		_, apiErr := f.do("POST", "/projects/"+f.project.ID+"/invitations/"+redundant.ID+"/accept", nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeConflict, apiErr.Code)

		// The failed acceptance leaves the invitation open.
		kept, err := f.srv.store.GetInvitation(redundant.ID)
		require.NoError(t, err)
		assert.Equal(t, store.InvitationPending, kept.Status)
	})

	t.Run("revoke", func(t *testing.T) {
		resp := f.mustDo("POST", "/projects/"+f.project.ID+"/invitations", map[string]interface{}{
			"email": "later@acme.test",
		})
		second := resp.Data.(*store.ProjectInvitation)
		f.mustDo("DELETE", "/projects/"+f.project.ID+"/invitations/"+second.ID, nil)
		_, err := f.srv.store.GetInvitation(second.ID)
		assert.Error(t, err)
	})

	t.Run("invalid expiry rejected", func(t *testing.T) {
		_, apiErr := f.do("POST", "/projects/"+f.project.ID+"/invitations", map[string]interface{}{
			"email":     "soon@acme.test",
			"expiresIn": "yesterday",
		})
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeValidation, apiErr.Code)
	})
}

func TestActivityFilters(t *testing.T) {
	f := newProjectFixture(t)

	f.mustDo("POST", "/projects/"+f.project.ID+"/archive", nil)
	f.mustDo("POST", "/projects/"+f.project.ID+"/restore", nil)

	resp := f.mustDo("GET", "/projects/"+f.project.ID+"/activity", nil)
	all := resp.Data.([]*store.ProjectActivity)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, store.ActivityProjectRestored, all[0].Type)
	assert.Equal(t, store.ActivityProjectCreated, all[2].Type)

	resp, apiErr := f.doQuery("GET", "/projects/"+f.project.ID+"/activity", map[string]string{
		"severity": "warning",
	})
	require.Nil(t, apiErr)
	warnings := resp.Data.([]*store.ProjectActivity)
	require.Len(t, warnings, 1)
	assert.Equal(t, store.ActivityProjectArchived, warnings[0].Type)

	t.Run("readonly cannot read activity", func(t *testing.T) {
		reader := f.addMember("rae@acme.test", "Rae", auth.RoleReadonly)
		f.login(reader.Email)
		_, apiErr := f.do("GET", "/projects/"+f.project.ID+"/activity", nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeForbidden, apiErr.Code)
	})
}

func TestProjectLimit(t *testing.T) {
	f := newProjectFixture(t)

	// Free plan allows three projects; one exists already.
	for _, name := range []string{"Second", "Third"} {
		f.mustDo("POST", "/projects", map[string]interface{}{
			"organizationId": f.org.ID,
			"name":           name,
		})
	}
	_, apiErr := f.do("POST", "/projects", map[string]interface{}{
		"organizationId": f.org.ID,
		"name":           "Fourth",
	})
	require.NotNil(t, apiErr)
	assert.Equal(t, CodeConflict, apiErr.Code)
}
