package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/pkg/auth"
	"github.com/latticehq/lattice/pkg/store"
)

func TestTeamLifecycle(t *testing.T) {
	f := newOrgFixture(t)
	f.login(f.owner.Email)

	resp := f.mustDo("POST", "/organizations/"+f.org.ID+"/teams", map[string]interface{}{
		"name":   "Platform",
		"leadId": f.owner.ID,
	})
	team := resp.Data.(*store.Team)
	assert.Equal(t, "Platform", team.Name)
	assert.Equal(t, f.owner.ID, team.LeadID)

	t.Run("fresh team lists with zero members", func(t *testing.T) {
		resp := f.mustDo("GET", "/organizations/"+f.org.ID+"/teams", nil)
		teams := resp.Data.([]*store.Team)
		require.Len(t, teams, 1)
		assert.Equal(t, 0, teams[0].MemberCount)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		_, apiErr := f.do("POST", "/organizations/"+f.org.ID+"/teams", map[string]interface{}{"name": "Platform"})
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeConflict, apiErr.Code)
	})

	t.Run("lead must be an org member", func(t *testing.T) {
		_, apiErr := f.do("POST", "/organizations/"+f.org.ID+"/teams", map[string]interface{}{
			"name":   "Rogue",
			"leadId": f.outsider.ID,
		})
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeValidation, apiErr.Code)
	})

	t.Run("rename", func(t *testing.T) {
		resp := f.mustDo("PATCH", "/organizations/"+f.org.ID+"/teams/"+team.ID, map[string]interface{}{
			"name": "Platform Eng",
		})
		assert.Equal(t, "Platform Eng", resp.Data.(*store.Team).Name)
	})

	t.Run("team under the wrong org is hidden", func(t *testing.T) {
		f.login(f.outsider.Email)
		otherOrg := f.srv.store.ListOrganizationsForUser(f.outsider.ID)[0]
		_, apiErr := f.do("GET", "/organizations/"+otherOrg.ID+"/teams/"+team.ID, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeNotFound, apiErr.Code)
		f.login(f.owner.Email)
	})

	t.Run("delete", func(t *testing.T) {
		f.mustDo("DELETE", "/organizations/"+f.org.ID+"/teams/"+team.ID, nil)
		_, apiErr := f.do("GET", "/organizations/"+f.org.ID+"/teams/"+team.ID, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeNotFound, apiErr.Code)
	})
}

func TestTeamMembership(t *testing.T) {
	f := newOrgFixture(t)
	engineer := f.addMember("eve@acme.test", "Eve", auth.RoleEngineer)

	resp := f.mustDo("POST", "/organizations/"+f.org.ID+"/teams", map[string]interface{}{"name": "Core"})
	team := resp.Data.(*store.Team)

	f.mustDo("POST", "/organizations/"+f.org.ID+"/teams/"+team.ID+"/members", map[string]interface{}{
		"userId": engineer.ID,
	})

	t.Run("member count is derived", func(t *testing.T) {
		resp := f.mustDo("GET", "/organizations/"+f.org.ID+"/teams/"+team.ID, nil)
		assert.Equal(t, 1, resp.Data.(*store.Team).MemberCount)
	})

	t.Run("non org members cannot join", func(t *testing.T) {
		_, apiErr := f.do("POST", "/organizations/"+f.org.ID+"/teams/"+team.ID+"/members", map[string]interface{}{
			"userId": f.outsider.ID,
		})
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeValidation, apiErr.Code)
	})

	t.Run("engineer cannot manage teams", func(t *testing.T) {
		f.login(engineer.Email)
		_, apiErr := f.do("DELETE", "/organizations/"+f.org.ID+"/teams/"+team.ID+"/members/"+engineer.ID, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeForbidden, apiErr.Code)
		f.login(f.owner.Email)
	})

	t.Run("remove member", func(t *testing.T) {
		f.mustDo("DELETE", "/organizations/"+f.org.ID+"/teams/"+team.ID+"/members/"+engineer.ID, nil)
		resp := f.mustDo("GET", "/organizations/"+f.org.ID+"/teams/"+team.ID+"/members", nil)
		assert.Empty(t, resp.Data.([]*store.TeamMember))
	})
}
