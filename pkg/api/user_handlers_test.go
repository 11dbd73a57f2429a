package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticehq/lattice/pkg/session"
	"github.com/latticehq/lattice/pkg/store"
)

func TestUpdateMe(t *testing.T) {
	e := newTestEnv(t)
	e.register("ada@acme.test", "Ada", "Acme")

	resp := e.mustDo("PATCH", "/users/me", map[string]interface{}{"name": "Ada L."})
	updated := resp.Data.(*store.User)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.Equal(t, "ada@acme.test", updated.Email)

	t.Run("conditional update", func(t *testing.T) {
		_, apiErr := e.do("PATCH", "/users/me", map[string]interface{}{
			"name":             "Stale",
			"expectedRevision": 1,
		})
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeConflict, apiErr.Code)

		resp := e.mustDo("PATCH", "/users/me", map[string]interface{}{
			"name":             "Fresh",
			"expectedRevision": updated.Revision,
		})
		assert.Equal(t, "Fresh", resp.Data.(*store.User).Name)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, apiErr := e.do("PATCH", "/users/me", map[string]interface{}{"name": ""})
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeValidation, apiErr.Code)
	})

	t.Run("email conflict", func(t *testing.T) {
		e.register("grace@acme.test", "Grace", "Hopper Labs")
		_, apiErr := e.do("PATCH", "/users/me", map[string]interface{}{"email": "ada@acme.test"})
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeConflict, apiErr.Code)
	})
}

func TestPreferences(t *testing.T) {
	e := newTestEnv(t)
	reg := e.register("ada@acme.test", "Ada", "Acme")

	resp := e.mustDo("GET", "/users/me/preferences", nil)
	prefs := resp.Data.(store.UserPreferences)
	assert.Equal(t, "system", prefs.Theme)
	assert.Equal(t, "executive", prefs.DefaultDashboardView)

	resp = e.mustDo("PUT", "/users/me/preferences", map[string]interface{}{
		"theme":                 "dark",
		"defaultDashboardView":  "architect",
		"currentOrganizationId": reg.Organization.ID,
	})
	prefs = resp.Data.(store.UserPreferences)
	assert.Equal(t, "dark", prefs.Theme)
	assert.Equal(t, "architect", prefs.DefaultDashboardView)
	assert.Equal(t, reg.Organization.ID, prefs.CurrentOrganizationID)

	t.Run("unmerged fields survive", func(t *testing.T) {
		resp := e.mustDo("PUT", "/users/me/preferences", map[string]interface{}{"theme": "light"})
		prefs := resp.Data.(store.UserPreferences)
		assert.Equal(t, "light", prefs.Theme)
		assert.Equal(t, "architect", prefs.DefaultDashboardView)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		_, apiErr := e.do("PUT", "/users/me/preferences", map[string]interface{}{"theme": "sepia"})
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeValidation, apiErr.Code)

		_, apiErr = e.do("PUT", "/users/me/preferences", map[string]interface{}{"defaultDashboardView": "sprawling"})
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeValidation, apiErr.Code)
	})

	t.Run("workspace context must be visible", func(t *testing.T) {
		_, apiErr := e.do("PUT", "/users/me/preferences", map[string]interface{}{
			"currentOrganizationId": store.NewID(),
		})
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeNotFound, apiErr.Code)

		_, apiErr = e.do("PUT", "/users/me/preferences", map[string]interface{}{
			"currentProjectId": store.NewID(),
		})
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeNotFound, apiErr.Code)
	})
}

func TestSessions(t *testing.T) {
	e := newTestEnv(t)
	reg := e.register("ada@acme.test", "Ada", "Acme")
	e.login("ada@acme.test") // second device session

	resp := e.mustDo("GET", "/users/me/sessions", nil)
	sessions := resp.Data.([]*session.Session)
	require.Len(t, sessions, 2)
	for _, s := range sessions {
		assert.Empty(t, s.Token, "listed sessions must redact tokens")
	}

	t.Run("revoke own non-active session", func(t *testing.T) {
		e.mustDo("DELETE", "/users/me/sessions/"+reg.Session.ID, nil)
		resp := e.mustDo("GET", "/users/me/sessions", nil)
		assert.Len(t, resp.Data.([]*session.Session), 1)
	})

	t.Run("revoke unknown session", func(t *testing.T) {
		_, apiErr := e.do("DELETE", "/users/me/sessions/"+store.NewID(), nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeNotFound, apiErr.Code)
	})

	t.Run("revoking another user's session is forbidden", func(t *testing.T) {
		resp := e.mustDo("GET", "/users/me/sessions", nil)
		adaSession := resp.Data.([]*session.Session)[0]

		e.register("grace@acme.test", "Grace", "Hopper Labs")
		_, apiErr := e.do("DELETE", "/users/me/sessions/"+adaSession.ID, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, CodeForbidden, apiErr.Code)
	})
}
