package api

import (
	"errors"

	"github.com/latticehq/lattice/pkg/session"
)

// handleGetMe returns the authenticated principal
func (c *requestContext) handleGetMe() (*Response, *Error) {
	user, err := c.requirePrincipal()
	if err != nil {
		return nil, err
	}
	return ok(user), nil
}

type updateUserRequest struct {
	Name             *string `json:"name"`
	Email            *string `json:"email"`
	ExpectedRevision int64   `json:"expectedRevision"`
}

// handleUpdateMe applies a partial update to the principal's profile.
// Absent fields are left untouched; expectedRevision makes the update
// conditional.
func (c *requestContext) handleUpdateMe() (*Response, *Error) {
	user, apiErr := c.requirePrincipal()
	if apiErr != nil {
		return nil, apiErr
	}
	var body updateUserRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	if body.Name != nil {
		if *body.Name == "" {
			return nil, ErrValidation("name must not be empty")
		}
		user.Name = *body.Name
	}
	if body.Email != nil {
		if *body.Email == "" {
			return nil, ErrValidation("email must not be empty")
		}
		user.Email = *body.Email
	}
	updated, err := c.srv.store.UpdateUser(user, body.ExpectedRevision)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return ok(updated), nil
}

// handleGetPreferences returns the principal's preferences
func (c *requestContext) handleGetPreferences() (*Response, *Error) {
	user, err := c.requirePrincipal()
	if err != nil {
		return nil, err
	}
	return ok(user.Preferences), nil
}

type updatePreferencesRequest struct {
	Theme                 *string `json:"theme"`
	DefaultDashboardView  *string `json:"defaultDashboardView"`
	EmailNotifications    *bool   `json:"emailNotifications"`
	CurrentOrganizationID *string `json:"currentOrganizationId"`
	CurrentProjectID      *string `json:"currentProjectId"`
}

// handlePutPreferences merges preference fields into the principal's
// preferences. Workspace context fields are validated: the current
// organization and project must be visible to the principal.
func (c *requestContext) handlePutPreferences() (*Response, *Error) {
	user, apiErr := c.requirePrincipal()
	if apiErr != nil {
		return nil, apiErr
	}
	var body updatePreferencesRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	prefs := user.Preferences
	if body.Theme != nil {
		switch *body.Theme {
		case "light", "dark", "system":
		default:
			return nil, ErrValidation("theme must be one of light, dark, system")
		}
		prefs.Theme = *body.Theme
	}
	if body.DefaultDashboardView != nil {
		switch *body.DefaultDashboardView {
		case "executive", "architect", "security":
		default:
			return nil, ErrValidation("defaultDashboardView must be one of executive, architect, security")
		}
		prefs.DefaultDashboardView = *body.DefaultDashboardView
	}
	if body.EmailNotifications != nil {
		prefs.EmailNotifications = *body.EmailNotifications
	}
	if body.CurrentOrganizationID != nil {
		if *body.CurrentOrganizationID != "" {
			if _, err := c.srv.store.GetOrgMember(*body.CurrentOrganizationID, user.ID); err != nil {
				return nil, ErrNotFound("organization", *body.CurrentOrganizationID)
			}
		}
		prefs.CurrentOrganizationID = *body.CurrentOrganizationID
	}
	if body.CurrentProjectID != nil {
		if *body.CurrentProjectID != "" && !c.srv.checker.ProjectVisible(user, *body.CurrentProjectID) {
			return nil, ErrNotFound("project", *body.CurrentProjectID)
		}
		prefs.CurrentProjectID = *body.CurrentProjectID
	}

	user.Preferences = prefs
	updated, err := c.srv.store.UpdateUser(user, 0)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return ok(updated.Preferences), nil
}

// handleListSessions lists the principal's device sessions with tokens
// redacted
func (c *requestContext) handleListSessions() (*Response, *Error) {
	user, err := c.requirePrincipal()
	if err != nil {
		return nil, err
	}
	sessions := c.srv.sessions.List(user.ID)
	if sessions == nil {
		sessions = []*session.Session{}
	}
	return list(sessions, len(sessions), 0), nil
}

// handleRevokeSession removes one of the principal's device sessions.
// Revoking another user's session is forbidden, not hidden: session
// identities carry no tenant visibility rules.
func (c *requestContext) handleRevokeSession() (*Response, *Error) {
	user, apiErr := c.requirePrincipal()
	if apiErr != nil {
		return nil, apiErr
	}
	sessionID := c.param("sessionId")
	if err := c.srv.sessions.Revoke(user.ID, sessionID); err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			return nil, ErrNotFound("session", sessionID)
		case errors.Is(err, session.ErrNotSessionOwner):
			return nil, ErrForbidden("session belongs to another user")
		default:
			return nil, ErrValidation(err.Error())
		}
	}
	return ok(map[string]string{"status": "revoked"}), nil
}
