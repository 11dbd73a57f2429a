package api

import (
	"github.com/latticehq/lattice/pkg/auth"
	"github.com/latticehq/lattice/pkg/session"
	"github.com/latticehq/lattice/pkg/store"
)

type registerRequest struct {
	Email            string `json:"email"`
	Name             string `json:"name"`
	OrganizationName string `json:"organizationName"`
	Device           string `json:"device"`
}

type registerResponse struct {
	User         *store.User         `json:"user"`
	Organization *store.Organization `json:"organization"`
	Session      *session.Session    `json:"session"`
}

// handleRegister creates a user, their first organization and an owner
// membership as one unit, then logs the user in. Conflicts are detected
// before anything is written so a failed registration leaves no partial
// state behind.
func (c *requestContext) handleRegister() (*Response, *Error) {
	var body registerRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	if body.Email == "" {
		return nil, ErrValidation("email is required")
	}
	if body.Name == "" {
		return nil, ErrValidation("name is required")
	}
	if body.OrganizationName == "" {
		return nil, ErrValidation("organizationName is required")
	}

	if _, err := c.srv.store.GetUserByEmail(body.Email); err == nil {
		return nil, ErrConflict("email already registered", map[string]string{"field": "email", "value": body.Email})
	}
	slug := store.Slugify(body.OrganizationName)
	if _, err := c.srv.store.GetOrganizationBySlug(slug); err == nil {
		return nil, ErrConflict("organization slug already taken", map[string]string{"field": "slug", "value": slug})
	}

	user := &store.User{Email: body.Email, Name: body.Name}
	if err := c.srv.store.CreateUser(user); err != nil {
		return nil, mapStoreError(err)
	}
	org := &store.Organization{Name: body.OrganizationName}
	if err := c.srv.store.CreateOrganization(org); err != nil {
		return nil, mapStoreError(err)
	}
	member := &store.OrgMember{OrganizationID: org.ID, UserID: user.ID, Role: auth.RoleOwner}
	if err := c.srv.store.AddOrgMember(member); err != nil {
		return nil, mapStoreError(err)
	}

	sess := c.srv.sessions.Login(user.ID, body.Device)
	c.srv.logger.WithFields(map[string]interface{}{
		"user_id": user.ID,
		"org_id":  org.ID,
	}).Info("user registered")

	return ok(&registerResponse{User: user, Organization: org, Session: sess}), nil
}

type loginRequest struct {
	Email  string `json:"email"`
	Device string `json:"device"`
}

type loginResponse struct {
	User    *store.User      `json:"user"`
	Session *session.Session `json:"session"`
}

// handleLogin resolves a user by email and makes a fresh device session the
// active principal
func (c *requestContext) handleLogin() (*Response, *Error) {
	var body loginRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	if body.Email == "" {
		return nil, ErrValidation("email is required")
	}
	user, err := c.srv.store.GetUserByEmail(body.Email)
	if err != nil {
		return nil, ErrNotFound("user", body.Email)
	}
	sess := c.srv.sessions.Login(user.ID, body.Device)
	return ok(&loginResponse{User: user, Session: sess}), nil
}

// handleLogout drops the active session. Logging out while unauthenticated
// is an unauthorized failure, not a no-op.
func (c *requestContext) handleLogout() (*Response, *Error) {
	if _, err := c.requirePrincipal(); err != nil {
		return nil, err
	}
	c.srv.sessions.Logout()
	return ok(map[string]string{"status": "logged_out"}), nil
}

// handleRefresh rotates the active session's token, preserving its identity
func (c *requestContext) handleRefresh() (*Response, *Error) {
	sess, err := c.srv.sessions.Refresh()
	if err != nil {
		return nil, ErrUnauthorized()
	}
	return ok(sess), nil
}
