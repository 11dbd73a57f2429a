package api

import (
	"github.com/latticehq/lattice/pkg/auth"
	"github.com/latticehq/lattice/pkg/store"
)

// handleListOrgs lists the organizations the principal belongs to
func (c *requestContext) handleListOrgs() (*Response, *Error) {
	user, err := c.requirePrincipal()
	if err != nil {
		return nil, err
	}
	orgs := c.srv.store.ListOrganizationsForUser(user.ID)
	if orgs == nil {
		orgs = []*store.Organization{}
	}
	return list(orgs, len(orgs), 0), nil
}

type createOrgRequest struct {
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	PlanTier store.PlanTier `json:"planTier"`
}

// handleCreateOrg creates an organization with the principal as its owner
func (c *requestContext) handleCreateOrg() (*Response, *Error) {
	user, apiErr := c.requirePrincipal()
	if apiErr != nil {
		return nil, apiErr
	}
	var body createOrgRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	if body.Name == "" {
		return nil, ErrValidation("name is required")
	}
	org := &store.Organization{Name: body.Name, Slug: body.Slug, PlanTier: body.PlanTier}
	if err := c.srv.store.CreateOrganization(org); err != nil {
		return nil, mapStoreError(err)
	}
	member := &store.OrgMember{OrganizationID: org.ID, UserID: user.ID, Role: auth.RoleOwner}
	if err := c.srv.store.AddOrgMember(member); err != nil {
		return nil, mapStoreError(err)
	}
	return ok(org), nil
}

// handleGetOrg returns one organization the principal can see
func (c *requestContext) handleGetOrg() (*Response, *Error) {
	orgID := c.param("orgId")
	if err := c.guardOrg(orgID, auth.PermissionOrgRead); err != nil {
		return nil, err
	}
	org, err := c.srv.store.GetOrganization(orgID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return ok(org), nil
}

type updateOrgRequest struct {
	Name             *string           `json:"name"`
	Slug             *string           `json:"slug"`
	PlanTier         *store.PlanTier   `json:"planTier"`
	Settings         *orgSettingsPatch `json:"settings"`
	Limits           *store.OrgLimits  `json:"limits"`
	ExpectedRevision int64             `json:"expectedRevision"`
}

type orgSettingsPatch struct {
	DefaultRole        *auth.Role `json:"defaultRole"`
	SSOEnabled         *bool      `json:"ssoEnabled"`
	AuditRetentionDays *int       `json:"auditRetentionDays"`
}

// handleUpdateOrg applies a partial update to an organization. A plan tier
// change resets limits to the new tier's defaults unless explicit limits
// accompany it.
func (c *requestContext) handleUpdateOrg() (*Response, *Error) {
	orgID := c.param("orgId")
	if err := c.guardOrg(orgID, auth.PermissionOrgManage); err != nil {
		return nil, err
	}
	var body updateOrgRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	org, err := c.srv.store.GetOrganization(orgID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if body.Name != nil {
		if *body.Name == "" {
			return nil, ErrValidation("name must not be empty")
		}
		org.Name = *body.Name
	}
	if body.Slug != nil {
		if *body.Slug == "" {
			return nil, ErrValidation("slug must not be empty")
		}
		org.Slug = *body.Slug
	}
	if body.PlanTier != nil {
		switch *body.PlanTier {
		case store.PlanFree, store.PlanPro, store.PlanEnterprise:
		default:
			return nil, ErrValidation("planTier must be one of free, pro, enterprise")
		}
		org.PlanTier = *body.PlanTier
		org.Limits = store.DefaultLimits(*body.PlanTier)
	}
	if body.Settings != nil {
		if body.Settings.DefaultRole != nil {
			if !body.Settings.DefaultRole.Valid() {
				return nil, ErrValidation("settings.defaultRole is not a recognized role")
			}
			org.Settings.DefaultRole = *body.Settings.DefaultRole
		}
		if body.Settings.SSOEnabled != nil {
			org.Settings.SSOEnabled = *body.Settings.SSOEnabled
		}
		if body.Settings.AuditRetentionDays != nil {
			if *body.Settings.AuditRetentionDays <= 0 {
				return nil, ErrValidation("settings.auditRetentionDays must be positive")
			}
			org.Settings.AuditRetentionDays = *body.Settings.AuditRetentionDays
		}
	}
	if body.Limits != nil {
		org.Limits = *body.Limits
	}
	updated, err := c.srv.store.UpdateOrganization(org, body.ExpectedRevision)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return ok(updated), nil
}

// handleDeleteOrg removes an organization. Deletion requires the owner-only
// permission and is rejected while projects remain.
func (c *requestContext) handleDeleteOrg() (*Response, *Error) {
	orgID := c.param("orgId")
	if err := c.guardOrg(orgID, auth.PermissionOrgDelete); err != nil {
		return nil, err
	}
	if err := c.srv.store.DeleteOrganization(orgID); err != nil {
		return nil, mapStoreError(err)
	}
	return ok(map[string]string{"status": "deleted"}), nil
}

// --- Organization members ---

func (c *requestContext) handleListOrgMembers() (*Response, *Error) {
	orgID := c.param("orgId")
	if err := c.guardOrg(orgID, auth.PermissionMembersRead); err != nil {
		return nil, err
	}
	members := c.srv.store.ListOrgMembers(orgID)
	if members == nil {
		members = []*store.OrgMember{}
	}
	return list(members, len(members), 0), nil
}

type addOrgMemberRequest struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Role   auth.Role `json:"role"`
}

// handleAddOrgMember adds an existing user to the organization, resolved by
// identity or email. The role falls back to the organization default.
func (c *requestContext) handleAddOrgMember() (*Response, *Error) {
	orgID := c.param("orgId")
	if err := c.guardOrg(orgID, auth.PermissionMembersManage); err != nil {
		return nil, err
	}
	var body addOrgMemberRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	userID := body.UserID
	if userID == "" && body.Email != "" {
		user, err := c.srv.store.GetUserByEmail(body.Email)
		if err != nil {
			return nil, ErrNotFound("user", body.Email)
		}
		userID = user.ID
	}
	if userID == "" {
		return nil, ErrValidation("userId or email is required")
	}
	if body.Role != "" && !body.Role.Valid() {
		return nil, ErrValidation("role is not a recognized role")
	}
	member := &store.OrgMember{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           body.Role,
		InvitedBy:      c.principal.ID,
	}
	if err := c.srv.store.AddOrgMember(member); err != nil {
		return nil, mapStoreError(err)
	}
	return ok(member), nil
}

type updateOrgMemberRequest struct {
	Role auth.Role `json:"role"`
}

// handleUpdateOrgMember changes a member's role. The last owner's role is
// protected: an organization can never be left without an owner.
func (c *requestContext) handleUpdateOrgMember() (*Response, *Error) {
	orgID := c.param("orgId")
	userID := c.param("userId")
	if err := c.guardOrg(orgID, auth.PermissionMembersManage); err != nil {
		return nil, err
	}
	var body updateOrgMemberRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	if !body.Role.Valid() {
		return nil, ErrValidation("role is not a recognized role")
	}
	current, err := c.srv.store.GetOrgMember(orgID, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if current.Role == auth.RoleOwner && body.Role != auth.RoleOwner && c.countOwners(orgID) == 1 {
		return nil, ErrConflict("organization must retain at least one owner", nil)
	}
	member, err := c.srv.store.UpdateOrgMemberRole(orgID, userID, body.Role)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return ok(member), nil
}

// handleRemoveOrgMember removes a member from the organization, keeping the
// last-owner protection
func (c *requestContext) handleRemoveOrgMember() (*Response, *Error) {
	orgID := c.param("orgId")
	userID := c.param("userId")
	if err := c.guardOrg(orgID, auth.PermissionMembersManage); err != nil {
		return nil, err
	}
	member, err := c.srv.store.GetOrgMember(orgID, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if member.Role == auth.RoleOwner && c.countOwners(orgID) == 1 {
		return nil, ErrConflict("organization must retain at least one owner", nil)
	}
	if err := c.srv.store.RemoveOrgMember(orgID, userID); err != nil {
		return nil, mapStoreError(err)
	}
	return ok(map[string]string{"status": "removed"}), nil
}

func (c *requestContext) countOwners(orgID string) int {
	owners := 0
	for _, m := range c.srv.store.ListOrgMembers(orgID) {
		if m.Role == auth.RoleOwner {
			owners++
		}
	}
	return owners
}
