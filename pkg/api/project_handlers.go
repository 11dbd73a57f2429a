package api

import (
	"fmt"
	"time"

	"github.com/latticehq/lattice/pkg/auth"
	"github.com/latticehq/lattice/pkg/store"
)

// handleListProjects lists the projects visible to the principal, optionally
// narrowed by organization and status filters
func (c *requestContext) handleListProjects() (*Response, *Error) {
	user, err := c.requirePrincipal()
	if err != nil {
		return nil, err
	}
	filter := store.ProjectFilter{
		OrganizationID: c.filter("organizationId"),
		Status:         store.ProjectStatus(c.filter("status")),
	}
	visible := []*store.Project{}
	for _, p := range c.srv.store.ListProjects(filter) {
		if c.srv.checker.ProjectVisible(user, p.ID) {
			visible = append(visible, p)
		}
	}
	return list(visible, len(visible), 0), nil
}

type createProjectRequest struct {
	OrganizationID string                `json:"organizationId"`
	Name           string                `json:"name"`
	Slug           string                `json:"slug"`
	Settings       *projectSettingsPatch `json:"settings"`
}

type projectSettingsPatch struct {
	Visibility          *string `json:"visibility"`
	SyncIntervalMinutes *int    `json:"syncIntervalMinutes"`
	AlertThreshold      *int    `json:"alertThreshold"`
}

func (p *projectSettingsPatch) apply(settings *store.ProjectSettings) *Error {
	if p.Visibility != nil {
		switch *p.Visibility {
		case "private", "internal":
		default:
			return ErrValidation("settings.visibility must be one of private, internal")
		}
		settings.Visibility = *p.Visibility
	}
	if p.SyncIntervalMinutes != nil {
		if *p.SyncIntervalMinutes <= 0 {
			return ErrValidation("settings.syncIntervalMinutes must be positive")
		}
		settings.SyncIntervalMinutes = *p.SyncIntervalMinutes
	}
	if p.AlertThreshold != nil {
		if *p.AlertThreshold < 0 {
			return ErrValidation("settings.alertThreshold must not be negative")
		}
		settings.AlertThreshold = *p.AlertThreshold
	}
	return nil
}

// handleCreateProject creates a project in an organization the principal can
// write to. The creator becomes the project's first member with the owner
// role, and the creation lands in the activity log.
func (c *requestContext) handleCreateProject() (*Response, *Error) {
	user, apiErr := c.requirePrincipal()
	if apiErr != nil {
		return nil, apiErr
	}
	var body createProjectRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	if body.OrganizationID == "" {
		return nil, ErrValidation("organizationId is required")
	}
	if body.Name == "" {
		return nil, ErrValidation("name is required")
	}
	if err := c.guardOrg(body.OrganizationID, auth.PermissionProjectWrite); err != nil {
		return nil, err
	}

	project := &store.Project{
		OrganizationID: body.OrganizationID,
		Name:           body.Name,
		Slug:           body.Slug,
	}
	if body.Settings != nil {
		if err := body.Settings.apply(&project.Settings); err != nil {
			return nil, err
		}
	}
	if err := c.srv.store.CreateProject(project); err != nil {
		return nil, mapStoreError(err)
	}
	member := &store.ProjectMember{ProjectID: project.ID, UserID: user.ID, Role: auth.RoleOwner}
	if err := c.srv.store.AddProjectMember(member); err != nil {
		return nil, mapStoreError(err)
	}
	c.recordActivity(project.ID, store.ActivityProjectCreated, store.SeverityInfo, "", fmt.Sprintf("project %q created", project.Name))
	return ok(project), nil
}

func (c *requestContext) handleGetProject() (*Response, *Error) {
	projectID := c.param("projectId")
	if err := c.guardProject(projectID, auth.PermissionProjectRead); err != nil {
		return nil, err
	}
	project, err := c.srv.store.GetProject(projectID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return ok(project), nil
}

type updateProjectRequest struct {
	Name             *string               `json:"name"`
	Slug             *string               `json:"slug"`
	Status           *store.ProjectStatus  `json:"status"`
	Settings         *projectSettingsPatch `json:"settings"`
	Stats            *store.ProjectStats   `json:"stats"`
	ExpectedRevision int64                 `json:"expectedRevision"`
}

// handleUpdateProject applies a partial update to a project. The only
// status transition accepted here is finishing setup; archiving and
// restoring go through their dedicated operations.
func (c *requestContext) handleUpdateProject() (*Response, *Error) {
	projectID := c.param("projectId")
	if err := c.guardProject(projectID, auth.PermissionProjectWrite); err != nil {
		return nil, err
	}
	var body updateProjectRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	project, err := c.srv.store.GetProject(projectID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if body.Name != nil {
		if *body.Name == "" {
			return nil, ErrValidation("name must not be empty")
		}
		project.Name = *body.Name
	}
	if body.Slug != nil {
		if *body.Slug == "" {
			return nil, ErrValidation("slug must not be empty")
		}
		project.Slug = *body.Slug
	}
	if body.Status != nil {
		if project.Status != store.ProjectStatusSetup || *body.Status != store.ProjectStatusActive {
			return nil, ErrValidation("status may only move from setup to active here; use archive and restore otherwise")
		}
		project.Status = *body.Status
	}
	if body.Settings != nil {
		if err := body.Settings.apply(&project.Settings); err != nil {
			return nil, err
		}
	}
	if body.Stats != nil {
		project.Stats = *body.Stats
	}
	updated, err := c.srv.store.UpdateProject(project, body.ExpectedRevision)
	if err != nil {
		return nil, mapStoreError(err)
	}
	c.recordActivity(projectID, store.ActivityProjectUpdated, store.SeverityInfo, "", fmt.Sprintf("project %q updated", updated.Name))
	return ok(updated), nil
}

func (c *requestContext) handleDeleteProject() (*Response, *Error) {
	projectID := c.param("projectId")
	if err := c.guardProject(projectID, auth.PermissionProjectDelete); err != nil {
		return nil, err
	}
	if err := c.srv.store.DeleteProject(projectID); err != nil {
		return nil, mapStoreError(err)
	}
	return ok(map[string]string{"status": "deleted"}), nil
}

// handleArchiveProject transitions a project to archived. Archiving is
// idempotent on an already archived project and never removes data.
func (c *requestContext) handleArchiveProject() (*Response, *Error) {
	projectID := c.param("projectId")
	if err := c.guardProject(projectID, auth.PermissionProjectArchive); err != nil {
		return nil, err
	}
	project, err := c.srv.store.SetProjectStatus(projectID, store.ProjectStatusArchived)
	if err != nil {
		return nil, mapStoreError(err)
	}
	c.recordActivity(projectID, store.ActivityProjectArchived, store.SeverityWarning, "", fmt.Sprintf("project %q archived", project.Name))
	return ok(project), nil
}

// handleRestoreProject transitions an archived project back to active
func (c *requestContext) handleRestoreProject() (*Response, *Error) {
	projectID := c.param("projectId")
	if err := c.guardProject(projectID, auth.PermissionProjectArchive); err != nil {
		return nil, err
	}
	project, err := c.srv.store.SetProjectStatus(projectID, store.ProjectStatusActive)
	if err != nil {
		return nil, mapStoreError(err)
	}
	c.recordActivity(projectID, store.ActivityProjectRestored, store.SeverityInfo, "", fmt.Sprintf("project %q restored", project.Name))
	return ok(project), nil
}

// --- Project members ---

func (c *requestContext) handleListProjectMembers() (*Response, *Error) {
	projectID := c.param("projectId")
	if err := c.guardProject(projectID, auth.PermissionMembersRead); err != nil {
		return nil, err
	}
	members := c.srv.store.ListProjectMembers(projectID)
	if members == nil {
		members = []*store.ProjectMember{}
	}
	return list(members, len(members), 0), nil
}

type addProjectMemberRequest struct {
	UserID            string            `json:"userId"`
	Email             string            `json:"email"`
	Role              auth.Role         `json:"role"`
	CustomPermissions []auth.Permission `json:"customPermissions"`
}

// handleAddProjectMember adds a user directly to the project, bypassing the
// invitation flow
func (c *requestContext) handleAddProjectMember() (*Response, *Error) {
	projectID := c.param("projectId")
	if err := c.guardProject(projectID, auth.PermissionMembersManage); err != nil {
		return nil, err
	}
	var body addProjectMemberRequest
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
	role := body.Role
	if role == "" {
		role = auth.RoleReadonly
	}
	if !role.Valid() {
		return nil, ErrValidation("role is not a recognized role")
	}
	member := &store.ProjectMember{
		ProjectID:         projectID,
		UserID:            userID,
		Role:              role,
		CustomPermissions: body.CustomPermissions,
		InvitedBy:         c.principal.ID,
	}
	if err := c.srv.store.AddProjectMember(member); err != nil {
		return nil, mapStoreError(err)
	}
	c.recordActivity(projectID, store.ActivityMemberJoined, store.SeverityInfo, userID, "member added to project")
	return ok(member), nil
}

type updateProjectMemberRequest struct {
	Role              *auth.Role         `json:"role"`
	CustomPermissions *[]auth.Permission `json:"customPermissions"`
	ExpectedRevision  int64              `json:"expectedRevision"`
}

// handleUpdateProjectMember changes a project member's role or custom
// permission grants
func (c *requestContext) handleUpdateProjectMember() (*Response, *Error) {
	projectID := c.param("projectId")
	userID := c.param("userId")
	if err := c.guardProject(projectID, auth.PermissionMembersManage); err != nil {
		return nil, err
	}
	var body updateProjectMemberRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	member, err := c.srv.store.GetProjectMember(projectID, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if body.Role != nil {
		if !body.Role.Valid() {
			return nil, ErrValidation("role is not a recognized role")
		}
		member.Role = *body.Role
	}
	if body.CustomPermissions != nil {
		member.CustomPermissions = *body.CustomPermissions
	}
	updated, err := c.srv.store.UpdateProjectMember(member, body.ExpectedRevision)
	if err != nil {
		return nil, mapStoreError(err)
	}
	c.recordActivity(projectID, store.ActivityMemberRoleChanged, store.SeverityInfo, userID, "member role changed")
	return ok(updated), nil
}

func (c *requestContext) handleRemoveProjectMember() (*Response, *Error) {
	projectID := c.param("projectId")
	userID := c.param("userId")
	if err := c.guardProject(projectID, auth.PermissionMembersManage); err != nil {
		return nil, err
	}
	if err := c.srv.store.RemoveProjectMember(projectID, userID); err != nil {
		return nil, mapStoreError(err)
	}
	c.recordActivity(projectID, store.ActivityMemberRemoved, store.SeverityInfo, userID, "member removed from project")
	return ok(map[string]string{"status": "removed"}), nil
}

// --- Invitations ---

func (c *requestContext) handleListInvitations() (*Response, *Error) {
	projectID := c.param("projectId")
	if err := c.guardProject(projectID, auth.PermissionMembersRead); err != nil {
		return nil, err
	}
	invitations := c.srv.store.ListInvitations(projectID)
	if invitations == nil {
		invitations = []*store.ProjectInvitation{}
	}
	return list(invitations, len(invitations), 0), nil
}

type createInvitationRequest struct {
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	ExpiresIn string    `json:"expiresIn"`
}

// handleCreateInvitation invites a user by email. Open invitations are
// unique per email; the expiry window defaults to seven days.
func (c *requestContext) handleCreateInvitation() (*Response, *Error) {
	projectID := c.param("projectId")
	if err := c.guardProject(projectID, auth.PermissionMembersInvite); err != nil {
		return nil, err
	}
	var body createInvitationRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	if body.Email == "" {
		return nil, ErrValidation("email is required")
	}
	role := body.Role
	if role == "" {
		role = auth.RoleReadonly
	}
	if !role.Valid() {
		return nil, ErrValidation("role is not a recognized role")
	}
	for _, existing := range c.srv.store.ListInvitations(projectID) {
		if existing.Email == body.Email && existing.Status == store.InvitationPending {
			return nil, ErrConflict("a pending invitation already exists for this email", map[string]string{"email": body.Email})
		}
	}
	inv := &store.ProjectInvitation{
		ProjectID: projectID,
		Email:     body.Email,
		Role:      role,
		InvitedBy: c.principal.ID,
	}
	if body.ExpiresIn != "" {
		window, err := time.ParseDuration(body.ExpiresIn)
		if err != nil || window <= 0 {
			return nil, ErrValidation("expiresIn must be a positive duration")
		}
		inv.ExpiresAt = time.Now().UTC().Add(window)
	}
	if err := c.srv.store.CreateInvitation(inv); err != nil {
		return nil, mapStoreError(err)
	}
	c.recordActivity(projectID, store.ActivityMemberInvited, store.SeverityInfo, inv.ID, fmt.Sprintf("invitation sent to %s", body.Email))
	return ok(inv), nil
}

// handleRevokeInvitation withdraws an open invitation
func (c *requestContext) handleRevokeInvitation() (*Response, *Error) {
	projectID := c.param("projectId")
	invitationID := c.param("invitationId")
	if err := c.guardProject(projectID, auth.PermissionMembersManage); err != nil {
		return nil, err
	}
	inv, err := c.srv.store.GetInvitation(invitationID)
	if err != nil || inv.ProjectID != projectID {
		return nil, ErrNotFound("invitation", invitationID)
	}
	if err := c.srv.store.RemoveInvitation(invitationID); err != nil {
		return nil, mapStoreError(err)
	}
	return ok(map[string]string{"status": "revoked"}), nil
}

// handleAcceptInvitation lets the invited user join the project. Only the
// principal whose email matches the invitation may accept it; acceptance of
// an expired or already accepted invitation is a conflict.
func (c *requestContext) handleAcceptInvitation() (*Response, *Error) {
	user, apiErr := c.requirePrincipal()
	if apiErr != nil {
		return nil, apiErr
	}
	projectID := c.param("projectId")
	invitationID := c.param("invitationId")
	inv, err := c.srv.store.GetInvitation(invitationID)
	if err != nil || inv.ProjectID != projectID {
		return nil, ErrNotFound("invitation", invitationID)
	}
	if inv.Email != user.Email {
		return nil, ErrForbidden("invitation was issued to a different email")
	}
	// Acceptance is all-or-nothing: an invitee who already joined must not
	// consume the invitation on the failing branch.
	if _, err := c.srv.store.GetProjectMember(projectID, user.ID); err == nil {
		return nil, ErrConflict("user is already a project member", map[string]string{"user_id": user.ID})
	}
	if _, err := c.srv.store.MarkInvitationAccepted(invitationID); err != nil {
		return nil, mapStoreError(err)
	}
	member := &store.ProjectMember{
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      inv.Role,
		InvitedBy: inv.InvitedBy,
	}
	if err := c.srv.store.AddProjectMember(member); err != nil {
		return nil, mapStoreError(err)
	}
	c.recordActivity(projectID, store.ActivityMemberJoined, store.SeverityInfo, user.ID, "invitation accepted")
	return ok(member), nil
}

// --- Activity ---

func (c *requestContext) handleListActivity() (*Response, *Error) {
	projectID := c.param("projectId")
	if err := c.guardProject(projectID, auth.PermissionActivityRead); err != nil {
		return nil, err
	}
	filter := store.ActivityFilter{
		Type:     store.ActivityType(c.filter("type")),
		Severity: store.Severity(c.filter("severity")),
	}
	activity := c.srv.store.ListActivity(projectID, filter)
	if activity == nil {
		activity = []*store.ProjectActivity{}
	}
	return list(activity, len(activity), 0), nil
}

// recordActivity appends a log entry attributed to the current principal.
// Activity is best effort: a failed append never fails the operation that
// produced it.
func (c *requestContext) recordActivity(projectID string, typ store.ActivityType, severity store.Severity, targetID, message string) {
	actorID := ""
	if c.principal != nil {
		actorID = c.principal.ID
	}
	err := c.srv.store.AppendActivity(&store.ProjectActivity{
		ProjectID: projectID,
		Type:      typ,
		ActorID:   actorID,
		TargetID:  targetID,
		Severity:  severity,
		Message:   message,
	})
	if err != nil {
		c.srv.logger.WithError(err).Warn("failed to append activity")
	}
}
