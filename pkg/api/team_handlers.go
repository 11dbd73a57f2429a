package api

import (
	"github.com/latticehq/lattice/pkg/auth"
	"github.com/latticehq/lattice/pkg/store"
)

// teamInOrg resolves a team and verifies it belongs to the routed
// organization. A team reached through the wrong organization is reported
// as not-found.
func (c *requestContext) teamInOrg(orgID, teamID string) (*store.Team, *Error) {
	team, err := c.srv.store.GetTeam(teamID)
	if err != nil || team.OrganizationID != orgID {
		return nil, ErrNotFound("team", teamID)
	}
	return team, nil
}

func (c *requestContext) handleListTeams() (*Response, *Error) {
	orgID := c.param("orgId")
	if err := c.guardOrg(orgID, auth.PermissionTeamsRead); err != nil {
		return nil, err
	}
	teams := c.srv.store.ListTeams(orgID)
	if teams == nil {
		teams = []*store.Team{}
	}
	return list(teams, len(teams), 0), nil
}

type createTeamRequest struct {
	Name   string `json:"name"`
	LeadID string `json:"leadId"`
}

// handleCreateTeam creates a team in the organization. The optional lead
// must already be an organization member.
func (c *requestContext) handleCreateTeam() (*Response, *Error) {
	orgID := c.param("orgId")
	if err := c.guardOrg(orgID, auth.PermissionTeamsManage); err != nil {
		return nil, err
	}
	var body createTeamRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	if body.Name == "" {
		return nil, ErrValidation("name is required")
	}
	if body.LeadID != "" {
		if _, err := c.srv.store.GetOrgMember(orgID, body.LeadID); err != nil {
			return nil, ErrValidation("leadId must reference an organization member")
		}
	}
	team := &store.Team{OrganizationID: orgID, Name: body.Name, LeadID: body.LeadID}
	if err := c.srv.store.CreateTeam(team); err != nil {
		return nil, mapStoreError(err)
	}
	return ok(team), nil
}

func (c *requestContext) handleGetTeam() (*Response, *Error) {
	orgID := c.param("orgId")
	if err := c.guardOrg(orgID, auth.PermissionTeamsRead); err != nil {
		return nil, err
	}
	team, apiErr := c.teamInOrg(orgID, c.param("teamId"))
	if apiErr != nil {
		return nil, apiErr
	}
	return ok(team), nil
}

type updateTeamRequest struct {
	Name             *string `json:"name"`
	LeadID           *string `json:"leadId"`
	ExpectedRevision int64   `json:"expectedRevision"`
}

func (c *requestContext) handleUpdateTeam() (*Response, *Error) {
	orgID := c.param("orgId")
	if err := c.guardOrg(orgID, auth.PermissionTeamsManage); err != nil {
		return nil, err
	}
	team, apiErr := c.teamInOrg(orgID, c.param("teamId"))
	if apiErr != nil {
		return nil, apiErr
	}
	var body updateTeamRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	if body.Name != nil {
		if *body.Name == "" {
			return nil, ErrValidation("name must not be empty")
		}
		team.Name = *body.Name
	}
	if body.LeadID != nil {
		if *body.LeadID != "" {
			if _, err := c.srv.store.GetOrgMember(orgID, *body.LeadID); err != nil {
				return nil, ErrValidation("leadId must reference an organization member")
			}
		}
		team.LeadID = *body.LeadID
	}
	updated, err := c.srv.store.UpdateTeam(team, body.ExpectedRevision)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return ok(updated), nil
}

func (c *requestContext) handleDeleteTeam() (*Response, *Error) {
	orgID := c.param("orgId")
	if err := c.guardOrg(orgID, auth.PermissionTeamsManage); err != nil {
		return nil, err
	}
	if _, apiErr := c.teamInOrg(orgID, c.param("teamId")); apiErr != nil {
		return nil, apiErr
	}
	if err := c.srv.store.DeleteTeam(c.param("teamId")); err != nil {
		return nil, mapStoreError(err)
	}
	return ok(map[string]string{"status": "deleted"}), nil
}

func (c *requestContext) handleListTeamMembers() (*Response, *Error) {
	orgID := c.param("orgId")
	if err := c.guardOrg(orgID, auth.PermissionTeamsRead); err != nil {
		return nil, err
	}
	team, apiErr := c.teamInOrg(orgID, c.param("teamId"))
	if apiErr != nil {
		return nil, apiErr
	}
	members := c.srv.store.ListTeamMembers(team.ID)
	if members == nil {
		members = []*store.TeamMember{}
	}
	return list(members, len(members), 0), nil
}

type addTeamMemberRequest struct {
	UserID string `json:"userId"`
}

// handleAddTeamMember adds an organization member to the team
func (c *requestContext) handleAddTeamMember() (*Response, *Error) {
	orgID := c.param("orgId")
	if err := c.guardOrg(orgID, auth.PermissionTeamsManage); err != nil {
		return nil, err
	}
	team, apiErr := c.teamInOrg(orgID, c.param("teamId"))
	if apiErr != nil {
		return nil, apiErr
	}
	var body addTeamMemberRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	if body.UserID == "" {
		return nil, ErrValidation("userId is required")
	}
	if _, err := c.srv.store.GetOrgMember(orgID, body.UserID); err != nil {
		return nil, ErrValidation("userId must reference an organization member")
	}
	member := &store.TeamMember{TeamID: team.ID, UserID: body.UserID}
	if err := c.srv.store.AddTeamMember(member); err != nil {
		return nil, mapStoreError(err)
	}
	return ok(member), nil
}

func (c *requestContext) handleRemoveTeamMember() (*Response, *Error) {
	orgID := c.param("orgId")
	if err := c.guardOrg(orgID, auth.PermissionTeamsManage); err != nil {
		return nil, err
	}
	team, apiErr := c.teamInOrg(orgID, c.param("teamId"))
	if apiErr != nil {
		return nil, apiErr
	}
	if err := c.srv.store.RemoveTeamMember(team.ID, c.param("userId")); err != nil {
		return nil, mapStoreError(err)
	}
	return ok(map[string]string{"status": "removed"}), nil
}
