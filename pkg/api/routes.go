package api

// buildRoutes registers the full route table. The table is the single
// source of truth for which operations exist and which ones mutate state.
func (s *Server) buildRoutes() []route {
	routes := []route{
		// Auth
		{method: "POST", pattern: "/auth/register", mutates: true, handler: (*requestContext).handleRegister},
		{method: "POST", pattern: "/auth/login", mutates: true, handler: (*requestContext).handleLogin},
		{method: "POST", pattern: "/auth/logout", mutates: true, handler: (*requestContext).handleLogout},
		{method: "POST", pattern: "/auth/refresh", mutates: true, handler: (*requestContext).handleRefresh},

		// Current user
		{method: "GET", pattern: "/users/me", handler: (*requestContext).handleGetMe},
		{method: "PATCH", pattern: "/users/me", mutates: true, handler: (*requestContext).handleUpdateMe},
		{method: "GET", pattern: "/users/me/preferences", handler: (*requestContext).handleGetPreferences},
		{method: "PUT", pattern: "/users/me/preferences", mutates: true, handler: (*requestContext).handlePutPreferences},
		{method: "GET", pattern: "/users/me/sessions", handler: (*requestContext).handleListSessions},
		{method: "DELETE", pattern: "/users/me/sessions/{sessionId}", mutates: true, handler: (*requestContext).handleRevokeSession},

		// Organizations
		{method: "GET", pattern: "/organizations", handler: (*requestContext).handleListOrgs},
		{method: "POST", pattern: "/organizations", mutates: true, handler: (*requestContext).handleCreateOrg},
		{method: "GET", pattern: "/organizations/{orgId}", handler: (*requestContext).handleGetOrg},
		{method: "PATCH", pattern: "/organizations/{orgId}", mutates: true, handler: (*requestContext).handleUpdateOrg},
		{method: "DELETE", pattern: "/organizations/{orgId}", mutates: true, handler: (*requestContext).handleDeleteOrg},
		{method: "GET", pattern: "/organizations/{orgId}/members", handler: (*requestContext).handleListOrgMembers},
		{method: "POST", pattern: "/organizations/{orgId}/members", mutates: true, handler: (*requestContext).handleAddOrgMember},
		{method: "PATCH", pattern: "/organizations/{orgId}/members/{userId}", mutates: true, handler: (*requestContext).handleUpdateOrgMember},
		{method: "DELETE", pattern: "/organizations/{orgId}/members/{userId}", mutates: true, handler: (*requestContext).handleRemoveOrgMember},
		{method: "GET", pattern: "/organizations/{orgId}/teams", handler: (*requestContext).handleListTeams},
		{method: "POST", pattern: "/organizations/{orgId}/teams", mutates: true, handler: (*requestContext).handleCreateTeam},
		{method: "GET", pattern: "/organizations/{orgId}/teams/{teamId}", handler: (*requestContext).handleGetTeam},
		{method: "PATCH", pattern: "/organizations/{orgId}/teams/{teamId}", mutates: true, handler: (*requestContext).handleUpdateTeam},
		{method: "DELETE", pattern: "/organizations/{orgId}/teams/{teamId}", mutates: true, handler: (*requestContext).handleDeleteTeam},
		{method: "GET", pattern: "/organizations/{orgId}/teams/{teamId}/members", handler: (*requestContext).handleListTeamMembers},
		{method: "POST", pattern: "/organizations/{orgId}/teams/{teamId}/members", mutates: true, handler: (*requestContext).handleAddTeamMember},
		{method: "DELETE", pattern: "/organizations/{orgId}/teams/{teamId}/members/{userId}", mutates: true, handler: (*requestContext).handleRemoveTeamMember},

		// Projects
		{method: "GET", pattern: "/projects", handler: (*requestContext).handleListProjects},
		{method: "POST", pattern: "/projects", mutates: true, handler: (*requestContext).handleCreateProject},
		{method: "GET", pattern: "/projects/{projectId}", handler: (*requestContext).handleGetProject},
		{method: "PATCH", pattern: "/projects/{projectId}", mutates: true, handler: (*requestContext).handleUpdateProject},
		{method: "DELETE", pattern: "/projects/{projectId}", mutates: true, handler: (*requestContext).handleDeleteProject},
		{method: "POST", pattern: "/projects/{projectId}/archive", mutates: true, handler: (*requestContext).handleArchiveProject},
		{method: "POST", pattern: "/projects/{projectId}/restore", mutates: true, handler: (*requestContext).handleRestoreProject},
		{method: "GET", pattern: "/projects/{projectId}/members", handler: (*requestContext).handleListProjectMembers},
		{method: "POST", pattern: "/projects/{projectId}/members", mutates: true, handler: (*requestContext).handleAddProjectMember},
		{method: "PATCH", pattern: "/projects/{projectId}/members/{userId}", mutates: true, handler: (*requestContext).handleUpdateProjectMember},
		{method: "DELETE", pattern: "/projects/{projectId}/members/{userId}", mutates: true, handler: (*requestContext).handleRemoveProjectMember},
		{method: "GET", pattern: "/projects/{projectId}/invitations", handler: (*requestContext).handleListInvitations},
		{method: "POST", pattern: "/projects/{projectId}/invitations", mutates: true, handler: (*requestContext).handleCreateInvitation},
		{method: "DELETE", pattern: "/projects/{projectId}/invitations/{invitationId}", mutates: true, handler: (*requestContext).handleRevokeInvitation},
		{method: "POST", pattern: "/projects/{projectId}/invitations/{invitationId}/accept", mutates: true, handler: (*requestContext).handleAcceptInvitation},
		{method: "GET", pattern: "/projects/{projectId}/activity", handler: (*requestContext).handleListActivity},
		{method: "GET", pattern: "/projects/{projectId}/executive", handler: (*requestContext).handleExecutiveView},
		{method: "GET", pattern: "/projects/{projectId}/architect", handler: (*requestContext).handleArchitectView},
		{method: "GET", pattern: "/projects/{projectId}/security", handler: (*requestContext).handleSecurityView},

		// Dashboard
		{method: "GET", pattern: "/dashboard/{projectId}", handler: (*requestContext).handleDashboard},
		{method: "GET", pattern: "/dashboard/{projectId}/executive", handler: (*requestContext).handleExecutiveView},
		{method: "GET", pattern: "/dashboard/{projectId}/architect", handler: (*requestContext).handleArchitectView},
		{method: "GET", pattern: "/dashboard/{projectId}/security", handler: (*requestContext).handleSecurityView},

		// Connectors
		{method: "GET", pattern: "/connectors", handler: (*requestContext).handleListConnectors},
		{method: "POST", pattern: "/connectors", mutates: true, handler: (*requestContext).handleCreateConnector},
		{method: "GET", pattern: "/connectors/{connectorId}", handler: (*requestContext).handleGetConnector},
		{method: "PATCH", pattern: "/connectors/{connectorId}", mutates: true, handler: (*requestContext).handleUpdateConnector},
		{method: "DELETE", pattern: "/connectors/{connectorId}", mutates: true, handler: (*requestContext).handleDeleteConnector},
		{method: "POST", pattern: "/connectors/{connectorId}/sync", mutates: true, handler: (*requestContext).handleStartSync},
		{method: "GET", pattern: "/connectors/{connectorId}/jobs/{jobId}", handler: (*requestContext).handleGetSyncJob},
	}

	for i := range routes {
		routes[i].segments = compilePattern(routes[i].pattern)
	}
	return routes
}
