package auth

// Role represents an organization- or project-level role
type Role string

const (
	RoleOwner    Role = "owner"    // Full control including org deletion
	RoleAdmin    Role = "admin"    // Full control except org deletion
	RoleEngineer Role = "engineer" // Can modify projects and connectors
	RoleSecurity Role = "security" // Read access plus security audit views
	RoleProduct  Role = "product"  // Read access to product-facing views
	RoleReadonly Role = "readonly" // Read-only access
)

// Permission represents an atomic capability checked by the authorization guard
type Permission string

const (
	PermissionOrgRead   Permission = "org:read"
	PermissionOrgManage Permission = "org:manage"
	PermissionOrgDelete Permission = "org:delete"

	PermissionProjectRead    Permission = "project:read"
	PermissionProjectWrite   Permission = "project:write"
	PermissionProjectDelete  Permission = "project:delete"
	PermissionProjectArchive Permission = "project:archive"

	PermissionMembersRead   Permission = "members:read"
	PermissionMembersInvite Permission = "members:invite"
	PermissionMembersManage Permission = "members:manage"

	PermissionTeamsRead   Permission = "teams:read"
	PermissionTeamsManage Permission = "teams:manage"

	PermissionActivityRead Permission = "activity:read"

	PermissionConnectorsRead   Permission = "connectors:read"
	PermissionConnectorsManage Permission = "connectors:manage"
	PermissionConnectorsSync   Permission = "connectors:sync"

	PermissionDashboardView Permission = "dashboard:view"
	PermissionSecurityAudit Permission = "security:audit"
)

// RoleDefinition describes a built-in role: its level and base permission set
type RoleDefinition struct {
	Name        Role         `json:"name"`
	DisplayName string       `json:"display_name"`
	Level       int          `json:"level"`
	Permissions []Permission `json:"permissions"`
}

// roleDefinitions is the static role table. Levels are monotonic by
// convention: owner(100) > admin(80) > engineer(60) > security(50) >
// product(40) > readonly(20).
var roleDefinitions = map[Role]RoleDefinition{
	RoleOwner: {
		Name:        RoleOwner,
		DisplayName: "Owner",
		Level:       100,
		Permissions: []Permission{
			PermissionOrgRead, PermissionOrgManage, PermissionOrgDelete,
			PermissionProjectRead, PermissionProjectWrite, PermissionProjectDelete, PermissionProjectArchive,
			PermissionMembersRead, PermissionMembersInvite, PermissionMembersManage,
			PermissionTeamsRead, PermissionTeamsManage,
			PermissionActivityRead,
			PermissionConnectorsRead, PermissionConnectorsManage, PermissionConnectorsSync,
			PermissionDashboardView, PermissionSecurityAudit,
		},
	},
	RoleAdmin: {
		Name:        RoleAdmin,
		DisplayName: "Admin",
		Level:       80,
		Permissions: []Permission{
			PermissionOrgRead, PermissionOrgManage,
			PermissionProjectRead, PermissionProjectWrite, PermissionProjectDelete, PermissionProjectArchive,
			PermissionMembersRead, PermissionMembersInvite, PermissionMembersManage,
			PermissionTeamsRead, PermissionTeamsManage,
			PermissionActivityRead,
			PermissionConnectorsRead, PermissionConnectorsManage, PermissionConnectorsSync,
			PermissionDashboardView, PermissionSecurityAudit,
		},
	},
	RoleEngineer: {
		Name:        RoleEngineer,
		DisplayName: "Engineer",
		Level:       60,
		Permissions: []Permission{
			PermissionOrgRead,
			PermissionProjectRead, PermissionProjectWrite,
			PermissionMembersRead,
			PermissionTeamsRead,
			PermissionActivityRead,
			PermissionConnectorsRead, PermissionConnectorsManage, PermissionConnectorsSync,
			PermissionDashboardView,
		},
	},
	RoleSecurity: {
		Name:        RoleSecurity,
		DisplayName: "Security",
		Level:       50,
		Permissions: []Permission{
			PermissionOrgRead,
			PermissionProjectRead,
			PermissionMembersRead,
			PermissionTeamsRead,
			PermissionActivityRead,
			PermissionConnectorsRead,
			PermissionDashboardView, PermissionSecurityAudit,
		},
	},
	RoleProduct: {
		Name:        RoleProduct,
		DisplayName: "Product",
		Level:       40,
		Permissions: []Permission{
			PermissionOrgRead,
			PermissionProjectRead,
			PermissionMembersRead,
			PermissionTeamsRead,
			PermissionActivityRead,
			PermissionDashboardView,
		},
	},
	RoleReadonly: {
		Name:        RoleReadonly,
		DisplayName: "Read Only",
		Level:       20,
		Permissions: []Permission{
			PermissionOrgRead,
			PermissionProjectRead,
			PermissionDashboardView,
		},
	},
}

// Roles returns all built-in role definitions
func Roles() []RoleDefinition {
	defs := make([]RoleDefinition, 0, len(roleDefinitions))
	for _, role := range []Role{RoleOwner, RoleAdmin, RoleEngineer, RoleSecurity, RoleProduct, RoleReadonly} {
		defs = append(defs, roleDefinitions[role])
	}
	return defs
}

// Definition returns the definition for a role. Unknown roles resolve to the
// readonly definition: an unrecognized role must never widen access.
func Definition(role Role) RoleDefinition {
	if def, ok := roleDefinitions[role]; ok {
		return def
	}
	return roleDefinitions[RoleReadonly]
}

// Valid reports whether role is one of the built-in roles
func (r Role) Valid() bool {
	_, ok := roleDefinitions[r]
	return ok
}

// Level returns the numeric level for a role
func (r Role) Level() int {
	return Definition(r).Level
}

// AtLeast reports whether r's level meets or exceeds other's level
func (r Role) AtLeast(other Role) bool {
	return r.Level() >= other.Level()
}
