package rbac

import (
	"github.com/latticehq/lattice/pkg/auth"
	"github.com/latticehq/lattice/pkg/store"
)

// Decision is the outcome of a permission check
type Decision int

const (
	// DenyUnauthorized means no principal was presented
	DenyUnauthorized Decision = iota
	// DenyNotVisible means the principal has no membership granting
	// visibility into the target; handlers surface this as not-found
	DenyNotVisible
	// DenyForbidden means the principal can see the target but lacks the
	// required permission
	DenyForbidden
	// Allow means the principal holds the required permission
	Allow
)

// Allowed reports whether the decision permits the operation
func (d Decision) Allowed() bool {
	return d == Allow
}

func (d Decision) String() string {
	switch d {
	case DenyUnauthorized:
		return "unauthorized"
	case DenyNotVisible:
		return "not_visible"
	case DenyForbidden:
		return "forbidden"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// Checker decides whether a principal may act on organization- or
// project-scoped resources
type Checker struct {
	store *store.Store
}

// NewChecker creates a checker backed by the given store
func NewChecker(s *store.Store) *Checker {
	return &Checker{store: s}
}

// CheckOrg decides whether the principal holds perm within the organization
func (c *Checker) CheckOrg(principal *store.User, orgID string, perm auth.Permission) Decision {
	if principal == nil {
		return DenyUnauthorized
	}
	member, err := c.store.GetOrgMember(orgID, principal.ID)
	if err != nil {
		return DenyNotVisible
	}
	if auth.HasPermission(member.Role, nil, perm) {
		return Allow
	}
	return DenyForbidden
}

// CheckProject decides whether the principal holds perm within the project.
// A project membership is consulted first, including its custom grants; with
// no project membership, an organization membership on the owning
// organization is the fallback. No membership at all denies visibility.
func (c *Checker) CheckProject(principal *store.User, projectID string, perm auth.Permission) Decision {
	if principal == nil {
		return DenyUnauthorized
	}
	if member, err := c.store.GetProjectMember(projectID, principal.ID); err == nil {
		if auth.HasPermission(member.Role, member.CustomPermissions, perm) {
			return Allow
		}
		return DenyForbidden
	}
	project, err := c.store.GetProject(projectID)
	if err != nil {
		return DenyNotVisible
	}
	return c.CheckOrg(principal, project.OrganizationID, perm)
}

// ProjectVisible reports whether the principal has any membership granting
// visibility into the project
func (c *Checker) ProjectVisible(principal *store.User, projectID string) bool {
	if principal == nil {
		return false
	}
	if _, err := c.store.GetProjectMember(projectID, principal.ID); err == nil {
		return true
	}
	project, err := c.store.GetProject(projectID)
	if err != nil {
		return false
	}
	_, err = c.store.GetOrgMember(project.OrganizationID, principal.ID)
	return err == nil
}
