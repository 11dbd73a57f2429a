// Package rbac implements the authorization guard for the Lattice control
// plane.
//
// The guard resolves a principal's effective permissions against an
// organization or project scope and returns an allow/deny decision. It fails
// closed: an absent principal or an absent membership record denies every
// permission.
//
// Denials distinguish visibility from capability. A caller with no membership
// granting visibility into the target gets DenyNotVisible, which handlers
// surface as not-found so existence is never confirmed to outsiders. A caller
// who can already see the target but lacks the specific permission gets
// DenyForbidden.
package rbac
