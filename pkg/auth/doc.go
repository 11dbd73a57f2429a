// Package auth defines the static role and permission model for the Lattice
// control plane.
//
// # Roles
//
// Six built-in roles are defined, each with a fixed permission set and a
// numeric level used for coarse "is at least" comparisons:
//
//   - owner (100): full control, including organization deletion
//   - admin (80): everything except organization deletion
//   - engineer (60): project and connector read/write
//   - security (50): read access plus security audit views
//   - product (40): read access to projects, members, teams and activity
//   - readonly (20): project and dashboard read only
//
// Permission sets are defined independently per role; the level ordering is a
// convention kept consistent by whoever edits the tables, not a computed
// property.
//
// # Effective permissions
//
// A member's effective permissions are the union of their role's base set and
// any custom grants attached to the membership. The union is idempotent and
// order-independent, so callers may pass grants in any order and with
// duplicates.
package auth
