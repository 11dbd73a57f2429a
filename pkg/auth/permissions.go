package auth

import "sort"

// PermissionSet is a set of permissions with O(1) membership checks
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given permissions, dropping duplicates
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Contains reports whether the set contains the permission
func (s PermissionSet) Contains(perm Permission) bool {
	_, ok := s[perm]
	return ok
}

// ContainsAny reports whether the set contains at least one of the permissions
func (s PermissionSet) ContainsAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Contains(p) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether the set contains every one of the permissions
func (s PermissionSet) ContainsAll(perms ...Permission) bool {
	for _, p := range perms {
		if !s.Contains(p) {
			return false
		}
	}
	return true
}

// Slice returns the permissions in sorted order for stable serialization
func (s PermissionSet) Slice() []Permission {
	perms := make([]Permission, 0, len(s))
	for p := range s {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// BasePermissions returns the fixed permission set for a role
func BasePermissions(role Role) PermissionSet {
	return NewPermissionSet(Definition(role).Permissions...)
}

// EffectivePermissions returns the union of a role's base permissions and any
// custom grants. The result is invariant under reordering or duplicating
// elements of grants, and is never narrower than the role's base set.
func EffectivePermissions(role Role, grants ...Permission) PermissionSet {
	set := BasePermissions(role)
	for _, g := range grants {
		set[g] = struct{}{}
	}
	return set
}

// HasPermission reports whether a member with the given role and custom grants
// holds the permission
func HasPermission(role Role, grants []Permission, perm Permission) bool {
	return EffectivePermissions(role, grants...).Contains(perm)
}

// HasAny reports whether the member holds at least one of the permissions
func HasAny(role Role, grants []Permission, perms ...Permission) bool {
	return EffectivePermissions(role, grants...).ContainsAny(perms...)
}

// HasAll reports whether the member holds every one of the permissions
func HasAll(role Role, grants []Permission, perms ...Permission) bool {
	return EffectivePermissions(role, grants...).ContainsAll(perms...)
}
