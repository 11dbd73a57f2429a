package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasePermissions(t *testing.T) {
	t.Run("owner holds every permission any role holds", func(t *testing.T) {
		owner := BasePermissions(RoleOwner)
		for _, def := range Roles() {
			for _, p := range def.Permissions {
				assert.True(t, owner.Contains(p), "owner missing %s held by %s", p, def.Name)
			}
		}
	})

	t.Run("readonly cannot write", func(t *testing.T) {
		ro := BasePermissions(RoleReadonly)
		assert.True(t, ro.Contains(PermissionProjectRead))
		assert.False(t, ro.Contains(PermissionProjectWrite))
		assert.False(t, ro.Contains(PermissionProjectArchive))
		assert.False(t, ro.Contains(PermissionMembersManage))
	})

	t.Run("admin lacks org delete", func(t *testing.T) {
		admin := BasePermissions(RoleAdmin)
		assert.False(t, admin.Contains(PermissionOrgDelete))
		assert.True(t, admin.Contains(PermissionOrgManage))
	})

	t.Run("unknown role falls back to readonly", func(t *testing.T) {
		unknown := BasePermissions(Role("superuser"))
		assert.Equal(t, BasePermissions(RoleReadonly), unknown)
	})
}

func TestEffectivePermissions(t *testing.T) {
	t.Run("superset of base permissions", func(t *testing.T) {
		for _, def := range Roles() {
			eff := EffectivePermissions(def.Name, PermissionSecurityAudit)
			for _, p := range def.Permissions {
				assert.True(t, eff.Contains(p), "%s lost base permission %s", def.Name, p)
			}
			assert.True(t, eff.Contains(PermissionSecurityAudit))
		}
	})

	t.Run("order independent and duplicate tolerant", func(t *testing.T) {
		a := EffectivePermissions(RoleReadonly, PermissionProjectWrite, PermissionActivityRead)
		b := EffectivePermissions(RoleReadonly, PermissionActivityRead, PermissionProjectWrite, PermissionProjectWrite)
		assert.Equal(t, a, b)
	})

	t.Run("idempotent", func(t *testing.T) {
		grants := []Permission{PermissionTeamsManage, PermissionMembersInvite}
		first := EffectivePermissions(RoleProduct, grants...)
		second := EffectivePermissions(RoleProduct, grants...)
		assert.Equal(t, first, second)
	})

	t.Run("grant already in base is a no-op", func(t *testing.T) {
		eff := EffectivePermissions(RoleEngineer, PermissionProjectRead)
		assert.Equal(t, BasePermissions(RoleEngineer), eff)
	})
}

func TestHasPermissionHelpers(t *testing.T) {
	grants := []Permission{PermissionConnectorsSync}

	assert.True(t, HasPermission(RoleReadonly, grants, PermissionConnectorsSync))
	assert.False(t, HasPermission(RoleReadonly, nil, PermissionConnectorsSync))

	assert.True(t, HasAny(RoleReadonly, nil, PermissionProjectWrite, PermissionProjectRead))
	assert.False(t, HasAny(RoleReadonly, nil, PermissionProjectWrite, PermissionOrgDelete))

	assert.True(t, HasAll(RoleAdmin, nil, PermissionProjectWrite, PermissionMembersManage))
	assert.False(t, HasAll(RoleAdmin, nil, PermissionProjectWrite, PermissionOrgDelete))
}

func TestRoleLevels(t *testing.T) {
	require.True(t, RoleOwner.AtLeast(RoleAdmin))
	require.True(t, RoleAdmin.AtLeast(RoleEngineer))
	require.True(t, RoleEngineer.AtLeast(RoleSecurity))
	require.True(t, RoleSecurity.AtLeast(RoleProduct))
	require.True(t, RoleProduct.AtLeast(RoleReadonly))
	require.False(t, RoleReadonly.AtLeast(RoleProduct))

	assert.Equal(t, 100, RoleOwner.Level())
	assert.Equal(t, 20, Role("bogus").Level())
	assert.True(t, RoleEngineer.Valid())
	assert.False(t, Role("bogus").Valid())
}

func TestPermissionSetSlice(t *testing.T) {
	set := NewPermissionSet(PermissionTeamsRead, PermissionActivityRead, PermissionOrgRead)
	slice := set.Slice()
	require.Len(t, slice, 3)
	assert.Equal(t, []Permission{PermissionActivityRead, PermissionOrgRead, PermissionTeamsRead}, slice)
}
