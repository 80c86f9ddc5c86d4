package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleRanksAreStrictlyOrdered(t *testing.T) {
	kinds := RoleKinds()
	require.Equal(t, []RoleKind{RoleViewer, RoleAdmin, RoleOwner}, kinds)
	for i, k := range kinds {
		assert.Equal(t, i+1, k.Rank())
	}
	assert.Zero(t, RoleKind("superuser").Rank())
}

func TestParseRoleKind(t *testing.T) {
	k, err := ParseRoleKind(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, k)

	_, err = ParseRoleKind("root")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCatalogTableIsComplete(t *testing.T) {
	catalog := Catalog()
	assert.Len(t, catalog, len(permissionsByKey))
	for _, p := range catalog {
		got, ok := LookupPermission(p.Resource(), p.Action())
		require.True(t, ok, p)
		assert.Equal(t, p, got)
	}
}

func TestLookupPermission(t *testing.T) {
	p, ok := LookupPermission(" TASK ", "Create")
	require.True(t, ok)
	assert.Equal(t, PermTaskCreate, p)

	_, ok = LookupPermission("task", "archive")
	assert.False(t, ok)
	_, ok = LookupPermission("invoice", "read")
	assert.False(t, ok)
}

func TestDefaultPermissions(t *testing.T) {
	owner := DefaultPermissions(RoleOwner)
	assert.Len(t, owner, len(Catalog()))

	admin := DefaultPermissions(RoleAdmin)
	for _, p := range Catalog() {
		excluded := p == PermOrganizationCreate || p == PermOrganizationUpdate ||
			p == PermOrganizationDelete || p == PermPermissionManage
		assert.Equal(t, !excluded, admin.Has(p), p)
	}

	viewer := DefaultPermissions(RoleViewer)
	for _, p := range Catalog() {
		assert.Equal(t, p.Action() == "read", viewer.Has(p), p)
	}

	assert.Empty(t, DefaultPermissions(RoleKind("ghost")))
}

func TestDefaultPermissionsReturnsFreshSet(t *testing.T) {
	set := DefaultPermissions(RoleViewer)
	set[PermTaskDelete] = struct{}{}
	assert.False(t, DefaultPermissions(RoleViewer).Has(PermTaskDelete))
}

func TestPermissionSetSliceFollowsCatalogOrder(t *testing.T) {
	set := NewPermissionSet(PermRoleRead, PermTaskRead, PermUserRead)
	assert.Equal(t, []PermissionKind{PermTaskRead, PermUserRead, PermRoleRead}, set.Slice())
	for _, p := range set.Slice() {
		assert.True(t, strings.HasSuffix(string(p), ":read"))
	}
}
