package domain

import "strings"

type PermissionKind string

const (
	PermTaskCreate PermissionKind = "task:create"
	PermTaskRead   PermissionKind = "task:read"
	PermTaskUpdate PermissionKind = "task:update"
	PermTaskDelete PermissionKind = "task:delete"
	PermTaskAssign PermissionKind = "task:assign"

	PermUserCreate PermissionKind = "user:create"
	PermUserRead   PermissionKind = "user:read"
	PermUserUpdate PermissionKind = "user:update"
	PermUserDelete PermissionKind = "user:delete"

	PermOrganizationCreate PermissionKind = "organization:create"
	PermOrganizationRead   PermissionKind = "organization:read"
	PermOrganizationUpdate PermissionKind = "organization:update"
	PermOrganizationDelete PermissionKind = "organization:delete"

	PermRoleCreate PermissionKind = "role:create"
	PermRoleRead   PermissionKind = "role:read"
	PermRoleUpdate PermissionKind = "role:update"
	PermRoleDelete PermissionKind = "role:delete"
	PermRoleAssign PermissionKind = "role:assign"

	PermPermissionRead   PermissionKind = "permission:read"
	PermPermissionManage PermissionKind = "permission:manage"
)

var catalog = []PermissionKind{
	PermTaskCreate, PermTaskRead, PermTaskUpdate, PermTaskDelete, PermTaskAssign,
	PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
	PermOrganizationCreate, PermOrganizationRead, PermOrganizationUpdate, PermOrganizationDelete,
	PermRoleCreate, PermRoleRead, PermRoleUpdate, PermRoleDelete, PermRoleAssign,
	PermPermissionRead, PermPermissionManage,
}

// permissionsByKey maps "resource:action" to its catalog entry. Kept as an
// explicit table so a renamed constant cannot silently drop out of lookups.
var permissionsByKey = map[string]PermissionKind{
	"task:create": PermTaskCreate,
	"task:read":   PermTaskRead,
	"task:update": PermTaskUpdate,
	"task:delete": PermTaskDelete,
	"task:assign": PermTaskAssign,

	"user:create": PermUserCreate,
	"user:read":   PermUserRead,
	"user:update": PermUserUpdate,
	"user:delete": PermUserDelete,

	"organization:create": PermOrganizationCreate,
	"organization:read":   PermOrganizationRead,
	"organization:update": PermOrganizationUpdate,
	"organization:delete": PermOrganizationDelete,

	"role:create": PermRoleCreate,
	"role:read":   PermRoleRead,
	"role:update": PermRoleUpdate,
	"role:delete": PermRoleDelete,
	"role:assign": PermRoleAssign,

	"permission:read":   PermPermissionRead,
	"permission:manage": PermPermissionManage,
}

var adminExcluded = map[PermissionKind]bool{
	PermOrganizationCreate: true,
	PermOrganizationUpdate: true,
	PermOrganizationDelete: true,
	PermPermissionManage:   true,
}

// Catalog returns every permission kind in declaration order.
func Catalog() []PermissionKind {
	out := make([]PermissionKind, len(catalog))
	copy(out, catalog)
	return out
}

// Resource returns the part before the colon ("task" for task:update).
func (p PermissionKind) Resource() string {
	resource, _, _ := strings.Cut(string(p), ":")
	return resource
}

func (p PermissionKind) Action() string {
	_, action, _ := strings.Cut(string(p), ":")
	return action
}

func (p PermissionKind) Valid() bool {
	_, ok := permissionsByKey[string(p)]
	return ok
}

// LookupPermission resolves a resource/action pair against the catalog.
// Input is trimmed and lower-cased; unknown pairs report false.
func LookupPermission(resource, action string) (PermissionKind, bool) {
	key := strings.ToLower(strings.TrimSpace(resource)) + ":" + strings.ToLower(strings.TrimSpace(action))
	p, ok := permissionsByKey[key]
	return p, ok
}

// PermissionSet is an unordered set of permission kinds.
type PermissionSet map[PermissionKind]struct{}

func NewPermissionSet(perms ...PermissionKind) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

func (s PermissionSet) Has(p PermissionKind) bool {
	_, ok := s[p]
	return ok
}

// Slice returns the members in catalog order.
func (s PermissionSet) Slice() []PermissionKind {
	out := make([]PermissionKind, 0, len(s))
	for _, p := range catalog {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// DefaultPermissions returns a fresh copy of the permissions granted to a role
// kind without any explicit grants. Unknown kinds get the empty set.
func DefaultPermissions(kind RoleKind) PermissionSet {
	set := PermissionSet{}
	switch kind {
	case RoleOwner:
		for _, p := range catalog {
			set[p] = struct{}{}
		}
	case RoleAdmin:
		for _, p := range catalog {
			if !adminExcluded[p] {
				set[p] = struct{}{}
			}
		}
	case RoleViewer:
		for _, p := range catalog {
			if p.Action() == "read" {
				set[p] = struct{}{}
			}
		}
	}
	return set
}
