package domain

// activeRole returns the role that participates in decisions, or nil when the
// user has none, the role is inactive or it has been soft-deleted.
func (u *User) activeRole() *Role {
	if u == nil || u.Role == nil {
		return nil
	}
	if !u.Role.Active || u.Role.DeletedAt != nil {
		return nil
	}
	return u.Role
}

// RoleKind returns the kind of the user's active role, or "" when there is none.
func (u *User) RoleKind() RoleKind {
	if r := u.activeRole(); r != nil {
		return r.Kind
	}
	return ""
}

func (u *User) HasRole(kind RoleKind) bool {
	r := u.activeRole()
	return r != nil && r.Kind == kind
}

func (u *User) HasAnyRole(kinds ...RoleKind) bool {
	for _, k := range kinds {
		if u.HasRole(k) {
			return true
		}
	}
	return false
}

// HasRoleAtLeast compares ranks, so Owner satisfies an Admin requirement.
// An unknown required kind is never satisfied.
func (u *User) HasRoleAtLeast(kind RoleKind) bool {
	r := u.activeRole()
	if r == nil || !kind.Valid() {
		return false
	}
	return r.Kind.Rank() >= kind.Rank()
}

// HasPermission is true when the permission is an active explicit grant on the
// role or part of the role kind defaults. Explicit grants only ever extend
// the defaults.
func (u *User) HasPermission(p PermissionKind) bool {
	r := u.activeRole()
	if r == nil {
		return false
	}
	for _, rp := range r.Permissions {
		if rp.Active && rp.Kind == p {
			return true
		}
	}
	return DefaultPermissions(r.Kind).Has(p)
}

func (u *User) HasAnyPermission(perms ...PermissionKind) bool {
	for _, p := range perms {
		if u.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every listed permission is held. An
// empty list is held vacuously, even without a role.
func (u *User) HasAllPermissions(perms ...PermissionKind) bool {
	for _, p := range perms {
		if !u.HasPermission(p) {
			return false
		}
	}
	return true
}

// EffectivePermissions is the union of active explicit grants and the role
// kind defaults.
func (u *User) EffectivePermissions() PermissionSet {
	r := u.activeRole()
	if r == nil {
		return PermissionSet{}
	}
	set := DefaultPermissions(r.Kind)
	for _, rp := range r.Permissions {
		if rp.Active && rp.Kind.Valid() {
			set[rp.Kind] = struct{}{}
		}
	}
	return set
}

// IsOwner compares identities only; ownership is never delegated.
func (u *User) IsOwner(resourceOwnerID string) bool {
	return u != nil && u.ID != "" && u.ID == resourceOwnerID
}

// BelongsToOrganization checks the directly assigned organization. The
// organization tree is not walked: a user in a parent organization has no
// access to its children.
func (u *User) BelongsToOrganization(organizationID string) bool {
	return u != nil && u.OrganizationID != "" && u.OrganizationID == organizationID
}
