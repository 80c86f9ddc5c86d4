package domain

import "strings"

// AccessRequirement describes what a protected operation demands of its
// caller. Every populated part must pass; the zero value allows any resolved
// user.
type AccessRequirement struct {
	// Roles is matched exactly unless AllowInheritance is set, in which case
	// the caller needs at least the lowest-ranked listed role.
	Roles            []RoleKind `json:"roles,omitempty"`
	AllowInheritance bool       `json:"allow_inheritance,omitempty"`

	// Permissions passes when the caller holds any one of them.
	Permissions []PermissionKind `json:"permissions,omitempty"`

	Resource string `json:"resource,omitempty"`
	Action   string `json:"action,omitempty"`

	RequireOwnership bool   `json:"require_ownership,omitempty"`
	OwnerID          string `json:"owner_id,omitempty"`

	RequireOrganization bool   `json:"require_organization,omitempty"`
	OrganizationID      string `json:"organization_id,omitempty"`
}

// Evaluate checks roles, permissions, resource/action, ownership and
// organization in that order and reports the first failure.
func (r AccessRequirement) Evaluate(u *User) Decision {
	if u == nil {
		return Deny("no user found")
	}
	if len(r.Roles) > 0 {
		if d := r.evaluateRoles(u); !d.Allowed {
			return d
		}
	}
	if len(r.Permissions) > 0 && !u.HasAnyPermission(r.Permissions...) {
		return Deny("requires one of permissions [%s]", joinPermissions(r.Permissions))
	}
	if r.Resource != "" || r.Action != "" {
		p, ok := LookupPermission(r.Resource, r.Action)
		if !ok {
			return Deny("unknown permission %s:%s", r.Resource, r.Action)
		}
		if !u.HasPermission(p) {
			return Deny("missing permission %s", p)
		}
	}
	if r.RequireOwnership && !u.IsOwner(r.OwnerID) {
		return Deny("user does not own the resource")
	}
	if r.RequireOrganization && !u.BelongsToOrganization(r.OrganizationID) {
		return Deny("user does not belong to organization %q", r.OrganizationID)
	}
	return Allow()
}

func (r AccessRequirement) evaluateRoles(u *User) Decision {
	if !r.AllowInheritance {
		if u.HasAnyRole(r.Roles...) {
			return Allow()
		}
		return Deny("requires one of roles [%s]", joinRoles(r.Roles))
	}
	var lowest RoleKind
	for _, k := range r.Roles {
		if !k.Valid() {
			continue
		}
		if lowest == "" || k.Rank() < lowest.Rank() {
			lowest = k
		}
	}
	if lowest == "" {
		return Deny("no valid role in requirement [%s]", joinRoles(r.Roles))
	}
	if !u.HasRoleAtLeast(lowest) {
		return Deny("requires role %s or higher", lowest)
	}
	return Allow()
}

// Target names the resource the requirement protects, for audit entries.
func (r AccessRequirement) Target() string {
	switch {
	case r.Resource != "":
		return strings.ToLower(strings.TrimSpace(r.Resource))
	case len(r.Permissions) > 0:
		return r.Permissions[0].Resource()
	case r.RequireOrganization:
		return "organization"
	}
	return "access"
}

func joinRoles(kinds []RoleKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

func joinPermissions(perms []PermissionKind) string {
	parts := make([]string, len(perms))
	for i, p := range perms {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}

// RoleAssignmentDecision reports whether actor may give target the role.
// The actor must outrank the target's current role, hold at least the rank
// being granted, and share the organization with both target and role.
func RoleAssignmentDecision(actor, target *User, role Role) Decision {
	if actor == nil {
		return Deny("no user found")
	}
	if target == nil {
		return Deny("target user not found")
	}
	if !actor.HasPermission(PermRoleAssign) {
		return Deny("missing permission %s", PermRoleAssign)
	}
	if !actor.BelongsToOrganization(target.OrganizationID) {
		return Deny("user does not belong to the target user's organization")
	}
	if role.OrganizationID != target.OrganizationID {
		return Deny("role %s belongs to a different organization", role.ID)
	}
	if !role.Active || role.DeletedAt != nil {
		return Deny("role %s is not active", role.ID)
	}
	actorRank := actor.RoleKind().Rank()
	if current := target.RoleKind(); current != "" && actorRank <= current.Rank() {
		return Deny("requires a role higher than %s to reassign this user", current)
	}
	if actorRank < role.Kind.Rank() {
		return Deny("cannot grant role %s above own role %s", role.Kind, actor.RoleKind())
	}
	for _, g := range role.Permissions {
		if g.Active && !actor.HasPermission(g.Kind) {
			return Deny("role %s grants %s, which the user does not hold", role.ID, g.Kind)
		}
	}
	return Allow()
}

// GrantDecision reports whether actor may attach perms to a role as explicit
// grants. It takes permission:manage, and nobody can hand out a permission
// they do not hold themselves.
func GrantDecision(actor *User, perms []PermissionKind) Decision {
	if actor == nil {
		return Deny("no user found")
	}
	if !actor.HasPermission(PermPermissionManage) {
		return Deny("missing permission %s", PermPermissionManage)
	}
	for _, p := range perms {
		if !actor.HasPermission(p) {
			return Deny("cannot grant permission %s the user does not hold", p)
		}
	}
	return Allow()
}
