package application

import (
	"context"

	"task-rbac/internal/domain"
	"task-rbac/internal/ports"
)

// Audit action names, one per kind of decision.
const (
	CheckRole              = "role_check"
	CheckRoleHierarchy     = "role_hierarchy_check"
	CheckPermission        = "permission_check"
	CheckPermissionListing = "permission_introspection"
	CheckResourceAccess    = "resource_access_check"
	CheckAccessRequirement = "access_control_check"
	CheckTaskRead          = "task_read_check"
	CheckTaskUpdate        = "task_update_check"
	CheckTaskDelete        = "task_delete_check"
	CheckTaskListScope     = "task_list_scope"
	CheckRoleAssignment    = "role_assignment_check"
	CheckPermissionGrant   = "permission_grant_check"
)

const (
	resourceRole       = "role"
	resourceTask       = "task"
	resourcePermission = "permission"
	reasonNoUser       = "no user found"
	reasonNoActiveRole = "user has no active role"
)

// AuthorizationService is the access decision engine. Every public method
// makes exactly one decision and writes exactly one audit entry for it.
type AuthorizationService struct {
	audit   ports.AuditLog
	metrics ports.DecisionMetrics
	logger  ports.Logger
}

func NewAuthorizationService(audit ports.AuditLog, metrics ports.DecisionMetrics, logger ports.Logger) *AuthorizationService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &AuthorizationService{audit: audit, metrics: metrics, logger: logger}
}

type noopMetrics struct{}

func (noopMetrics) ObserveDecision(string, bool) {}

func (s *AuthorizationService) HasRole(ctx context.Context, user *domain.User, kind domain.RoleKind) bool {
	d := roleDecision(user, func(u *domain.User) bool { return u.HasRole(kind) }, "requires role %s", kind)
	s.record(ctx, user, CheckRole, resourceRole, string(kind), d)
	return d.Allowed
}

func (s *AuthorizationService) HasAnyRole(ctx context.Context, user *domain.User, kinds ...domain.RoleKind) bool {
	d := roleDecision(user, func(u *domain.User) bool { return u.HasAnyRole(kinds...) }, "requires one of roles %v", kinds)
	s.record(ctx, user, CheckRole, resourceRole, "", d)
	return d.Allowed
}

func (s *AuthorizationService) HasRoleAtLeast(ctx context.Context, user *domain.User, kind domain.RoleKind) bool {
	d := roleDecision(user, func(u *domain.User) bool { return u.HasRoleAtLeast(kind) }, "requires role %s or higher", kind)
	s.record(ctx, user, CheckRoleHierarchy, resourceRole, string(kind), d)
	return d.Allowed
}

func roleDecision(user *domain.User, check func(*domain.User) bool, format string, args ...any) domain.Decision {
	switch {
	case user == nil:
		return domain.Deny(reasonNoUser)
	case user.RoleKind() == "":
		return domain.Deny(reasonNoActiveRole)
	case check(user):
		return domain.Allow()
	}
	return domain.Deny(format+", user has %s", append(args, user.RoleKind())...)
}

func (s *AuthorizationService) HasPermission(ctx context.Context, user *domain.User, perm domain.PermissionKind) bool {
	d := permissionDecision(user, func(u *domain.User) bool { return u.HasPermission(perm) }, "missing permission %s", perm)
	s.record(ctx, user, CheckPermission, perm.Resource(), string(perm), d)
	return d.Allowed
}

func (s *AuthorizationService) HasAnyPermission(ctx context.Context, user *domain.User, perms ...domain.PermissionKind) bool {
	d := permissionDecision(user, func(u *domain.User) bool { return u.HasAnyPermission(perms...) }, "requires any of permissions %v", perms)
	s.record(ctx, user, CheckPermission, firstResource(perms), "", d)
	return d.Allowed
}

func (s *AuthorizationService) HasAllPermissions(ctx context.Context, user *domain.User, perms ...domain.PermissionKind) bool {
	d := permissionDecision(user, func(u *domain.User) bool { return u.HasAllPermissions(perms...) }, "requires all of permissions %v", perms)
	s.record(ctx, user, CheckPermission, firstResource(perms), "", d)
	return d.Allowed
}

func permissionDecision(user *domain.User, check func(*domain.User) bool, format string, args ...any) domain.Decision {
	switch {
	case user == nil:
		return domain.Deny(reasonNoUser)
	case check(user):
		return domain.Allow()
	case user.RoleKind() == "":
		return domain.Deny(reasonNoActiveRole)
	}
	return domain.Deny(format, args...)
}

func firstResource(perms []domain.PermissionKind) string {
	if len(perms) == 0 {
		return resourcePermission
	}
	return perms[0].Resource()
}

// EffectivePermissions lists what the user may do. A user without an active
// role gets the empty set.
func (s *AuthorizationService) EffectivePermissions(ctx context.Context, user *domain.User) domain.PermissionSet {
	if user == nil {
		s.record(ctx, nil, CheckPermissionListing, resourcePermission, "", domain.Deny(reasonNoUser))
		return domain.PermissionSet{}
	}
	s.record(ctx, user, CheckPermissionListing, resourcePermission, user.ID, domain.Allow())
	return user.EffectivePermissions()
}

// CanAccessResource resolves resourceType:action against the permission
// catalog. Pairs outside the catalog are denied.
func (s *AuthorizationService) CanAccessResource(ctx context.Context, user *domain.User, resourceType, action string) bool {
	return s.CheckResourceAccess(ctx, user, resourceType, action).Allowed
}

// CheckResourceAccess is CanAccessResource with the reason attached.
func (s *AuthorizationService) CheckResourceAccess(ctx context.Context, user *domain.User, resourceType, action string) domain.Decision {
	var d domain.Decision
	perm, known := domain.LookupPermission(resourceType, action)
	switch {
	case user == nil:
		d = domain.Deny(reasonNoUser)
	case !known:
		d = domain.Deny("unknown permission %s:%s", resourceType, action)
	case user.HasPermission(perm):
		d = domain.Allow()
	default:
		d = domain.Deny("missing permission %s", perm)
	}
	s.record(ctx, user, CheckResourceAccess, resourceType, "", d)
	return d
}

// Decide evaluates a full access requirement as one decision.
func (s *AuthorizationService) Decide(ctx context.Context, user *domain.User, req domain.AccessRequirement) domain.Decision {
	d := req.Evaluate(user)
	resourceID := req.OwnerID
	if resourceID == "" {
		resourceID = req.OrganizationID
	}
	s.record(ctx, user, CheckAccessRequirement, req.Target(), resourceID, d)
	return d
}

func (s *AuthorizationService) CanReadTask(ctx context.Context, user *domain.User, task domain.Task) domain.Decision {
	d := task.ReadDecision(user)
	s.record(ctx, user, CheckTaskRead, resourceTask, task.ID, d)
	return d
}

func (s *AuthorizationService) CanModifyTask(ctx context.Context, user *domain.User, task domain.Task) domain.Decision {
	d := task.ModifyDecision(user)
	s.record(ctx, user, CheckTaskUpdate, resourceTask, task.ID, d)
	return d
}

func (s *AuthorizationService) CanDeleteTask(ctx context.Context, user *domain.User, task domain.Task) domain.Decision {
	d := task.DeleteDecision(user)
	s.record(ctx, user, CheckTaskDelete, resourceTask, task.ID, d)
	return d
}

// ListScope decides whether the user may list tasks at all and, if so, which
// slice of the organization they see.
func (s *AuthorizationService) ListScope(ctx context.Context, user *domain.User) (domain.TaskScope, domain.Decision) {
	var d domain.Decision
	switch {
	case user == nil:
		d = domain.Deny(reasonNoUser)
	case !user.HasPermission(domain.PermTaskRead):
		d = domain.Deny("missing permission %s", domain.PermTaskRead)
	default:
		d = domain.Allow()
	}
	s.record(ctx, user, CheckTaskListScope, resourceTask, "", d)
	if !d.Allowed {
		return domain.TaskScope{}, d
	}
	return domain.ListScopeFor(user), d
}

// CanGrantPermissions decides whether user may set perms as explicit grants
// on roleID.
func (s *AuthorizationService) CanGrantPermissions(ctx context.Context, user *domain.User, roleID string, perms []domain.PermissionKind) domain.Decision {
	d := domain.GrantDecision(user, perms)
	s.record(ctx, user, CheckPermissionGrant, resourceRole, roleID, d)
	return d
}

func (s *AuthorizationService) CanAssignRole(ctx context.Context, actor, target *domain.User, role domain.Role) domain.Decision {
	d := domain.RoleAssignmentDecision(actor, target, role)
	targetID := ""
	if target != nil {
		targetID = target.ID
	}
	s.record(ctx, actor, CheckRoleAssignment, "user", targetID, d)
	return d
}

func (s *AuthorizationService) record(ctx context.Context, user *domain.User, check, resourceType, resourceID string, d domain.Decision) {
	meta := RequestMetaFromContext(ctx)
	entry := domain.AuditEntry{
		Action:       check,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Success:      d.Allowed,
		Reason:       d.Reason,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}
	if user != nil {
		entry.UserID = user.ID
		entry.OrganizationID = user.OrganizationID
	}
	s.audit.Record(ctx, entry)
	s.metrics.ObserveDecision(check, d.Allowed)

	args := []any{
		"check", check,
		"user_id", entry.UserID,
		"organization_id", entry.OrganizationID,
		"resource", resourceType,
		"resource_id", resourceID,
		"allowed", d.Allowed,
	}
	if d.Allowed {
		s.logger.Debug(ctx, "rbac audit", args...)
		return
	}
	s.logger.Info(ctx, "rbac audit", append(args, "reason", d.Reason)...)
}
