package domain

import (
	"strings"
	"time"
)

// SetStatus moves the task to status and keeps CompletedAt in step: it is set
// when the task enters done and cleared when it leaves.
func (t *Task) SetStatus(status TaskStatus, now time.Time) {
	if status == TaskDone && t.Status != TaskDone {
		completed := now
		t.CompletedAt = &completed
	} else if status != TaskDone {
		t.CompletedAt = nil
	}
	t.Status = status
}

func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskDone {
		return false
	}
	return now.After(*t.DueDate)
}

func (t *Task) IsAssigned() bool { return t.AssigneeID != "" }

// ReadDecision reports whether u may read the task.
func (t *Task) ReadDecision(u *User) Decision {
	if u == nil {
		return Deny("no user found")
	}
	if t.IsPublic && u.BelongsToOrganization(t.OrganizationID) {
		return Allow()
	}
	if u.IsOwner(t.CreatedByID) {
		return Allow()
	}
	if t.AssigneeID != "" && u.IsOwner(t.AssigneeID) {
		return Allow()
	}
	if u.BelongsToOrganization(t.OrganizationID) && u.HasPermission(PermTaskRead) {
		return Allow()
	}
	if !u.BelongsToOrganization(t.OrganizationID) {
		return Deny("user does not belong to the task's organization")
	}
	return Deny("missing permission %s on private task", PermTaskRead)
}

// ModifyDecision reports whether u may update the task.
func (t *Task) ModifyDecision(u *User) Decision {
	return t.writeDecision(u, PermTaskUpdate)
}

// DeleteDecision reports whether u may delete the task.
func (t *Task) DeleteDecision(u *User) Decision {
	return t.writeDecision(u, PermTaskDelete)
}

// writeDecision requires the permission and the organization, then either a
// personal link to the task or an Admin/Owner role kind. The role check is
// applied even though Viewer defaults never include write permissions, so an
// explicit grant to a Viewer still only covers tasks they are linked to.
func (t *Task) writeDecision(u *User, perm PermissionKind) Decision {
	if u == nil {
		return Deny("no user found")
	}
	if !u.HasPermission(perm) {
		return Deny("missing permission %s", perm)
	}
	if !u.BelongsToOrganization(t.OrganizationID) {
		return Deny("user does not belong to the task's organization")
	}
	if u.IsOwner(t.CreatedByID) {
		return Allow()
	}
	if t.AssigneeID != "" && u.IsOwner(t.AssigneeID) {
		return Allow()
	}
	if u.HasAnyRole(RoleAdmin, RoleOwner) {
		return Allow()
	}
	return Deny("only the creator, the assignee or an admin/owner may %s this task", perm.Action())
}

// ListScopeFor restricts listings to the user's organization. Admin and Owner
// kinds see every task there; everyone else only public tasks and tasks they
// created or were assigned.
func ListScopeFor(u *User) TaskScope {
	scope := TaskScope{OrganizationID: u.OrganizationID}
	if !u.HasAnyRole(RoleAdmin, RoleOwner) {
		scope.VisibleToUserID = u.ID
	}
	return scope
}

// Allows applies the scope to a single task.
func (s TaskScope) Allows(t Task) bool {
	if t.OrganizationID != s.OrganizationID || t.DeletedAt != nil {
		return false
	}
	if s.VisibleToUserID == "" {
		return true
	}
	return t.IsPublic || t.CreatedByID == s.VisibleToUserID || t.AssigneeID == s.VisibleToUserID
}

func (f TaskFilter) Matches(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.AssigneeID != "" && t.AssigneeID != f.AssigneeID {
		return false
	}
	if f.CreatedByID != "" && t.CreatedByID != f.CreatedByID {
		return false
	}
	if f.IsPublic != nil && t.IsPublic != *f.IsPublic {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) && !strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}
