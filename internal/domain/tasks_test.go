package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskReadDecision(t *testing.T) {
	creator := userWith(RoleViewer)
	creator.ID = "user-a"
	assignee := userWith(RoleViewer)
	assignee.ID = "user-b"
	bystander := userWith(RoleViewer)
	bystander.ID = "user-c"
	outsider := userWith(RoleViewer)
	outsider.ID = "user-d"
	outsider.OrganizationID = "org-2"

	public := Task{ID: "t-1", OrganizationID: "org-1", CreatedByID: "user-z", IsPublic: true}
	assert.True(t, public.ReadDecision(bystander).Allowed)
	assert.False(t, public.ReadDecision(outsider).Allowed)

	private := Task{ID: "t-2", OrganizationID: "org-1", CreatedByID: "user-a", AssigneeID: "user-b"}
	assert.True(t, private.ReadDecision(creator).Allowed)
	assert.True(t, private.ReadDecision(assignee).Allowed)
	assert.True(t, private.ReadDecision(bystander).Allowed, "viewer defaults include task:read")
	assert.False(t, private.ReadDecision(outsider).Allowed)

	d := private.ReadDecision(nil)
	assert.False(t, d.Allowed)
	assert.Equal(t, "no user found", d.Reason)
}

func TestTaskReadDecisionWithoutTaskRead(t *testing.T) {
	roleless := &User{ID: "user-c", OrganizationID: "org-1"}
	private := Task{ID: "t-2", OrganizationID: "org-1", CreatedByID: "user-a"}
	d := private.ReadDecision(roleless)
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "task:read")

	public := Task{ID: "t-3", OrganizationID: "org-1", CreatedByID: "user-a", IsPublic: true}
	assert.True(t, public.ReadDecision(roleless).Allowed)
}

func TestTaskWriteDecisions(t *testing.T) {
	admin := userWith(RoleAdmin)
	owner := userWith(RoleOwner)
	viewerWithGrant := userWith(RoleViewer, PermTaskUpdate, PermTaskDelete)
	plainViewer := userWith(RoleViewer)
	foreignAdmin := userWith(RoleAdmin)
	foreignAdmin.OrganizationID = "org-2"

	task := Task{ID: "t-1", OrganizationID: "org-1", CreatedByID: "someone", AssigneeID: "other"}

	assert.True(t, task.ModifyDecision(admin).Allowed)
	assert.True(t, task.DeleteDecision(owner).Allowed)
	assert.False(t, task.ModifyDecision(foreignAdmin).Allowed)

	d := task.ModifyDecision(viewerWithGrant)
	assert.False(t, d.Allowed, "viewer grant covers only linked tasks")
	assert.Contains(t, d.Reason, "admin/owner")

	d = task.ModifyDecision(plainViewer)
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "task:update")

	own := Task{ID: "t-2", OrganizationID: "org-1", CreatedByID: viewerWithGrant.ID}
	assert.True(t, own.ModifyDecision(viewerWithGrant).Allowed)
	assert.True(t, own.DeleteDecision(viewerWithGrant).Allowed)
	assert.False(t, own.ModifyDecision(plainViewer).Allowed)
}

func TestTaskSetStatusTracksCompletion(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	task := Task{Status: TaskTodo}

	task.SetStatus(TaskInProgress, now)
	assert.Nil(t, task.CompletedAt)

	task.SetStatus(TaskDone, now)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)

	task.SetStatus(TaskDone, now.Add(time.Hour))
	assert.Equal(t, now, *task.CompletedAt, "staying done keeps the first completion time")

	task.SetStatus(TaskInReview, now)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	task := Task{Status: TaskTodo, DueDate: &due}
	assert.True(t, task.IsOverdue(now))
	task.Status = TaskDone
	assert.False(t, task.IsOverdue(now))
	assert.False(t, (&Task{}).IsOverdue(now))
}

func TestListScopeFor(t *testing.T) {
	viewer := userWith(RoleViewer)
	scope := ListScopeFor(viewer)
	assert.Equal(t, TaskScope{OrganizationID: "org-1", VisibleToUserID: viewer.ID}, scope)

	assert.True(t, scope.Allows(Task{OrganizationID: "org-1", IsPublic: true}))
	assert.True(t, scope.Allows(Task{OrganizationID: "org-1", AssigneeID: viewer.ID}))
	assert.False(t, scope.Allows(Task{OrganizationID: "org-1", CreatedByID: "other"}))
	assert.False(t, scope.Allows(Task{OrganizationID: "org-2", IsPublic: true}))

	adminScope := ListScopeFor(userWith(RoleAdmin))
	assert.Empty(t, adminScope.VisibleToUserID)
	assert.True(t, adminScope.Allows(Task{OrganizationID: "org-1", CreatedByID: "other"}))
}

func TestTaskFilterMatches(t *testing.T) {
	public := true
	task := Task{Title: "Quarterly Report", Status: TaskTodo, Priority: PriorityHigh, IsPublic: true, AssigneeID: "u-2"}

	assert.True(t, TaskFilter{}.Matches(task))
	assert.True(t, TaskFilter{Search: "report", IsPublic: &public, Priority: PriorityHigh}.Matches(task))
	assert.False(t, TaskFilter{Status: TaskDone}.Matches(task))
	assert.False(t, TaskFilter{AssigneeID: "u-3"}.Matches(task))
}
