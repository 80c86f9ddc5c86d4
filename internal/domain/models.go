package domain

import "time"

type Organization struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ParentID    string     `json:"parent_id,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

type Role struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Kind           RoleKind         `json:"kind"`
	Description    string           `json:"description,omitempty"`
	OrganizationID string           `json:"organization_id"`
	Active         bool             `json:"active"`
	Permissions    []RolePermission `json:"permissions,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	DeletedAt      *time.Time       `json:"deleted_at,omitempty"`
}

// RolePermission is an explicit grant on a role. Inactive grants are ignored.
type RolePermission struct {
	Kind   PermissionKind `json:"kind"`
	Active bool           `json:"active"`
}

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	FirstName      string    `json:"first_name,omitempty"`
	LastName       string    `json:"last_name,omitempty"`
	OrganizationID string    `json:"organization_id"`
	RoleID         string    `json:"role_id"`
	Role           *Role     `json:"role,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskInReview   TaskStatus = "in_review"
	TaskDone       TaskStatus = "done"
	TaskCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskInReview, TaskDone, TaskCancelled:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	CreatedByID    string       `json:"created_by_id"`
	AssigneeID     string       `json:"assignee_id,omitempty"`
	OrganizationID string       `json:"organization_id"`
	IsPublic       bool         `json:"is_public"`
	Tags           []string     `json:"tags"`
	DueDate        *time.Time   `json:"due_date,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	DeletedAt      *time.Time   `json:"-"`
}

// TaskFilter narrows a task listing. Zero values do not filter.
type TaskFilter struct {
	Status      TaskStatus
	Priority    TaskPriority
	AssigneeID  string
	CreatedByID string
	IsPublic    *bool
	Search      string
}

// TaskScope is the visibility boundary applied to a listing before any
// TaskFilter. When VisibleToUserID is set only public tasks and tasks created
// by or assigned to that user are returned.
type TaskScope struct {
	OrganizationID  string
	VisibleToUserID string
}
