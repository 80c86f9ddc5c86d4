package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"task-rbac/internal/domain"
	"task-rbac/internal/ports"
)

type CreateTaskInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	AssigneeID  string              `json:"assignee_id"`
	IsPublic    bool                `json:"is_public"`
	Tags        []string            `json:"tags"`
	DueDate     *time.Time          `json:"due_date"`
}

// UpdateTaskInput changes only the non-nil fields. An empty AssigneeID
// unassigns the task.
type UpdateTaskInput struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *domain.TaskStatus   `json:"status"`
	Priority    *domain.TaskPriority `json:"priority"`
	AssigneeID  *string              `json:"assignee_id"`
	IsPublic    *bool                `json:"is_public"`
	Tags        *[]string            `json:"tags"`
	DueDate     *time.Time           `json:"due_date"`
}

type TaskService struct {
	tasks  ports.TaskRepository
	users  ports.UserRepository
	authz  *AuthorizationService
	logger ports.Logger
	now    func() time.Time
	newID  func() string
}

func NewTaskService(tasks ports.TaskRepository, users ports.UserRepository, authz *AuthorizationService, logger ports.Logger) *TaskService {
	return &TaskService{
		tasks:  tasks,
		users:  users,
		authz:  authz,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func (s *TaskService) Create(ctx context.Context, user *domain.User, in CreateTaskInput) (domain.Task, error) {
	if d := s.authz.CheckResourceAccess(ctx, user, resourceTask, "create"); !d.Allowed {
		return domain.Task{}, d.Err()
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Task{}, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if in.Status == "" {
		in.Status = domain.TaskTodo
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !in.Status.Valid() || !in.Priority.Valid() {
		return domain.Task{}, fmt.Errorf("%w: unknown status or priority", domain.ErrInvalidInput)
	}
	if in.AssigneeID != "" {
		if err := s.checkAssignee(ctx, user, in.AssigneeID); err != nil {
			return domain.Task{}, err
		}
	}

	now := s.now()
	task := domain.Task{
		ID:             s.newID(),
		Title:          title,
		Description:    in.Description,
		Priority:       in.Priority,
		CreatedByID:    user.ID,
		AssigneeID:     in.AssigneeID,
		OrganizationID: user.OrganizationID,
		IsPublic:       in.IsPublic,
		Tags:           normalizeTags(in.Tags),
		DueDate:        in.DueDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	task.SetStatus(in.Status, now)
	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Error(ctx, "failed to create task", "error", err, "organization_id", task.OrganizationID)
		return domain.Task{}, err
	}
	s.logger.Info(ctx, "task created", "task_id", task.ID, "organization_id", task.OrganizationID)
	return task, nil
}

// Get looks the task up inside the caller's organization only; tasks of other
// organizations are reported as not found.
func (s *TaskService) Get(ctx context.Context, user *domain.User, taskID string) (domain.Task, error) {
	task, err := s.load(ctx, user, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if d := s.authz.CanReadTask(ctx, user, task); !d.Allowed {
		return domain.Task{}, d.Err()
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, user *domain.User, filter domain.TaskFilter) ([]domain.Task, error) {
	scope, d := s.authz.ListScope(ctx, user)
	if !d.Allowed {
		return nil, d.Err()
	}
	return s.tasks.List(ctx, scope, filter)
}

func (s *TaskService) Update(ctx context.Context, user *domain.User, taskID string, in UpdateTaskInput) (domain.Task, error) {
	task, err := s.load(ctx, user, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if d := s.authz.CanModifyTask(ctx, user, task); !d.Allowed {
		return domain.Task{}, d.Err()
	}
	if in.AssigneeID != nil && *in.AssigneeID != task.AssigneeID {
		if !s.authz.HasPermission(ctx, user, domain.PermTaskAssign) {
			return domain.Task{}, domain.Deny("missing permission %s", domain.PermTaskAssign).Err()
		}
		if *in.AssigneeID != "" {
			if err := s.ensureSameOrganization(ctx, user, *in.AssigneeID); err != nil {
				return domain.Task{}, err
			}
		}
		task.AssigneeID = *in.AssigneeID
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return domain.Task{}, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return domain.Task{}, fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidInput, *in.Priority)
		}
		task.Priority = *in.Priority
	}
	if in.IsPublic != nil {
		task.IsPublic = *in.IsPublic
	}
	if in.Tags != nil {
		task.Tags = normalizeTags(*in.Tags)
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	now := s.now()
	if in.Status != nil {
		if !in.Status.Valid() {
			return domain.Task{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *in.Status)
		}
		task.SetStatus(*in.Status, now)
	}
	task.UpdatedAt = now

	if err := s.tasks.Update(ctx, task); err != nil {
		s.logger.Error(ctx, "failed to update task", "error", err, "task_id", task.ID)
		return domain.Task{}, err
	}
	return task, nil
}

// Delete tombstones the task; it disappears from reads and listings.
func (s *TaskService) Delete(ctx context.Context, user *domain.User, taskID string) error {
	task, err := s.load(ctx, user, taskID)
	if err != nil {
		return err
	}
	if d := s.authz.CanDeleteTask(ctx, user, task); !d.Allowed {
		return d.Err()
	}
	now := s.now()
	task.DeletedAt = &now
	task.UpdatedAt = now
	if err := s.tasks.Update(ctx, task); err != nil {
		s.logger.Error(ctx, "failed to delete task", "error", err, "task_id", task.ID)
		return err
	}
	s.logger.Info(ctx, "task deleted", "task_id", task.ID, "organization_id", task.OrganizationID)
	return nil
}

// load fetches a live task from the caller's organization. Without a
// principal the read check is still run so the denial is audited.
func (s *TaskService) load(ctx context.Context, user *domain.User, taskID string) (domain.Task, error) {
	if user == nil {
		return domain.Task{}, s.authz.CanReadTask(ctx, nil, domain.Task{ID: taskID}).Err()
	}
	if strings.TrimSpace(taskID) == "" {
		return domain.Task{}, fmt.Errorf("%w: task id is required", domain.ErrInvalidInput)
	}
	task, err := s.tasks.GetByID(ctx, user.OrganizationID, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if task.DeletedAt != nil {
		return domain.Task{}, domain.ErrNotFound
	}
	return task, nil
}

func (s *TaskService) checkAssignee(ctx context.Context, user *domain.User, assigneeID string) error {
	if !s.authz.HasPermission(ctx, user, domain.PermTaskAssign) {
		return domain.Deny("missing permission %s", domain.PermTaskAssign).Err()
	}
	return s.ensureSameOrganization(ctx, user, assigneeID)
}

func (s *TaskService) ensureSameOrganization(ctx context.Context, user *domain.User, assigneeID string) error {
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: assignee %s not found", domain.ErrInvalidInput, assigneeID)
	}
	if err != nil {
		return err
	}
	if assignee.OrganizationID != user.OrganizationID {
		return fmt.Errorf("%w: assignee must belong to the same organization", domain.ErrInvalidInput)
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
