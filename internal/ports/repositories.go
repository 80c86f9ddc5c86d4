package ports

import (
	"context"

	"task-rbac/internal/domain"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org domain.Organization) error
	Update(ctx context.Context, org domain.Organization) error
	GetByID(ctx context.Context, orgID string) (domain.Organization, error)
}

type RoleRepository interface {
	Create(ctx context.Context, role domain.Role) error
	Update(ctx context.Context, role domain.Role) error
	GetByID(ctx context.Context, orgID, roleID string) (domain.Role, error)
	ListByOrganization(ctx context.Context, orgID string) ([]domain.Role, error)
}

type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	Update(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, userID string) (domain.User, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) error
	Update(ctx context.Context, task domain.Task) error
	GetByID(ctx context.Context, orgID, taskID string) (domain.Task, error)
	List(ctx context.Context, scope domain.TaskScope, filter domain.TaskFilter) ([]domain.Task, error)
}
