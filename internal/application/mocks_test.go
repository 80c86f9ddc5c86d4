package application

import (
	"context"

	"github.com/stretchr/testify/mock"
	"task-rbac/internal/adapters/audit"
	"task-rbac/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Debug(context.Context, string, ...any) {}

type countingMetrics struct {
	calls map[string]int
}

func (m *countingMetrics) ObserveDecision(check string, allowed bool) {
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.calls[check+"/"+outcome]++
}

func newEngine() (*AuthorizationService, *audit.Log) {
	log := audit.NewLog()
	return NewAuthorizationService(log, nil, nopLogger{}), log
}

func testUser(id string, kind domain.RoleKind, grants ...domain.PermissionKind) *domain.User {
	role := &domain.Role{ID: "role-" + string(kind), Kind: kind, OrganizationID: "org-1", Active: true}
	for _, g := range grants {
		role.Permissions = append(role.Permissions, domain.RolePermission{Kind: g, Active: true})
	}
	return &domain.User{ID: id, OrganizationID: "org-1", RoleID: role.ID, Role: role, Active: true}
}

type taskRepoMock struct{ mock.Mock }

func (m *taskRepoMock) Create(ctx context.Context, task domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *taskRepoMock) Update(ctx context.Context, task domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *taskRepoMock) GetByID(ctx context.Context, orgID, taskID string) (domain.Task, error) {
	args := m.Called(ctx, orgID, taskID)
	return args.Get(0).(domain.Task), args.Error(1)
}

func (m *taskRepoMock) List(ctx context.Context, scope domain.TaskScope, filter domain.TaskFilter) ([]domain.Task, error) {
	args := m.Called(ctx, scope, filter)
	return args.Get(0).([]domain.Task), args.Error(1)
}

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoMock) Update(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userRepoMock) GetByID(ctx context.Context, userID string) (domain.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.User), args.Error(1)
}

type roleRepoMock struct{ mock.Mock }

func (m *roleRepoMock) Create(ctx context.Context, role domain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *roleRepoMock) Update(ctx context.Context, role domain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *roleRepoMock) GetByID(ctx context.Context, orgID, roleID string) (domain.Role, error) {
	args := m.Called(ctx, orgID, roleID)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *roleRepoMock) ListByOrganization(ctx context.Context, orgID string) ([]domain.Role, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).([]domain.Role), args.Error(1)
}

type orgRepoMock struct{ mock.Mock }

func (m *orgRepoMock) Create(ctx context.Context, org domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *orgRepoMock) Update(ctx context.Context, org domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *orgRepoMock) GetByID(ctx context.Context, orgID string) (domain.Organization, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).(domain.Organization), args.Error(1)
}
