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

// PrincipalService turns an authenticated subject into the user record the
// decision engine works with.
type PrincipalService struct {
	users ports.UserRepository
	roles ports.RoleRepository
}

func NewPrincipalService(users ports.UserRepository, roles ports.RoleRepository) *PrincipalService {
	return &PrincipalService{users: users, roles: roles}
}

// Resolve loads the user and attaches their role. A missing role leaves
// User.Role nil, which every check treats as holding nothing.
func (s *PrincipalService) Resolve(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, fmt.Errorf("%w: user is inactive", domain.ErrUnauthenticated)
	}
	if user.RoleID != "" {
		role, err := s.roles.GetByID(ctx, user.OrganizationID, user.RoleID)
		switch {
		case err == nil:
			user.Role = &role
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}
	return &user, nil
}

type OrganizationService struct {
	repo  ports.OrganizationRepository
	authz *AuthorizationService
}

func NewOrganizationService(repo ports.OrganizationRepository, authz *AuthorizationService) *OrganizationService {
	return &OrganizationService{repo: repo, authz: authz}
}

// Create adds an organization below the caller's own one.
func (s *OrganizationService) Create(ctx context.Context, user *domain.User, org domain.Organization) (domain.Organization, error) {
	if d := s.authz.Decide(ctx, user, domain.AccessRequirement{Permissions: []domain.PermissionKind{domain.PermOrganizationCreate}}); !d.Allowed {
		return domain.Organization{}, d.Err()
	}
	org.Name = strings.TrimSpace(org.Name)
	if org.Name == "" {
		return domain.Organization{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	org.ID = uuid.NewString()
	org.ParentID = user.OrganizationID
	org.Active = true
	org.CreatedAt = now
	org.UpdatedAt = now
	if err := s.repo.Create(ctx, org); err != nil {
		return domain.Organization{}, err
	}
	return org, nil
}

func (s *OrganizationService) Get(ctx context.Context, user *domain.User, orgID string) (domain.Organization, error) {
	req := domain.AccessRequirement{
		Permissions:         []domain.PermissionKind{domain.PermOrganizationRead},
		RequireOrganization: true,
		OrganizationID:      orgID,
	}
	if d := s.authz.Decide(ctx, user, req); !d.Allowed {
		return domain.Organization{}, d.Err()
	}
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return domain.Organization{}, err
	}
	if org.DeletedAt != nil {
		return domain.Organization{}, domain.ErrNotFound
	}
	return org, nil
}

func (s *OrganizationService) Update(ctx context.Context, user *domain.User, org domain.Organization) (domain.Organization, error) {
	req := domain.AccessRequirement{
		Permissions:         []domain.PermissionKind{domain.PermOrganizationUpdate},
		RequireOrganization: true,
		OrganizationID:      org.ID,
	}
	if d := s.authz.Decide(ctx, user, req); !d.Allowed {
		return domain.Organization{}, d.Err()
	}
	current, err := s.repo.GetByID(ctx, org.ID)
	if err != nil {
		return domain.Organization{}, err
	}
	if name := strings.TrimSpace(org.Name); name != "" {
		current.Name = name
	}
	current.Description = org.Description
	current.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, current); err != nil {
		return domain.Organization{}, err
	}
	return current, nil
}

type RoleInput struct {
	Name        string                  `json:"name"`
	Kind        string                  `json:"kind"`
	Description string                  `json:"description"`
	Permissions []domain.PermissionKind `json:"permissions"`
	Active      *bool                   `json:"active"`
}

type RoleService struct {
	repo  ports.RoleRepository
	authz *AuthorizationService
}

func NewRoleService(repo ports.RoleRepository, authz *AuthorizationService) *RoleService {
	return &RoleService{repo: repo, authz: authz}
}

// roleRequirement demands perm plus a role at least as high as the kind being
// managed, so an Admin cannot mint or edit Owner roles.
func roleRequirement(perm domain.PermissionKind, kind domain.RoleKind) domain.AccessRequirement {
	return domain.AccessRequirement{
		Roles:            []domain.RoleKind{kind},
		AllowInheritance: true,
		Permissions:      []domain.PermissionKind{perm},
	}
}

func (s *RoleService) Create(ctx context.Context, user *domain.User, in RoleInput) (domain.Role, error) {
	kind, err := domain.ParseRoleKind(in.Kind)
	if err != nil {
		return domain.Role{}, fmt.Errorf("%w: unknown role kind %q", domain.ErrInvalidInput, in.Kind)
	}
	if d := s.authz.Decide(ctx, user, roleRequirement(domain.PermRoleCreate, kind)); !d.Allowed {
		return domain.Role{}, d.Err()
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Role{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	grants, err := rolePermissions(in.Permissions)
	if err != nil {
		return domain.Role{}, err
	}
	id := uuid.NewString()
	if in.Permissions != nil {
		if d := s.authz.CanGrantPermissions(ctx, user, id, in.Permissions); !d.Allowed {
			return domain.Role{}, d.Err()
		}
	}
	now := time.Now().UTC()
	role := domain.Role{
		ID:             id,
		Name:           name,
		Kind:           kind,
		Description:    in.Description,
		OrganizationID: user.OrganizationID,
		Active:         in.Active == nil || *in.Active,
		Permissions:    grants,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, role); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

// Update replaces the explicit grants and metadata. The kind is fixed.
func (s *RoleService) Update(ctx context.Context, user *domain.User, roleID string, in RoleInput) (domain.Role, error) {
	if user == nil {
		return domain.Role{}, s.authz.Decide(ctx, nil, domain.AccessRequirement{}).Err()
	}
	role, err := s.load(ctx, user.OrganizationID, roleID)
	if err != nil {
		return domain.Role{}, err
	}
	if d := s.authz.Decide(ctx, user, roleRequirement(domain.PermRoleUpdate, role.Kind)); !d.Allowed {
		return domain.Role{}, d.Err()
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		role.Name = name
	}
	if in.Description != "" {
		role.Description = in.Description
	}
	if in.Permissions != nil {
		grants, err := rolePermissions(in.Permissions)
		if err != nil {
			return domain.Role{}, err
		}
		if d := s.authz.CanGrantPermissions(ctx, user, role.ID, in.Permissions); !d.Allowed {
			return domain.Role{}, d.Err()
		}
		role.Permissions = grants
	}
	if in.Active != nil {
		role.Active = *in.Active
	}
	role.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, role); err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

// Delete tombstones the role. Users still pointing at it hold no role.
func (s *RoleService) Delete(ctx context.Context, user *domain.User, roleID string) error {
	if user == nil {
		return s.authz.Decide(ctx, nil, domain.AccessRequirement{}).Err()
	}
	role, err := s.load(ctx, user.OrganizationID, roleID)
	if err != nil {
		return err
	}
	if d := s.authz.Decide(ctx, user, roleRequirement(domain.PermRoleDelete, role.Kind)); !d.Allowed {
		return d.Err()
	}
	now := time.Now().UTC()
	role.DeletedAt = &now
	role.Active = false
	role.UpdatedAt = now
	return s.repo.Update(ctx, role)
}

func (s *RoleService) List(ctx context.Context, user *domain.User) ([]domain.Role, error) {
	if d := s.authz.Decide(ctx, user, domain.AccessRequirement{Permissions: []domain.PermissionKind{domain.PermRoleRead}}); !d.Allowed {
		return nil, d.Err()
	}
	roles, err := s.repo.ListByOrganization(ctx, user.OrganizationID)
	if err != nil {
		return nil, err
	}
	live := roles[:0]
	for _, r := range roles {
		if r.DeletedAt == nil {
			live = append(live, r)
		}
	}
	return live, nil
}

func (s *RoleService) load(ctx context.Context, orgID, roleID string) (domain.Role, error) {
	if roleID == "" {
		return domain.Role{}, domain.ErrInvalidInput
	}
	role, err := s.repo.GetByID(ctx, orgID, roleID)
	if err != nil {
		return domain.Role{}, err
	}
	if role.DeletedAt != nil {
		return domain.Role{}, domain.ErrNotFound
	}
	return role, nil
}

func rolePermissions(perms []domain.PermissionKind) ([]domain.RolePermission, error) {
	out := make([]domain.RolePermission, 0, len(perms))
	for _, p := range perms {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: unknown permission %q", domain.ErrInvalidInput, p)
		}
		out = append(out, domain.RolePermission{Kind: p, Active: true})
	}
	return out, nil
}

type UserService struct {
	users ports.UserRepository
	roles ports.RoleRepository
	authz *AuthorizationService
}

func NewUserService(users ports.UserRepository, roles ports.RoleRepository, authz *AuthorizationService) *UserService {
	return &UserService{users: users, roles: roles, authz: authz}
}

func (s *UserService) Get(ctx context.Context, user *domain.User, userID string) (domain.User, error) {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}
	req := domain.AccessRequirement{
		Permissions:         []domain.PermissionKind{domain.PermUserRead},
		RequireOrganization: true,
		OrganizationID:      target.OrganizationID,
	}
	if d := s.authz.Decide(ctx, user, req); !d.Allowed {
		if err != nil {
			return domain.User{}, err
		}
		return domain.User{}, d.Err()
	}
	if err != nil {
		return domain.User{}, err
	}
	return target, nil
}

// AssignRole moves a user of the caller's organization onto another role.
func (s *UserService) AssignRole(ctx context.Context, user *domain.User, userID, roleID string) (domain.User, error) {
	if userID == "" || roleID == "" {
		return domain.User{}, domain.ErrInvalidInput
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if target.RoleID != "" {
		if current, err := s.roles.GetByID(ctx, target.OrganizationID, target.RoleID); err == nil {
			target.Role = &current
		}
	}
	role, err := s.roles.GetByID(ctx, target.OrganizationID, roleID)
	if err != nil {
		return domain.User{}, err
	}
	if d := s.authz.CanAssignRole(ctx, user, &target, role); !d.Allowed {
		return domain.User{}, d.Err()
	}
	target.RoleID = role.ID
	target.Role = &role
	target.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, target); err != nil {
		return domain.User{}, err
	}
	return target, nil
}

type PermissionService struct {
	authz *AuthorizationService
}

func NewPermissionService(authz *AuthorizationService) *PermissionService {
	return &PermissionService{authz: authz}
}

// Catalog lists every permission kind the system knows.
func (s *PermissionService) Catalog(ctx context.Context, user *domain.User) ([]domain.PermissionKind, error) {
	if !s.authz.HasPermission(ctx, user, domain.PermPermissionRead) {
		return nil, domain.Deny("missing permission %s", domain.PermPermissionRead).Err()
	}
	return domain.Catalog(), nil
}

// Effective lists what the caller may do.
func (s *PermissionService) Effective(ctx context.Context, user *domain.User) []domain.PermissionKind {
	return s.authz.EffectivePermissions(ctx, user).Slice()
}
