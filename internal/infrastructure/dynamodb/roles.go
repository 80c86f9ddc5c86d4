package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"task-rbac/internal/domain"
)

type rolePermissionRecord struct {
	Kind   string `dynamodbav:"Kind"`
	Active bool   `dynamodbav:"Active"`
}

type roleRecord struct {
	PK             string                 `dynamodbav:"PK"`
	SK             string                 `dynamodbav:"SK"`
	EntityType     string                 `dynamodbav:"EntityType"`
	ID             string                 `dynamodbav:"ID"`
	Name           string                 `dynamodbav:"Name"`
	Kind           string                 `dynamodbav:"Kind"`
	Description    string                 `dynamodbav:"Description"`
	OrganizationID string                 `dynamodbav:"OrganizationID"`
	Active         bool                   `dynamodbav:"Active"`
	Permissions    []rolePermissionRecord `dynamodbav:"Permissions"`
	CreatedAt      time.Time              `dynamodbav:"CreatedAt"`
	UpdatedAt      time.Time              `dynamodbav:"UpdatedAt"`
	DeletedAt      *time.Time             `dynamodbav:"DeletedAt,omitempty"`
}

func toRoleRecord(role domain.Role) roleRecord {
	perms := make([]rolePermissionRecord, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		perms = append(perms, rolePermissionRecord{Kind: string(p.Kind), Active: p.Active})
	}
	return roleRecord{
		PK:             orgPK(role.OrganizationID),
		SK:             roleSK(role.ID),
		EntityType:     "ROLE",
		ID:             role.ID,
		Name:           role.Name,
		Kind:           string(role.Kind),
		Description:    role.Description,
		OrganizationID: role.OrganizationID,
		Active:         role.Active,
		Permissions:    perms,
		CreatedAt:      role.CreatedAt,
		UpdatedAt:      role.UpdatedAt,
		DeletedAt:      role.DeletedAt,
	}
}

// toRole keeps stored grants whose kind is no longer in the catalog; they
// never match a lookup.
func (rec roleRecord) toRole() domain.Role {
	perms := make([]domain.RolePermission, 0, len(rec.Permissions))
	for _, p := range rec.Permissions {
		perms = append(perms, domain.RolePermission{Kind: domain.PermissionKind(p.Kind), Active: p.Active})
	}
	return domain.Role{
		ID:             rec.ID,
		Name:           rec.Name,
		Kind:           domain.RoleKind(rec.Kind),
		Description:    rec.Description,
		OrganizationID: rec.OrganizationID,
		Active:         rec.Active,
		Permissions:    perms,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
		DeletedAt:      rec.DeletedAt,
	}
}

type RoleRepository struct{ client *Client }

func NewRoleRepository(client *Client) *RoleRepository {
	return &RoleRepository{client: client}
}

func (r *RoleRepository) Create(ctx context.Context, role domain.Role) error {
	return r.client.putNew(ctx, "DynamoDB.PutRole", toRoleRecord(role))
}

func (r *RoleRepository) Update(ctx context.Context, role domain.Role) error {
	return r.client.replace(ctx, "DynamoDB.UpdateRole", toRoleRecord(role))
}

func (r *RoleRepository) GetByID(ctx context.Context, orgID, roleID string) (domain.Role, error) {
	var rec roleRecord
	if err := r.client.get(ctx, "DynamoDB.GetRole", orgPK(orgID), roleSK(roleID), &rec); err != nil {
		return domain.Role{}, err
	}
	return rec.toRole(), nil
}

func (r *RoleRepository) ListByOrganization(ctx context.Context, orgID string) ([]domain.Role, error) {
	items, err := r.client.queryPrefix(ctx, "DynamoDB.QueryRoles", orgPK(orgID), "ROLE#")
	if err != nil {
		return nil, err
	}
	roles := make([]domain.Role, 0, len(items))
	for _, item := range items {
		var rec roleRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, err
		}
		roles = append(roles, rec.toRole())
	}
	return roles, nil
}
