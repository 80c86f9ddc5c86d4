package dynamodb

import (
	"context"
	"time"

	"task-rbac/internal/domain"
)

type userRecord struct {
	PK             string    `dynamodbav:"PK"`
	SK             string    `dynamodbav:"SK"`
	EntityType     string    `dynamodbav:"EntityType"`
	ID             string    `dynamodbav:"ID"`
	Email          string    `dynamodbav:"Email"`
	Username       string    `dynamodbav:"Username"`
	PasswordHash   string    `dynamodbav:"PasswordHash,omitempty"`
	FirstName      string    `dynamodbav:"FirstName,omitempty"`
	LastName       string    `dynamodbav:"LastName,omitempty"`
	OrganizationID string    `dynamodbav:"OrganizationID"`
	RoleID         string    `dynamodbav:"RoleID"`
	Active         bool      `dynamodbav:"Active"`
	CreatedAt      time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt      time.Time `dynamodbav:"UpdatedAt"`
}

func toUserRecord(u domain.User) userRecord {
	return userRecord{
		PK:             userPK(u.ID),
		SK:             metaSK(),
		EntityType:     "USER",
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		PasswordHash:   u.PasswordHash,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		OrganizationID: u.OrganizationID,
		RoleID:         u.RoleID,
		Active:         u.Active,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// UserRepository stores users under their own partition; the role is
// referenced by id and resolved separately.
type UserRepository struct{ client *Client }

func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	return r.client.putNew(ctx, "DynamoDB.PutUser", toUserRecord(user))
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	return r.client.replace(ctx, "DynamoDB.UpdateUser", toUserRecord(user))
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (domain.User, error) {
	var rec userRecord
	if err := r.client.get(ctx, "DynamoDB.GetUser", userPK(userID), metaSK(), &rec); err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:             rec.ID,
		Email:          rec.Email,
		Username:       rec.Username,
		PasswordHash:   rec.PasswordHash,
		FirstName:      rec.FirstName,
		LastName:       rec.LastName,
		OrganizationID: rec.OrganizationID,
		RoleID:         rec.RoleID,
		Active:         rec.Active,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}
