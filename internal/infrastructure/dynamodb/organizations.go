package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-xray-sdk-go/xray"
	"task-rbac/internal/domain"
)

type organizationRecord struct {
	PK          string     `dynamodbav:"PK"`
	SK          string     `dynamodbav:"SK"`
	EntityType  string     `dynamodbav:"EntityType"`
	ID          string     `dynamodbav:"ID"`
	Name        string     `dynamodbav:"Name"`
	Description string     `dynamodbav:"Description"`
	ParentID    string     `dynamodbav:"ParentID,omitempty"`
	Active      bool       `dynamodbav:"Active"`
	CreatedAt   time.Time  `dynamodbav:"CreatedAt"`
	UpdatedAt   time.Time  `dynamodbav:"UpdatedAt"`
	DeletedAt   *time.Time `dynamodbav:"DeletedAt,omitempty"`
}

type OrganizationRepository struct{ client *Client }

func NewOrganizationRepository(client *Client) *OrganizationRepository {
	return &OrganizationRepository{client: client}
}

func (r *OrganizationRepository) Create(ctx context.Context, org domain.Organization) error {
	return r.client.putNew(ctx, "DynamoDB.PutOrganization", organizationRecord{
		PK:          orgPK(org.ID),
		SK:          metaSK(),
		EntityType:  "ORGANIZATION",
		ID:          org.ID,
		Name:        org.Name,
		Description: org.Description,
		ParentID:    org.ParentID,
		Active:      org.Active,
		CreatedAt:   org.CreatedAt,
		UpdatedAt:   org.UpdatedAt,
		DeletedAt:   org.DeletedAt,
	})
}

func (r *OrganizationRepository) Update(ctx context.Context, org domain.Organization) error {
	return xray.Capture(ctx, "DynamoDB.UpdateOrganization", func(ctx context.Context) error {
		_, err := r.client.db.UpdateItem(ctx, &awsv2dynamodb.UpdateItemInput{
			TableName:        aws.String(r.client.tableName),
			Key:              key(orgPK(org.ID), metaSK()),
			UpdateExpression: aws.String("SET #n = :n, #d = :d, Active = :a, UpdatedAt = :u"),
			ExpressionAttributeNames: map[string]string{
				"#n": "Name",
				"#d": "Description",
			},
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":n": &awsv2types.AttributeValueMemberS{Value: org.Name},
				":d": &awsv2types.AttributeValueMemberS{Value: org.Description},
				":a": &awsv2types.AttributeValueMemberBOOL{Value: org.Active},
				":u": &awsv2types.AttributeValueMemberS{Value: org.UpdatedAt.Format(time.RFC3339Nano)},
			},
			ConditionExpression: aws.String("attribute_exists(PK)"),
		})
		if isConditionalCheckFailure(err) {
			return domain.ErrNotFound
		}
		return err
	})
}

func (r *OrganizationRepository) GetByID(ctx context.Context, orgID string) (domain.Organization, error) {
	var rec organizationRecord
	if err := r.client.get(ctx, "DynamoDB.GetOrganization", orgPK(orgID), metaSK(), &rec); err != nil {
		return domain.Organization{}, err
	}
	return domain.Organization{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		ParentID:    rec.ParentID,
		Active:      rec.Active,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		DeletedAt:   rec.DeletedAt,
	}, nil
}
