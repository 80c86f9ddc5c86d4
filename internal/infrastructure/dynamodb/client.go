package dynamodb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	awsv2xray "github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
	"task-rbac/internal/domain"
)

// API is the subset of the DynamoDB client the repositories use.
type API interface {
	GetItem(ctx context.Context, params *awsv2dynamodb.GetItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *awsv2dynamodb.PutItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *awsv2dynamodb.UpdateItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *awsv2dynamodb.QueryInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.QueryOutput, error)
}

type Client struct {
	db        API
	tableName string
}

func NewClient(ctx context.Context, region, tableName string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	awsv2xray.AWSV2Instrumentor(&cfg.APIOptions)
	return NewClientWithAPI(awsv2dynamodb.NewFromConfig(cfg), tableName), nil
}

func NewClientWithAPI(db API, tableName string) *Client {
	return &Client{db: db, tableName: tableName}
}

func orgPK(orgID string) string   { return "ORG#" + orgID }
func metaSK() string              { return "META" }
func roleSK(roleID string) string { return "ROLE#" + roleID }
func taskSK(taskID string) string { return "TASK#" + taskID }
func userPK(userID string) string { return "USER#" + userID }
func auditPK(orgID string) string { return "AUDIT#" + orgID }

func isConditionalCheckFailure(err error) bool {
	var condErr *awsv2types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}

func key(pk, sk string) map[string]awsv2types.AttributeValue {
	return map[string]awsv2types.AttributeValue{
		"PK": &awsv2types.AttributeValueMemberS{Value: pk},
		"SK": &awsv2types.AttributeValueMemberS{Value: sk},
	}
}

// putNew writes an item that must not exist yet; a clash is ErrConflict.
func (c *Client) putNew(ctx context.Context, segment string, record any) error {
	return c.put(ctx, segment, record, "attribute_not_exists(PK) AND attribute_not_exists(SK)", domain.ErrConflict)
}

// replace overwrites an existing item; a missing item is ErrNotFound.
func (c *Client) replace(ctx context.Context, segment string, record any) error {
	return c.put(ctx, segment, record, "attribute_exists(PK)", domain.ErrNotFound)
}

func (c *Client) put(ctx context.Context, segment string, record any, condition string, onConditionFail error) error {
	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return err
	}
	return xray.Capture(ctx, segment, func(ctx context.Context) error {
		_, err := c.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName:           aws.String(c.tableName),
			Item:                av,
			ConditionExpression: aws.String(condition),
		})
		if isConditionalCheckFailure(err) {
			return onConditionFail
		}
		return err
	})
}

func (c *Client) get(ctx context.Context, segment, pk, sk string, out any) error {
	var resp *awsv2dynamodb.GetItemOutput
	err := xray.Capture(ctx, segment, func(ctx context.Context) error {
		var e error
		resp, e = c.db.GetItem(ctx, &awsv2dynamodb.GetItemInput{
			TableName: aws.String(c.tableName),
			Key:       key(pk, sk),
		})
		return e
	})
	if err != nil {
		return err
	}
	if resp.Item == nil {
		return domain.ErrNotFound
	}
	return attributevalue.UnmarshalMap(resp.Item, out)
}

// queryPrefix returns every item under pk whose sort key starts with prefix,
// following pagination.
func (c *Client) queryPrefix(ctx context.Context, segment, pk, prefix string) ([]map[string]awsv2types.AttributeValue, error) {
	var items []map[string]awsv2types.AttributeValue
	err := xray.Capture(ctx, segment, func(ctx context.Context) error {
		p := awsv2dynamodb.NewQueryPaginator(c.db, &awsv2dynamodb.QueryInput{
			TableName:              aws.String(c.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":pk": &awsv2types.AttributeValueMemberS{Value: pk},
				":sk": &awsv2types.AttributeValueMemberS{Value: prefix},
			},
		})
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return err
			}
			items = append(items, page.Items...)
		}
		return nil
	})
	return items, err
}
