package dynamodb

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeTable is an in-memory single table supporting the expressions the
// repositories issue.
type fakeTable struct {
	mu    sync.Mutex
	items map[string]map[string]awsv2types.AttributeValue
}

func newFakeTable() *fakeTable {
	return &fakeTable{items: map[string]map[string]awsv2types.AttributeValue{}}
}

func str(av awsv2types.AttributeValue) string {
	if s, ok := av.(*awsv2types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func itemKey(item map[string]awsv2types.AttributeValue) string {
	return str(item["PK"]) + "|" + str(item["SK"])
}

func conditionFailed() error {
	return &awsv2types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func checkCondition(condition *string, exists bool) error {
	if condition == nil {
		return nil
	}
	switch {
	case strings.HasPrefix(*condition, "attribute_not_exists") && exists:
		return conditionFailed()
	case strings.HasPrefix(*condition, "attribute_exists") && !exists:
		return conditionFailed()
	}
	return nil
}

func (f *fakeTable) GetItem(_ context.Context, in *awsv2dynamodb.GetItemInput, _ ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &awsv2dynamodb.GetItemOutput{Item: f.items[itemKey(in.Key)]}, nil
}

func (f *fakeTable) PutItem(_ context.Context, in *awsv2dynamodb.PutItemInput, _ ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := itemKey(in.Item)
	_, exists := f.items[k]
	if err := checkCondition(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	f.items[k] = in.Item
	return &awsv2dynamodb.PutItemOutput{}, nil
}

// UpdateItem understands "SET a = :a, #b = :b" expressions only.
func (f *fakeTable) UpdateItem(_ context.Context, in *awsv2dynamodb.UpdateItemInput, _ ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := itemKey(in.Key)
	item, exists := f.items[k]
	if err := checkCondition(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	updated := make(map[string]awsv2types.AttributeValue, len(item))
	for name, v := range item {
		updated[name] = v
	}
	for _, clause := range strings.Split(strings.TrimPrefix(aws.ToString(in.UpdateExpression), "SET "), ",") {
		name, placeholder, _ := strings.Cut(clause, "=")
		name, placeholder = strings.TrimSpace(name), strings.TrimSpace(placeholder)
		if alias, ok := in.ExpressionAttributeNames[name]; ok {
			name = alias
		}
		updated[name] = in.ExpressionAttributeValues[placeholder]
	}
	f.items[k] = updated
	return &awsv2dynamodb.UpdateItemOutput{}, nil
}

// Query returns one item per page to exercise pagination.
func (f *fakeTable) Query(_ context.Context, in *awsv2dynamodb.QueryInput, _ ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pk := str(in.ExpressionAttributeValues[":pk"])
	prefix := str(in.ExpressionAttributeValues[":sk"])
	var keys []string
	for k, item := range f.items {
		if str(item["PK"]) == pk && strings.HasPrefix(str(item["SK"]), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ExclusiveStartKey != nil {
		after := itemKey(in.ExclusiveStartKey)
		start = sort.SearchStrings(keys, after)
		if start < len(keys) && keys[start] == after {
			start++
		}
	}
	out := &awsv2dynamodb.QueryOutput{}
	if start < len(keys) {
		item := f.items[keys[start]]
		out.Items = []map[string]awsv2types.AttributeValue{item}
		if start+1 < len(keys) {
			out.LastEvaluatedKey = map[string]awsv2types.AttributeValue{"PK": item["PK"], "SK": item["SK"]}
		}
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

func (f *fakeTable) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
