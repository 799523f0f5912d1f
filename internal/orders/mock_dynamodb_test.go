package orders

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo stores orders keyed by order_id and answers the number_prefix
// index query pageSize items at a time.
type mockDynamo struct {
	mu         sync.Mutex
	items      map[string]map[string]types.AttributeValue
	pageSize   int
	queries    int
	dropWrites bool
	putErr     error
	getErr     error
	queryErr   error
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: map[string]map[string]types.AttributeValue{}, pageSize: 2}
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return nil, m.putErr
	}
	pk := params.Item["order_id"].(*types.AttributeValueMemberS).Value
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(order_id)" {
		if _, exists := m.items[pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	if !m.dropWrites {
		m.items[pk] = params.Item
	}
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	pk := params.Key["order_id"].(*types.AttributeValueMemberS).Value
	item, ok := m.items[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return nil, errors.New("not supported")
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if params.IndexName == nil || *params.IndexName != NumberPrefixIndex {
		return nil, errors.New("unexpected index")
	}
	want := params.ExpressionAttributeValues[":p"].(*types.AttributeValueMemberS).Value

	var keys []string
	for k, item := range m.items {
		if p, ok := item["number_prefix"].(*types.AttributeValueMemberS); ok && p.Value == want {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if params.ExclusiveStartKey != nil {
		start, _ = strconv.Atoi(params.ExclusiveStartKey["offset"].(*types.AttributeValueMemberN).Value)
	}
	end := start + m.pageSize
	if end > len(keys) {
		end = len(keys)
	}
	out := &dyn.QueryOutput{Count: int32(end - start)}
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"offset": &types.AttributeValueMemberN{Value: strconv.Itoa(end)},
		}
	}
	return out, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	return nil, errors.New("not supported")
}

func (m *mockDynamo) DescribeTable(ctx context.Context, params *dyn.DescribeTableInput, optFns ...func(*dyn.Options)) (*dyn.DescribeTableOutput, error) {
	return &dyn.DescribeTableOutput{}, nil
}
