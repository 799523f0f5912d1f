package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/royal-pizza/internal/aws"
)

// ErrExists is returned by Insert when the pizza id is already taken.
var ErrExists = errors.New("pizza already exists")

// Store reads and seeds the pizzas table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewStore creates a new catalog Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{client: client, tableName: tableName}
}

// GetPizza fetches a pizza by id. Returns (nil, nil) if not found.
func (s *Store) GetPizza(ctx context.Context, id string) (*Pizza, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"pizza_id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get pizza: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Pizza
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal pizza: %w", err)
	}
	return &p, nil
}

// ListAvailable returns every pizza flagged available, ordered by name.
func (s *Store) ListAvailable(ctx context.Context) ([]Pizza, error) {
	input := &dyn.ScanInput{
		TableName:                 &s.tableName,
		FilterExpression:          aws.String("is_available = :yes"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":yes": &types.AttributeValueMemberBOOL{Value: true}},
	}

	var pizzas []Pizza
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan pizzas: %w", err)
		}
		var page []Pizza
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal pizzas: %w", err)
		}
		pizzas = append(pizzas, page...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	sort.Slice(pizzas, func(i, j int) bool { return pizzas[i].Name < pizzas[j].Name })
	return pizzas, nil
}

// Insert writes p. Unless overwrite is set the write is conditional on the id
// being unused and ErrExists is returned when it is taken.
func (s *Store) Insert(ctx context.Context, p Pizza, overwrite bool) error {
	if !p.Price.Valid() {
		return fmt.Errorf("pizza %s: negative price", p.ID)
	}
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal pizza: %w", err)
	}
	input := &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}
	if !overwrite {
		input.ConditionExpression = aws.String("attribute_not_exists(pizza_id)")
	}
	if _, err := s.client.PutItem(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrExists
		}
		return fmt.Errorf("put pizza: %w", err)
	}
	return nil
}

// Ping checks that the pizzas table is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.DescribeTable(ctx, &dyn.DescribeTableInput{TableName: &s.tableName}); err != nil {
		return fmt.Errorf("describe table %s: %w", s.tableName, err)
	}
	return nil
}
