package numbering

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/royal-pizza/internal/aws"
)

// DynamoAllocator keeps one counter row per date in a DynamoDB table and
// increments it atomically. Only the first increment of a day counts the
// stored orders, to seed the row so switching strategies mid-day keeps the
// sequence.
type DynamoAllocator struct {
	client    aws.DynamoDBAPI
	tableName string
	counter   Counter
	ttl       time.Duration
}

// NewDynamoAllocator returns an allocator using tableName (partition key
// "counter_id") and counter for seeding.
func NewDynamoAllocator(client aws.DynamoDBAPI, tableName string, counter Counter) *DynamoAllocator {
	return &DynamoAllocator{
		client:    client,
		tableName: tableName,
		counter:   counter,
		ttl:       48 * time.Hour,
	}
}

func (a *DynamoAllocator) Allocate(ctx context.Context, now time.Time) (string, error) {
	prefix := Prefix(now)

	// Fast path: the day's row exists, so no count is needed.
	out, err := a.increment(ctx, prefix, &dyn.UpdateItemInput{
		UpdateExpression:    aws.String("SET seq = seq + :inc"),
		ConditionExpression: aws.String("attribute_exists(counter_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inc": &types.AttributeValueMemberN{Value: "1"},
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		out, err = a.seed(ctx, prefix, now)
	}
	if err != nil {
		return "", err
	}

	attr, ok := out.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return "", fmt.Errorf("increment counter: seq missing from response")
	}
	seq, err := strconv.Atoi(attr.Value)
	if err != nil {
		return "", fmt.Errorf("increment counter: %w", err)
	}
	return Format(now, seq), nil
}

// seed creates the day's row from the stored order count. Concurrent seeders
// both land on the same atomic increment and still get distinct numbers.
func (a *DynamoAllocator) seed(ctx context.Context, prefix string, now time.Time) (*dyn.UpdateItemOutput, error) {
	base, err := a.counter.CountByNumberPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	return a.increment(ctx, prefix, &dyn.UpdateItemInput{
		UpdateExpression: aws.String("SET seq = if_not_exists(seq, :base) + :inc, expires_at = if_not_exists(expires_at, :exp)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":base": &types.AttributeValueMemberN{Value: strconv.Itoa(base)},
			":inc":  &types.AttributeValueMemberN{Value: "1"},
			":exp":  &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(a.ttl).Unix(), 10)},
		},
	})
}

func (a *DynamoAllocator) increment(ctx context.Context, prefix string, in *dyn.UpdateItemInput) (*dyn.UpdateItemOutput, error) {
	in.TableName = &a.tableName
	in.Key = map[string]types.AttributeValue{
		"counter_id": &types.AttributeValueMemberS{Value: prefix},
	}
	in.ReturnValues = types.ReturnValueUpdatedNew
	out, err := a.client.UpdateItem(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("increment counter: %w", err)
	}
	return out, nil
}
