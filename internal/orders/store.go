package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/royal-pizza/internal/aws"
	"github.com/imrishuroy/royal-pizza/internal/catalog"
)

// NumberPrefixIndex is the GSI keyed on number_prefix used for counting.
const NumberPrefixIndex = "number_prefix-index"

var (
	// ErrNotPersisted means the write succeeded but the record could not be read back.
	ErrNotPersisted = errors.New("order not found after create")
	// ErrDuplicateID means an order with the same id already exists.
	ErrDuplicateID = errors.New("order id already exists")
)

// Store encapsulates operations on the orders table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
	}
}

type itemRecord struct {
	ItemID       string  `dynamodbav:"item_id"`
	Kind         string  `dynamodbav:"kind"`
	PizzaID      string  `dynamodbav:"pizza_id,omitempty"`
	Instructions string  `dynamodbav:"instructions,omitempty"`
	Size         string  `dynamodbav:"size"`
	Quantity     int     `dynamodbav:"quantity"`
	UnitPrice    float64 `dynamodbav:"unit_price"`
	Subtotal     float64 `dynamodbav:"subtotal"`
}

// orderRecord is the shape persisted in the orders table.
type orderRecord struct {
	OrderID       string       `dynamodbav:"order_id"` // PK
	OrderNumber   string       `dynamodbav:"order_number"`
	NumberPrefix  string       `dynamodbav:"number_prefix"` // GSI partition key, e.g. RP-20260211-
	CustomerName  string       `dynamodbav:"customer_name"`
	CustomerPhone string       `dynamodbav:"customer_phone"`
	Items         []itemRecord `dynamodbav:"items"`
	PickupTime    time.Time    `dynamodbav:"pickup_time"`
	Status        string       `dynamodbav:"status"`
	TotalAmount   float64      `dynamodbav:"total_amount"`
	CreatedAt     time.Time    `dynamodbav:"created_at"`
}

// NumberPrefix returns everything up to and including the last '-' of an
// order number, which for RP-YYYYMMDD-NNN is the date scope.
func NumberPrefix(orderNumber string) string {
	i := strings.LastIndex(orderNumber, "-")
	if i < 0 {
		return orderNumber
	}
	return orderNumber[:i+1]
}

func toRecord(o Order) (orderRecord, error) {
	rec := orderRecord{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		NumberPrefix:  NumberPrefix(o.OrderNumber),
		CustomerName:  o.Customer.Name,
		CustomerPhone: o.Customer.Phone,
		Items:         make([]itemRecord, 0, len(o.Items)),
		PickupTime:    o.PickupTime.UTC(),
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt.UTC(),
	}
	for _, it := range o.Items {
		ir := itemRecord{
			ItemID:    it.ID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		}
		switch v := it.ItemType.(type) {
		case StandardPizza:
			ir.Kind, ir.PizzaID, ir.Size = KindStandard, v.PizzaID, string(v.Size)
		case CustomPizza:
			ir.Kind, ir.Instructions, ir.Size = KindCustom, v.Instructions, string(v.Size)
		default:
			return orderRecord{}, fmt.Errorf("item %s: unsupported item type %T", it.ID, it.ItemType)
		}
		rec.Items = append(rec.Items, ir)
	}
	return rec, nil
}

func (r orderRecord) toOrder() (Order, error) {
	o := Order{
		ID:          r.OrderID,
		OrderNumber: r.OrderNumber,
		Customer:    CustomerInfo{Name: r.CustomerName, Phone: r.CustomerPhone},
		Items:       make([]OrderItem, 0, len(r.Items)),
		PickupTime:  r.PickupTime,
		Status:      Status(r.Status),
		TotalAmount: r.TotalAmount,
		CreatedAt:   r.CreatedAt,
	}
	for _, ir := range r.Items {
		var it ItemType
		switch ir.Kind {
		case KindStandard:
			it = StandardPizza{PizzaID: ir.PizzaID, Size: catalog.Size(ir.Size)}
		case KindCustom:
			it = CustomPizza{Instructions: ir.Instructions, Size: catalog.Size(ir.Size)}
		default:
			return Order{}, fmt.Errorf("item %s: unknown kind %q", ir.ItemID, ir.Kind)
		}
		o.Items = append(o.Items, OrderItem{
			ID:        ir.ItemID,
			ItemType:  it,
			Quantity:  ir.Quantity,
			UnitPrice: ir.UnitPrice,
			Subtotal:  ir.Subtotal,
		})
	}
	return o, nil
}

// Create writes o and returns the stored representation, read back with a
// consistent read. ErrNotPersisted is returned if the read finds nothing.
func (s *Store) Create(ctx context.Context, o Order) (*Order, error) {
	rec, err := toRecord(o)
	if err != nil {
		return nil, err
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return nil, fmt.Errorf("put order %s: %w", o.ID, ErrDuplicateID)
		}
		return nil, fmt.Errorf("put order: %w", err)
	}

	stored, err := s.get(ctx, o.ID, true)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrNotPersisted
	}
	return stored, nil
}

// FindByID fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) FindByID(ctx context.Context, orderID string) (*Order, error) {
	return s.get(ctx, orderID, false)
}

func (s *Store) get(ctx context.Context, orderID string, consistent bool) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		ConsistentRead: &consistent,
	})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec orderRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	o, err := rec.toOrder()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CountByNumberPrefix counts orders whose number starts with prefix, e.g.
// "RP-20260211-". Sequence padding does not matter.
func (s *Store) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	input := &dyn.QueryInput{
		TableName:                 &s.tableName,
		IndexName:                 aws.String(NumberPrefixIndex),
		KeyConditionExpression:    aws.String("number_prefix = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":p": &types.AttributeValueMemberS{Value: prefix}},
		Select:                    types.SelectCount,
	}

	total := 0
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return 0, fmt.Errorf("count orders: %w", err)
		}
		total += int(out.Count)
		if len(out.LastEvaluatedKey) == 0 {
			return total, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// Ping checks that the orders table is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.DescribeTable(ctx, &dyn.DescribeTableInput{TableName: &s.tableName}); err != nil {
		return fmt.Errorf("describe table %s: %w", s.tableName, err)
	}
	return nil
}
