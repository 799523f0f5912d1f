package orders

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/imrishuroy/royal-pizza/internal/catalog"
)

// Status is the lifecycle state of an order. Orders are created Pending;
// the remaining values exist for display and are never assigned here.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusPreparing Status = "Preparing"
	StatusReady     Status = "Ready"
	StatusPickedUp  Status = "PickedUp"
	StatusCancelled Status = "Cancelled"
)

// CustomerInfo is embedded in the order, not stored separately.
type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Order is the aggregate persisted once at creation.
type Order struct {
	ID          string       `json:"id"`
	OrderNumber string       `json:"order_number"`
	Customer    CustomerInfo `json:"customer"`
	Items       []OrderItem  `json:"items"`
	PickupTime  time.Time    `json:"pickup_time"`
	Status      Status       `json:"status"`
	TotalAmount float64      `json:"total_amount"`
	CreatedAt   time.Time    `json:"created_at"`
}

// OrderItem is a priced line. UnitPrice is the price at creation time.
type OrderItem struct {
	ID        string
	ItemType  ItemType
	Quantity  int
	UnitPrice float64
	Subtotal  float64
}

// Subtotal is quantity times unit price, unrounded.
func Subtotal(quantity int, unitPrice float64) float64 {
	return float64(quantity) * unitPrice
}

type orderItemJSON struct {
	ID        string          `json:"id"`
	ItemType  json.RawMessage `json:"item_type"`
	Quantity  int             `json:"quantity"`
	UnitPrice float64         `json:"unit_price"`
	Subtotal  float64         `json:"subtotal"`
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	it, err := MarshalItemType(i.ItemType)
	if err != nil {
		return nil, err
	}
	return json.Marshal(orderItemJSON{
		ID:        i.ID,
		ItemType:  it,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice,
		Subtotal:  i.Subtotal,
	})
}

func (i *OrderItem) UnmarshalJSON(data []byte) error {
	var raw orderItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	it, err := UnmarshalItemType(raw.ItemType)
	if err != nil {
		return err
	}
	*i = OrderItem{
		ID:        raw.ID,
		ItemType:  it,
		Quantity:  raw.Quantity,
		UnitPrice: raw.UnitPrice,
		Subtotal:  raw.Subtotal,
	}
	return nil
}

// Item kinds as they appear in the "type" tag.
const (
	KindStandard = "StandardPizza"
	KindCustom   = "CustomPizza"
)

// ItemType is either StandardPizza or CustomPizza. The unexported method
// closes the set so type switches over it can be exhaustive.
type ItemType interface {
	Kind() string
	ItemSize() catalog.Size
	isItemType()
}

// StandardPizza references a menu pizza at a size.
type StandardPizza struct {
	PizzaID string
	Size    catalog.Size
}

func (StandardPizza) Kind() string             { return KindStandard }
func (s StandardPizza) ItemSize() catalog.Size { return s.Size }
func (StandardPizza) isItemType()              {}

// CustomPizza is free-text instructions at a size, priced flat by size.
type CustomPizza struct {
	Instructions string
	Size         catalog.Size
}

func (CustomPizza) Kind() string             { return KindCustom }
func (c CustomPizza) ItemSize() catalog.Size { return c.Size }
func (CustomPizza) isItemType()              {}

type customJSON struct {
	Instructions string       `json:"instructions"`
	Size         catalog.Size `json:"size"`
}

type itemTypeJSON struct {
	Type    string       `json:"type"`
	PizzaID string       `json:"pizza_id,omitempty"`
	Size    catalog.Size `json:"size,omitempty"`
	Custom  *customJSON  `json:"custom,omitempty"`
}

// MarshalItemType encodes it with an internal "type" tag:
//
//	{"type":"StandardPizza","pizza_id":"margherita","size":"Medium"}
//	{"type":"CustomPizza","custom":{"instructions":"...","size":"Large"}}
func MarshalItemType(it ItemType) ([]byte, error) {
	switch v := it.(type) {
	case StandardPizza:
		return json.Marshal(itemTypeJSON{Type: KindStandard, PizzaID: v.PizzaID, Size: v.Size})
	case CustomPizza:
		return json.Marshal(itemTypeJSON{Type: KindCustom, Custom: &customJSON{Instructions: v.Instructions, Size: v.Size}})
	case nil:
		return nil, fmt.Errorf("item type is missing")
	default:
		return nil, fmt.Errorf("unsupported item type %T", it)
	}
}

// UnmarshalItemType decodes the tagged form written by MarshalItemType.
func UnmarshalItemType(data []byte) (ItemType, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("item_type is required")
	}
	var raw itemTypeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("item_type: %w", err)
	}
	switch raw.Type {
	case KindStandard:
		return StandardPizza{PizzaID: raw.PizzaID, Size: raw.Size}, nil
	case KindCustom:
		if raw.Custom == nil {
			return nil, fmt.Errorf("item_type: CustomPizza requires a custom object")
		}
		return CustomPizza{Instructions: raw.Custom.Instructions, Size: raw.Custom.Size}, nil
	default:
		return nil, fmt.Errorf("item_type: unknown type %q", raw.Type)
	}
}
