package validation

import (
	"encoding/json"
	"time"

	"github.com/imrishuroy/royal-pizza/internal/orders"
)

// OrderItemRequest is one requested line: a standard or custom pizza and a quantity.
type OrderItemRequest struct {
	ItemType orders.ItemType
	Quantity int
}

type orderItemRequestJSON struct {
	ItemType json.RawMessage `json:"item_type"`
	Quantity int             `json:"quantity"`
}

func (r OrderItemRequest) MarshalJSON() ([]byte, error) {
	it, err := orders.MarshalItemType(r.ItemType)
	if err != nil {
		return nil, err
	}
	return json.Marshal(orderItemRequestJSON{ItemType: it, Quantity: r.Quantity})
}

func (r *OrderItemRequest) UnmarshalJSON(data []byte) error {
	var raw orderItemRequestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	it, err := orders.UnmarshalItemType(raw.ItemType)
	if err != nil {
		return err
	}
	*r = OrderItemRequest{ItemType: it, Quantity: raw.Quantity}
	return nil
}

// CreateOrderRequest is the payload for POST /api/orders.
type CreateOrderRequest struct {
	Customer   orders.CustomerInfo `json:"customer"`
	Items      []OrderItemRequest  `json:"items"`
	PickupTime time.Time           `json:"pickup_time"`
}
