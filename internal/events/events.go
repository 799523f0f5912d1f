// Package events announces persisted orders to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imrishuroy/royal-pizza/internal/orders"
)

// TypeOrderPlaced is the event_type attribute of OrderPlaced messages.
const TypeOrderPlaced = "order.placed"

// OrderPlaced is published after an order has been stored.
type OrderPlaced struct {
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	TotalAmount   float64   `json:"total_amount"`
	PickupTime    time.Time `json:"pickup_time"`
	ItemCount     int       `json:"item_count"`
	PlacedAt      time.Time `json:"placed_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// NewOrderPlaced builds the event for a stored order.
func NewOrderPlaced(o orders.Order, correlationID string) OrderPlaced {
	count := 0
	for _, it := range o.Items {
		count += it.Quantity
	}
	return OrderPlaced{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		TotalAmount:   o.TotalAmount,
		PickupTime:    o.PickupTime,
		ItemCount:     count,
		PlacedAt:      o.CreatedAt,
		CorrelationID: correlationID,
	}
}

// Decode parses a message body written by a Publisher.
func Decode(body []byte) (OrderPlaced, error) {
	var ev OrderPlaced
	if err := json.Unmarshal(body, &ev); err != nil {
		return OrderPlaced{}, fmt.Errorf("decode order placed: %w", err)
	}
	if ev.OrderID == "" {
		return OrderPlaced{}, fmt.Errorf("decode order placed: missing order_id")
	}
	return ev, nil
}

// Publisher delivers OrderPlaced events.
type Publisher interface {
	Publish(ctx context.Context, ev OrderPlaced) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, OrderPlaced) error { return nil }
