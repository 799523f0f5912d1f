package main

import (
	"fmt"
	"time"

	"github.com/imrishuroy/royal-pizza/internal/orders"
)

// Ticket is the kitchen view of an order.
type Ticket struct {
	OrderNumber string
	PickupTime  time.Time
	Customer    string
	Lines       []string
}

// NewTicket renders one line per order item, e.g. "2x Medium margherita".
func NewTicket(o orders.Order) Ticket {
	t := Ticket{
		OrderNumber: o.OrderNumber,
		PickupTime:  o.PickupTime,
		Customer:    o.Customer.Name,
		Lines:       make([]string, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		t.Lines = append(t.Lines, fmt.Sprintf("%dx %s", it.Quantity, describe(it.ItemType)))
	}
	return t
}

func describe(it orders.ItemType) string {
	switch v := it.(type) {
	case orders.StandardPizza:
		return fmt.Sprintf("%s %s", v.Size, v.PizzaID)
	case orders.CustomPizza:
		return fmt.Sprintf("%s custom: %s", v.Size, v.Instructions)
	default:
		return "unknown item"
	}
}
