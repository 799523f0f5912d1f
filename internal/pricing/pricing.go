// Package pricing resolves the unit price of an order line.
package pricing

import (
	"context"
	"fmt"

	"github.com/imrishuroy/royal-pizza/internal/catalog"
	"github.com/imrishuroy/royal-pizza/internal/orders"
)

// CustomPrices is the flat price of a custom pizza by size.
var CustomPrices = catalog.Price{
	Small:  10.99,
	Medium: 14.99,
	Large:  17.99,
}

// PizzaLookup fetches a menu pizza; (nil, nil) means it does not exist.
type PizzaLookup interface {
	GetPizza(ctx context.Context, id string) (*catalog.Pizza, error)
}

// Violation is a caller-correctable pricing problem such as an unknown or
// unavailable pizza.
type Violation struct {
	Message string
}

func (v *Violation) Error() string { return v.Message }

// Resolve returns the unit price of it. Violations are returned as *Violation;
// any other error comes from the lookup.
func Resolve(ctx context.Context, it orders.ItemType, lookup PizzaLookup) (float64, error) {
	switch v := it.(type) {
	case orders.StandardPizza:
		pizza, err := lookup.GetPizza(ctx, v.PizzaID)
		if err != nil {
			return 0, fmt.Errorf("lookup pizza %s: %w", v.PizzaID, err)
		}
		if pizza == nil {
			return 0, &Violation{Message: fmt.Sprintf("Pizza with id %s not found", v.PizzaID)}
		}
		if !pizza.IsAvailable {
			return 0, &Violation{Message: fmt.Sprintf("Pizza %s is currently unavailable.", pizza.Name)}
		}
		price, err := pizza.Price.For(v.Size)
		if err != nil {
			return 0, &Violation{Message: fmt.Sprintf("Invalid size %q for pizza %s.", v.Size, v.PizzaID)}
		}
		return price, nil
	case orders.CustomPizza:
		price, err := CustomPrices.For(v.Size)
		if err != nil {
			return 0, &Violation{Message: fmt.Sprintf("Invalid size %q for custom pizza.", v.Size)}
		}
		return price, nil
	default:
		return 0, fmt.Errorf("unsupported item type %T", it)
	}
}
