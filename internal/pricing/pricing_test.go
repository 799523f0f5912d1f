package pricing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/royal-pizza/internal/catalog"
	"github.com/imrishuroy/royal-pizza/internal/orders"
)

type menu map[string]*catalog.Pizza

func (m menu) GetPizza(ctx context.Context, id string) (*catalog.Pizza, error) {
	return m[id], nil
}

type brokenMenu struct{}

func (brokenMenu) GetPizza(ctx context.Context, id string) (*catalog.Pizza, error) {
	return nil, errors.New("connection reset")
}

func testMenu() menu {
	return menu{
		"margherita": {ID: "margherita", Name: "Margherita", Price: catalog.Price{Small: 9.5, Medium: 12.5, Large: 15.5}, IsAvailable: true},
		"truffle":    {ID: "truffle", Name: "Truffle Funghi", Price: catalog.Price{Small: 13, Medium: 16, Large: 19}},
	}
}

func TestResolve_Standard(t *testing.T) {
	ctx := context.Background()
	for size, want := range map[catalog.Size]float64{
		catalog.SizeSmall:  9.5,
		catalog.SizeMedium: 12.5,
		catalog.SizeLarge:  15.5,
	} {
		got, err := Resolve(ctx, orders.StandardPizza{PizzaID: "margherita", Size: size}, testMenu())
		require.NoError(t, err)
		assert.Equal(t, want, got, size)
	}
}

func TestResolve_StandardViolations(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		item orders.StandardPizza
		msg  string
	}{
		{"missing", orders.StandardPizza{PizzaID: "calzone", Size: catalog.SizeSmall}, "Pizza with id calzone not found"},
		{"unavailable", orders.StandardPizza{PizzaID: "truffle", Size: catalog.SizeSmall}, "Pizza Truffle Funghi is currently unavailable."},
		{"bad size", orders.StandardPizza{PizzaID: "margherita", Size: "Family"}, `Invalid size "Family" for pizza margherita.`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(ctx, tc.item, testMenu())
			var v *Violation
			require.ErrorAs(t, err, &v)
			assert.Equal(t, tc.msg, v.Message)
		})
	}
}

func TestResolve_LookupFailureIsNotViolation(t *testing.T) {
	_, err := Resolve(context.Background(), orders.StandardPizza{PizzaID: "margherita", Size: catalog.SizeSmall}, brokenMenu{})
	require.Error(t, err)
	var v *Violation
	assert.False(t, errors.As(err, &v))
}

func TestResolve_CustomFlatBySize(t *testing.T) {
	ctx := context.Background()
	short := strings.Repeat("a", 10)
	long := strings.Repeat("b", 400)

	for size, want := range map[catalog.Size]float64{
		catalog.SizeSmall:  10.99,
		catalog.SizeMedium: 14.99,
		catalog.SizeLarge:  17.99,
	} {
		a, err := Resolve(ctx, orders.CustomPizza{Instructions: short, Size: size}, brokenMenu{})
		require.NoError(t, err)
		b, err := Resolve(ctx, orders.CustomPizza{Instructions: long, Size: size}, brokenMenu{})
		require.NoError(t, err)
		assert.Equal(t, want, a)
		assert.Equal(t, a, b)
	}

	_, err := Resolve(ctx, orders.CustomPizza{Instructions: short, Size: "Huge"}, brokenMenu{})
	var v *Violation
	assert.ErrorAs(t, err, &v)
}

func TestResolve_NilItemType(t *testing.T) {
	_, err := Resolve(context.Background(), nil, testMenu())
	assert.Error(t, err)
}
