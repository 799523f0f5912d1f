package cli_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/royal-pizza/internal/catalog"
	"github.com/imrishuroy/royal-pizza/internal/cli"
	"github.com/imrishuroy/royal-pizza/internal/ordering"
	"github.com/imrishuroy/royal-pizza/internal/orders"
)

type fakeBackend struct {
	forced   bool
	applied  []string
	orders   map[string]orders.Order
	pizzas   []catalog.Pizza
	closed   bool
	seedErr  error
	lastPath string
}

func (f *fakeBackend) Seed(ctx context.Context, force bool) (catalog.SeedResult, error) {
	f.forced = force
	if f.seedErr != nil {
		return catalog.SeedResult{}, f.seedErr
	}
	if force {
		return catalog.SeedResult{Inserted: 6}, nil
	}
	return catalog.SeedResult{Inserted: 2, Skipped: 4}, nil
}

func (f *fakeBackend) Migrate(ctx context.Context) ([]string, error) { return f.applied, nil }

func (f *fakeBackend) GetOrder(ctx context.Context, id string) (*orders.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ordering.NotFoundError("Order with id " + id + " not found")
	}
	return &o, nil
}

func (f *fakeBackend) Menu(ctx context.Context) ([]catalog.Pizza, error) { return f.pizzas, nil }

func (f *fakeBackend) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

func run(t *testing.T, b *fakeBackend, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest(func(ctx context.Context, path string) (cli.Backend, error) {
		b.lastPath = path
		return b, nil
	})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSeedCommand(t *testing.T) {
	b := &fakeBackend{}
	out, err := run(t, b, "seed", "--config", "royal.yaml")
	require.NoError(t, err)
	assert.Equal(t, "inserted 2, skipped 4\n", out)
	assert.False(t, b.forced)
	assert.True(t, b.closed)
	assert.Equal(t, "royal.yaml", b.lastPath)

	out, err = run(t, b, "seed", "--force")
	require.NoError(t, err)
	assert.Equal(t, "inserted 6, skipped 0\n", out)
	assert.True(t, b.forced)

	b.seedErr = errors.New("table missing")
	_, err = run(t, b, "seed")
	assert.ErrorContains(t, err, "seed failed: table missing")
}

func TestMigrateCommand(t *testing.T) {
	out, err := run(t, &fakeBackend{})
	require.NoError(t, err)
	assert.Contains(t, out, "pizzactl")

	out, err = run(t, &fakeBackend{}, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "schema is up to date\n", out)

	out, err = run(t, &fakeBackend{applied: []string{"0001_create_pizzas", "0002_create_orders"}}, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "applied 0001_create_pizzas\napplied 0002_create_orders\n", out)
}

func TestOrderShowCommand(t *testing.T) {
	b := &fakeBackend{orders: map[string]orders.Order{
		"o1": {
			ID:          "o1",
			OrderNumber: "RP-20260211-003",
			Customer:    orders.CustomerInfo{Name: "Jo Lee", Phone: "555-0100"},
			Items: []orders.OrderItem{
				{ItemType: orders.StandardPizza{PizzaID: "margherita", Size: catalog.SizeMedium}, Quantity: 2, UnitPrice: 12.5, Subtotal: 25},
			},
			PickupTime:  time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC),
			Status:      orders.StatusPending,
			TotalAmount: 25,
		},
	}}

	out, err := run(t, b, "order", "show", "o1")
	require.NoError(t, err)
	assert.Contains(t, out, "RP-20260211-003")
	assert.Contains(t, out, "2 x margherita (Medium)")
	assert.Contains(t, out, "$25.00")
	assert.Contains(t, out, "@ $12.50")

	_, err = run(t, b, "order", "show", "missing")
	assert.True(t, ordering.IsNotFound(err))

	_, err = run(t, b, "order", "show")
	assert.Error(t, err)
}

func TestMenuCommand(t *testing.T) {
	out, err := run(t, &fakeBackend{pizzas: []catalog.Pizza{
		{ID: "margherita", Name: "Margherita", Price: catalog.Price{Small: 9.5, Medium: 12.5, Large: 15.5}},
	}}, "menu")
	require.NoError(t, err)
	assert.Contains(t, out, "Margherita")
	assert.Contains(t, out, "$15.50")

	out, err = run(t, &fakeBackend{}, "menu")
	require.NoError(t, err)
	assert.Contains(t, out, "no pizzas available")
}

func TestOpenerError(t *testing.T) {
	cmd := cli.NewRootCmdForTest(func(ctx context.Context, path string) (cli.Backend, error) {
		return nil, errors.New("bad config")
	})
	cmd.SetArgs([]string{"menu"})
	cmd.SetOut(new(bytes.Buffer))
	assert.ErrorContains(t, cmd.Execute(), "bad config")
}
