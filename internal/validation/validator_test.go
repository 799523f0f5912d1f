package validation

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/royal-pizza/internal/catalog"
	"github.com/imrishuroy/royal-pizza/internal/orders"
)

var now = time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC)

func validRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Customer: orders.CustomerInfo{Name: "Jo Lee", Phone: "555-0100"},
		Items: []OrderItemRequest{
			{ItemType: orders.StandardPizza{PizzaID: "margherita", Size: catalog.SizeMedium}, Quantity: 2},
		},
		PickupTime: now.Add(2 * time.Hour),
	}
}

func TestValidate_Valid(t *testing.T) {
	v := New(DefaultPickupLeadTime)
	assert.Empty(t, v.Validate(context.Background(), validRequest(), now))
}

func TestValidate_AccumulatesViolations(t *testing.T) {
	v := New(DefaultPickupLeadTime)
	req := validRequest()
	req.Customer.Name = "   "
	req.PickupTime = now.Add(10 * time.Minute)

	got := v.Validate(context.Background(), req, now)
	assert.Equal(t, []string{
		"Customer name is required.",
		"Pickup time must be at least 30 minutes from now.",
	}, got)
}

func TestValidate_EverythingWrong(t *testing.T) {
	v := New(DefaultPickupLeadTime)
	req := CreateOrderRequest{}

	got := v.Validate(context.Background(), req, now)
	assert.Equal(t, []string{
		"Customer name is required.",
		"Phone number is required.",
		"Pickup time must be at least 30 minutes from now.",
		"At least 1 item is required.",
	}, got)
}

func TestValidate_CustomerName(t *testing.T) {
	v := New(DefaultPickupLeadTime)
	cases := []struct {
		name string
		want string
	}{
		{"J", "Customer name must be at least 2 characters."},
		{"  J  ", "Customer name must be at least 2 characters."},
		{strings.Repeat("x", 101), "Customer name cannot exceed 100 characters."},
		{strings.Repeat("é", 100), ""},
		{"  " + strings.Repeat("x", 100) + "  ", ""},
	}
	for _, tc := range cases {
		req := validRequest()
		req.Customer.Name = tc.name
		got := v.Validate(context.Background(), req, now)
		if tc.want == "" {
			assert.Empty(t, got, tc.name)
			continue
		}
		assert.Equal(t, []string{tc.want}, got, tc.name)
	}
}

func TestValidate_PickupBoundary(t *testing.T) {
	v := New(DefaultPickupLeadTime)

	req := validRequest()
	req.PickupTime = now.Add(30 * time.Minute)
	assert.Empty(t, v.Validate(context.Background(), req, now))

	req.PickupTime = now.Add(30*time.Minute - time.Second)
	assert.Equal(t, []string{"Pickup time must be at least 30 minutes from now."}, v.Validate(context.Background(), req, now))

	longer := New(45 * time.Minute)
	req.PickupTime = now.Add(40 * time.Minute)
	assert.Equal(t, []string{"Pickup time must be at least 45 minutes from now."}, longer.Validate(context.Background(), req, now))
}

func TestValidate_Items(t *testing.T) {
	v := New(DefaultPickupLeadTime)
	req := validRequest()
	req.Items = []OrderItemRequest{
		{ItemType: orders.StandardPizza{PizzaID: "margherita", Size: catalog.SizeSmall}, Quantity: 0},
		{ItemType: orders.CustomPizza{Instructions: "too short", Size: catalog.SizeLarge}, Quantity: 1},
		{ItemType: orders.CustomPizza{Instructions: strings.Repeat("y", 501), Size: catalog.SizeLarge}, Quantity: -1},
		{ItemType: orders.StandardPizza{PizzaID: " ", Size: "Family"}, Quantity: 1},
		{ItemType: nil, Quantity: 1},
	}

	got := v.Validate(context.Background(), req, now)
	assert.Equal(t, []string{
		"Item 1 must have quantity >= 1.",
		"Item 2 custom instructions must be at least 10 characters.",
		"Item 3 must have quantity >= 1.",
		"Item 3 custom instructions cannot exceed 500 characters.",
		"Item 4 must reference a pizza.",
		"Item 4 has an invalid size.",
		"Item 5 must specify an item type.",
	}, got)
}

func TestValidate_CustomInstructionBounds(t *testing.T) {
	v := New(DefaultPickupLeadTime)
	for _, n := range []int{10, 400, 500} {
		req := validRequest()
		req.Items = []OrderItemRequest{{
			ItemType: orders.CustomPizza{Instructions: strings.Repeat("z", n), Size: catalog.SizeMedium},
			Quantity: 1,
		}}
		assert.Empty(t, v.Validate(context.Background(), req, now), n)
	}
}

func TestCreateOrderRequest_JSON(t *testing.T) {
	body := `{
		"customer": {"name": "Jo Lee", "phone": "555-0100"},
		"items": [
			{"item_type": {"type": "StandardPizza", "pizza_id": "margherita", "size": "Medium"}, "quantity": 2},
			{"item_type": {"type": "CustomPizza", "custom": {"instructions": "extra crispy, light sauce", "size": "Large"}}, "quantity": 1}
		],
		"pickup_time": "2026-02-11T12:00:00Z"
	}`
	var req CreateOrderRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.Len(t, req.Items, 2)
	assert.Equal(t, orders.StandardPizza{PizzaID: "margherita", Size: catalog.SizeMedium}, req.Items[0].ItemType)
	assert.Equal(t, orders.CustomPizza{Instructions: "extra crispy, light sauce", Size: catalog.SizeLarge}, req.Items[1].ItemType)
	assert.Equal(t, 2, req.Items[0].Quantity)
	assert.True(t, req.PickupTime.Equal(now.Add(2*time.Hour)))

	out, err := json.Marshal(req.Items[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"item_type":{"type":"StandardPizza","pizza_id":"margherita","size":"Medium"},"quantity":2}`, string(out))

	err = json.Unmarshal([]byte(`{"items":[{"item_type":{"type":"Calzone"},"quantity":1}]}`), &req)
	assert.Error(t, err)
}
