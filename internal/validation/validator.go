package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/royal-pizza/internal/orders"
)

// Limits enforced on every order.
const (
	MinNameLength         = 2
	MaxNameLength         = 100
	MinOrderItems         = 1
	MinInstructionsLength = 10
	MaxInstructionsLength = 500
	DefaultPickupLeadTime = 30 * time.Minute
)

// violationTag marks errors reported by the order struct validation; the
// human-readable message travels in the field error's Param.
const violationTag = "order"

type nowKey struct{}

// Validator checks CreateOrderRequest values and reports every violation.
type Validator struct {
	v        *validatorv10.Validate
	leadTime time.Duration
}

// New returns a Validator requiring pickup at least leadTime after "now".
func New(leadTime time.Duration) *Validator {
	v := validatorv10.New()
	val := &Validator{v: v, leadTime: leadTime}
	v.RegisterStructValidationCtx(val.createOrderStructValidation, CreateOrderRequest{})
	return val
}

// Validate returns the violation messages for req in a stable order; an
// empty result means the request is valid. now is the reference time for the
// pickup lead-time check.
func (val *Validator) Validate(ctx context.Context, req CreateOrderRequest, now time.Time) []string {
	ctx = context.WithValue(ctx, nowKey{}, now)
	err := val.v.StructCtx(ctx, req)
	if err == nil {
		return nil
	}
	var verrs validatorv10.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == violationTag {
			msgs = append(msgs, fe.Param())
			continue
		}
		msgs = append(msgs, fe.Error())
	}
	return msgs
}

// LeadTime is the minimum gap between request time and pickup.
func (val *Validator) LeadTime() time.Duration { return val.leadTime }

func (val *Validator) createOrderStructValidation(ctx context.Context, sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateOrderRequest)
	report := func(value interface{}, field, msg string) {
		sl.ReportError(value, field, field, violationTag, msg)
	}

	name := strings.TrimSpace(req.Customer.Name)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		report(req.Customer.Name, "customer.name", "Customer name is required.")
	case n < MinNameLength:
		report(req.Customer.Name, "customer.name", fmt.Sprintf("Customer name must be at least %d characters.", MinNameLength))
	case n > MaxNameLength:
		report(req.Customer.Name, "customer.name", fmt.Sprintf("Customer name cannot exceed %d characters.", MaxNameLength))
	}

	if strings.TrimSpace(req.Customer.Phone) == "" {
		report(req.Customer.Phone, "customer.phone", "Phone number is required.")
	}

	now, ok := ctx.Value(nowKey{}).(time.Time)
	if !ok {
		now = time.Now()
	}
	if req.PickupTime.Before(now.Add(val.leadTime)) {
		report(req.PickupTime, "pickup_time", fmt.Sprintf("Pickup time must be at least %d minutes from now.", int(val.leadTime.Minutes())))
	}

	if len(req.Items) < MinOrderItems {
		report(req.Items, "items", fmt.Sprintf("At least %d item is required.", MinOrderItems))
	}
	for i, item := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		n := i + 1
		if item.Quantity < 1 {
			report(item.Quantity, field+".quantity", fmt.Sprintf("Item %d must have quantity >= 1.", n))
		}
		for _, msg := range itemTypeViolations(n, item.ItemType) {
			report(n, field+".item_type", msg)
		}
	}
}

func itemTypeViolations(n int, it orders.ItemType) []string {
	var out []string
	switch v := it.(type) {
	case orders.StandardPizza:
		if strings.TrimSpace(v.PizzaID) == "" {
			out = append(out, fmt.Sprintf("Item %d must reference a pizza.", n))
		}
		if !v.Size.Valid() {
			out = append(out, fmt.Sprintf("Item %d has an invalid size.", n))
		}
	case orders.CustomPizza:
		switch l := utf8.RuneCountInString(strings.TrimSpace(v.Instructions)); {
		case l < MinInstructionsLength:
			out = append(out, fmt.Sprintf("Item %d custom instructions must be at least %d characters.", n, MinInstructionsLength))
		case l > MaxInstructionsLength:
			out = append(out, fmt.Sprintf("Item %d custom instructions cannot exceed %d characters.", n, MaxInstructionsLength))
		}
		if !v.Size.Valid() {
			out = append(out, fmt.Sprintf("Item %d has an invalid size.", n))
		}
	case nil:
		out = append(out, fmt.Sprintf("Item %d must specify an item type.", n))
	default:
		out = append(out, fmt.Sprintf("Item %d has an unsupported item type.", n))
	}
	return out
}
