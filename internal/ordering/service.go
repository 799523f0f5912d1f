// Package ordering creates and looks up orders. CreateOrder runs a linear
// pipeline: validate, price every line, allocate a number, persist, announce.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/imrishuroy/royal-pizza/internal/events"
	"github.com/imrishuroy/royal-pizza/internal/logger"
	"github.com/imrishuroy/royal-pizza/internal/metrics"
	"github.com/imrishuroy/royal-pizza/internal/numbering"
	"github.com/imrishuroy/royal-pizza/internal/orders"
	"github.com/imrishuroy/royal-pizza/internal/pricing"
	"github.com/imrishuroy/royal-pizza/internal/validation"
)

const tracerName = "github.com/imrishuroy/royal-pizza/internal/ordering"

// Repository persists orders. FindByID returns (nil, nil) when absent.
// Create returns orders.ErrNotPersisted when the write cannot be read back.
type Repository interface {
	Create(ctx context.Context, o orders.Order) (*orders.Order, error)
	FindByID(ctx context.Context, id string) (*orders.Order, error)
}

// CreateOrderResponse is returned to the client after a successful create.
type CreateOrderResponse struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	TotalAmount float64   `json:"total_amount"`
	PickupTime  time.Time `json:"pickup_time"`
}

// Deps are the collaborators of a Service. Publisher, Metrics and Logger are
// optional.
type Deps struct {
	Catalog   pricing.PizzaLookup
	Orders    Repository
	Allocator numbering.Allocator
	Validator *validation.Validator
	Publisher events.Publisher
	Metrics   metrics.Recorder
	Logger    zerolog.Logger
}

// Service implements order creation and lookup. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	catalog   pricing.PizzaLookup
	orders    Repository
	allocator numbering.Allocator
	validator *validation.Validator
	publisher events.Publisher
	metrics   metrics.Recorder
	log       zerolog.Logger
	tracer    trace.Tracer
	nowFunc   func() time.Time
	newID     func() string
}

// NewService wires a Service.
func NewService(d Deps) *Service {
	s := &Service{
		catalog:   d.Catalog,
		orders:    d.Orders,
		allocator: d.Allocator,
		validator: d.Validator,
		publisher: d.Publisher,
		metrics:   d.Metrics,
		log:       d.Logger,
		tracer:    otel.Tracer(tracerName),
		nowFunc:   time.Now,
		newID:     uuid.NewString,
	}
	if s.validator == nil {
		s.validator = validation.New(validation.DefaultPickupLeadTime)
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	return s
}

// CreateOrder validates, prices, numbers and persists req. Nothing is stored
// unless every check passes.
func (s *Service) CreateOrder(ctx context.Context, req validation.CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ordering.CreateOrder")
	defer span.End()

	resp, err := s.createOrder(ctx, req)
	if err != nil {
		kind := KindOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		s.metrics.OrderFailed(ctx, string(kind))
		s.logger(ctx).Warn().Err(err).Str("kind", string(kind)).Msg("order rejected")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", resp.OrderID),
		attribute.String("order.number", resp.OrderNumber),
	)
	return resp, nil
}

func (s *Service) createOrder(ctx context.Context, req validation.CreateOrderRequest) (*CreateOrderResponse, error) {
	now := s.nowFunc().UTC()

	if violations := s.validator.Validate(ctx, req, now); len(violations) > 0 {
		return nil, ValidationError(violations...)
	}

	items, total, err := s.price(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	number, err := s.allocate(ctx, now)
	if err != nil {
		return nil, err
	}

	order := orders.Order{
		ID:          s.newID(),
		OrderNumber: number,
		Customer: orders.CustomerInfo{
			Name:  req.Customer.Name,
			Phone: req.Customer.Phone,
		},
		Items:       items,
		PickupTime:  req.PickupTime.UTC(),
		Status:      orders.StatusPending,
		TotalAmount: total,
		CreatedAt:   now,
	}

	stored, err := s.persist(ctx, order)
	if err != nil {
		return nil, err
	}

	itemCount := 0
	for _, it := range stored.Items {
		itemCount += it.Quantity
	}
	s.metrics.OrderCreated(ctx, itemCount, stored.TotalAmount)
	s.logger(ctx).Info().
		Str("order_id", stored.ID).
		Str("order_number", stored.OrderNumber).
		Float64("total_amount", stored.TotalAmount).
		Msg("order created")

	s.announce(ctx, *stored)

	return &CreateOrderResponse{
		OrderID:     stored.ID,
		OrderNumber: stored.OrderNumber,
		TotalAmount: stored.TotalAmount,
		PickupTime:  stored.PickupTime,
	}, nil
}

// price resolves every line and collects all catalog violations before failing.
func (s *Service) price(ctx context.Context, lines []validation.OrderItemRequest) ([]orders.OrderItem, float64, error) {
	ctx, span := s.tracer.Start(ctx, "ordering.price")
	defer span.End()

	var (
		items      = make([]orders.OrderItem, 0, len(lines))
		total      float64
		violations []string
	)
	for _, line := range lines {
		unit, err := pricing.Resolve(ctx, line.ItemType, s.catalog)
		if err != nil {
			var v *pricing.Violation
			if errors.As(err, &v) {
				violations = append(violations, v.Message)
				continue
			}
			span.RecordError(err)
			return nil, 0, DatabaseError(err)
		}
		subtotal := orders.Subtotal(line.Quantity, unit)
		total += subtotal
		items = append(items, orders.OrderItem{
			ID:        s.newID(),
			ItemType:  line.ItemType,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			Subtotal:  subtotal,
		})
	}
	if len(violations) > 0 {
		return nil, 0, ValidationError(violations...)
	}
	return items, total, nil
}

func (s *Service) allocate(ctx context.Context, now time.Time) (string, error) {
	ctx, span := s.tracer.Start(ctx, "ordering.allocate")
	defer span.End()

	number, err := s.allocator.Allocate(ctx, now)
	if err != nil {
		span.RecordError(err)
		return "", InternalError(fmt.Sprintf("Failed to generate order number: %v", err), err)
	}
	return number, nil
}

func (s *Service) persist(ctx context.Context, o orders.Order) (*orders.Order, error) {
	ctx, span := s.tracer.Start(ctx, "ordering.persist")
	defer span.End()

	stored, err := s.orders.Create(ctx, o)
	switch {
	case errors.Is(err, orders.ErrNotPersisted):
		span.RecordError(err)
		return nil, InternalError("Failed to retrieve created order", err)
	case err != nil:
		span.RecordError(err)
		return nil, DatabaseError(err)
	case stored == nil:
		return nil, InternalError("Failed to retrieve created order", nil)
	}
	return stored, nil
}

// announce publishes OrderPlaced. The order already exists, so a failure is
// logged and counted but not returned.
func (s *Service) announce(ctx context.Context, o orders.Order) {
	ctx, span := s.tracer.Start(ctx, "ordering.announce")
	defer span.End()

	ev := events.NewOrderPlaced(o, logger.RequestID(ctx))
	if err := s.publisher.Publish(ctx, ev); err != nil {
		span.RecordError(err)
		s.metrics.EventPublishFailed(ctx)
		s.logger(ctx).Error().Err(err).Str("order_id", o.ID).Msg("publish order placed failed")
	}
}

// GetOrder returns the stored order with id.
func (s *Service) GetOrder(ctx context.Context, id string) (*orders.Order, error) {
	ctx, span := s.tracer.Start(ctx, "ordering.GetOrder", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "database")
		return nil, DatabaseError(err)
	}
	if o == nil {
		return nil, NotFoundError(fmt.Sprintf("Order with id %s not found", id))
	}
	return o, nil
}

func (s *Service) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.log
}
