package main

import (
	"context"
	"fmt"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/royal-pizza/internal/events"
	"github.com/imrishuroy/royal-pizza/internal/logger"
	"github.com/imrishuroy/royal-pizza/internal/orders"
)

// OrderReader loads an order by id. *ordering.Service implements it.
type OrderReader interface {
	GetOrder(ctx context.Context, id string) (*orders.Order, error)
}

// Processor turns OrderPlaced messages into kitchen tickets.
type Processor struct {
	orders OrderReader
	log    zerolog.Logger
}

// NewProcessor creates a worker processor reading orders through r.
func NewProcessor(r OrderReader, log zerolog.Logger) *Processor {
	return &Processor{orders: r, log: log}
}

// Handle processes an SQS batch. Messages that fail are reported as batch
// item failures so only they are retried and, eventually, dead-lettered.
func (p *Processor) Handle(ctx context.Context, ev lambdaevents.SQSEvent) (lambdaevents.SQSEventResponse, error) {
	var resp lambdaevents.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.log.Error().Err(err).Str("message_id", rec.MessageId).Msg("worker error")
			resp.BatchItemFailures = append(resp.BatchItemFailures,
				lambdaevents.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec lambdaevents.SQSMessage) error {
	msg, err := events.Decode([]byte(rec.Body))
	if err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	ctx = logger.WithRequestID(ctx, p.log, msg.CorrelationID)
	log := logger.FromContext(ctx)

	order, err := p.orders.GetOrder(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", msg.OrderID, err)
	}

	t := NewTicket(*order)
	log.Info().
		Str("order_id", order.ID).
		Str("order_number", t.OrderNumber).
		Str("customer", t.Customer).
		Time("pickup_time", t.PickupTime).
		Strs("lines", t.Lines).
		Msg("kitchen ticket")
	return nil
}
