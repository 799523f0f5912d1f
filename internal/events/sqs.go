package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/imrishuroy/royal-pizza/internal/aws"
)

// SQSPublisher sends events to an SQS queue.
type SQSPublisher struct {
	sender *aws.Publisher
}

// NewSQSPublisher returns a publisher bound to queueURL.
func NewSQSPublisher(client aws.SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{sender: aws.NewPublisher(client, queueURL)}
}

func (p *SQSPublisher) Publish(ctx context.Context, ev OrderPlaced) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = p.sender.Send(ctx, string(body), map[string]string{
		"event_type":     TypeOrderPlaced,
		"order_id":       ev.OrderID,
		"order_number":   ev.OrderNumber,
		"correlation_id": ev.CorrelationID,
	})
	return err
}
