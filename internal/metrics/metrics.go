// Package metrics records order pipeline outcomes.
package metrics

import "context"

// Recorder receives order pipeline outcomes. Implementations must not block
// the caller on delivery failures.
type Recorder interface {
	OrderCreated(ctx context.Context, itemCount int, total float64)
	OrderFailed(ctx context.Context, kind string)
	EventPublishFailed(ctx context.Context)
}

// Nop drops everything.
type Nop struct{}

func (Nop) OrderCreated(context.Context, int, float64) {}
func (Nop) OrderFailed(context.Context, string)        {}
func (Nop) EventPublishFailed(context.Context)         {}
