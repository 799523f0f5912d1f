// Package numbering assigns human-readable, date-scoped order numbers of the
// form RP-YYYYMMDD-NNN. Numbers are receipt labels; uniqueness of an order is
// carried by its id.
package numbering

import (
	"context"
	"fmt"
	"time"
)

// Prefix returns the number prefix for the UTC date of now, e.g. "RP-20260211-".
func Prefix(now time.Time) string {
	return "RP-" + now.UTC().Format("20060102") + "-"
}

// Format renders the order number for sequence seq on the UTC date of now.
func Format(now time.Time, seq int) string {
	return fmt.Sprintf("%s%03d", Prefix(now), seq)
}

// Counter counts stored orders whose number starts with a prefix.
type Counter interface {
	CountByNumberPrefix(ctx context.Context, prefix string) (int, error)
}

// Allocator produces the next order number for now.
type Allocator interface {
	Allocate(ctx context.Context, now time.Time) (string, error)
}

// CountAllocator numbers orders as count+1 of the orders already stored for
// the date. Two concurrent allocations on the same date can observe the same
// count and return the same number.
type CountAllocator struct {
	counter Counter
}

// NewCountAllocator returns an allocator backed by counter.
func NewCountAllocator(counter Counter) *CountAllocator {
	return &CountAllocator{counter: counter}
}

func (a *CountAllocator) Allocate(ctx context.Context, now time.Time) (string, error) {
	n, err := a.counter.CountByNumberPrefix(ctx, Prefix(now))
	if err != nil {
		return "", fmt.Errorf("count orders: %w", err)
	}
	return Format(now, n+1), nil
}
