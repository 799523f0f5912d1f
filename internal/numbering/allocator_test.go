package numbering

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCounter returns fixed counts per prefix.
type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int
	calls  []string
	err    error
}

func (f *fakeCounter) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, prefix)
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[prefix], nil
}

var day = time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC)

func TestPrefixAndFormat(t *testing.T) {
	assert.Equal(t, "RP-20260211-", Prefix(day))
	assert.Equal(t, "RP-20260211-001", Format(day, 1))
	assert.Equal(t, "RP-20260211-042", Format(day, 42))
	assert.Equal(t, "RP-20260211-1000", Format(day, 1000))

	// 23:30 at UTC-5 is already the next UTC day.
	late := time.Date(2026, 2, 11, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "RP-20260212-", Prefix(late))
}

func TestCountAllocator(t *testing.T) {
	ctx := context.Background()

	first, err := NewCountAllocator(&fakeCounter{}).Allocate(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "RP-20260211-001", first)

	counter := &fakeCounter{counts: map[string]int{"RP-20260211-": 41}}
	next, err := NewCountAllocator(counter).Allocate(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "RP-20260211-042", next)
	assert.Equal(t, []string{"RP-20260211-"}, counter.calls)
}

func TestCountAllocator_Error(t *testing.T) {
	boom := errors.New("down")
	_, err := NewCountAllocator(&fakeCounter{err: boom}).Allocate(context.Background(), day)
	assert.ErrorIs(t, err, boom)
}
