package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

//go:embed menu.json
var defaultMenu []byte

// DefaultMenu returns the built-in menu.
func DefaultMenu() ([]Pizza, error) {
	var pizzas []Pizza
	if err := json.Unmarshal(defaultMenu, &pizzas); err != nil {
		return nil, fmt.Errorf("decode default menu: %w", err)
	}
	return pizzas, nil
}

// Inserter writes a pizza; it returns ErrExists when overwrite is false and
// the id is taken.
type Inserter interface {
	Insert(ctx context.Context, p Pizza, overwrite bool) error
}

// SeedResult reports what a Seed call did.
type SeedResult struct {
	Inserted int
	Skipped  int
}

const seedConcurrency = 4

// Seed writes pizzas concurrently. Existing pizzas are kept unless force is set.
func Seed(ctx context.Context, dst Inserter, pizzas []Pizza, force bool) (SeedResult, error) {
	var inserted, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(seedConcurrency)
	for _, p := range pizzas {
		p := p
		g.Go(func() error {
			err := dst.Insert(gctx, p, force)
			switch {
			case errors.Is(err, ErrExists):
				skipped.Add(1)
				return nil
			case err != nil:
				return fmt.Errorf("seed %s: %w", p.ID, err)
			}
			inserted.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return SeedResult{Inserted: int(inserted.Load()), Skipped: int(skipped.Load())}, err
}
