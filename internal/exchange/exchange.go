// Package exchange serializes and deserializes batches of pages on a pool of
// workers. Each worker owns one PageCodec for its whole lifetime, so codecs
// are never shared between goroutines.
package exchange

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/harshithgowdakt/granuleserde/internal/page"
	"github.com/harshithgowdakt/granuleserde/internal/serde"
)

// SerializeAll serializes pages with up to workers goroutines (NumCPU if
// <= 0). Results are in input order. The first error cancels the rest.
func SerializeAll(ctx context.Context, factory *serde.Factory, pages []*page.Page, workers int) ([]*serde.SerializedPage, error) {
	out := make([]*serde.SerializedPage, len(pages))
	err := run(ctx, factory, len(pages), workers, func(c *serde.PageCodec, i int) error {
		sp, err := c.Serialize(pages[i])
		if err != nil {
			return fmt.Errorf("serializing page %d: %w", i, err)
		}
		out[i] = sp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeserializeAll is the inverse of SerializeAll.
func DeserializeAll(ctx context.Context, factory *serde.Factory, units []*serde.SerializedPage, workers int) ([]*page.Page, error) {
	out := make([]*page.Page, len(units))
	err := run(ctx, factory, len(units), workers, func(c *serde.PageCodec, i int) error {
		p, err := c.Deserialize(units[i])
		if err != nil {
			return fmt.Errorf("deserializing page %d: %w", i, err)
		}
		out[i] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// run feeds indices [0, n) to a fixed set of workers. Every worker builds
// its own codec from factory before taking work.
func run(ctx context.Context, factory *serde.Factory, n, workers int, fn func(*serde.PageCodec, int) error) error {
	if n == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, n)

	g, ctx := errgroup.WithContext(ctx)
	queue := make(chan int)

	g.Go(func() error {
		defer close(queue)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case queue <- i:
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			codec, err := factory.New()
			if err != nil {
				return err
			}
			defer codec.Close()
			for i := range queue {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := fn(codec, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
