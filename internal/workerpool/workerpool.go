// Package workerpool runs bounded sets of independent tasks.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one task in Map. Results keep input order.
type Result[R any] struct {
	Value R
	Err   error
}

func limitFor(concurrency, n int) int {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > n {
		concurrency = n
	}
	return concurrency
}

// Run calls fn for every item with at most concurrency calls in flight. The first
// error cancels the context passed to the remaining calls and is returned; items not
// yet started are skipped.
func Run[T any](ctx context.Context, items []T, concurrency int, fn func(context.Context, T) error) error {
	if len(items) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limitFor(concurrency, len(items)))
	for _, item := range items {
		item := item // per-iteration copy (go.mod targets go 1.21)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, item)
		})
	}
	return g.Wait()
}

// Map calls fn for every item with at most concurrency calls in flight and collects
// every outcome. A failing item does not stop the others. Each task writes only its
// own slot.
func Map[T, R any](ctx context.Context, items []T, concurrency int, fn func(context.Context, T) (R, error)) []Result[R] {
	if len(items) == 0 {
		return nil
	}
	results := make([]Result[R], len(items))
	var g errgroup.Group
	g.SetLimit(limitFor(concurrency, len(items)))
	for i, item := range items {
		i, item := i, item // per-iteration copy (go.mod targets go 1.21)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result[R]{Err: err}
				return nil
			}
			v, err := fn(ctx, item)
			results[i] = Result[R]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
