// Package workerpool provides bounded goroutine fan-out with deterministic,
// position-indexed result collection. Results always land at the index of
// their input, so callers can reduce them with a stable tie-break order
// regardless of which worker finished first.
package workerpool

import (
	"context"
	"runtime"
	"sync"
)

// Task computes the result for one input item.
type Task[T, R any] func(ctx context.Context, item T) R

// Map evaluates fn over items using at most workers goroutines and returns
// the results in input order. A non-positive worker count defaults to
// GOMAXPROCS. If ctx is cancelled mid-flight, remaining items keep their
// zero value and the partial result slice is returned with ctx.Err().
func Map[T, R any](ctx context.Context, workers int, items []T, fn Task[T, R]) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, ctx.Err()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(items) {
		workers = len(items)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = fn(ctx, items[i])
			}
		}()
	}

feed:
	for i := range items {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	return results, ctx.Err()
}

// Run executes n independent jobs concurrently and waits for all of them.
// Jobs poll ctx themselves; Run never kills a running job.
func Run(ctx context.Context, n int, job func(ctx context.Context, i int)) {
	if n <= 0 {
		return
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			job(ctx, i)
		}(i)
	}
	wg.Wait()
}
