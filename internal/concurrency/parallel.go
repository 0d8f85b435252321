package concurrency

import (
	"context"
	"sync"
)

// ParallelOptions tunes how work is spread across goroutines.
type ParallelOptions struct {
	// MaxWorkers caps the number of concurrent workers. Values <= 0 fall
	// back to the default.
	MaxWorkers int
}

// DefaultOptions returns the worker cap used when callers do not care.
func DefaultOptions() ParallelOptions {
	return ParallelOptions{MaxWorkers: 10}
}

// ProcessParallel runs itemFunc over every item using a bounded worker
// pool. Results come back in input order; errors are collected without
// stopping the remaining items.
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultOptions().MaxWorkers
	}
	if maxWorkers > len(items) {
		maxWorkers = len(items)
	}

	type outcome struct {
		index  int
		result R
		err    error
	}

	jobs := make(chan int, len(items))
	outcomes := make(chan outcome, len(items))

	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
					res, err := itemFunc(ctx, i, items[i])
					outcomes <- outcome{index: i, result: res, err: err}
				}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	results := make([]R, len(items))
	var errs []error
	for i := 0; i < len(items); i++ {
		o := <-outcomes
		if o.err != nil {
			errs = append(errs, o.err)
		}
		results[o.index] = o.result
	}

	return results, errs
}

// ForEach runs itemFunc over every item in parallel for its side effects
// only. Handy for uploads and other fire-and-check work.
func ForEach[T any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) error,
) []error {
	_, errs := ProcessParallel(ctx, items, opts,
		func(ctx context.Context, i int, item T) (struct{}, error) {
			return struct{}{}, itemFunc(ctx, i, item)
		})
	return errs
}
