// Package accel provides utilities for accelerated batch processing.
package accel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Batch represents a batch processing helper
type Batch struct {
	size int
}

// NewBatch creates a new batch processor with the given size
func NewBatch(size int) *Batch {
	if size <= 0 {
		size = 100
	}
	return &Batch{size: size}
}

// Size returns the batch size
func (b *Batch) Size() int {
	return b.size
}

// Ranges splits [0, n) into consecutive half-open batch ranges
func (b *Batch) Ranges(n int) [][2]int {
	ranges := make([][2]int, 0, (n+b.size-1)/b.size)
	for start := 0; start < n; start += b.size {
		end := start + b.size
		if end > n {
			end = n
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}

// Pool runs indexed work in batches across a bounded number of goroutines
type Pool struct {
	workers int
	batch   *Batch
}

// NewPool creates a pool. Workers <= 1 runs everything on the calling goroutine.
func NewPool(workers int, batch *Batch) *Pool {
	if workers < 1 {
		workers = 1
	}
	if batch == nil {
		batch = NewBatch(0)
	}
	return &Pool{workers: workers, batch: batch}
}

// Workers returns the concurrency limit
func (p *Pool) Workers() int {
	return p.workers
}

// Run calls fn(i) for every i in [0, n). fn must only write state owned by index i.
// The first error cancels the remaining batches and is returned.
func (p *Pool) Run(ctx context.Context, n int, fn func(i int) error) error {
	if p.workers == 1 {
		for _, r := range p.batch.Ranges(n) {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := r[0]; i < r[1]; i++ {
				if err := fn(i); err != nil {
					return err
				}
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, r := range p.batch.Ranges(n) {
		r := r
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := r[0]; i < r[1]; i++ {
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
