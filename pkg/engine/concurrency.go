package engine

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Pool runs a function over a fixed-size input slice with bounded
// concurrency, writing each result into its input's own index so the
// output preserves input order regardless of completion order. Grounded
// verbatim on pkg/core/tools/orchestrate.go's RunTestsTool.Execute
// (semaphore channel + pre-sized result slice + WaitGroup), generalized
// into a reusable component instead of one tool's inline loop.
type Pool struct {
	Concurrency int
	Limiter     *rate.Limiter
}

// NewPool builds a Pool. A rps of 0 disables throttling — requests only
// wait on the semaphore, never on a rate limiter. Grounded on
// performance_engine/load_runner.go's "respect RPS if specified"
// time.Sleep throttle, replaced with the pack's real token-bucket
// limiter instead of a by-hand sleep.
func NewPool(concurrency int, rps float64) *Pool {
	if concurrency <= 0 {
		concurrency = 1
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Pool{Concurrency: concurrency, Limiter: limiter}
}

// Run calls fn(ctx, i) once for every index in [0, n), at most
// p.Concurrency at a time, and returns the per-index results in order.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) interface{}) []interface{} {
	results := make([]interface{}, n)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.Concurrency)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if p.Limiter != nil {
				if err := p.Limiter.Wait(ctx); err != nil {
					results[idx] = err
					return
				}
			}
			results[idx] = fn(ctx, idx)
		}(i)
	}

	wg.Wait()
	return results
}
