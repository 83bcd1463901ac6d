package worker

import (
	"context"
	"sync"

	"cibrief/internal/pipeline"
)

// RunFunc executes one brief request. In production this is the
// pipeline's Run method; tests substitute their own.
type RunFunc func(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)

// BriefResult pairs a finished brief with the index of the request that
// produced it, so batch output keeps the input order.
type BriefResult struct {
	Index   int
	Request pipeline.Request
	Result  *pipeline.Result
	Err     error
}

// Pool fans brief requests out across a fixed number of workers. The
// pipeline itself is deterministic, so concurrency only changes wall
// time, never report content.
type Pool struct {
	workers int
	run     RunFunc
}

// NewPool creates a pool. workers below one is clamped to one.
func NewPool(workers int, run RunFunc) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers, run: run}
}

// Process runs every request and returns results sorted by input index.
// A canceled context stops new work; in-flight briefs finish and report
// their own context errors.
func (p *Pool) Process(ctx context.Context, reqs []pipeline.Request) []BriefResult {
	jobs := make(chan int)
	results := make([]BriefResult, len(reqs))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := p.run(ctx, reqs[i])
				results[i] = BriefResult{Index: i, Request: reqs[i], Result: res, Err: err}
			}
		}()
	}

	for i := range reqs {
		select {
		case <-ctx.Done():
			results[i] = BriefResult{Index: i, Request: reqs[i], Err: ctx.Err()}
			continue
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}
