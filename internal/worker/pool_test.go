package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cibrief/internal/pipeline"
)

func briefRequests(n int) []pipeline.Request {
	reqs := make([]pipeline.Request, n)
	for i := range reqs {
		reqs[i] = pipeline.Request{Query: fmt.Sprintf("competitor update %d", i)}
	}
	return reqs
}

func TestNewPool(t *testing.T) {
	run := func(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
		return nil, nil
	}

	if p := NewPool(5, run); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool(0, run); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool(-1, run); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_PreservesOrder(t *testing.T) {
	var executed int32
	pool := NewPool(4, func(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
		atomic.AddInt32(&executed, 1)
		return &pipeline.Result{}, nil
	})

	count := 10
	results := pool.Process(context.Background(), briefRequests(count))

	if len(results) != count {
		t.Fatalf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed briefs, got %d", count, executed)
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("result %d has index %d, order not preserved", i, res.Index)
		}
		if res.Request.Query != fmt.Sprintf("competitor update %d", i) {
			t.Errorf("result %d paired with wrong request %q", i, res.Request.Query)
		}
	}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	var current, maxConcurrent int32
	var mu sync.Mutex

	pool := NewPool(workers, func(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
		curr := atomic.AddInt32(&current, 1)
		mu.Lock()
		if curr > maxConcurrent {
			maxConcurrent = curr
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return &pipeline.Result{}, nil
	})

	pool.Process(context.Background(), briefRequests(50))

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}
	if max <= 1 {
		t.Logf("Warning: max concurrency was %d, expected > 1", max)
	}
}

func TestPool_ErrorsStayWithTheirRequest(t *testing.T) {
	sentinel := errors.New("provider down")
	pool := NewPool(2, func(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
		if req.Query == "competitor update 1" {
			return nil, sentinel
		}
		return &pipeline.Result{}, nil
	})

	results := pool.Process(context.Background(), briefRequests(3))

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if i == 1 {
			if !errors.Is(res.Err, sentinel) {
				t.Errorf("result 1 error = %v, want sentinel", res.Err)
			}
			continue
		}
		if res.Err != nil {
			t.Errorf("result %d unexpected error: %v", i, res.Err)
		}
	}
}

func TestPool_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(2, func(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
		return &pipeline.Result{}, nil
	})

	done := make(chan []BriefResult, 1)
	go func() {
		done <- pool.Process(ctx, briefRequests(5))
	}()

	select {
	case results := <-done:
		for i, res := range results {
			if res.Err == nil && res.Result == nil {
				t.Errorf("result %d neither ran nor reported cancellation", i)
			}
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Process blocked on canceled context")
	}
}
