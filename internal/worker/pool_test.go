package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
)

type fakeResult struct {
	err error
}

func (r *fakeResult) GetError() error {
	return r.err
}

type fakeJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32
}

func (j *fakeJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &fakeResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &fakeResult{err: errors.New("job error")}
	}
	return &fakeResult{}
}

func TestNewPool(t *testing.T) {
	if p := NewPool(5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool(0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool(-1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	var executed int32
	count := 10

	for i := 0; i < count; i++ {
		pool.Submit(&fakeJob{executed: &executed})
	}

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

type trackingJob struct {
	start    func()
	end      func()
	duration time.Duration
}

func (j *trackingJob) Execute(ctx context.Context) Result {
	if j.start != nil {
		j.start()
	}
	time.Sleep(j.duration)
	if j.end != nil {
		j.end()
	}
	return &fakeResult{}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool(workers)
	pool.Start()

	var current int32
	var maxConcurrent int32
	var completed int32
	var mu sync.Mutex

	totalJobs := 50

	for i := 0; i < totalJobs; i++ {
		pool.Submit(&trackingJob{
			start: func() {
				curr := atomic.AddInt32(&current, 1)
				mu.Lock()
				if curr > maxConcurrent {
					maxConcurrent = curr
				}
				mu.Unlock()
			},
			end: func() {
				atomic.AddInt32(&current, -1)
				atomic.AddInt32(&completed, 1)
			},
			duration: 10 * time.Millisecond,
		})
	}

	pool.Wait()

	if atomic.LoadInt32(&completed) != int32(totalJobs) {
		t.Errorf("expected %d completed jobs, got %d", totalJobs, completed)
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(&fakeJob{shouldErr: true})
	pool.Submit(&fakeJob{shouldErr: false})

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	failures := 0
	for _, res := range results {
		if res.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("expected 1 error, got %d", failures)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		pool.Submit(&fakeJob{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&trackingJob{
		start: func() {
			close(started)
		},
		duration: 200 * time.Millisecond,
	})
	<-started

	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		for range pool.results {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown timed out")
	}
}

type fakeSource struct {
	name    string
	dataset model.Dataset
	err     error
	delay   time.Duration
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Collect(ctx context.Context) (model.Dataset, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.dataset, s.err
}

func TestBatchCollector_Run(t *testing.T) {
	sources := []DatasetSource{
		&fakeSource{
			name:    "beta",
			dataset: model.Dataset{{Name: "B Kumari", Sons: model.Int(1)}},
		},
		&fakeSource{
			name:    "alpha",
			dataset: model.Dataset{{Name: "A Devi", Daughters: model.Int(2)}},
		},
		&fakeSource{
			name: "gamma",
			err:  errors.New("fetch failed"),
		},
	}

	results := NewBatchCollector(2).Run(context.Background(), sources)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Source != "alpha" || results[1].Source != "beta" || results[2].Source != "gamma" {
		t.Errorf("results not sorted by source: %q %q %q",
			results[0].Source, results[1].Source, results[2].Source)
	}
	if results[0].Err != nil || len(results[0].Dataset) != 1 {
		t.Errorf("alpha: unexpected result %+v", results[0])
	}
	if results[2].Err == nil {
		t.Error("gamma: expected error, got nil")
	}
	if got := results[2].Err.Error(); got != "source gamma: fetch failed" {
		t.Errorf("gamma error = %q", got)
	}
}

func TestBatchCollector_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	sources := []DatasetSource{
		&fakeSource{name: "slow", delay: 5 * time.Second},
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	done := make(chan struct{})
	go func() {
		NewBatchCollector(1).Run(ctx, sources)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
