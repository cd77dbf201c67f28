package worker

import (
	"context"
	"fmt"
	"sort"

	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
)

// DatasetSource is anything that can produce a dataset. It mirrors
// collect.Source without importing it.
type DatasetSource interface {
	Name() string
	Collect(ctx context.Context) (model.Dataset, error)
}

// CollectJob runs one source through the pool.
type CollectJob struct {
	Source DatasetSource
}

// CollectResult is the outcome of collecting one source.
type CollectResult struct {
	Source  string
	Dataset model.Dataset
	Err     error
}

// GetError implements Result.
func (r *CollectResult) GetError() error {
	return r.Err
}

// Execute implements Job.
func (j *CollectJob) Execute(ctx context.Context) Result {
	ds, err := j.Source.Collect(ctx)
	if err != nil {
		err = fmt.Errorf("source %s: %w", j.Source.Name(), err)
	}
	return &CollectResult{
		Source:  j.Source.Name(),
		Dataset: ds,
		Err:     err,
	}
}

// BatchCollector fans a set of sources out over a worker pool and
// gathers their datasets.
type BatchCollector struct {
	workers int
}

// NewBatchCollector creates a collector with the given concurrency.
func NewBatchCollector(workers int) *BatchCollector {
	if workers <= 0 {
		workers = 1
	}
	return &BatchCollector{workers: workers}
}

// Run collects every source and returns the per-source results sorted
// by source name. A failed source yields a result with Err set; the
// other sources still run to completion.
func (b *BatchCollector) Run(ctx context.Context, sources []DatasetSource) []*CollectResult {
	pool := NewPool(b.workers)
	pool.Start()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()

	for _, src := range sources {
		pool.Submit(&CollectJob{Source: src})
	}

	raw := pool.Wait()
	close(done)

	results := make([]*CollectResult, 0, len(raw))
	for _, r := range raw {
		if cr, ok := r.(*CollectResult); ok {
			results = append(results, cr)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Source < results[j].Source
	})
	return results
}
