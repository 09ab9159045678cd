package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a job produces
type Result interface {
	GetError() error
}

type indexedJob struct {
	seq int
	job Job
}

type indexedResult struct {
	seq    int
	result Result
}

// Pool runs jobs on a fixed number of goroutines and returns results in
// submission order
type Pool struct {
	workers    int
	jobQueue   chan indexedJob
	results    chan indexedResult
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once

	// collected is owned by the collector until collectorDone is closed
	collected     []indexedResult
	collectorDone chan struct{}

	mu        sync.Mutex
	submitted int
}

// NewPool creates a pool bound to parent; cancelling parent stops the workers
func NewPool(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers:       workers,
		jobQueue:      make(chan indexedJob, workers*2),
		results:       make(chan indexedResult, workers*2),
		ctx:           ctx,
		cancelFunc:    cancel,
		collectorDone: make(chan struct{}),
	}
}

// Start launches the workers and the result collector. Results are drained
// while jobs are still being submitted, so Submit never waits on Wait.
func (p *Pool) Start() {
	go p.collect()
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) collect() {
	defer close(p.collectorDone)
	for item := range p.results {
		p.collected = append(p.collected, item)
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case item, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := item.job.Execute(p.ctx)
			select {
			case p.results <- indexedResult{seq: item.seq, result: result}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job; it returns false once the pool is cancelled
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	seq := p.submitted
	p.submitted++
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- indexedJob{seq: seq, job: job}:
		return true
	}
}

// Wait closes the queue, waits for the workers, and returns the results
// ordered by submission. Jobs dropped by cancellation leave a nil slot.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	<-p.collectorDone

	p.mu.Lock()
	ordered := make([]Result, p.submitted)
	p.mu.Unlock()

	for _, item := range p.collected {
		if item.seq < len(ordered) {
			ordered[item.seq] = item.result
		}
	}

	p.cancelFunc()
	return ordered
}

// Shutdown cancels in-flight jobs and stops the workers
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
