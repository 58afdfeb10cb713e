package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// JobFunc adapts an ordinary function to Job
type JobFunc func(ctx context.Context) Result

// Execute calls f(ctx)
func (f JobFunc) Execute(ctx context.Context) Result {
	return f(ctx)
}

// Pool runs jobs on a fixed number of workers and streams their results.
//
// Results must be drained while jobs are submitted: the result channel is
// bounded, so a caller that submits everything before reading will stall once
// the buffers fill. Typical use submits from one goroutine and ranges over
// Results in another, calling Close after the last Submit.
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
	queueOnce  sync.Once
}

// NewPool creates a pool bound to ctx; cancelling ctx stops the workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers),
		results:    make(chan Result, workers),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			// a job dequeued after cancellation is dropped, not started
			if p.ctx.Err() != nil {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job, blocking while all workers are busy. It returns false
// if the pool was cancelled before the job could be queued.
func (p *Pool) Submit(job Job) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job:
		return true
	}
}

// Results streams job results in completion order. The channel closes once
// all workers have exited after Close or Shutdown.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Close signals that no more jobs will be submitted. Workers finish the queue
// and then the results channel closes.
func (p *Pool) Close() {
	p.queueOnce.Do(func() {
		close(p.jobQueue)
	})
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()
}

// Wait closes the pool and collects every remaining result
func (p *Pool) Wait() []Result {
	p.Close()

	var results []Result
	for result := range p.results {
		results = append(results, result)
	}
	return results
}

// Shutdown cancels the pool and waits for running jobs to return.
// Queued jobs that have not started are dropped.
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
