package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a Job
type Result interface {
	GetError() error
}

type indexedJob struct {
	idx int
	job Job
}

type indexedResult struct {
	idx    int
	result Result
}

// Pool runs jobs on a fixed number of workers. Wait returns results in
// submission order regardless of completion order.
type Pool struct {
	workers    int
	jobQueue   chan indexedJob
	results    chan indexedResult
	submitted  int
	collected  map[int]Result
	collectMu  sync.Mutex
	done       chan struct{}
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool with the given number of workers bound to ctx
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan indexedJob, workers*2),
		results:    make(chan indexedResult, workers*2),
		collected:  make(map[int]Result),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers and the result collector. It must be called
// before Submit.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

func (p *Pool) collect() {
	defer close(p.done)
	for r := range p.results {
		p.collectMu.Lock()
		p.collected[r.idx] = r.result
		p.collectMu.Unlock()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case ij, ok := <-p.jobQueue:
			if !ok {
				return
			}
			res := indexedResult{idx: ij.idx, result: ij.job.Execute(p.ctx)}
			select {
			case p.results <- res:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job, blocking while the queue is full. It must not be
// called concurrently with itself or after Wait.
func (p *Pool) Submit(job Job) {
	ij := indexedJob{idx: p.submitted, job: job}
	p.submitted++
	select {
	case <-p.ctx.Done():
	case p.jobQueue <- ij:
	}
}

// Wait closes the queue and returns one slot per submitted job in submission
// order. Jobs that never ran (pool shut down) leave a nil slot.
func (p *Pool) Wait() []Result {
	defer p.cancelFunc()

	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	<-p.done

	p.collectMu.Lock()
	defer p.collectMu.Unlock()

	results := make([]Result, p.submitted)
	for idx, r := range p.collected {
		results[idx] = r
	}
	return results
}

// Shutdown cancels in-flight work and stops the workers
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
