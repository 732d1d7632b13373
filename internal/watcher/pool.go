package watcher

import (
	"sync"

	"doc-eater/internal/logging"
	"doc-eater/internal/metrics"
)

// Pool runs at most N concurrent handler invocations over an unbounded
// intake queue. Triggers are dispatched in submission order; when all
// workers are busy they wait in the queue rather than being dropped.
type Pool struct {
	workers int
	handler func(path string)

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []string
	stopped bool
	wg      sync.WaitGroup
}

// NewPool creates a Pool with the given concurrency ceiling. The
// handler must be safe for concurrent use.
func NewPool(workers int, handler func(path string)) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		workers: workers,
		handler: handler,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	logging.Info("Starting worker pool with %d workers", p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
}

// Submit enqueues a trigger. Returns false once the pool has been
// stopped.
func (p *Pool) Submit(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return false
	}
	p.queue = append(p.queue, path)
	metrics.PoolQueueDepth.Set(float64(len(p.queue)))
	p.cond.Signal()
	return true
}

// Stop rejects further submissions, drops triggers that have not yet
// started, and waits for in-flight invocations to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.stopped = true
	dropped := len(p.queue)
	p.queue = nil
	metrics.PoolQueueDepth.Set(0)
	p.cond.Broadcast()
	p.mu.Unlock()

	if dropped > 0 {
		logging.Info("Dropping %d queued triggers on shutdown", dropped)
	}
	p.wg.Wait()
	logging.Info("Worker pool stopped")
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.stopped {
			p.cond.Wait()
		}
		if p.stopped {
			p.mu.Unlock()
			return
		}
		path := p.queue[0]
		p.queue = p.queue[1:]
		metrics.PoolQueueDepth.Set(float64(len(p.queue)))
		p.mu.Unlock()

		metrics.PoolActiveWorkers.Inc()
		p.handler(path)
		metrics.PoolActiveWorkers.Dec()
	}
}

// QueueDepth returns the number of triggers waiting for a worker.
func (p *Pool) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}
