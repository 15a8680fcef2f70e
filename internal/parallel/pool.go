// Package parallel provides the worker pool behind the tree's parallel
// phases.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a pool of goroutines that runs batches of work to
// completion.
//
// Each worker owns a queue and steals from the others when its own queue is
// empty.
//
// Thread safety: WorkerPool is safe for concurrent use. A batch must not be
// submitted from inside another batch's work item.
type WorkerPool struct {
	workers    int
	workQueues []chan func()
	done       chan struct{}
	wg         sync.WaitGroup
	running    atomic.Bool

	// mu is held for reading while a batch is being queued so that Close
	// cannot strand items in a queue nobody drains.
	mu sync.RWMutex
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drainQueue(own)
			return
		case work := <-own:
			work()
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drainQueue(own)
				return
			case work := <-own:
				work()
			}
		}
	}
}

func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

// steal attempts to take work from another worker's queue.
func (p *WorkerPool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ForEach calls fn(i) for every i in [0, n) and returns once all calls have
// finished. Calls may run concurrently and in any order.
//
// A nil or closed pool runs the loop on the calling goroutine. If any call
// panics, ForEach re-panics on the calling goroutine with the original value
// after the remaining calls have finished; when several calls panic, the one
// with the lowest index wins.
func (p *WorkerPool) ForEach(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if p == nil || p.workers == 1 || n == 1 {
		serial(n, fn)
		return
	}
	p.mu.RLock()
	if !p.running.Load() {
		p.mu.RUnlock()
		serial(n, fn)
		return
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		first    = -1
		panicVal any
	)
	run := func(i int) {
		defer func() {
			if r := recover(); r != nil {
				mu.Lock()
				if first < 0 || i < first {
					first, panicVal = i, r
				}
				mu.Unlock()
			}
			wg.Done()
		}()
		fn(i)
	}

	wg.Add(n)
	for i := range n {
		p.workQueues[i%p.workers] <- func() { run(i) }
	}
	p.mu.RUnlock()
	wg.Wait()

	if first >= 0 {
		panic(panicVal)
	}
}

func serial(n int, fn func(i int)) {
	for i := range n {
		fn(i)
	}
}

// ExecuteAll runs every function in work and waits for all of them.
func (p *WorkerPool) ExecuteAll(work []func()) {
	p.ForEach(len(work), func(i int) { work[i]() })
}

// Close stops the workers after the queued work has run.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// IsRunning reports whether the pool still dispatches to its workers.
func (p *WorkerPool) IsRunning() bool {
	return p != nil && p.running.Load()
}

// QueuedWork returns the approximate number of queued work items.
func (p *WorkerPool) QueuedWork() int {
	if p == nil {
		return 0
	}
	total := 0
	for _, q := range p.workQueues {
		total += len(q)
	}
	return total
}
