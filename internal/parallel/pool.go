package parallel

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned when work is handed to a closed pool.
var ErrPoolClosed = errors.New("parallel: worker pool is closed")

// WorkerPool is a fixed set of goroutines that run composition jobs.
//
// Each worker owns a queue. An idle worker steals from the other queues,
// so one slow band does not leave the rest of the pool waiting.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int

	// queues holds one job queue per worker.
	queues []chan func()

	done chan struct{}
	wg   sync.WaitGroup

	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
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

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case job := <-own:
			run(job)
		default:
			if job := p.steal(id); job != nil {
				run(job)
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case job := <-own:
				run(job)
			}
		}
	}
}

func run(job func()) {
	if job != nil {
		job()
	}
}

// drain runs whatever is left in queue.
func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case job := <-queue:
			run(job)
		default:
			return
		}
	}
}

// steal takes one job from another worker's queue, or returns nil.
func (p *WorkerPool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case job := <-p.queues[i]:
			return job
		default:
		}
	}
	return nil
}

// ExecuteAll runs every job and returns once all of them have finished.
// Jobs are dealt round-robin to the worker queues.
//
// If the pool is closed before all jobs are queued, the unqueued jobs are
// skipped and ErrPoolClosed is returned after the queued ones finish.
func (p *WorkerPool) ExecuteAll(jobs []func()) error {
	if !p.running.Load() {
		return ErrPoolClosed
	}
	if len(jobs) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	var skipped bool

	for i, fn := range jobs {
		wg.Add(1)
		wrapped := func() {
			defer wg.Done()
			fn()
		}
		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			wg.Done()
			skipped = true
		}
		if skipped {
			break
		}
	}

	wg.Wait()
	if skipped {
		return ErrPoolClosed
	}
	return nil
}

// Close stops the pool after the queued jobs have run.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
