package parallel

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// WorkerPool runs each submitted task on its own goroutine.
//
// Submission never blocks. With a positive limit at most limit tasks run at
// once; the rest wait for a slot on their own goroutine, not in the caller.
// Tasks receive the pool's context, which is canceled once Close has
// waited for every accepted task.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// limit is the concurrency bound; 0 means unbounded.
	limit int

	// sem bounds concurrently running tasks when limit > 0.
	sem *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc

	// wg tracks submitted tasks, waiting or running.
	wg sync.WaitGroup

	// running counts tasks currently executing.
	running atomic.Int64

	// open indicates whether the pool is accepting work.
	open atomic.Bool

	// mu orders Go against Close so no task is added after Wait starts.
	mu sync.RWMutex

	// pending counts accepted tasks that have not finished. idle is
	// closed whenever pending is zero.
	idleMu  sync.Mutex
	pending int
	idle    chan struct{}
}

// NewWorkerPool creates a pool. limit <= 0 means no concurrency bound.
func NewWorkerPool(limit int) *WorkerPool {
	if limit < 0 {
		limit = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		limit:  limit,
		ctx:    ctx,
		cancel: cancel,
		idle:   make(chan struct{}),
	}
	close(p.idle)
	if limit > 0 {
		p.sem = semaphore.NewWeighted(int64(limit))
	}
	p.open.Store(true)
	return p
}

// Go starts fn on a new goroutine and reports whether it was accepted.
// It returns false after Close.
func (p *WorkerPool) Go(fn func(ctx context.Context)) bool {
	if fn == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.open.Load() {
		return false
	}

	p.wg.Add(1)
	p.idleMu.Lock()
	p.pending++
	if p.pending == 1 {
		p.idle = make(chan struct{})
	}
	p.idleMu.Unlock()
	go p.run(fn)
	return true
}

func (p *WorkerPool) run(fn func(ctx context.Context)) {
	defer p.done()
	if p.sem != nil {
		// The context outlives every accepted task, so Acquire only
		// fails if that invariant is broken.
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)
	}
	p.running.Add(1)
	defer p.running.Add(-1)
	fn(p.ctx)
}

func (p *WorkerPool) done() {
	p.idleMu.Lock()
	p.pending--
	if p.pending == 0 {
		close(p.idle)
	}
	p.idleMu.Unlock()
	p.wg.Done()
}

// Wait blocks until every accepted task has finished or ctx is done.
func (p *WorkerPool) Wait(ctx context.Context) error {
	p.idleMu.Lock()
	idle := p.idle
	p.idleMu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and waits for accepted tasks. Tasks still
// waiting for a concurrency slot run to completion as well.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	p.open.Store(false)
	p.mu.Unlock()
	p.wg.Wait()
	p.cancel()
}

// Limit returns the concurrency bound, 0 when unbounded.
func (p *WorkerPool) Limit() int {
	return p.limit
}

// Pending returns the number of accepted tasks that have not finished.
func (p *WorkerPool) Pending() int {
	p.idleMu.Lock()
	defer p.idleMu.Unlock()
	return p.pending
}

// Running returns the number of tasks currently executing.
func (p *WorkerPool) Running() int {
	return int(p.running.Load())
}

// IsRunning reports whether the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.open.Load()
}
