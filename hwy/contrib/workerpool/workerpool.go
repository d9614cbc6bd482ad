// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent, reusable worker pool for fork-join
// computation. A Pool is created once and reused across many operations, so
// a large matrix product does not pay goroutine spawn costs per block.
//
// Run is safe to call from inside a task running on the same pool: the
// calling goroutine claims and executes tasks itself, and idle workers only
// help. Tasks are claimed in increasing index order.
//
// Usage:
//
//	pool := workerpool.New(runtime.NumCPU() - 1)
//	defer pool.Close()
//
//	err := pool.Run(numBlockRows, func(i int) error {
//	    return pool.Run(numBlockCols, func(j int) error {
//	        return multiplyBlock(i, j)
//	    })
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// ErrTaskPanicked marks errors produced from a panic inside a task.
var ErrTaskPanicked = errors.New("workerpool: task panicked")

// Pool is a persistent worker pool that can be reused across many parallel
// operations. Workers are spawned once at creation and reused.
type Pool struct {
	numWorkers int
	workC      chan func()
	closeOnce  sync.Once
	closed     atomic.Bool

	// sendMu is held for reading while Run hands work to workC and for
	// writing while Close closes it.
	sendMu sync.RWMutex
}

// New creates a new worker pool with the specified number of workers.
// Workers are spawned immediately and persist until Close is called.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		// Buffer enough for all workers to have pending work
		workC: make(chan func(), numWorkers*2),
	}

	for range numWorkers {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	for fn := range p.workC {
		fn()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the worker pool. Runs in flight complete; later calls to
// Run execute sequentially on the caller. Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.sendMu.Lock()
		defer p.sendMu.Unlock()
		p.closed.Store(true)
		close(p.workC)
	})
}

// run is the shared state of one Run call.
type run struct {
	n    int
	task func(i int) error
	next atomic.Int64
	wg   sync.WaitGroup

	mu     sync.Mutex
	err    error
	errIdx int
}

// drain claims and executes tasks until none are left.
func (r *run) drain() {
	for {
		i := int(r.next.Add(1)) - 1
		if i >= r.n {
			return
		}
		r.exec(i)
	}
}

func (r *run) exec(i int) {
	defer r.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			r.record(i, errors.Wrapf(ErrTaskPanicked, "task %d: %v", i, rec))
		}
	}()
	if err := r.task(i); err != nil {
		r.record(i, err)
	}
}

// record keeps the error of the lowest failing index.
func (r *run) record(i int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil || i < r.errIdx {
		r.err, r.errIdx = err, i
	}
}

// Run executes task(i) for every i in [0, n) and blocks until all of them
// have returned. The error of the lowest failing index is returned; a failing
// task does not stop the others. A panicking task is reported as an error
// marked with ErrTaskPanicked.
func (p *Pool) Run(n int, task func(i int) error) error {
	if n <= 0 {
		return nil
	}

	r := &run{n: n, task: task}
	r.wg.Add(n)

	p.handOff(r, min(p.numWorkers, n-1))
	r.drain()
	r.wg.Wait()
	return r.err
}

// handOff offers r.drain to up to helpers idle workers without blocking.
func (p *Pool) handOff(r *run, helpers int) {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()
	if p.closed.Load() {
		return
	}
	for range helpers {
		select {
		case p.workC <- r.drain:
		default:
			// Queue full: the workers are busy and the caller drains the rest.
		}
	}
}

// ParallelFor executes fn over [0, n) split into contiguous chunks, one per
// worker. Blocks until all work completes.
//
// fn receives (start, end) indices where work should process [start, end).
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers := min(p.numWorkers, n)
	if workers == 1 || p.closed.Load() {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers
	chunks := (n + chunkSize - 1) / chunkSize
	// Panics propagate to the caller as with a plain loop.
	if err := p.Run(chunks, func(c int) error {
		start := c * chunkSize
		fn(start, min(start+chunkSize, n))
		return nil
	}); err != nil {
		panic(err)
	}
}

// ParallelForAtomic executes fn for each index in [0, n), handing out indices
// one at a time for better load balancing when work per item varies.
// Blocks until all work completes.
func (p *Pool) ParallelForAtomic(n int, fn func(i int)) {
	if err := p.Run(n, func(i int) error {
		fn(i)
		return nil
	}); err != nil {
		panic(err)
	}
}
