// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fastmult

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/neosoft-hpc/go-cla/cla"
	"github.com/neosoft-hpc/go-cla/hwy/contrib/workerpool"
	"github.com/rs/zerolog"
)

// Engine runs blocked matrix products on a persistent worker pool.
//
// Each row chunk of A is an outer task with its own scratch buffer. Its
// column chunks are inner tasks submitted to the same pool; they take turns
// on the outer task's staging lock in column order, so the result does not
// depend on the number of workers.
//
// An Engine is safe for concurrent use.
type Engine struct {
	pool            *workerpool.Pool
	ownsPool        bool
	params          BlockParams
	log             zerolog.Logger
	sequentialInner bool
	blockHook       func(bi, bj int) error

	stats struct {
		products    atomic.Int64
		blocks      atomic.Int64
		fullTiles   atomic.Int64
		maskedTiles atomic.Int64
		stagingNs   atomic.Int64
	}
}

// Option configures an Engine.
type Option func(*Engine) error

// WithWorkers sets the width of the engine's own pool.
func WithWorkers(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return errors.Newf("fastmult: worker count must be positive, got %d", n)
		}
		if e.ownsPool && e.pool != nil {
			e.pool.Close()
		}
		e.pool = workerpool.New(n)
		e.ownsPool = true
		return nil
	}
}

// WithPool runs the engine on an existing pool. Close leaves it open.
func WithPool(pool *workerpool.Pool) Option {
	return func(e *Engine) error {
		if pool == nil {
			return errors.New("fastmult: nil pool")
		}
		if e.ownsPool && e.pool != nil {
			e.pool.Close()
		}
		e.pool = pool
		e.ownsPool = false
		return nil
	}
}

// WithBlockParams overrides DefaultBlockParams.
func WithBlockParams(p BlockParams) Option {
	return func(e *Engine) error {
		if err := p.Validate(); err != nil {
			return err
		}
		e.params = p
		return nil
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) error {
		e.log = l
		return nil
	}
}

// WithSequentialInner runs the column chunks of a row chunk on the outer
// task's goroutine instead of submitting them to the pool.
func WithSequentialInner(sequential bool) Option {
	return func(e *Engine) error {
		e.sequentialInner = sequential
		return nil
	}
}

// withBlockHook installs fn to run at the start of every block; a non-nil
// return fails that block.
func withBlockHook(fn func(bi, bj int) error) Option {
	return func(e *Engine) error {
		e.blockHook = fn
		return nil
	}
}

// DefaultWorkers is the pool width used when WithWorkers is not given.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()-1)
}

// NewEngine starts an engine. Call Close to stop its workers.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		params: DefaultBlockParams(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			if e.ownsPool && e.pool != nil {
				e.pool.Close()
			}
			return nil, err
		}
	}
	if e.pool == nil {
		e.pool = workerpool.New(DefaultWorkers())
		e.ownsPool = true
	}
	e.log.Debug().
		Int("workers", e.pool.NumWorkers()).
		Int("block_height", e.params.Height).
		Int("block_width", e.params.Width).
		Int("tile_width", TileWidth()).
		Msg("fastmult engine started")
	return e, nil
}

// Close stops the engine's workers if it owns its pool. Safe to call more
// than once.
func (e *Engine) Close() {
	if e.ownsPool {
		e.pool.Close()
	}
	e.log.Debug().Int64("products", e.stats.products.Load()).Msg("fastmult engine stopped")
}

// Workers returns the width of the underlying pool.
func (e *Engine) Workers() int { return e.pool.NumWorkers() }

// Params returns the block parameters.
func (e *Engine) Params() BlockParams { return e.params }

// Multiply computes C += A·B.
//
// Shapes are checked before anything is written: A.rows == C.rows,
// B.cols == C.cols and A.cols == B.rows, otherwise an error wrapping
// cla.ErrShapeMismatch is returned and C is untouched. Any layout is
// accepted for every operand. A failing or panicking block is reported
// after all blocks have joined, and C is then partially updated.
func (e *Engine) Multiply(c, a, b cla.View) error {
	if err := cla.CheckProduct("Multiply", c, a, b); err != nil {
		return err
	}
	m, k := a.Dims()
	n := b.Cols()
	if m == 0 || n == 0 || k == 0 {
		return nil
	}

	if b.Layout() != cla.RowMajor {
		b = e.rowMajorCopy(b)
	}
	if c.Layout() == cla.RowMajor {
		return e.multiply(c, a, b)
	}

	tmp := cla.NewMatrix(m, n, cla.RowMajor)
	if err := e.multiply(tmp.View, a, b); err != nil {
		return err
	}
	return c.AddFrom(tmp.View)
}

// Product returns A·B in a new row-major matrix.
func (e *Engine) Product(a, b cla.View) (*cla.Matrix, error) {
	if a.Cols() != b.Rows() {
		return nil, cla.ShapeError("Product", "A %dx%d, B %dx%d", a.Rows(), a.Cols(), b.Rows(), b.Cols())
	}
	c := cla.NewMatrix(a.Rows(), b.Cols(), cla.RowMajor)
	if err := e.Multiply(c.View, a, b); err != nil {
		return nil, err
	}
	return c, nil
}

func (e *Engine) rowMajorCopy(v cla.View) cla.View {
	out := cla.NewMatrix(v.Rows(), v.Cols(), cla.RowMajor)
	e.pool.ParallelFor(v.Rows(), func(start, end int) {
		_ = out.RowRange(start, end-start).CopyFrom(v.RowRange(start, end-start))
	})
	return out.View
}

// multiply runs the block grid over validated, non-empty operands with
// row-major B and C.
func (e *Engine) multiply(c, a, b cla.View) error {
	m, k := a.Dims()
	bh, bw := e.params.Height, e.params.Width
	rowChunks := (m + bh - 1) / bh
	colChunks := (k + bw - 1) / bw
	start := time.Now()

	err := e.pool.Run(rowChunks, func(bi int) error {
		scratch := NewScratch(e.params)
		gate := newTurnstile()
		i1 := bi * bh

		block := func(bj int) error {
			gate.lock(bj)
			defer gate.unlock()
			if e.blockHook != nil {
				if err := e.blockHook(bi, bj); err != nil {
					return errors.Wrapf(err, "block column %d", bj)
				}
			}
			e.computeBlock(scratch, c, a, b, i1, bj*bw)
			return nil
		}

		var err error
		if e.sequentialInner {
			for bj := range colChunks {
				if blockErr := block(bj); blockErr != nil && err == nil {
					err = blockErr
				}
			}
		} else {
			err = e.pool.Run(colChunks, block)
		}
		if err != nil {
			return errors.Wrapf(err, "block row %d", bi)
		}
		return nil
	})

	e.stats.products.Add(1)
	if err != nil {
		e.log.Error().Err(err).
			Int("m", m).Int("k", k).Int("n", b.Cols()).
			Msg("blocked multiply failed")
		return err
	}
	e.log.Debug().
		Int("m", m).Int("k", k).Int("n", b.Cols()).
		Int("row_blocks", rowChunks).Int("col_blocks", colChunks).
		Dur("elapsed", time.Since(start)).
		Msg("blocked multiply")
	return nil
}

func (e *Engine) computeBlock(s *Scratch, c, a, b cla.View, i1, j1 int) {
	t0 := time.Now()
	staged := s.Stage(a, i1, j1, e.params.Height, e.params.Width)
	e.stats.stagingNs.Add(int64(time.Since(t0)))

	h, w := staged.Dims()
	counts := tiledMultiply(c.RowRange(i1, h), staged, b.RowRange(j1, w))
	e.stats.blocks.Add(1)
	e.stats.fullTiles.Add(int64(counts.full))
	e.stats.maskedTiles.Add(int64(counts.masked))
}

// Stats are cumulative counters of an Engine.
type Stats struct {
	Products    int64
	Blocks      int64
	FullTiles   int64
	MaskedTiles int64
	Staging     time.Duration
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Products:    e.stats.products.Load(),
		Blocks:      e.stats.blocks.Load(),
		FullTiles:   e.stats.fullTiles.Load(),
		MaskedTiles: e.stats.maskedTiles.Load(),
		Staging:     time.Duration(e.stats.stagingNs.Load()),
	}
}

// turnstile is a lock that admits holders in ticket order 0, 1, 2, ...
// Tickets must be taken in the order the pool claims tasks, which keeps
// the lowest outstanding ticket runnable.
type turnstile struct {
	mu   sync.Mutex
	cond *sync.Cond
	next int
}

func newTurnstile() *turnstile {
	t := &turnstile{}
	t.cond = sync.NewCond(&t.mu)
	return t
}

func (t *turnstile) lock(ticket int) {
	t.mu.Lock()
	for t.next != ticket {
		t.cond.Wait()
	}
}

func (t *turnstile) unlock() {
	t.next++
	t.mu.Unlock()
	t.cond.Broadcast()
}
