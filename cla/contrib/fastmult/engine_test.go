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
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/neosoft-hpc/go-cla/cla"
	"github.com/neosoft-hpc/go-cla/hwy/contrib/workerpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestEngineMultiplyLayouts(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	e := newTestEngine(t, WithWorkers(4), WithBlockParams(BlockParams{Height: 16, Width: 16}))
	const m, k, n = 37, 29, 41
	for _, la := range layouts {
		for _, lb := range layouts {
			for _, lc := range layouts {
				t.Run(fmt.Sprintf("A=%s/B=%s/C=%s", la, lb, lc), func(t *testing.T) {
					a := randomMatrix(rng, m, k, la)
					b := randomMatrix(rng, k, n, lb)
					c := randomMatrix(rng, m, n, lc)
					want := c.Clone()
					referenceMultiply(want.View, a.View, b.View)

					require.NoError(t, e.Multiply(c.View, a.View, b.View))
					assert.Equal(t, lc, c.Layout())
					assertClose(t, want.View, c.View, k)
				})
			}
		}
	}
}

func TestEngineMultiplySubViews(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))
	e := newTestEngine(t, WithWorkers(3), WithBlockParams(BlockParams{Height: 8, Width: 8}))
	big := randomMatrix(rng, 40, 40, cla.RowMajor)
	a := big.Block(1, 2, 21, 13)
	b := big.Block(5, 20, 13, 17).T().T()
	out := cla.NewMatrix(30, 30, cla.ColMajor)
	c := out.Block(3, 4, 21, 17)

	want := cla.NewMatrix(21, 17, cla.RowMajor)
	referenceMultiply(want.View, a, b)
	require.NoError(t, e.Multiply(c, a, b))
	assertClose(t, want.View, c, 13)
	assert.Equal(t, 0.0, out.At(0, 0), "elements outside the destination view are untouched")
}

func TestEngineDeterministicAcrossWidths(t *testing.T) {
	rng := rand.New(rand.NewPCG(15, 16))
	const size = 150
	params := BlockParams{Height: 32, Width: 24}
	a := randomMatrix(rng, size, size, cla.RowMajor)
	b := randomMatrix(rng, size, size, cla.RowMajor)
	c0 := randomMatrix(rng, size, size, cla.RowMajor)

	sequential := c0.Clone()
	require.NoError(t, BlockedMultiply(sequential.View, a.View, b.View, params))

	configs := map[string][]Option{
		"workers=1":        {WithWorkers(1)},
		"workers=2":        {WithWorkers(2)},
		"workers=NumCPU":   {WithWorkers(runtime.NumCPU())},
		"sequential-inner": {WithWorkers(runtime.NumCPU()), WithSequentialInner(true)},
	}
	for name, opts := range configs {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(t, append(opts, WithBlockParams(params))...)
			for range 3 {
				c := c0.Clone()
				require.NoError(t, e.Multiply(c.View, a.View, b.View))
				require.Equal(t, sequential.Data(), c.Data(), "result must not depend on scheduling")
			}
		})
	}
}

func TestEngineShapeMismatchLeavesCUntouched(t *testing.T) {
	e := newTestEngine(t, WithWorkers(2))
	c, err := cla.MatrixOf(2, 2, cla.RowMajor, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	before := c.Clone()

	cases := []struct {
		name string
		a, b cla.View
	}{
		{"rows", cla.NewMatrix(3, 2, cla.RowMajor).View, cla.NewMatrix(2, 2, cla.RowMajor).View},
		{"cols", cla.NewMatrix(2, 2, cla.RowMajor).View, cla.NewMatrix(2, 3, cla.RowMajor).View},
		{"inner", cla.NewMatrix(2, 3, cla.RowMajor).View, cla.NewMatrix(2, 2, cla.ColMajor).View},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := e.Multiply(c.View, tc.a, tc.b)
			assert.True(t, errors.Is(err, cla.ErrShapeMismatch), "got %v", err)
			assert.Equal(t, before.Data(), c.Data())
		})
	}
}

func TestEngineEmptyExtents(t *testing.T) {
	e := newTestEngine(t, WithWorkers(2))
	c, err := cla.MatrixOf(2, 2, cla.RowMajor, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, e.Multiply(c.View, cla.NewMatrix(2, 0, cla.RowMajor).View, cla.NewMatrix(0, 2, cla.RowMajor).View))
	assert.Equal(t, []float64{1, 2, 3, 4}, c.Data())

	empty := cla.NewMatrix(0, 0, cla.RowMajor)
	require.NoError(t, e.Multiply(empty.View, empty.View, empty.View))
}

var errInjected = errors.New("injected")

func TestEngineBlockErrorSurfacesAfterJoin(t *testing.T) {
	var mu sync.Mutex
	visited := map[[2]int]bool{}
	e := newTestEngine(t,
		WithWorkers(4),
		WithBlockParams(BlockParams{Height: 8, Width: 8}),
		withBlockHook(func(bi, bj int) error {
			mu.Lock()
			visited[[2]int{bi, bj}] = true
			mu.Unlock()
			if bi == 1 && bj == 2 {
				return errInjected
			}
			return nil
		}))

	a := cla.NewMatrix(32, 32, cla.RowMajor)
	c := cla.NewMatrix(32, 32, cla.RowMajor)
	err := e.Multiply(c.View, a.View, a.View)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errInjected))
	assert.Contains(t, err.Error(), "block row 1")
	assert.Contains(t, err.Error(), "block column 2")
	assert.Len(t, visited, 16, "every block runs before the error is returned")
}

func TestEngineBlockPanicBecomesError(t *testing.T) {
	e := newTestEngine(t,
		WithWorkers(2),
		WithBlockParams(BlockParams{Height: 4, Width: 4}),
		withBlockHook(func(bi, bj int) error {
			if bi == 0 && bj == 1 {
				panic("boom")
			}
			return nil
		}))

	a := cla.NewMatrix(8, 8, cla.RowMajor)
	done := make(chan error, 1)
	go func() { done <- e.Multiply(a.Clone().View, a.View, a.View) }()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, workerpool.ErrTaskPanicked), "got %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("a panicking block must release the staging lock")
	}

	// The engine stays usable.
	e.blockHook = nil
	require.NoError(t, e.Multiply(a.Clone().View, a.View, a.View))
}

func TestEngineOptions(t *testing.T) {
	_, err := NewEngine(WithWorkers(0))
	assert.Error(t, err)
	_, err = NewEngine(WithBlockParams(BlockParams{Height: -1, Width: 1}))
	assert.Error(t, err)
	_, err = NewEngine(WithPool(nil))
	assert.Error(t, err)

	pool := workerpool.New(2)
	defer pool.Close()
	e := newTestEngine(t, WithPool(pool))
	assert.Equal(t, 2, e.Workers())
	assert.Equal(t, DefaultBlockParams(), e.Params())
	e.Close()
	// A shared pool survives the engine.
	require.NoError(t, pool.Run(3, func(int) error { return nil }))
}

func TestEngineStats(t *testing.T) {
	e := newTestEngine(t, WithWorkers(2), WithBlockParams(BlockParams{Height: 8, Width: 8}))
	a := cla.NewMatrix(16, 24, cla.RowMajor)
	b := cla.NewMatrix(24, 5, cla.RowMajor)
	c := cla.NewMatrix(16, 5, cla.RowMajor)
	require.NoError(t, e.Multiply(c.View, a.View, b.View))

	s := e.Stats()
	assert.Equal(t, int64(1), s.Products)
	assert.Equal(t, int64(2*3), s.Blocks)
	assert.Positive(t, s.FullTiles+s.MaskedTiles)
}

func TestProduct(t *testing.T) {
	a, err := cla.MatrixOf(2, 3, cla.RowMajor, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	b, err := cla.MatrixOf(3, 2, cla.ColMajor, []float64{7, 8, 9, 10, 11, 12})
	require.NoError(t, err)

	p, err := Product(a.View, b.View)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{58, 64}, {139, 154}}, p.ToRows())

	_, err = Product(a.View, a.View)
	assert.True(t, errors.Is(err, cla.ErrShapeMismatch))
}

func TestMultiplyAccumulates(t *testing.T) {
	rng := rand.New(rand.NewPCG(17, 18))
	for _, size := range []int{13, 96, 200} {
		t.Run(fmt.Sprintf("n=%d", size), func(t *testing.T) {
			a := randomMatrix(rng, size, size, cla.RowMajor)
			b := randomMatrix(rng, size, size, cla.ColMajor)
			c := randomMatrix(rng, size, size, cla.RowMajor)
			want := c.Clone()
			referenceMultiply(want.View, a.View, b.View)

			require.NoError(t, Multiply(c.View, a.View, b.View))
			assertClose(t, want.View, c.View, size)
		})
	}
}

func BenchmarkMultiply(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 1))
	e, err := NewEngine()
	require.NoError(b, err)
	defer e.Close()

	for _, size := range []int{96, 256, 512} {
		a := randomMatrix(rng, size, size, cla.RowMajor)
		m := randomMatrix(rng, size, size, cla.RowMajor)
		c := cla.NewMatrix(size, size, cla.RowMajor)
		flops := float64(2 * size * size * size)

		b.Run(fmt.Sprintf("parallel/%d", size), func(b *testing.B) {
			for b.Loop() {
				_ = e.Multiply(c.View, a.View, m.View)
			}
			b.ReportMetric(flops*float64(b.N)/b.Elapsed().Seconds()/1e9, "GFLOPS")
		})
		b.Run(fmt.Sprintf("blocked/%d", size), func(b *testing.B) {
			for b.Loop() {
				_ = BlockedMultiply(c.View, a.View, m.View, DefaultBlockParams())
			}
			b.ReportMetric(flops*float64(b.N)/b.Elapsed().Seconds()/1e9, "GFLOPS")
		})
	}
}
