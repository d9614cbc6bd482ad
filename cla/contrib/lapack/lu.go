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

// Package lapack wraps the gonum LAPACK and BLAS routines for cla matrices
// and vectors: an LU factorization with partial pivoting, and the Axpy and
// Gemm level-1 and level-3 helpers.
package lapack

import (
	"context"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/neosoft-hpc/go-cla/cla"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
)

// LU is the factorization A = P·L·U of a square matrix, with L unit lower
// triangular and U upper triangular. Both are packed into one row-major
// buffer.
//
// Solve may run concurrently. Inverse consumes the factorization.
type LU struct {
	mu       sync.RWMutex
	n        int
	lu       []float64
	ipiv     []int
	consumed bool
}

// NewLU factors a copy of a. a itself is not modified.
//
// It fails with cla.ErrNonSquare for empty or non-square input and with
// cla.ErrSingular when a pivot is exactly zero.
func NewLU(a *cla.Matrix) (*LU, error) {
	rows, cols := a.Dims()
	if rows != cols || rows == 0 {
		return nil, errors.Wrapf(cla.ErrNonSquare, "lapack: LU of %dx%d matrix", rows, cols)
	}
	n := rows
	f := &LU{n: n, lu: make([]float64, n*n), ipiv: make([]int, n)}
	if err := cla.DenseView(n, n, cla.RowMajor, f.lu).CopyFrom(a.View); err != nil {
		return nil, err
	}
	if !lapack64.Getrf(f.general(), f.ipiv) {
		return nil, errors.Wrapf(cla.ErrSingular, "lapack: zero pivot in %dx%d LU", n, n)
	}
	return f, nil
}

func (f *LU) general() blas64.General {
	return blas64.General{Rows: f.n, Cols: f.n, Stride: f.n, Data: f.lu}
}

// Size returns n for an n×n factorization.
func (f *LU) Size() int { return f.n }

func (f *LU) errConsumed() error {
	return errors.Wrap(cla.ErrFactorization, "lapack: LU already consumed by Inverse")
}

// Solve overwrites b with A⁻¹·b.
func (f *LU) Solve(b *cla.Vector) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.consumed {
		return f.errConsumed()
	}
	if b.Len() != f.n {
		return cla.ShapeError("Solve", "vector of length %d for %dx%d system", b.Len(), f.n, f.n)
	}

	rhs := b.ToSlice()
	lapack64.Getrs(blas.NoTrans, f.general(), blas64.General{Rows: f.n, Cols: 1, Stride: 1, Data: rhs}, f.ipiv)
	for i, x := range rhs {
		b.SetAt(i, x)
	}
	return nil
}

// SolveBatch solves for every right-hand side concurrently. The first
// error is returned after the remaining solves are abandoned.
func (f *LU) SolveBatch(ctx context.Context, bs []*cla.Vector) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, b := range bs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := f.Solve(b); err != nil {
				return errors.Wrapf(err, "right-hand side %d", i)
			}
			return nil
		})
	}
	return g.Wait()
}

// Inverse returns A⁻¹, reusing the factorization's storage. The LU cannot
// be used afterwards: further calls fail with cla.ErrFactorization and the
// factor accessors panic.
func (f *LU) Inverse() (*cla.Matrix, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumed {
		return nil, f.errConsumed()
	}

	a := f.general()
	query := make([]float64, 1)
	lapack64.Getri(a, f.ipiv, query, -1)
	work := make([]float64, max(f.n, int(query[0])))
	ok := lapack64.Getri(a, f.ipiv, work, len(work))

	inv := &cla.Matrix{View: cla.DenseView(f.n, f.n, cla.RowMajor, f.lu)}
	f.lu, f.consumed = nil, true
	if !ok {
		return nil, errors.Wrap(cla.ErrSingular, "lapack: inverse of singular matrix")
	}
	return inv, nil
}

func (f *LU) factors() []float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.consumed {
		panic("lapack: LU already consumed by Inverse")
	}
	return f.lu
}

// LFactor returns the unit lower triangular factor.
func (f *LU) LFactor() *cla.Matrix {
	lu := f.factors()
	l := cla.NewMatrix(f.n, f.n, cla.RowMajor)
	for i := range f.n {
		for j := range i {
			l.Set(i, j, lu[i*f.n+j])
		}
		l.Set(i, i, 1)
	}
	return l
}

// UFactor returns the upper triangular factor.
func (f *LU) UFactor() *cla.Matrix {
	lu := f.factors()
	u := cla.NewMatrix(f.n, f.n, cla.RowMajor)
	for i := range f.n {
		for j := i; j < f.n; j++ {
			u.Set(i, j, lu[i*f.n+j])
		}
	}
	return u
}

// Permutation returns perm such that row i of L·U is row perm[i] of A.
func (f *LU) Permutation() []int {
	f.factors()
	perm := make([]int, f.n)
	for i := range perm {
		perm[i] = i
	}
	for i, p := range f.ipiv {
		perm[i], perm[p] = perm[p], perm[i]
	}
	return perm
}

// PFactor returns the permutation matrix P with A = P·L·U.
func (f *LU) PFactor() *cla.Matrix {
	p := cla.NewMatrix(f.n, f.n, cla.RowMajor)
	for i, r := range f.Permutation() {
		p.Set(r, i, 1)
	}
	return p
}

// Pivots returns a copy of the zero-based row interchanges: row i was
// swapped with row Pivots()[i] at step i.
func (f *LU) Pivots() []int {
	return append([]int(nil), f.ipiv...)
}

// Det returns the determinant of A.
func (f *LU) Det() float64 {
	lu := f.factors()
	det := 1.0
	for i := range f.n {
		det *= lu[i*f.n+i]
		if f.ipiv[i] != i {
			det = -det
		}
	}
	return det
}
