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

package lapack

import (
	"github.com/neosoft-hpc/go-cla/cla"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// Axpy computes y += alpha·x.
func Axpy(alpha float64, x, y cla.VectorView) error {
	if x.Len() != y.Len() {
		return cla.ShapeError("Axpy", "lengths %d and %d", x.Len(), y.Len())
	}
	if x.Len() == 0 {
		return nil
	}
	blas64.Axpy(alpha,
		blas64.Vector{N: x.Len(), Inc: x.Dist(), Data: x.Data()},
		blas64.Vector{N: y.Len(), Inc: y.Dist(), Data: y.Data()})
	return nil
}

// Gemm computes C += A·B through the reference BLAS. Any layout is
// accepted for each operand.
func Gemm(c, a, b cla.View) error {
	if err := cla.CheckProduct("Gemm", c, a, b); err != nil {
		return err
	}
	if c.Empty() {
		return nil
	}
	if a.Cols() == 0 {
		return nil
	}

	ga, ta := general(a)
	gb, tb := general(b)
	gc, _ := general(c)
	if c.Layout() == cla.RowMajor {
		blas64.Gemm(ta, tb, 1, ga, gb, 1, gc)
		return nil
	}
	// A column-major C is a row-major Cᵀ = Bᵀ·Aᵀ.
	blas64.Gemm(flip(tb), flip(ta), 1, gb, ga, 1, gc)
	return nil
}

// general describes v as a row-major blas64.General and the transpose
// needed to recover v from it.
func general(v cla.View) (blas64.General, blas.Transpose) {
	if v.Layout() == cla.RowMajor {
		return blas64.General{Rows: v.Rows(), Cols: v.Cols(), Stride: v.Stride(), Data: v.Data()}, blas.NoTrans
	}
	return blas64.General{Rows: v.Cols(), Cols: v.Rows(), Stride: v.Stride(), Data: v.Data()}, blas.Trans
}

func flip(t blas.Transpose) blas.Transpose {
	if t == blas.NoTrans {
		return blas.Trans
	}
	return blas.NoTrans
}
