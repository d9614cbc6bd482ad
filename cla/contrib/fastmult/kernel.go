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
	"math"

	"github.com/neosoft-hpc/go-cla/hwy"
)

// Operand addressing shared by the kernels:
//
//   - A(r, p) is a[r*ars + p*acs], so row-major and column-major A both work
//   - B row p starts at b[p*ldb]; B is row-major
//   - C row r starts at c[r*ldc]; C is row-major
//
// Every kernel updates each C element with one fused multiply-add per step
// of p, in ascending p, so all of them produce bit-identical results.

// MicroKernelFloat64 computes one full TileHeight × TileWidth() tile.
// Replaced by an architecture-specific kernel where one is available.
var MicroKernelFloat64 func(k int, a []float64, ars, acs int, b []float64, ldb int, c []float64, ldc int)

// MaskedKernelFloat64 computes a partial h × w tile.
var MaskedKernelFloat64 func(h, w, k int, a []float64, ars, acs int, b []float64, ldb int, c []float64, ldc int)

func init() {
	MicroKernelFloat64 = BaseMicroKernel[float64]
	MaskedKernelFloat64 = BaseMaskedKernel[float64]
}

func fma[T hwy.Floats](a, b, c T) T {
	return T(math.FMA(float64(a), float64(b), float64(c)))
}

// BaseMicroKernel computes C[0:4, 0:12] += A[0:4, 0:k] · B[0:k, 0:12].
// The 48 accumulators live in a fixed array seeded from C; each step reuses
// one row of B for all 4 rows of A. It does not allocate.
func BaseMicroKernel[T hwy.Floats](k int, a []T, ars, acs int, b []T, ldb int, c []T, ldc int) {
	const w = KernelVecs * KernelLanes
	if len(c) < (TileHeight-1)*ldc+w {
		panic("fastmult: C tile out of range")
	}
	if k <= 0 {
		return
	}
	if len(b) < (k-1)*ldb+w {
		panic("fastmult: B slice too short")
	}
	if len(a) < (TileHeight-1)*ars+(k-1)*acs+1 {
		panic("fastmult: A slice too short")
	}

	var acc [TileHeight][w]T
	for r := range TileHeight {
		copy(acc[r][:], c[r*ldc:r*ldc+w])
	}

	for p := 0; p < k; p++ {
		bp := b[p*ldb : p*ldb+w]
		ap := a[p*acs:]
		for r := range TileHeight {
			ar := ap[r*ars]
			row := &acc[r]
			for j, bv := range bp {
				row[j] = fma(ar, bv, row[j])
			}
		}
	}

	for r := range TileHeight {
		copy(c[r*ldc:r*ldc+w], acc[r][:])
	}
}

// BaseMaskedKernel computes C[0:h, 0:w] += A[0:h, 0:k] · B[0:k, 0:w] for
// h <= TileHeight and w <= TileWidth(). Reads and writes stay inside the
// h × w extent. On a full tile it performs the same fused operations in the
// same order as BaseMicroKernel.
func BaseMaskedKernel[T hwy.Floats](h, w, k int, a []T, ars, acs int, b []T, ldb int, c []T, ldc int) {
	if h <= 0 || w <= 0 {
		return
	}
	if h > TileHeight || w > KernelVecs*KernelLanes {
		panic("fastmult: masked tile larger than the micro tile")
	}
	if len(c) < (h-1)*ldc+w {
		panic("fastmult: C tile out of range")
	}
	if k <= 0 {
		return
	}
	if len(b) < (k-1)*ldb+w {
		panic("fastmult: B slice too short")
	}
	if len(a) < (h-1)*ars+(k-1)*acs+1 {
		panic("fastmult: A slice too short")
	}

	var acc [TileHeight][KernelVecs * KernelLanes]T
	for r := range h {
		copy(acc[r][:w], c[r*ldc:r*ldc+w])
	}

	for p := 0; p < k; p++ {
		bp := b[p*ldb : p*ldb+w]
		for r := range h {
			ar := a[r*ars+p*acs]
			row := acc[r][:w]
			for j, bv := range bp {
				row[j] = fma(ar, bv, row[j])
			}
		}
	}

	for r := range h {
		copy(c[r*ldc:r*ldc+w], acc[r][:w])
	}
}
