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
	"github.com/cockroachdb/errors"
	"github.com/neosoft-hpc/go-cla/cla"
)

// ErrLayout is returned when a kernel-level routine receives a B or C
// operand that is not row-major.
var ErrLayout = errors.New("fastmult: operand must be row-major")

// kernelCounts records how many tiles each kernel variant computed.
type kernelCounts struct {
	full, masked int
}

// aStrides returns the element distance between consecutive rows and
// consecutive columns of a.
func aStrides(a cla.View) (ars, acs int) {
	if a.Layout() == cla.RowMajor {
		return a.Stride(), 1
	}
	return 1, a.Stride()
}

func checkKernelOperands(op string, c, a, b cla.View) error {
	if err := cla.CheckProduct(op, c, a, b); err != nil {
		return err
	}
	if b.Layout() != cla.RowMajor {
		return errors.Wrapf(ErrLayout, "%s: B is %s", op, b.Layout())
	}
	if c.Layout() != cla.RowMajor {
		return errors.Wrapf(ErrLayout, "%s: C is %s", op, c.Layout())
	}
	return nil
}

// TiledMultiply computes C += A·B by covering C with micro tiles.
//
// Full TileHeight × TileWidth() tiles use MicroKernelFloat64. The right
// strip, the bottom strip and the corner where they meet use
// MaskedKernelFloat64, so every element of C is updated exactly once.
// A may use either layout; B and C must be row-major.
func TiledMultiply(c, a, b cla.View) error {
	if err := checkKernelOperands("TiledMultiply", c, a, b); err != nil {
		return err
	}
	tiledMultiply(c, a, b)
	return nil
}

// tiledMultiply assumes validated operands.
func tiledMultiply(c, a, b cla.View) kernelCounts {
	var counts kernelCounts
	m, n := c.Dims()
	k := a.Cols()
	if m == 0 || n == 0 || k == 0 {
		return counts
	}

	ars, acs := aStrides(a)
	ad, bd, cd := a.Data(), b.Data(), c.Data()
	ldb, ldc := b.Stride(), c.Stride()

	tw := TileWidth()
	mFull := m - m%TileHeight
	nFull := n - n%tw
	full := MicroKernelFloat64
	masked := MaskedKernelFloat64

	for i := 0; i < mFull; i += TileHeight {
		ai := ad[i*ars:]
		ci := cd[i*ldc:]
		for j := 0; j < nFull; j += tw {
			full(k, ai, ars, acs, bd[j:], ldb, ci[j:], ldc)
			counts.full++
		}
		if nFull < n {
			masked(TileHeight, n-nFull, k, ai, ars, acs, bd[nFull:], ldb, ci[nFull:], ldc)
			counts.masked++
		}
	}

	if h := m - mFull; h > 0 {
		ai := ad[mFull*ars:]
		ci := cd[mFull*ldc:]
		for j := 0; j < n; j += tw {
			w := min(tw, n-j)
			masked(h, w, k, ai, ars, acs, bd[j:], ldb, ci[j:], ldc)
			counts.masked++
		}
	}
	return counts
}
