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

import "github.com/neosoft-hpc/go-cla/cla"

// BlockedMultiply computes C += A·B one cache block of A at a time, on the
// calling goroutine.
//
// Blocks are visited row chunk by row chunk, and within a row chunk in
// increasing column order. Each block A[i1:i1+bh, j1:j1+bw] is staged into
// a scratch buffer and multiplied by B[j1:j1+bw, :] into C[i1:i1+bh, :].
// B and C must be row-major.
func BlockedMultiply(c, a, b cla.View, params BlockParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := checkKernelOperands("BlockedMultiply", c, a, b); err != nil {
		return err
	}
	m, k := a.Dims()
	if m == 0 || k == 0 || c.Cols() == 0 {
		return nil
	}
	scratch := NewScratch(params)
	for i1 := 0; i1 < m; i1 += params.Height {
		for j1 := 0; j1 < k; j1 += params.Width {
			multiplyBlock(scratch, c, a, b, i1, j1)
		}
	}
	return nil
}

// multiplyBlock stages block (i1, j1) of A and accumulates its product with
// the matching rows of B into the matching rows of C.
func multiplyBlock(s *Scratch, c, a, b cla.View, i1, j1 int) kernelCounts {
	staged := s.Stage(a, i1, j1, s.params.Height, s.params.Width)
	h, w := staged.Dims()
	return tiledMultiply(c.RowRange(i1, h), staged, b.RowRange(j1, w))
}
