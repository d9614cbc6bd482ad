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

	"github.com/neosoft-hpc/go-cla/cla"
	"github.com/neosoft-hpc/go-cla/hwy"
)

// Scratch is a cache-line aligned staging buffer for one block of A.
// It is not safe for concurrent use.
type Scratch struct {
	params BlockParams
	buf    []float64
}

// NewScratch allocates a buffer of params.Height × params.Width elements.
func NewScratch(params BlockParams) *Scratch {
	return &Scratch{
		params: params,
		buf:    hwy.AlignedAlloc[float64](params.ScratchSize(), hwy.CacheLineSize),
	}
}

// Stage copies the h×w block of a whose top-left corner is (i1, j1) into the
// buffer as a row-major view with row stride params.Width. The block is
// clipped to a, and must fit in the buffer.
func (s *Scratch) Stage(a cla.View, i1, j1, h, w int) cla.View {
	h = min(h, a.Rows()-i1)
	w = min(w, a.Cols()-j1)
	if h > s.params.Height || w > s.params.Width {
		panic(fmt.Sprintf("fastmult: %dx%d block does not fit %dx%d scratch", h, w, s.params.Height, s.params.Width))
	}
	if h <= 0 || w <= 0 {
		return cla.DenseView(0, 0, cla.RowMajor, nil)
	}
	dst, err := cla.NewView(h, w, s.params.Width, cla.RowMajor, s.buf)
	if err != nil {
		panic(err)
	}
	if err := dst.CopyFrom(a.Block(i1, j1, h, w)); err != nil {
		panic(err)
	}
	return dst
}
