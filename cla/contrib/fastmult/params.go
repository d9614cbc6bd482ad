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

import "github.com/cockroachdb/errors"

// Register blocking of the micro-kernel: TileHeight rows of C, each held in
// KernelVecs vectors of KernelLanes float64. Wider registers (AVX-512) still
// run the 4-lane tile.
const (
	TileHeight  = 4
	KernelVecs  = 3
	KernelLanes = 4
)

// TileWidth returns the number of C columns one micro-kernel call covers.
// It is 12 on every target.
func TileWidth() int {
	return KernelVecs * KernelLanes
}

// BlockParams defines the cache blocking of A.
//
// A Height × Width block of float64 is staged into a scratch buffer per
// outer task. The default 96×96 block is 72KB, which stays resident in a
// typical 256KB-2MB L2 next to the B rows it is multiplied with.
type BlockParams struct {
	Height int // Rows of A per block (outer task granularity)
	Width  int // Columns of A per block (inner task granularity)
}

// DefaultBlockParams returns the 96×96 blocking.
func DefaultBlockParams() BlockParams {
	return BlockParams{Height: 96, Width: 96}
}

// Validate rejects non-positive block extents.
func (p BlockParams) Validate() error {
	if p.Height <= 0 || p.Width <= 0 {
		return errors.Newf("fastmult: block extents must be positive, got %dx%d", p.Height, p.Width)
	}
	return nil
}

// ScratchSize returns the number of float64 elements of one scratch buffer.
func (p BlockParams) ScratchSize() int {
	return p.Height * p.Width
}

// ScratchBytes returns the size in bytes of one scratch buffer.
func (p BlockParams) ScratchBytes() int {
	return p.ScratchSize() * 8
}
