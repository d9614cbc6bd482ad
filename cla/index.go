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

package cla

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Checked, wraparound indexing for scripting front ends: -1 is the last
// element, and anything outside [-size, size) is an ErrIndexOutOfRange.

// Omitted stands for a missing slice bound, like an empty bound in a[:3].
const Omitted = math.MinInt

// Wrap maps a possibly negative index onto [0, size).
func Wrap(i, size int) (int, error) {
	j := i
	if j < 0 {
		j += size
	}
	if j < 0 || j >= size {
		return 0, indexError(i, size)
	}
	return j, nil
}

// Get returns element i with wraparound.
func (v VectorView) Get(i int) (float64, error) {
	j, err := Wrap(i, v.size)
	if err != nil {
		return 0, err
	}
	return v.data[j*v.dist], nil
}

// SetItem stores x at i with wraparound.
func (v VectorView) SetItem(i int, x float64) error {
	j, err := Wrap(i, v.size)
	if err != nil {
		return err
	}
	v.data[j*v.dist] = x
	return nil
}

// Get returns element (i,j) with wraparound on both indices.
func (v View) Get(i, j int) (float64, error) {
	r, c, err := v.wrap2(i, j)
	if err != nil {
		return 0, err
	}
	return v.data[v.offset(r, c)], nil
}

// SetItem stores x at (i,j) with wraparound on both indices.
func (v View) SetItem(i, j int, x float64) error {
	r, c, err := v.wrap2(i, j)
	if err != nil {
		return err
	}
	v.data[v.offset(r, c)] = x
	return nil
}

func (v View) wrap2(i, j int) (int, int, error) {
	r, err := Wrap(i, v.rows)
	if err != nil {
		return 0, 0, errors.Wrap(err, "row")
	}
	c, err := Wrap(j, v.cols)
	if err != nil {
		return 0, 0, errors.Wrap(err, "column")
	}
	return r, c, nil
}

// SliceIndices resolves start:stop:step against a sequence of length size
// the way Python does, clamping out-of-range bounds. Use Omitted for
// missing bounds. It returns the first index and the number of elements.
func SliceIndices(start, stop, step, size int) (first, count int, err error) {
	if step == 0 {
		return 0, 0, errors.Wrap(ErrIndexOutOfRange, "slice step cannot be zero")
	}
	lower, upper := 0, size
	if step < 0 {
		lower, upper = -1, size-1
	}
	clamp := func(x, def int) int {
		if x == Omitted {
			return def
		}
		if x < 0 {
			x += size
			if x < 0 {
				return lower
			}
			return x
		}
		if x >= upper {
			return upper
		}
		return x
	}
	if step > 0 {
		start, stop = clamp(start, lower), clamp(stop, upper)
		if stop > start {
			count = (stop-start-1)/step + 1
		}
	} else {
		start, stop = clamp(start, upper), clamp(stop, lower)
		if start > stop {
			count = (start-stop-1)/(-step) + 1
		}
	}
	return start, count, nil
}

// SetSlice assigns x to every element selected by start:stop:step.
func (v VectorView) SetSlice(start, stop, step int, x float64) error {
	first, count, err := SliceIndices(start, stop, step, v.size)
	if err != nil {
		return err
	}
	for k := range count {
		v.data[(first+k*step)*v.dist] = x
	}
	return nil
}
