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
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/cockroachdb/errors"
)

// Serialized state is a tagged tuple:
//
//	magic "CLA" | arity byte | layout byte | arity-1 extents (uint64 LE) |
//	payload length (uint64 LE) | payload
//
// Vectors are (size, bytes), arity 2. Matrices are (rows, cols, bytes),
// arity 3, with the payload in storage order of the recorded layout.
// Elements are IEEE-754 float64 little endian.

var stateMagic = [3]byte{'C', 'L', 'A'}

const (
	vectorArity = 2
	matrixArity = 3
)

func appendState(buf []byte, arity byte, layout Layout, extents []int, elems func(yield func(float64))) []byte {
	buf = append(buf, stateMagic[:]...)
	buf = append(buf, arity, byte(layout))
	n := 1
	for _, e := range extents {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(e))
		n *= e
	}
	buf = binary.LittleEndian.AppendUint64(buf, uint64(8*n))
	elems(func(x float64) {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(x))
	})
	return buf
}

type state struct {
	layout  Layout
	extents []int
	payload []byte
}

func parseState(data []byte, arity int) (state, error) {
	header := len(stateMagic) + 2
	if len(data) < header || [3]byte(data[:3]) != stateMagic {
		return state{}, errors.Wrap(ErrMalformedState, "missing header")
	}
	if got := int(data[3]); got != arity {
		return state{}, errors.Wrapf(ErrMalformedState, "should be a %d-tuple, got %d items", arity, got)
	}
	layout := Layout(data[4])
	if layout != RowMajor && layout != ColMajor {
		return state{}, errors.Wrapf(ErrMalformedState, "unknown layout %d", data[4])
	}
	rest := data[header:]
	if len(rest) < 8*arity {
		return state{}, errors.Wrap(ErrMalformedState, "truncated extents")
	}
	st := state{layout: layout, extents: make([]int, arity-1)}
	n := uint64(1)
	for i := range st.extents {
		e := binary.LittleEndian.Uint64(rest[8*i:])
		if e > math.MaxInt32 {
			return state{}, errors.Wrapf(ErrMalformedState, "extent %d too large", e)
		}
		st.extents[i] = int(e)
		hi, lo := bits.Mul64(n, e)
		if hi != 0 || lo > math.MaxInt/8 {
			return state{}, errors.Wrapf(ErrMalformedState, "extents %v overflow the element count", st.extents[:i+1])
		}
		n = lo
	}
	nbytes := binary.LittleEndian.Uint64(rest[8*(arity-1):])
	st.payload = rest[8*arity:]
	if nbytes != 8*n || uint64(len(st.payload)) != nbytes {
		return state{}, errors.Wrapf(ErrMalformedState,
			"payload of %d bytes (declared %d) for %d elements", len(st.payload), nbytes, n)
	}
	return st, nil
}

func decodeElems(payload []byte, dst []float64) {
	for i := range dst {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[8*i:]))
	}
}

// MarshalBinary encodes the vector as a (size, bytes) tuple.
func (v *Vector) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 5+16+8*v.size)
	return appendState(buf, vectorArity, RowMajor, []int{v.size}, func(yield func(float64)) {
		for i := range v.size {
			yield(v.data[i*v.dist])
		}
	}), nil
}

// UnmarshalBinary restores a vector written by MarshalBinary, replacing the
// receiver's contents.
func (v *Vector) UnmarshalBinary(data []byte) error {
	st, err := parseState(data, vectorArity)
	if err != nil {
		return err
	}
	out := NewVector(st.extents[0])
	decodeElems(st.payload, out.data)
	*v = *out
	return nil
}

// MarshalBinary encodes the matrix as a (rows, cols, bytes) tuple.
func (m *Matrix) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 5+24+8*m.rows*m.cols)
	return appendState(buf, matrixArity, m.layout, []int{m.rows, m.cols}, func(yield func(float64)) {
		m.lines(func(_ int, line []float64) {
			for _, x := range line {
				yield(x)
			}
		})
	}), nil
}

// UnmarshalBinary restores a matrix written by MarshalBinary, including its
// layout, replacing the receiver's contents.
func (m *Matrix) UnmarshalBinary(data []byte) error {
	st, err := parseState(data, matrixArity)
	if err != nil {
		return err
	}
	out := NewMatrix(st.extents[0], st.extents[1], st.layout)
	decodeElems(st.payload, out.data)
	*m = *out
	return nil
}
