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

import "fmt"

// Matrix owns a densely packed buffer of Rows()*Cols() elements.
// The zero value is an empty row-major matrix.
type Matrix struct {
	View
}

// NewMatrix returns a zeroed rows×cols matrix.
func NewMatrix(rows, cols int, layout Layout) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("cla: negative matrix extents %dx%d", rows, cols))
	}
	return &Matrix{DenseView(rows, cols, layout, make([]float64, rows*cols))}
}

// MatrixOf returns a matrix filled from values given in row order, whatever
// the storage layout.
func MatrixOf(rows, cols int, layout Layout, values []float64) (*Matrix, error) {
	if rows < 0 || cols < 0 || len(values) != rows*cols {
		return nil, ShapeError("MatrixOf", "%d values for %dx%d", len(values), rows, cols)
	}
	m := NewMatrix(rows, cols, layout)
	if err := m.CopyFrom(DenseView(rows, cols, RowMajor, values)); err != nil {
		return nil, err
	}
	return m, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int, layout Layout) *Matrix {
	m := NewMatrix(n, n, layout)
	for i := range n {
		m.Set(i, i, 1)
	}
	return m
}

// Clone returns an independent copy with the same layout.
func (m *Matrix) Clone() *Matrix {
	out := NewMatrix(m.rows, m.cols, m.layout)
	_ = out.CopyFrom(m.View)
	return out
}

// Move transfers the buffer to a new Matrix and leaves m empty.
func (m *Matrix) Move() *Matrix {
	out := &Matrix{m.View}
	m.View = View{layout: m.layout, stride: 1}
	return out
}

// Zero sets every element to 0.
func (m *Matrix) Zero() {
	clear(m.data[:m.span()])
}

// Shape returns (rows, cols).
func (m *Matrix) Shape() [2]int { return [2]int{m.rows, m.cols} }

// RowMajorCopy returns m itself when it is row-major, and a row-major copy
// otherwise.
func (m *Matrix) RowMajorCopy() *Matrix {
	if m.layout == RowMajor {
		return m
	}
	out := NewMatrix(m.rows, m.cols, RowMajor)
	_ = out.CopyFrom(m.View)
	return out
}

// ToRows returns the elements as a slice of rows.
func (m *Matrix) ToRows() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = m.Row(i).ToSlice()
	}
	return out
}
