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

// Package cla provides dense float64 vectors and matrices: strided views in
// row-major or column-major layout, owning containers, lazily evaluated
// arithmetic expressions, and the indexing, formatting and serialization
// surface used by scripting front ends.
//
// Views never own memory. Sub-views share the backing slice of the view they
// were taken from, so writes through one are visible through the other.
//
//	m := cla.NewMatrix(4, 4, cla.RowMajor)
//	top := m.View().RowRange(0, 2)
//	top.Fill(1) // rows 0 and 1 of m are now 1
package cla

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Layout selects how a view maps (row, col) onto its backing slice.
type Layout uint8

const (
	// RowMajor stores element (i,j) at i*stride + j.
	RowMajor Layout = iota
	// ColMajor stores element (i,j) at j*stride + i.
	ColMajor
)

// String returns "RowMajor" or "ColMajor".
func (l Layout) String() string {
	switch l {
	case RowMajor:
		return "RowMajor"
	case ColMajor:
		return "ColMajor"
	default:
		return fmt.Sprintf("Layout(%d)", uint8(l))
	}
}

// Transposed returns the other layout.
func (l Layout) Transposed() Layout {
	if l == RowMajor {
		return ColMajor
	}
	return RowMajor
}

// Shaped is anything with matrix extents.
type Shaped interface {
	Dims() (rows, cols int)
}

// View is a non-owning 2D window over a float64 slice.
//
// The stride is the distance between consecutive rows (RowMajor) or columns
// (ColMajor). A View is a small value; copy it freely.
type View struct {
	rows, cols int
	stride     int
	layout     Layout
	data       []float64
}

// NewView validates and returns a view over data.
func NewView(rows, cols, stride int, layout Layout, data []float64) (View, error) {
	if rows < 0 || cols < 0 {
		return View{}, ShapeError("NewView", "negative extents %dx%d", rows, cols)
	}
	if layout != RowMajor && layout != ColMajor {
		return View{}, errors.Newf("cla: unknown layout %d", layout)
	}
	v := View{rows: rows, cols: cols, stride: stride, layout: layout, data: data}
	if lead := v.leading(); stride < lead || stride < 1 {
		return View{}, ShapeError("NewView", "stride %d shorter than leading extent %d", stride, lead)
	}
	if need := v.span(); len(data) < need {
		return View{}, ShapeError("NewView", "%d elements needed, slice has %d", need, len(data))
	}
	return v, nil
}

// DenseView returns a densely packed view over data, which must hold at
// least rows*cols elements.
func DenseView(rows, cols int, layout Layout, data []float64) View {
	v := View{rows: rows, cols: cols, layout: layout, data: data}
	v.stride = max(1, v.leading())
	if len(data) < v.span() {
		panic(fmt.Sprintf("cla: DenseView %dx%d needs %d elements, slice has %d", rows, cols, v.span(), len(data)))
	}
	return v
}

// leading is the extent along the contiguous dimension.
func (v View) leading() int {
	if v.layout == RowMajor {
		return v.cols
	}
	return v.rows
}

// outer is the extent along the strided dimension.
func (v View) outer() int {
	if v.layout == RowMajor {
		return v.rows
	}
	return v.cols
}

// span is the number of backing elements the view addresses.
func (v View) span() int {
	if v.rows == 0 || v.cols == 0 {
		return 0
	}
	return (v.outer()-1)*v.stride + v.leading()
}

// Dims returns the number of rows and columns.
func (v View) Dims() (rows, cols int) { return v.rows, v.cols }

// Rows returns the number of rows.
func (v View) Rows() int { return v.rows }

// Cols returns the number of columns.
func (v View) Cols() int { return v.cols }

// Stride returns the distance between consecutive rows (RowMajor) or
// columns (ColMajor).
func (v View) Stride() int { return v.stride }

// Layout returns the memory layout of the view.
func (v View) Layout() Layout { return v.layout }

// Data returns the backing slice starting at element (0,0).
func (v View) Data() []float64 { return v.data }

// IsContiguous reports whether the view addresses one gap-free run.
func (v View) IsContiguous() bool {
	return v.stride == v.leading() || v.outer() <= 1
}

// Empty reports whether the view has no elements.
func (v View) Empty() bool { return v.rows == 0 || v.cols == 0 }

func (v View) offset(i, j int) int {
	if v.layout == RowMajor {
		return i*v.stride + j
	}
	return j*v.stride + i
}

func (v View) check(i, j int) {
	if uint(i) >= uint(v.rows) || uint(j) >= uint(v.cols) {
		panic(fmt.Sprintf("cla: index (%d,%d) out of range for %dx%d view", i, j, v.rows, v.cols))
	}
}

// At returns element (i,j). It panics if the index is out of range.
func (v View) At(i, j int) float64 {
	v.check(i, j)
	return v.data[v.offset(i, j)]
}

// Set stores x at (i,j). It panics if the index is out of range.
func (v View) Set(i, j int, x float64) {
	v.check(i, j)
	v.data[v.offset(i, j)] = x
}

// RowRange returns rows [first, first+n) without copying.
func (v View) RowRange(first, n int) View {
	if first < 0 || n < 0 || first+n > v.rows {
		panic(fmt.Sprintf("cla: row range [%d,%d) out of range for %d rows", first, first+n, v.rows))
	}
	sub := v
	sub.rows = n
	if sub.Empty() {
		sub.data = nil
		return sub
	}
	if v.layout == RowMajor {
		sub.data = v.data[first*v.stride:]
	} else {
		sub.data = v.data[first:]
	}
	return sub
}

// ColRange returns columns [first, first+n) without copying.
func (v View) ColRange(first, n int) View {
	if first < 0 || n < 0 || first+n > v.cols {
		panic(fmt.Sprintf("cla: column range [%d,%d) out of range for %d columns", first, first+n, v.cols))
	}
	sub := v
	sub.cols = n
	if sub.Empty() {
		sub.data = nil
		return sub
	}
	if v.layout == RowMajor {
		sub.data = v.data[first:]
	} else {
		sub.data = v.data[first*v.stride:]
	}
	return sub
}

// Block returns the h×w sub-view whose top-left corner is (i, j).
func (v View) Block(i, j, h, w int) View {
	return v.RowRange(i, h).ColRange(j, w)
}

// T returns the transpose, sharing the same data.
func (v View) T() View {
	return View{rows: v.cols, cols: v.rows, stride: v.stride, layout: v.layout.Transposed(), data: v.data}
}

// Row returns row i as a vector view.
func (v View) Row(i int) VectorView {
	r := v.RowRange(i, 1)
	if v.layout == RowMajor {
		return VectorView{size: v.cols, dist: 1, data: r.data}
	}
	return VectorView{size: v.cols, dist: v.stride, data: r.data}
}

// Col returns column j as a vector view.
func (v View) Col(j int) VectorView {
	c := v.ColRange(j, 1)
	if v.layout == RowMajor {
		return VectorView{size: v.rows, dist: v.stride, data: c.data}
	}
	return VectorView{size: v.rows, dist: 1, data: c.data}
}

// lines calls fn with each contiguous run of the view, in outer order.
func (v View) lines(fn func(k int, line []float64)) {
	if v.Empty() {
		return
	}
	lead := v.leading()
	for k := range v.outer() {
		fn(k, v.data[k*v.stride:k*v.stride+lead])
	}
}

// Fill sets every element to x.
func (v View) Fill(x float64) {
	v.lines(func(_ int, line []float64) {
		for i := range line {
			line[i] = x
		}
	})
}

// CopyFrom copies src into v. Layouts may differ.
func (v View) CopyFrom(src View) error {
	if err := CheckSameShape("CopyFrom", v, src); err != nil {
		return err
	}
	if v.layout == src.layout {
		srcLead := src.leading()
		v.lines(func(k int, line []float64) {
			copy(line, src.data[k*src.stride:k*src.stride+srcLead])
		})
		return nil
	}
	for i := range v.rows {
		for j := range v.cols {
			v.data[v.offset(i, j)] = src.data[src.offset(i, j)]
		}
	}
	return nil
}

// AddFrom adds src into v element-wise.
func (v View) AddFrom(src View) error {
	if err := CheckSameShape("AddFrom", v, src); err != nil {
		return err
	}
	if v.layout == src.layout {
		srcLead := src.leading()
		v.lines(func(k int, line []float64) {
			addTo(line, src.data[k*src.stride:k*src.stride+srcLead])
		})
		return nil
	}
	for i := range v.rows {
		for j := range v.cols {
			v.data[v.offset(i, j)] += src.data[src.offset(i, j)]
		}
	}
	return nil
}

// Equal reports whether a and b have the same shape and elements,
// regardless of layout and stride.
func Equal(a, b View) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	for i := range a.rows {
		for j := range a.cols {
			if a.data[a.offset(i, j)] != b.data[b.offset(i, j)] {
				return false
			}
		}
	}
	return true
}
