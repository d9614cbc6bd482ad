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
	"fmt"
	"math"

	"github.com/viterin/vek"
)

// VectorView is a non-owning strided window: element i is data[i*dist].
type VectorView struct {
	size int
	dist int
	data []float64
}

// NewVectorView validates and returns a strided view over data.
func NewVectorView(size, dist int, data []float64) (VectorView, error) {
	if size < 0 || dist < 1 {
		return VectorView{}, ShapeError("NewVectorView", "size %d, dist %d", size, dist)
	}
	v := VectorView{size: size, dist: dist, data: data}
	if len(data) < v.span() {
		return VectorView{}, ShapeError("NewVectorView", "%d elements needed, slice has %d", v.span(), len(data))
	}
	return v, nil
}

func (v VectorView) span() int {
	if v.size == 0 {
		return 0
	}
	return (v.size-1)*v.dist + 1
}

// Len returns the number of elements.
func (v VectorView) Len() int { return v.size }

// Dist returns the distance between consecutive elements.
func (v VectorView) Dist() int { return v.dist }

// Data returns the backing slice starting at element 0.
func (v VectorView) Data() []float64 { return v.data }

// contiguous returns the elements as one slice when dist is 1.
func (v VectorView) contiguous() ([]float64, bool) {
	if v.dist != 1 && v.size > 1 {
		return nil, false
	}
	return v.data[:v.size], true
}

func (v VectorView) check(i int) {
	if uint(i) >= uint(v.size) {
		panic(fmt.Sprintf("cla: index %d out of range for vector of length %d", i, v.size))
	}
}

// At returns element i. It panics if i is out of range.
func (v VectorView) At(i int) float64 {
	v.check(i)
	return v.data[i*v.dist]
}

// SetAt stores x at i. It panics if i is out of range.
func (v VectorView) SetAt(i int, x float64) {
	v.check(i)
	v.data[i*v.dist] = x
}

// Range returns elements [first, next) without copying.
func (v VectorView) Range(first, next int) VectorView {
	if first < 0 || next < first || next > v.size {
		panic(fmt.Sprintf("cla: range [%d,%d) out of range for length %d", first, next, v.size))
	}
	if first == next {
		return VectorView{dist: v.dist}
	}
	return VectorView{size: next - first, dist: v.dist, data: v.data[first*v.dist:]}
}

// Slice returns every step-th element starting at first, without copying.
func (v VectorView) Slice(first, step int) VectorView {
	if step < 1 || first < 0 || first > v.size {
		panic(fmt.Sprintf("cla: slice (first %d, step %d) invalid for length %d", first, step, v.size))
	}
	n := (v.size - first + step - 1) / step
	if n == 0 {
		return VectorView{dist: v.dist * step}
	}
	return VectorView{size: n, dist: v.dist * step, data: v.data[first*v.dist:]}
}

// AsMatrix views the contiguous vector as a rows×cols matrix.
func (v VectorView) AsMatrix(rows, cols int, layout Layout) (View, error) {
	data, ok := v.contiguous()
	if !ok || rows*cols != v.size {
		return View{}, ShapeError("AsMatrix", "%d elements (dist %d) as %dx%d", v.size, v.dist, rows, cols)
	}
	return DenseView(rows, cols, layout, data), nil
}

// Fill sets every element to x.
func (v VectorView) Fill(x float64) {
	for i := range v.size {
		v.data[i*v.dist] = x
	}
}

// CopyFrom copies src into v.
func (v VectorView) CopyFrom(src VectorView) error {
	if v.size != src.size {
		return ShapeError("CopyFrom", "length %d vs %d", v.size, src.size)
	}
	if dst, ok := v.contiguous(); ok {
		if s, ok := src.contiguous(); ok {
			copy(dst, s)
			return nil
		}
	}
	for i := range v.size {
		v.data[i*v.dist] = src.data[i*src.dist]
	}
	return nil
}

// AddFrom adds src into v element-wise.
func (v VectorView) AddFrom(src VectorView) error {
	if v.size != src.size {
		return ShapeError("AddFrom", "length %d vs %d", v.size, src.size)
	}
	if dst, ok := v.contiguous(); ok {
		if s, ok := src.contiguous(); ok {
			addTo(dst, s)
			return nil
		}
	}
	for i := range v.size {
		v.data[i*v.dist] += src.data[i*src.dist]
	}
	return nil
}

// ScaleBy multiplies every element by alpha.
func (v VectorView) ScaleBy(alpha float64) {
	if dst, ok := v.contiguous(); ok && len(dst) > 0 {
		vek.MulNumber_Inplace(dst, alpha)
		return
	}
	for i := range v.size {
		v.data[i*v.dist] *= alpha
	}
}

// ToSlice returns a copy of the elements.
func (v VectorView) ToSlice() []float64 {
	out := make([]float64, v.size)
	for i := range out {
		out[i] = v.data[i*v.dist]
	}
	return out
}

func addTo(dst, src []float64) {
	if len(dst) == 0 {
		return
	}
	vek.Add_Inplace(dst, src)
}

// Vector owns a dense buffer. The zero value is an empty vector.
type Vector struct {
	VectorView
}

// NewVector returns a zeroed vector of length n.
func NewVector(n int) *Vector {
	if n < 0 {
		panic(fmt.Sprintf("cla: negative vector length %d", n))
	}
	return &Vector{VectorView{size: n, dist: 1, data: make([]float64, n)}}
}

// VectorOf returns a vector holding a copy of values.
func VectorOf(values ...float64) *Vector {
	v := NewVector(len(values))
	copy(v.data, values)
	return v
}

// Clone returns an independent copy.
func (v *Vector) Clone() *Vector {
	out := NewVector(v.size)
	_ = out.CopyFrom(v.VectorView)
	return out
}

// Move transfers the buffer to a new Vector and leaves v empty.
func (v *Vector) Move() *Vector {
	out := &Vector{v.VectorView}
	v.VectorView = VectorView{}
	return out
}

// Dot returns the inner product of a and b.
func Dot(a, b VecExpr) (float64, error) {
	if err := errOf(a); err != nil {
		return 0, err
	}
	if err := errOf(b); err != nil {
		return 0, err
	}
	if a.Len() != b.Len() {
		return 0, ShapeError("Dot", "length %d vs %d", a.Len(), b.Len())
	}
	if x, ok := contiguousOf(a); ok {
		if y, ok := contiguousOf(b); ok && len(x) > 0 {
			return vek.Dot(x, y), nil
		}
	}
	var sum float64
	for i := range a.Len() {
		sum += a.At(i) * b.At(i)
	}
	return sum, nil
}

// Norm returns the Euclidean norm of v.
func Norm(v VecExpr) float64 {
	if x, ok := contiguousOf(v); ok && len(x) > 0 {
		return vek.Norm(x)
	}
	var sum float64
	for i := range v.Len() {
		x := v.At(i)
		sum += x * x
	}
	return math.Sqrt(sum)
}

func contiguousOf(e VecExpr) ([]float64, bool) {
	switch v := e.(type) {
	case VectorView:
		return v.contiguous()
	case *Vector:
		return v.contiguous()
	}
	return nil, false
}
