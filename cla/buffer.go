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

import "unsafe"

// ItemSize is the size in bytes of one element.
const ItemSize = int(unsafe.Sizeof(float64(0)))

// FormatFloat64 is the struct-module format character for float64.
const FormatFloat64 = "d"

// BufferInfo describes the memory behind a view for zero-copy export, in
// the terms of the Python buffer protocol. Data aliases the view.
type BufferInfo struct {
	ItemSize int
	Format   string
	Shape    []int
	// Strides are in bytes, one per dimension.
	Strides []int
	Data    []float64
}

// Buffer describes v as a one-dimensional buffer.
func (v VectorView) Buffer() BufferInfo {
	return BufferInfo{
		ItemSize: ItemSize,
		Format:   FormatFloat64,
		Shape:    []int{v.size},
		Strides:  []int{ItemSize * v.dist},
		Data:     v.data[:v.span()],
	}
}

// Buffer describes v as a two-dimensional buffer.
func (v View) Buffer() BufferInfo {
	strides := []int{ItemSize * v.stride, ItemSize}
	if v.layout == ColMajor {
		strides = []int{ItemSize, ItemSize * v.stride}
	}
	return BufferInfo{
		ItemSize: ItemSize,
		Format:   FormatFloat64,
		Shape:    []int{v.rows, v.cols},
		Strides:  strides,
		Data:     v.data[:v.span()],
	}
}

// Len returns the number of bytes the described elements span.
func (b BufferInfo) Len() int {
	return len(b.Data) * b.ItemSize
}

// Bytes returns the raw bytes behind the buffer without copying, in host
// byte order.
func (b BufferInfo) Bytes() []byte {
	if len(b.Data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.Data[0])), b.Len())
}
