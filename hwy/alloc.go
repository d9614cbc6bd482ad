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

package hwy

import (
	"fmt"
	"unsafe"
)

// CacheLineSize is the alignment used for scratch buffers.
const CacheLineSize = 64

// AlignedAlloc returns a zeroed slice of n elements whose first element
// starts on an align-byte boundary. align must be a power of two and a
// multiple of the element size.
func AlignedAlloc[T Lanes](n, align int) []T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if align <= 0 || align&(align-1) != 0 || align%size != 0 {
		panic(fmt.Sprintf("hwy: invalid alignment %d for %d-byte elements", align, size))
	}
	if n == 0 {
		return []T{}
	}
	pad := align / size
	buf := make([]T, n+pad)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	off := 0
	if rem := int(addr % uintptr(align)); rem != 0 {
		off = (align - rem) / size
	}
	return buf[off : off+n : off+n]
}

// IsAlignedPtr reports whether the first element of s starts on an
// align-byte boundary. Empty slices are aligned.
func IsAlignedPtr[T Lanes](s []T, align int) bool {
	if len(s) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&s[0]))%uintptr(align) == 0
}
