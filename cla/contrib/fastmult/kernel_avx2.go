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

//go:build amd64 && goexperiment.simd

package fastmult

import "simd/archsimd"

// microKernelAVX2 is BaseMicroKernel for float64 on 4-lane registers:
// a 4×12 tile held in 12 YMM accumulators.
func microKernelAVX2(k int, a []float64, ars, acs int, b []float64, ldb int, c []float64, ldc int) {
	if len(c) < 3*ldc+12 {
		panic("fastmult: C tile out of range")
	}
	if k <= 0 {
		return
	}
	if len(b) < (k-1)*ldb+12 {
		panic("fastmult: B slice too short")
	}
	if len(a) < 3*ars+(k-1)*acs+1 {
		panic("fastmult: A slice too short")
	}

	c0 := c[:12]
	c1 := c[ldc : ldc+12]
	c2 := c[2*ldc : 2*ldc+12]
	c3 := c[3*ldc : 3*ldc+12]

	acc00 := archsimd.LoadFloat64x4Slice(c0[0:4])
	acc01 := archsimd.LoadFloat64x4Slice(c0[4:8])
	acc02 := archsimd.LoadFloat64x4Slice(c0[8:12])
	acc10 := archsimd.LoadFloat64x4Slice(c1[0:4])
	acc11 := archsimd.LoadFloat64x4Slice(c1[4:8])
	acc12 := archsimd.LoadFloat64x4Slice(c1[8:12])
	acc20 := archsimd.LoadFloat64x4Slice(c2[0:4])
	acc21 := archsimd.LoadFloat64x4Slice(c2[4:8])
	acc22 := archsimd.LoadFloat64x4Slice(c2[8:12])
	acc30 := archsimd.LoadFloat64x4Slice(c3[0:4])
	acc31 := archsimd.LoadFloat64x4Slice(c3[4:8])
	acc32 := archsimd.LoadFloat64x4Slice(c3[8:12])

	for p := 0; p < k; p++ {
		bp := b[p*ldb : p*ldb+12]
		vB0 := archsimd.LoadFloat64x4Slice(bp[0:4])
		vB1 := archsimd.LoadFloat64x4Slice(bp[4:8])
		vB2 := archsimd.LoadFloat64x4Slice(bp[8:12])

		ap := a[p*acs:]
		vA := archsimd.BroadcastFloat64x4(ap[0])
		acc00 = vA.MulAdd(vB0, acc00)
		acc01 = vA.MulAdd(vB1, acc01)
		acc02 = vA.MulAdd(vB2, acc02)

		vA = archsimd.BroadcastFloat64x4(ap[ars])
		acc10 = vA.MulAdd(vB0, acc10)
		acc11 = vA.MulAdd(vB1, acc11)
		acc12 = vA.MulAdd(vB2, acc12)

		vA = archsimd.BroadcastFloat64x4(ap[2*ars])
		acc20 = vA.MulAdd(vB0, acc20)
		acc21 = vA.MulAdd(vB1, acc21)
		acc22 = vA.MulAdd(vB2, acc22)

		vA = archsimd.BroadcastFloat64x4(ap[3*ars])
		acc30 = vA.MulAdd(vB0, acc30)
		acc31 = vA.MulAdd(vB1, acc31)
		acc32 = vA.MulAdd(vB2, acc32)
	}

	acc00.StoreSlice(c0[0:4])
	acc01.StoreSlice(c0[4:8])
	acc02.StoreSlice(c0[8:12])
	acc10.StoreSlice(c1[0:4])
	acc11.StoreSlice(c1[4:8])
	acc12.StoreSlice(c1[8:12])
	acc20.StoreSlice(c2[0:4])
	acc21.StoreSlice(c2[4:8])
	acc22.StoreSlice(c2[8:12])
	acc30.StoreSlice(c3[0:4])
	acc31.StoreSlice(c3[4:8])
	acc32.StoreSlice(c3[8:12])
}
