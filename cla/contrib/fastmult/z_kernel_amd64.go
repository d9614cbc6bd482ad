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

// NOTE: This file is named "z_kernel_amd64.go" (starting with 'z')
// so its init() runs after kernel.go installs the portable kernels.

package fastmult

import "github.com/neosoft-hpc/go-cla/hwy"

func init() {
	if hwy.NoSimdEnv() || !hwy.NativeKernels() {
		return
	}
	// AVX-512 hosts run the same 4-lane tile on the YMM half of their registers.
	switch hwy.CurrentLevel() {
	case hwy.DispatchAVX2, hwy.DispatchAVX512:
		MicroKernelFloat64 = microKernelAVX2
	}
}
