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

// Package fastmult implements a cache-blocked, SIMD, parallel float64
// matrix product.
//
// The work is layered: a 4-row register-blocked micro-kernel, a tiled pass
// covering C with micro tiles and masked edge tiles, cache blocking that
// stages blocks of A into an aligned scratch buffer, and an Engine that
// spreads the blocks over a worker pool.
//
// Every entry point accumulates: C += A·B. Zero C first, or use Product.
package fastmult

import "github.com/neosoft-hpc/go-cla/cla"

// Multiply computes C += A·B on a transient engine with the default
// options. Use an Engine to amortize worker start-up across products.
func Multiply(c, a, b cla.View) error {
	e, err := NewEngine()
	if err != nil {
		return err
	}
	defer e.Close()
	return e.Multiply(c, a, b)
}

// Product returns A·B in a new row-major matrix.
func Product(a, b cla.View) (*cla.Matrix, error) {
	e, err := NewEngine()
	if err != nil {
		return nil, err
	}
	defer e.Close()
	return e.Product(a, b)
}
