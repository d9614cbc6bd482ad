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

import "github.com/cockroachdb/errors"

// Error classes shared by every package of the module. Returned errors wrap
// exactly one of them; test with errors.Is.
var (
	// ErrShapeMismatch: operand dimensions are incompatible for the operation.
	ErrShapeMismatch = errors.New("cla: shape mismatch")

	// ErrNonSquare: the operation needs a non-empty square matrix.
	ErrNonSquare = errors.New("cla: matrix is not square")

	// ErrSingular: a factorization hit an exactly zero pivot.
	ErrSingular = errors.New("cla: matrix is singular")

	// ErrIndexOutOfRange: an index lies outside [-size, size) after wraparound.
	ErrIndexOutOfRange = errors.New("cla: index out of range")

	// ErrMalformedState: a serialized payload has the wrong arity or length.
	ErrMalformedState = errors.New("cla: malformed serialized state")

	// ErrFactorization: a numerical routine failed or the factorization
	// was already consumed.
	ErrFactorization = errors.New("cla: factorization failed")
)

// ShapeError returns an ErrShapeMismatch describing the operation and the
// offending extents.
func ShapeError(op string, format string, args ...any) error {
	return errors.Wrapf(ErrShapeMismatch, "%s: "+format, append([]any{op}, args...)...)
}

// CheckSameShape returns an ErrShapeMismatch unless a and b have equal extents.
func CheckSameShape(op string, a, b Shaped) error {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return ShapeError(op, "%dx%d vs %dx%d", ar, ac, br, bc)
	}
	return nil
}

// CheckProduct validates C(m×n) += A(m×k)·B(k×n).
func CheckProduct(op string, c, a, b Shaped) error {
	cr, cc := c.Dims()
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != cr || bc != cc || ac != br {
		return ShapeError(op, "C %dx%d, A %dx%d, B %dx%d", cr, cc, ar, ac, br, bc)
	}
	return nil
}

func indexError(i, size int) error {
	return errors.Wrapf(ErrIndexOutOfRange, "index %d for size %d", i, size)
}
