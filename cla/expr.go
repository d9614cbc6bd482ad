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

// Lazy arithmetic. Combinators only record their operands; nothing is
// computed until a sink (Assign, EvalVec, EvalMat, Dot) walks the result.
// Shape errors are detected when the expression is built and returned by
// the sink.
//
//	y := cla.NewVector(n)
//	err := y.Assign(cla.AddVec(cla.ScaleVec(2, x), cla.MulMatVec(a, z)))

// VecExpr is anything indexable as a vector.
type VecExpr interface {
	Len() int
	At(i int) float64
}

// MatExpr is anything indexable as a matrix.
type MatExpr interface {
	Dims() (rows, cols int)
	At(i, j int) float64
}

// faulty is implemented by expressions that can carry a construction error.
type faulty interface {
	exprErr() error
}

// mixing is implemented by expressions whose element i reads other
// positions of their operands, so they cannot be evaluated in place.
type mixing interface {
	mixes() bool
}

func errOf(e any) error {
	if f, ok := e.(faulty); ok {
		return f.exprErr()
	}
	return nil
}

func mixes(e any) bool {
	m, ok := e.(mixing)
	return ok && m.mixes()
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

type binVec struct {
	a, b VecExpr
	op   func(x, y float64) float64
	err  error
}

func (e binVec) Len() int         { return e.a.Len() }
func (e binVec) At(i int) float64 { return e.op(e.a.At(i), e.b.At(i)) }
func (e binVec) exprErr() error   { return e.err }
func (e binVec) mixes() bool      { return mixes(e.a) || mixes(e.b) }

func newBinVec(name string, a, b VecExpr, op func(x, y float64) float64) binVec {
	err := firstErr(errOf(a), errOf(b))
	if err == nil && a.Len() != b.Len() {
		err = ShapeError(name, "length %d vs %d", a.Len(), b.Len())
	}
	return binVec{a: a, b: b, op: op, err: err}
}

// AddVec returns the lazy sum a+b.
func AddVec(a, b VecExpr) VecExpr {
	return newBinVec("AddVec", a, b, func(x, y float64) float64 { return x + y })
}

// SubVec returns the lazy difference a-b.
func SubVec(a, b VecExpr) VecExpr {
	return newBinVec("SubVec", a, b, func(x, y float64) float64 { return x - y })
}

type scaleVec struct {
	alpha float64
	v     VecExpr
}

func (e scaleVec) Len() int         { return e.v.Len() }
func (e scaleVec) At(i int) float64 { return e.alpha * e.v.At(i) }
func (e scaleVec) exprErr() error   { return errOf(e.v) }
func (e scaleVec) mixes() bool      { return mixes(e.v) }

// ScaleVec returns the lazy product alpha*v.
func ScaleVec(alpha float64, v VecExpr) VecExpr {
	return scaleVec{alpha: alpha, v: v}
}

type binMat struct {
	a, b MatExpr
	op   func(x, y float64) float64
	err  error
}

func (e binMat) Dims() (int, int)    { return e.a.Dims() }
func (e binMat) At(i, j int) float64 { return e.op(e.a.At(i, j), e.b.At(i, j)) }
func (e binMat) exprErr() error      { return e.err }
func (e binMat) mixes() bool         { return mixes(e.a) || mixes(e.b) }

func newBinMat(name string, a, b MatExpr, op func(x, y float64) float64) binMat {
	err := firstErr(errOf(a), errOf(b))
	if err == nil {
		err = CheckSameShape(name, a, b)
	}
	return binMat{a: a, b: b, op: op, err: err}
}

// AddMat returns the lazy sum a+b.
func AddMat(a, b MatExpr) MatExpr {
	return newBinMat("AddMat", a, b, func(x, y float64) float64 { return x + y })
}

// SubMat returns the lazy difference a-b.
func SubMat(a, b MatExpr) MatExpr {
	return newBinMat("SubMat", a, b, func(x, y float64) float64 { return x - y })
}

type scaleMat struct {
	alpha float64
	m     MatExpr
}

func (e scaleMat) Dims() (int, int)    { return e.m.Dims() }
func (e scaleMat) At(i, j int) float64 { return e.alpha * e.m.At(i, j) }
func (e scaleMat) exprErr() error      { return errOf(e.m) }
func (e scaleMat) mixes() bool         { return mixes(e.m) }

// ScaleMat returns the lazy product alpha*m.
func ScaleMat(alpha float64, m MatExpr) MatExpr {
	return scaleMat{alpha: alpha, m: m}
}

type transposed struct {
	m MatExpr
}

func (e transposed) Dims() (int, int) {
	r, c := e.m.Dims()
	return c, r
}

func (e transposed) At(i, j int) float64 { return e.m.At(j, i) }
func (e transposed) exprErr() error      { return errOf(e.m) }
func (e transposed) mixes() bool         { return true }

// Transpose returns the lazy transpose of m. For views, View.T is free.
func Transpose(m MatExpr) MatExpr {
	return transposed{m: m}
}

type mulMat struct {
	a, b MatExpr
	err  error
}

func (e mulMat) Dims() (int, int) {
	r, _ := e.a.Dims()
	_, c := e.b.Dims()
	return r, c
}

func (e mulMat) At(i, j int) float64 {
	_, k := e.a.Dims()
	var sum float64
	for p := range k {
		sum += e.a.At(i, p) * e.b.At(p, j)
	}
	return sum
}

func (e mulMat) exprErr() error { return e.err }
func (e mulMat) mixes() bool    { return true }

// MulMat returns the lazy naive product a·b. Each element costs one dot
// product; use fastmult for large operands.
func MulMat(a, b MatExpr) MatExpr {
	err := firstErr(errOf(a), errOf(b))
	if err == nil {
		ar, ac := a.Dims()
		br, bc := b.Dims()
		if ac != br {
			err = ShapeError("MulMat", "%dx%d times %dx%d", ar, ac, br, bc)
		}
	}
	return mulMat{a: a, b: b, err: err}
}

type mulMatVec struct {
	a   MatExpr
	x   VecExpr
	err error
}

func (e mulMatVec) Len() int {
	r, _ := e.a.Dims()
	return r
}

func (e mulMatVec) At(i int) float64 {
	_, k := e.a.Dims()
	var sum float64
	for p := range k {
		sum += e.a.At(i, p) * e.x.At(p)
	}
	return sum
}

func (e mulMatVec) exprErr() error { return e.err }
func (e mulMatVec) mixes() bool    { return true }

// MulMatVec returns the lazy matrix-vector product a·x.
func MulMatVec(a MatExpr, x VecExpr) VecExpr {
	err := firstErr(errOf(a), errOf(x))
	if err == nil {
		r, c := a.Dims()
		if c != x.Len() {
			err = ShapeError("MulMatVec", "%dx%d times length %d", r, c, x.Len())
		}
	}
	return mulMatVec{a: a, x: x, err: err}
}

// Assign evaluates e into v.
func (v VectorView) Assign(e VecExpr) error {
	if err := errOf(e); err != nil {
		return err
	}
	if e.Len() != v.size {
		return ShapeError("Assign", "length %d into length %d", e.Len(), v.size)
	}
	if mixes(e) {
		tmp, err := EvalVec(e)
		if err != nil {
			return err
		}
		return v.CopyFrom(tmp.VectorView)
	}
	for i := range v.size {
		v.data[i*v.dist] = e.At(i)
	}
	return nil
}

// EvalVec evaluates e into a new vector.
func EvalVec(e VecExpr) (*Vector, error) {
	if err := errOf(e); err != nil {
		return nil, err
	}
	out := NewVector(e.Len())
	for i := range out.size {
		out.data[i] = e.At(i)
	}
	return out, nil
}

// Assign evaluates e into v.
func (v View) Assign(e MatExpr) error {
	if err := errOf(e); err != nil {
		return err
	}
	if err := CheckSameShape("Assign", v, e); err != nil {
		return err
	}
	if mixes(e) {
		tmp, err := EvalMat(e, v.layout)
		if err != nil {
			return err
		}
		return v.CopyFrom(tmp.View)
	}
	for i := range v.rows {
		for j := range v.cols {
			v.data[v.offset(i, j)] = e.At(i, j)
		}
	}
	return nil
}

// EvalMat evaluates e into a new matrix with the given layout.
func EvalMat(e MatExpr, layout Layout) (*Matrix, error) {
	if err := errOf(e); err != nil {
		return nil, err
	}
	r, c := e.Dims()
	out := NewMatrix(r, c, layout)
	for i := range r {
		for j := range c {
			out.data[out.offset(i, j)] = e.At(i, j)
		}
	}
	return out, nil
}
