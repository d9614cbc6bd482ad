// Package hwy detects the SIMD target go-cla runs on and provides the
// aligned allocation its kernels stage data into.
//
// The detected level decides which architecture-specific kernels a package
// installs; code without such a kernel runs its portable scalar version.
// Setting CLA_NO_SIMD forces the scalar level.
//
//	fmt.Println(hwy.CurrentName(), hwy.MaxLanes[float64]())
//	buf := hwy.AlignedAlloc[float64](96*96, hwy.CacheLineSize)
package hwy

// Floats is a constraint for floating-point types.
type Floats interface {
	~float32 | ~float64
}

// Lanes is the set of element types sized by MaxLanes and AlignedAlloc.
type Lanes interface {
	Floats
}
