//go:build !amd64 && !arm64

package hwy

func init() {
	// Other architectures use the portable kernels at scalar width.
	setScalarMode()
}

// HasFMA returns false; math.FMA is still used by the portable kernels.
func HasFMA() bool {
	return false
}

// NativeKernels reports whether architecture-specific kernels were compiled in.
func NativeKernels() bool {
	return false
}
