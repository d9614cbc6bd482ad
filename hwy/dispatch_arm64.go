//go:build arm64

package hwy

import "golang.org/x/sys/cpu"

func init() {
	if NoSimdEnv() {
		setScalarMode()
		return
	}

	// ASIMD is part of the ARMv8-A base architecture; the check is for consistency.
	if cpu.ARM64.HasASIMD {
		currentLevel = DispatchNEON
		currentWidth = 16 // NEON is 128-bit (16 bytes)
		currentName = "neon"
	} else {
		setScalarMode()
	}
}

// HasFMA returns true if the CPU has fused multiply-add instructions.
// FMLA is mandatory with ASIMD.
func HasFMA() bool {
	return cpu.ARM64.HasASIMD
}

// NativeKernels reports whether architecture-specific kernels were compiled in.
func NativeKernels() bool {
	return false
}
