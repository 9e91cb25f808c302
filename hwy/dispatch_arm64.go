//go:build arm64

package hwy

import "golang.org/x/sys/cpu"

func init() {
	if NoSimdEnv() {
		currentLevel = DispatchScalar
		currentWidth = 16
		return
	}

	// NEON (ASIMD) is mandatory on ARMv8-A; the check is mostly documentation.
	if cpu.ARM64.HasASIMD {
		currentLevel = DispatchNEON
		currentWidth = 16
	} else {
		currentLevel = DispatchScalar
		currentWidth = 16
	}
}
