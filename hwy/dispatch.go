package hwy

import (
	"os"
	"strconv"
	"unsafe"
)

// DispatchLevel identifies the SIMD width the process picked at startup.
type DispatchLevel int

const (
	// DispatchScalar means no hardware vector width was detected; Vec
	// operations still work, just at width 1-per-register-worth of bytes.
	DispatchScalar DispatchLevel = iota
	DispatchAVX2
	DispatchAVX512
	DispatchNEON
)

func (d DispatchLevel) String() string {
	switch d {
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	case DispatchNEON:
		return "neon"
	default:
		return "scalar"
	}
}

// currentLevel and currentWidth are set once by each platform's init() in
// dispatch_amd64.go / dispatch_arm64.go / dispatch_other.go — the one-shot
// CPUID probe at process startup.
var (
	currentLevel DispatchLevel
	currentWidth int
)

// CurrentLevel returns the dispatch level this process detected at startup.
func CurrentLevel() DispatchLevel { return currentLevel }

// CurrentWidth returns the current dispatch level's register width in bytes.
func CurrentWidth() int { return currentWidth }

// HasSIMD reports whether the process is using a hardware vector width
// rather than the scalar fallback.
func HasSIMD() bool { return currentLevel != DispatchScalar }

// NoSimdEnv reports whether HWY_NO_SIMD forces the scalar fallback,
// regardless of what the CPU actually supports.
func NoSimdEnv() bool {
	val := os.Getenv("HWY_NO_SIMD")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

// MaxLanes returns how many lanes of T fit in the current dispatch width.
func MaxLanes[T Lanes]() int {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return 0
	}
	return currentWidth / size
}
