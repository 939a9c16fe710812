package transpose

import "golang.org/x/sys/cpu"

// registerBits is the effective REGISTER_BITS for the running CPU (256 for
// AVX/AVX2, 128 for ASIMD), resolved once at init() via capability-struct
// detection instead of requiring a rebuild per target.
var registerBits = detectRegisterBits()

// archName is surfaced by Print for diagnostics.
var archName = detectArchName()

func detectRegisterBits() int {
	if cpu.X86.HasAVX2 || cpu.X86.HasAVX {
		return 256
	}
	if cpu.ARM64.HasASIMD {
		return 128
	}
	// Scalar fallback target: treat as a single "lane" register.
	return 64
}

func detectArchName() string {
	switch {
	case cpu.X86.HasAVX2:
		return "avx2"
	case cpu.X86.HasAVX:
		return "avx"
	case cpu.ARM64.HasASIMD:
		return "neon"
	default:
		return "scalar"
	}
}

// microWidth returns W = REGISTER_BITS/(8*sizeof(T)), the micro-kernel's
// square tile dimension.
func microWidth[T Element]() int {
	w := registerBits / (8 * elementSize[T]())
	if w < 1 {
		return 1
	}
	return w
}
