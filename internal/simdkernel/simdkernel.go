// Package simdkernel implements the process-wide, once-selected transpose
// kernel (spec.md C9 / §9 design notes: "the chord lookup table, scale
// masks, and SIMD kernel choice are process-wide immutable state
// initialized once"). The tier is picked by CPU feature detection via
// github.com/klauspost/cpuid/v2, grounded on the same dependency the wider
// retrieval pack already carries transitively for this purpose. Every
// tier is pure Go and correctness-identical -- there is no cgo or
// assembly here, so the "tiers" differ only in their unroll width, which
// is the one axis the spec says must never be user-observable beyond
// throughput.
package simdkernel

import (
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// Tier names the selected kernel. Selection is pure data: every tier
// computes the identical result.
type Tier int

const (
	TierScalar Tier = iota
	TierPortable128
	TierSSE2
	TierNEON
	TierAVX2
	TierAVX512
)

func (t Tier) String() string {
	switch t {
	case TierScalar:
		return "scalar"
	case TierPortable128:
		return "portable128"
	case TierSSE2:
		return "sse2"
	case TierNEON:
		return "neon"
	case TierAVX2:
		return "avx2"
	case TierAVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

var (
	once         sync.Once
	selectedTier Tier
)

// detectTier inspects cpuid.CPU once to choose the best available tier.
// On non-x86/ARM builds, or when no relevant feature is detected, it
// falls back to the portable 128-bit tier; detection never selects
// TierScalar.
func detectTier() Tier {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return TierAVX512
	case cpuid.CPU.Supports(cpuid.AVX2):
		return TierAVX2
	case cpuid.CPU.Supports(cpuid.SSE2):
		return TierSSE2
	case cpuid.CPU.Supports(cpuid.ASIMD):
		return TierNEON
	default:
		return TierPortable128
	}
}

func ensureSelected() { once.Do(func() { selectedTier = detectTier() }) }

// SelectedTier returns the process-wide chosen tier, computing it on
// first use.
func SelectedTier() Tier {
	ensureSelected()
	return selectedTier
}

// Transpose adds semitones to every element of pitches, using the
// process-wide selected tier's unroll width. Correctness law: for any
// tier, result[i] = pitches[i] + semitones, for all i.
func Transpose(pitches []int, semitones int) []int {
	ensureSelected()
	out := make([]int, len(pitches))
	switch selectedTier {
	case TierAVX512:
		transposeUnrolled(pitches, out, semitones, 32)
	case TierAVX2:
		transposeUnrolled(pitches, out, semitones, 32)
	case TierSSE2, TierNEON:
		transposeUnrolled(pitches, out, semitones, 4)
	case TierPortable128:
		transposeUnrolled(pitches, out, semitones, 4)
	default:
		transposeScalar(pitches, out, semitones)
	}
	return out
}

// transposeUnrolled processes the input width-at-a-time, mirroring the
// lane width a real SIMD implementation would use, then finishes the
// remainder scalar.
func transposeUnrolled(in, out []int, semitones int, width int) {
	n := len(in)
	i := 0
	for ; i+width <= n; i += width {
		for lane := 0; lane < width; lane++ {
			out[i+lane] = in[i+lane] + semitones
		}
	}
	for ; i < n; i++ {
		out[i] = in[i] + semitones
	}
}

func transposeScalar(in, out []int, semitones int) {
	for i := 0; i+4 <= len(in); i += 4 {
		out[i] = in[i] + semitones
		out[i+1] = in[i+1] + semitones
		out[i+2] = in[i+2] + semitones
		out[i+3] = in[i+3] + semitones
	}
	rem := len(in) - len(in)%4
	for i := rem; i < len(in); i++ {
		out[i] = in[i] + semitones
	}
}
