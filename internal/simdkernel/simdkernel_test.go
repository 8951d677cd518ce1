package simdkernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransposeMatchesScalarBaselineForAllTiers(t *testing.T) {
	lengths := []int{0, 1, 15, 16, 31, 32, 10000}
	for _, n := range lengths {
		in := make([]int, n)
		for i := range in {
			in[i] = i % 127
		}
		want := make([]int, n)
		transposeScalar(in, want, 5)

		for _, tier := range []Tier{TierScalar, TierPortable128, TierSSE2, TierNEON, TierAVX2, TierAVX512} {
			got := make([]int, n)
			switch tier {
			case TierAVX512, TierAVX2:
				transposeUnrolled(in, got, 5, 32)
			case TierSSE2, TierNEON, TierPortable128:
				transposeUnrolled(in, got, 5, 4)
			default:
				transposeScalar(in, got, 5)
			}
			assert.Equal(t, want, got, "tier %s, n=%d", tier, n)
		}
	}
}

func TestTransposePublicAPI(t *testing.T) {
	out := Transpose([]int{60, 64, 67}, 2)
	assert.Equal(t, []int{62, 66, 69}, out)
}

func TestSelectedTierIsStableAcrossCalls(t *testing.T) {
	a := SelectedTier()
	b := SelectedTier()
	assert.Equal(t, a, b)
}
