package figuredbass

import (
	"testing"

	"github.com/schollz/scoreforge/internal/keytheory"
	"github.com/schollz/scoreforge/internal/rational"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealizeUnfiguredBassDefaultsToMajorTriad(t *testing.T) {
	evs := Realize(48, nil, rational.Zero, rational.Must(1, 4), Options{})
	require.Len(t, evs, 3)
	pcs := []int{evs[0].Pitch % 12, evs[1].Pitch % 12, evs[2].Pitch % 12}
	assert.ElementsMatch(t, []int{0, 4, 7}, pcs)
	assert.True(t, evs[0].Pitch < evs[1].Pitch && evs[1].Pitch < evs[2].Pitch)
}

func TestRealizeSixChordFirstInversion(t *testing.T) {
	// Bass = E4 (pc 4), figure [6] over a C-major key: third and sixth
	// above the bass spell out the same C-major triad in first inversion.
	key := keytheory.KeySignature{Root: 0, IsMajor: true}
	evs := Realize(64, []int{6}, rational.Zero, rational.Must(1, 4), Options{Key: &key})
	require.Len(t, evs, 3)
	pcs := []int{evs[0].Pitch % 12, evs[1].Pitch % 12, evs[2].Pitch % 12}
	assert.ElementsMatch(t, []int{4, 7, 0}, pcs)
}

func TestRealizeSixFourChord(t *testing.T) {
	key := keytheory.KeySignature{Root: 0, IsMajor: true}
	evs := Realize(67, []int{6, 4}, rational.Zero, rational.Must(1, 4), Options{Key: &key})
	require.Len(t, evs, 3)
	pcs := []int{evs[0].Pitch % 12, evs[1].Pitch % 12, evs[2].Pitch % 12}
	assert.ElementsMatch(t, []int{7, 0, 4}, pcs)
}

func TestRealizeSeventhChord(t *testing.T) {
	key := keytheory.KeySignature{Root: 7, IsMajor: true} // G major: V7 = D7
	evs := Realize(62, []int{7}, rational.Zero, rational.Must(1, 4), Options{Key: &key})
	require.Len(t, evs, 4)
	pcs := make([]int, 4)
	for i, e := range evs {
		pcs[i] = e.Pitch % 12
	}
	assert.ElementsMatch(t, []int{2, 6, 9, 0}, pcs)
}

func TestRealizeProgressionMovesVoicesSmoothly(t *testing.T) {
	key := keytheory.KeySignature{Root: 0, IsMajor: true}
	steps := []Step{
		{Bass: 48, Figures: nil, Offset: rational.Zero, Duration: rational.Must(1, 4)},
		{Bass: 43, Figures: []int{7}, Offset: rational.Must(1, 4), Duration: rational.Must(1, 4)},
	}
	chords, err := RealizeProgression(steps, Options{Key: &key}, 7)
	require.NoError(t, err)
	require.Len(t, chords, 2)
	for i := 1; i < len(chords[1]); i++ {
		assert.True(t, chords[1][i-1].Pitch < chords[1][i].Pitch)
	}
}

func TestRealizeProgressionInfeasibleLeapErrors(t *testing.T) {
	key := keytheory.KeySignature{Root: 0, IsMajor: true}
	steps := []Step{
		{Bass: 48, Figures: nil, Offset: rational.Zero, Duration: rational.Must(1, 4)},
		{Bass: 43, Figures: []int{7}, Offset: rational.Must(1, 4), Duration: rational.Must(1, 4)},
	}
	_, err := RealizeProgression(steps, Options{Key: &key}, 0)
	require.Error(t, err)
}
