package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassAccidentals(t *testing.T) {
	cases := map[string]Class{
		"C":  C,
		"C#": Cs,
		"Db": Cs,
		"B#": C,
		"Cb": B,
		"F♯": Fs,
		"B♭": As,
	}
	for in, want := range cases {
		got, err := ParseClass(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestSignedShortestTritoneIsPlusSix(t *testing.T) {
	assert.Equal(t, 6, C.SignedShortest(Fs))
}

func TestAscendingIntervalWraps(t *testing.T) {
	assert.Equal(t, 0, C.AscendingInterval(C))
	assert.Equal(t, 11, C.AscendingInterval(B))
	assert.Equal(t, 1, B.AscendingInterval(C))
}

func TestMidiPitchRoundTrip(t *testing.T) {
	n := SpnNote{Class: C, Octave: 4}
	mp, err := n.MidiPitch()
	require.NoError(t, err)
	assert.Equal(t, 60, mp)

	back, err := FromMidi(60)
	require.NoError(t, err)
	assert.Equal(t, n, back)
}

func TestMidiPitchOutOfRange(t *testing.T) {
	n := SpnNote{Class: C, Octave: 11}
	_, err := n.MidiPitch()
	require.Error(t, err)
}

func TestChromaticIntervalSimpleOctave(t *testing.T) {
	assert.Equal(t, 12, ChromaticInterval(12).Simple())
	assert.Equal(t, 0, ChromaticInterval(0).Simple())
	assert.Equal(t, 1, ChromaticInterval(13).Simple())
}

func TestMidiToNoteNameFixedWidth(t *testing.T) {
	assert.Equal(t, "c-4", MidiToNoteName(60))
	assert.Equal(t, "f#1", MidiToNoteName(30))
	assert.Equal(t, "---", MidiToNoteName(200))
}
