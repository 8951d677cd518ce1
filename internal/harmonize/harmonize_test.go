package harmonize

import (
	"testing"

	"github.com/schollz/scoreforge/internal/chordtable"
	"github.com/schollz/scoreforge/internal/events"
	"github.com/schollz/scoreforge/internal/keytheory"
	"github.com/schollz/scoreforge/internal/rational"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(pitch int, offset, dur int64) events.NoteEvent {
	return events.NoteEvent{
		Pitch:    pitch,
		Offset:   rational.Must(offset, 4),
		Duration: rational.Must(dur, 4),
		Velocity: 1,
	}
}

func TestInferKeyHighConfidenceForCMajorMelody(t *testing.T) {
	// A full C-major scale run covers all seven scale tones, so it should
	// score near-perfect confidence against the C-major mask.
	melody := []events.NoteEvent{
		note(60, 0, 1), note(62, 1, 1), note(64, 2, 1), note(65, 3, 1),
		note(67, 4, 1), note(69, 5, 1), note(71, 6, 1),
	}
	k := InferKey(melody)
	assert.True(t, k.Confidence >= 0.8, "confidence %v", k.Confidence)
	assert.Equal(t, 0, k.Key.Root)
	assert.True(t, k.Key.IsMajor)
}

func TestHarmonizeNoKeyHintThreeNoteMelody(t *testing.T) {
	melody := []events.NoteEvent{
		note(60, 0, 1), note(67, 1, 1), note(60, 2, 2),
	}
	assignments, err := Harmonize(melody, Options{})
	require.NoError(t, err)
	require.NotEmpty(t, assignments)
	// The first chord must support the melody's opening C, since
	// DiatonicProvider only offers chords containing every melody pitch
	// class of the slice.
	assert.True(t, assignments[0].Mask.Contains(0))
	assert.NotEmpty(t, assignments[0].Pitches)
}

func TestHarmonizeEmptyMelodyFails(t *testing.T) {
	_, err := Harmonize(nil, Options{})
	require.Error(t, err)
}

func TestHarmonizeRestOnlyMelodyFails(t *testing.T) {
	melody := []events.NoteEvent{
		{Pitch: events.RestPitch, Offset: rational.Zero, Duration: rational.Must(1, 1)},
	}
	_, err := Harmonize(melody, Options{})
	require.Error(t, err)
}

func TestOneChordPerNoteGroupsSimultaneousOnsets(t *testing.T) {
	melody := []events.NoteEvent{
		note(60, 0, 1), note(64, 0, 1), note(67, 1, 1),
	}
	slices := OneChordPerNote{}.Slices(melody)
	require.Len(t, slices, 2)
	assert.Len(t, slices[0].Melody, 2)
	assert.Len(t, slices[1].Melody, 1)
}

func TestBeatGridStrategyFloorsAndCeilsToTheGridAndAlternatesStrongBeats(t *testing.T) {
	// Spans a quarter-note's worth of melody starting mid-grid (3/8 to
	// 5/8); the slice boundaries must floor/ceil out to the surrounding
	// quarter-note grid (1/4 to 3/4), strong beat first, then weak.
	melody := []events.NoteEvent{{Pitch: 60, Offset: rational.Must(3, 8), Duration: rational.Must(1, 4), Velocity: 1}}
	slices := BeatGridStrategy{}.Slices(melody)
	require.Len(t, slices, 2)
	assert.True(t, slices[0].Start.Equal(rational.Must(1, 4)))
	assert.True(t, slices[0].End.Equal(rational.Must(2, 4)))
	assert.True(t, slices[0].IsStrongBeat)
	assert.True(t, slices[1].End.Equal(rational.Must(3, 4)))
	assert.False(t, slices[1].IsStrongBeat)
}

func TestBeatGridStrategyAlternatesStrongWeak(t *testing.T) {
	melody := []events.NoteEvent{note(60, 0, 4)} // one whole note, four beats
	slices := BeatGridStrategy{}.Slices(melody)
	require.Len(t, slices, 4)
	for i, sl := range slices {
		assert.Equal(t, i%2 == 0, sl.IsStrongBeat, "slice %d", i)
	}
}

func TestDiatonicProviderFiltersByMelodyPitchClasses(t *testing.T) {
	key := keytheory.KeySignature{Root: 0, IsMajor: true}
	slice := Slice{Melody: []events.NoteEvent{note(61, 0, 1)}} // C# -- in no diatonic C-major chord
	cands := DiatonicProvider{}.Candidates(slice, key)
	assert.Empty(t, cands)

	slice2 := Slice{Melody: []events.NoteEvent{note(60, 0, 1)}} // C -- in I, IV, vi...
	cands2 := DiatonicProvider{}.Candidates(slice2, key)
	assert.NotEmpty(t, cands2)
	for _, c := range cands2 {
		assert.True(t, c.Mask.Contains(0))
		assert.NotEmpty(t, c.Pitches)
	}
}

func TestDiatonicProviderPrefersTonicSubdominantDominant(t *testing.T) {
	key := keytheory.KeySignature{Root: 0, IsMajor: true}
	for _, c := range (DiatonicProvider{}).Candidates(Slice{}, key) {
		if c.Chord.Degree == 1 || c.Chord.Degree == 4 || c.Chord.Degree == 5 {
			assert.Equal(t, 0.0, c.BaseCost)
		} else {
			assert.True(t, c.BaseCost > 0)
		}
	}
}

func TestDefaultMelodyFitPenalizesNonChordTonesMoreOnStrongBeats(t *testing.T) {
	cand := Candidate{Mask: 0} // empty mask: every pitch class is a non-chord tone
	strong := Slice{Melody: []events.NoteEvent{note(60, 0, 1)}, IsStrongBeat: true}
	weak := Slice{Melody: []events.NoteEvent{note(60, 0, 1)}, IsStrongBeat: false}
	d := DefaultMelodyFit{}
	assert.Equal(t, 0.5, d.Score(cand, strong))
	assert.Equal(t, 0.2, d.Score(cand, weak))
}

func TestDefaultMelodyFitStartsFromBaseCost(t *testing.T) {
	cand := Candidate{Mask: chordtable.GetMask([]int{0, 4, 7}), BaseCost: 0.2}
	sl := Slice{Melody: []events.NoteEvent{note(60, 0, 1)}} // chord tone, no penalty
	assert.Equal(t, 0.2, DefaultMelodyFit{}.Score(cand, sl))
}

func TestDefaultTransitionScorerRootMotion(t *testing.T) {
	ts := DefaultTransitionScorer{}
	tonic := Candidate{RootPC: 0, Chord: keytheory.RomanNumeralChord{Function: keytheory.FunctionTonic}}
	up5th := Candidate{RootPC: 7, Chord: keytheory.RomanNumeralChord{Function: keytheory.FunctionTonic}}
	repeat := Candidate{RootPC: 0, Chord: keytheory.RomanNumeralChord{Function: keytheory.FunctionTonic}}
	assert.InDelta(t, 0.0, ts.Score(tonic, up5th), 1e-9)
	assert.True(t, ts.Score(tonic, repeat) > ts.Score(tonic, up5th))
}

func TestDefaultTransitionScorerFunctionalBonusAndPenalty(t *testing.T) {
	ts := DefaultTransitionScorer{}
	dominant := Candidate{RootPC: 7, Chord: keytheory.RomanNumeralChord{Function: keytheory.FunctionDominant}}
	tonic := Candidate{RootPC: 0, Chord: keytheory.RomanNumeralChord{Function: keytheory.FunctionTonic}}
	subdominant := Candidate{RootPC: 5, Chord: keytheory.RomanNumeralChord{Function: keytheory.FunctionSubdominant}}
	// D->T is bonused (-0.3); D->S is a regressive penalty (+0.3), so it
	// must cost strictly more; the root motions differ only slightly
	// (G->C costs 0.0, G->F costs 0.1).
	assert.True(t, ts.Score(dominant, subdominant) > ts.Score(dominant, tonic))
}

func TestDefaultTransitionScorerClampsToZero(t *testing.T) {
	ts := DefaultTransitionScorer{}
	// Identical masks plus a bonused functional motion can drive the raw
	// total negative; the result must never go below zero.
	dominant := Candidate{RootPC: 7, Mask: chordtable.GetMask([]int{7, 11, 2}), Chord: keytheory.RomanNumeralChord{Function: keytheory.FunctionDominant}}
	tonicSameMask := Candidate{RootPC: 0, Mask: dominant.Mask, Chord: keytheory.RomanNumeralChord{Function: keytheory.FunctionTonic}}
	assert.True(t, ts.Score(dominant, tonicSameMask) >= 0)
}
