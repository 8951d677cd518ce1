package notation

import (
	"testing"

	"github.com/schollz/scoreforge/internal/rational"
	"github.com/schollz/scoreforge/internal/theoryerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripCanonicalInputs(t *testing.T) {
	inputs := []string{
		"C4/4 E4/4 G4/2",
		"C4/4. E4/2.",
		"C4/4 R/4 E4/8",
		"[C4 E4 G4]/4 D4/4",
		"4/4: C4/4 E4/4 G4/4 C5/4 | D4/4 F4/4 A4/4 D5/4",
	}
	for _, in := range inputs {
		r, err := ParseDefault(in)
		require.NoError(t, err, in)
		out := Format(r, DefaultFormatOptions())
		assert.Equal(t, in, out, "round trip for %q", in)
	}
}

func TestTiePropagationMergesDuration(t *testing.T) {
	r, err := ParseDefault("C4/4~ C4/4")
	require.NoError(t, err)
	require.Len(t, r.Events, 1)
	assert.Equal(t, 60, r.Events[0].Pitch)
	assert.True(t, r.Events[0].Duration.Equal(rational.Must(1, 2)))
}

func TestMeasureMismatch(t *testing.T) {
	_, err := Parse("3/4: C4/4 E4/4 G4/4 | D4/4 F4/4", ParseOptions{Validate: true})
	require.Error(t, err)
	mm, ok := err.(*theoryerr.MeasureMismatch)
	require.True(t, ok, "expected *theoryerr.MeasureMismatch, got %T", err)
	assert.Equal(t, 2, mm.Measure)
	assert.Equal(t, "3/4", mm.Expected)
	assert.Equal(t, "1/2", mm.Actual)
}

func TestEndToEndScenario(t *testing.T) {
	r, err := ParseDefault("4/4: [C4 E4 G4]/4 R/4 [D4 F4 A4]/2 | G4/4 E4/4 C4/2")
	require.NoError(t, err)
	require.Len(t, r.Events, 9)

	for i := 0; i < 3; i++ {
		assert.True(t, r.Events[i].Offset.IsZero())
		assert.True(t, r.Events[i].Duration.Equal(rational.Must(1, 4)))
	}
	got := map[int]bool{r.Events[0].Pitch: true, r.Events[1].Pitch: true, r.Events[2].Pitch: true}
	assert.Equal(t, map[int]bool{60: true, 64: true, 67: true}, got)

	rest := r.Events[3]
	assert.Equal(t, -1, rest.Pitch)
	assert.True(t, rest.Duration.Equal(rational.Must(1, 4)))
}

func TestChordSharesMaxDurationAcrossCursor(t *testing.T) {
	r, err := ParseDefault("[C4 E4 G4]/4 D4/4")
	require.NoError(t, err)
	require.Len(t, r.Events, 4)
	assert.True(t, r.Events[3].Offset.Equal(rational.Must(1, 4)))
}

func TestPolyphonicBlockAdvancesByLongestVoice(t *testing.T) {
	r, err := ParseDefault("<<C4/2>><<E4/8 G4/8>> C5/4")
	require.NoError(t, err)
	require.Len(t, r.Events, 4)
	assert.True(t, r.Events[0].Offset.IsZero())
	assert.True(t, r.Events[1].Offset.IsZero())
	assert.True(t, r.Events[2].Offset.Equal(rational.Must(1, 8)))
	// the trailing C5/4 starts after the block's longest voice (1/2), not
	// after the shorter second voice (1/4).
	assert.True(t, r.Events[len(r.Events)-1].Offset.Equal(rational.Must(1, 2)))
}

func TestDirectivesInterleaveAtCursor(t *testing.T) {
	r, err := ParseDefault("@bpm 120 -> 140 /4 C4/4 @cresc to ff E4/4")
	require.NoError(t, err)
	require.Len(t, r.Directives, 2)
	require.Len(t, r.Events, 2)

	bpm := r.Directives[0]
	assert.Equal(t, 120.0, bpm.BPM)
	require.NotNil(t, bpm.TargetBPM)
	assert.Equal(t, 140.0, *bpm.TargetBPM)
	require.NotNil(t, bpm.RampDur)
	assert.True(t, bpm.RampDur.Equal(rational.Must(1, 4)))

	cresc := r.Directives[1]
	assert.True(t, cresc.Time.Equal(rational.Must(1, 4)))
	require.NotNil(t, cresc.TargetLevel)
	assert.Equal(t, "ff", *cresc.TargetLevel)
}

func TestOrnamentSuffixAttachesToEvent(t *testing.T) {
	r, err := ParseDefault("C4{tr:2}/4")
	require.NoError(t, err)
	require.Len(t, r.Events, 1)
	require.NotNil(t, r.Events[0].Ornament)
	assert.Equal(t, "tr", r.Events[0].Ornament.Name)
	assert.Equal(t, []string{"2"}, r.Events[0].Ornament.Params)
}
