package accompaniment

import (
	"testing"

	"github.com/schollz/scoreforge/internal/events"
	"github.com/schollz/scoreforge/internal/rational"
	"github.com/schollz/scoreforge/internal/voicing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitBlockStrikesAllPitchesAtSameOffset(t *testing.T) {
	offset := rational.Must(1, 2)
	dur := rational.Must(1, 4)
	evs := EmitBlock([]int{60, 64, 67}, offset, dur)
	require.Len(t, evs, 3)
	for _, e := range evs {
		assert.True(t, e.Offset.Equal(offset))
		assert.True(t, e.Duration.Equal(dur))
	}
}

func TestEmitArpeggioUpDownCycleShape(t *testing.T) {
	evs := EmitArpeggio([]int{60, 64, 67}, ArpUpDown, rational.Zero, rational.Must(1, 8), rational.Must(1, 1))
	require.Len(t, evs, 8)
	got := make([]int, 8)
	for i, e := range evs {
		got[i] = e.Pitch
	}
	assert.Equal(t, []int{60, 64, 67, 64, 60, 64, 67, 64}, got)
}

func TestEmitArpeggioUpAdvancesOffsetByNoteDuration(t *testing.T) {
	noteDur := rational.Must(1, 8)
	evs := EmitArpeggio([]int{60, 64, 67}, ArpUp, rational.Zero, noteDur, rational.Must(3, 8))
	require.Len(t, evs, 3)
	assert.True(t, evs[0].Offset.Equal(rational.Zero))
	assert.True(t, evs[1].Offset.Equal(rational.Must(1, 8)))
	assert.True(t, evs[2].Offset.Equal(rational.Must(2, 8)))
}

func TestEmitArpeggioDownReversesOrder(t *testing.T) {
	evs := EmitArpeggio([]int{60, 64, 67}, ArpDown, rational.Zero, rational.Must(1, 8), rational.Must(3, 8))
	got := []int{evs[0].Pitch, evs[1].Pitch, evs[2].Pitch}
	assert.Equal(t, []int{67, 64, 60}, got)
}

func TestEmitArpeggioShortensFinalStepToFitSegment(t *testing.T) {
	// 2 full quarter-note steps (1/4 each) fit in 5/8, with
	// a 1/8 remainder: the final step must be shortened to exactly 1/8
	// rather than overrunning the segment.
	evs := EmitArpeggio([]int{60, 64, 67}, ArpUp, rational.Zero, rational.Must(1, 4), rational.Must(5, 8))
	require.Len(t, evs, 3)
	assert.True(t, evs[0].Duration.Equal(rational.Must(1, 4)))
	assert.True(t, evs[1].Duration.Equal(rational.Must(1, 4)))
	assert.True(t, evs[2].Duration.Equal(rational.Must(1, 8)))
	assert.True(t, evs[2].Offset.Equal(rational.Must(1, 2)))
	assert.True(t, evs[2].End().Equal(rational.Must(5, 8)))
}

func TestEmitArpeggioEmptyInputsReturnNil(t *testing.T) {
	assert.Nil(t, EmitArpeggio(nil, ArpUp, rational.Zero, rational.Must(1, 8), rational.Must(1, 1)))
	assert.Nil(t, EmitArpeggio([]int{60}, ArpUp, rational.Zero, rational.Zero, rational.Must(1, 1)))
}

func splitParts() SplitParts {
	return SplitParts{
		SplitPitch: 60,
		Bass:       voicing.BassRange,
		Harmony:    voicing.AltoRange,
	}
}

func TestOrchestrateSplitsByPitchAndFoldsIntoRange(t *testing.T) {
	evs := []events.NoteEvent{
		{Pitch: 48, Offset: rational.Zero, Duration: rational.Must(1, 4), Velocity: 1},  // below split -> bass
		{Pitch: 67, Offset: rational.Zero, Duration: rational.Must(1, 4), Velocity: 1},   // at/above split -> harmony
		{Pitch: events.RestPitch, Offset: rational.Zero, Duration: rational.Must(1, 4)},  // rest passes through
	}
	parts := splitParts()
	out := Orchestrate(evs, parts)
	require.Len(t, out, 3)

	assert.True(t, out[0].Pitch >= parts.Bass.Low && out[0].Pitch <= parts.Bass.High)
	assert.True(t, out[1].Pitch >= parts.Harmony.Low && out[1].Pitch <= parts.Harmony.High)
	assert.True(t, out[2].IsRest())
}

func TestOrchestrateEmptyInputReturnsNil(t *testing.T) {
	assert.Nil(t, Orchestrate(nil, splitParts()))
}
