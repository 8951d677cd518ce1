package ornament

import (
	"testing"

	"github.com/schollz/scoreforge/internal/events"
	"github.com/schollz/scoreforge/internal/rational"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseNote() events.NoteEvent {
	return events.NoteEvent{Pitch: 60, Offset: rational.Zero, Duration: rational.Must(1, 4), Velocity: 1}
}

func totalDuration(evs []events.NoteEvent) rational.Rational {
	total := rational.Zero
	for _, e := range evs {
		total = total.Add(e.Duration)
	}
	return total
}

func TestTrillFitsExactlyWithinBaseDuration(t *testing.T) {
	o, err := FromTag(&events.OrnamentTag{Name: "tr"})
	require.NoError(t, err)
	out := Expand(o, baseNote())
	assert.True(t, totalDuration(out).Equal(baseNote().Duration))
	assert.Equal(t, baseNote().Pitch, out[0].Pitch)
	assert.Equal(t, baseNote().Pitch+2, out[1].Pitch)
}

func TestMordentThreeEvents(t *testing.T) {
	o, err := FromTag(&events.OrnamentTag{Name: "mord"})
	require.NoError(t, err)
	out := Expand(o, baseNote())
	require.Len(t, out, 3)
	assert.Equal(t, baseNote().Pitch, out[0].Pitch)
	assert.Equal(t, baseNote().Pitch+2, out[1].Pitch)
	assert.Equal(t, baseNote().Pitch, out[2].Pitch)
	assert.True(t, totalDuration(out).Equal(baseNote().Duration))
}

func TestTurnCanonicalOrder(t *testing.T) {
	o, err := FromTag(&events.OrnamentTag{Name: "turn"})
	require.NoError(t, err)
	out := Expand(o, baseNote())
	require.Len(t, out, 4)
	b := baseNote()
	assert.Equal(t, []int{b.Pitch + 2, b.Pitch, b.Pitch - 2, b.Pitch}, []int{out[0].Pitch, out[1].Pitch, out[2].Pitch, out[3].Pitch})
}

func TestAppoggiaturaLongSplitsInHalf(t *testing.T) {
	o, err := FromTag(&events.OrnamentTag{Name: "app", Params: []string{"long"}})
	require.NoError(t, err)
	out := Expand(o, baseNote())
	require.Len(t, out, 2)
	assert.True(t, out[0].Duration.Equal(out[1].Duration))
	assert.True(t, totalDuration(out).Equal(baseNote().Duration))
}

func TestArticulationScalesInPlaceNoExtraEvents(t *testing.T) {
	o, err := FromTag(&events.OrnamentTag{Name: "staccato"})
	require.NoError(t, err)
	out := Expand(o, baseNote())
	require.Len(t, out, 1)
	assert.True(t, out[0].Duration.Equal(rational.Must(1, 8)))
	assert.Equal(t, float32(1.0), out[0].Velocity)
}

func TestArticulationClampsVelocity(t *testing.T) {
	o, err := FromTag(&events.OrnamentTag{Name: "sforzando"})
	require.NoError(t, err)
	b := baseNote()
	b.Velocity = 0.8
	out := Expand(o, b)
	assert.Equal(t, float32(1.0), out[0].Velocity)
}

func TestUnknownOrnamentErrors(t *testing.T) {
	_, err := FromTag(&events.OrnamentTag{Name: "bogus"})
	require.Error(t, err)
}
