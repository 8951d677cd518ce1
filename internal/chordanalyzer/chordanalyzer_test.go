package chordanalyzer

import (
	"testing"

	"github.com/schollz/scoreforge/internal/chordtable"
	"github.com/schollz/scoreforge/internal/events"
	"github.com/schollz/scoreforge/internal/rational"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ev(pitch int, offset, dur rational.Rational) events.NoteEvent {
	return events.NoteEvent{Pitch: pitch, Offset: offset, Duration: dur, Velocity: 1}
}

func TestAnalyzeSegmentsAndIdentifies(t *testing.T) {
	evs := []events.NoteEvent{
		ev(60, rational.Zero, rational.Must(1, 4)),
		ev(64, rational.Zero, rational.Must(1, 4)),
		ev(67, rational.Zero, rational.Must(1, 4)),
		ev(62, rational.Must(1, 4), rational.Must(1, 4)),
		ev(65, rational.Must(1, 4), rational.Must(1, 4)),
		ev(69, rational.Must(1, 4), rational.Must(1, 4)),
	}
	segs := Analyze(evs)
	require.Len(t, segs, 2)
	assert.Equal(t, chordtable.Major, segs[0].Chord.Quality)
	assert.Equal(t, 0, segs[0].Chord.RootPC)
	assert.Equal(t, chordtable.Minor, segs[1].Chord.Quality)
	assert.Equal(t, 2, segs[1].Chord.RootPC)
}

func TestAnalyzeSkipsRests(t *testing.T) {
	evs := []events.NoteEvent{
		{Pitch: events.RestPitch, Offset: rational.Zero, Duration: rational.Must(1, 4)},
		ev(60, rational.Zero, rational.Must(1, 4)),
	}
	segs := Analyze(evs)
	require.Len(t, segs, 1)
	assert.Equal(t, []int{60}, segs[0].Pitches)
}

func TestAnalyzeAtFindsSoundingNotes(t *testing.T) {
	evs := []events.NoteEvent{
		ev(62, rational.Must(1, 4), rational.Must(1, 4)),
		ev(65, rational.Must(1, 4), rational.Must(1, 4)),
		ev(69, rational.Must(1, 4), rational.Must(1, 4)),
	}
	info := AnalyzeAt(evs, rational.Must(3, 8))
	assert.Equal(t, chordtable.Minor, info.Quality)
	assert.Equal(t, 2, info.RootPC)
}
