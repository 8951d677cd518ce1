// Package chordanalyzer segments a timed event stream into simultaneous
// chord groups and identifies each via internal/chordtable (spec.md C10).
// It is the bridge between the notation/notebuffer timing model and the
// mask-based chord vocabulary.
package chordanalyzer

import (
	"sort"

	"github.com/schollz/scoreforge/internal/chordtable"
	"github.com/schollz/scoreforge/internal/events"
	"github.com/schollz/scoreforge/internal/rational"
)

// Segment is one simultaneous group of notes within the stream, tagged
// with its identified chord.
type Segment struct {
	Offset   rational.Rational
	Duration rational.Rational
	Pitches  []int
	Chord    chordtable.ChordInfo
}

// Analyze groups evs (any order) by (offset, duration) -- notes sharing
// both are treated as one simultaneous sonority -- and identifies each
// group's chord via its pitch-class mask. Rests are skipped.
func Analyze(evs []events.NoteEvent) []Segment {
	sorted := make([]events.NoteEvent, 0, len(evs))
	for _, e := range evs {
		if !e.IsRest() {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Offset.Equal(sorted[j].Offset) {
			return sorted[i].Offset.Less(sorted[j].Offset)
		}
		return sorted[i].Duration.Less(sorted[j].Duration)
	})

	var out []Segment
	i := 0
	for i < len(sorted) {
		j := i + 1
		for j < len(sorted) && sorted[j].Offset.Equal(sorted[i].Offset) && sorted[j].Duration.Equal(sorted[i].Duration) {
			j++
		}
		var pitches []int
		for k := i; k < j; k++ {
			pitches = append(pitches, sorted[k].Pitch)
		}
		out = append(out, Segment{
			Offset:   sorted[i].Offset,
			Duration: sorted[i].Duration,
			Pitches:  pitches,
			Chord:    chordtable.IdentifyPitches(pitches),
		})
		i = j
	}
	return out
}

// AnalyzeAt identifies the chord sounding at the given instant by
// collecting every event whose [Offset, Offset+Duration) interval
// contains t.
func AnalyzeAt(evs []events.NoteEvent, t rational.Rational) chordtable.ChordInfo {
	var pitches []int
	for _, e := range evs {
		if e.IsRest() {
			continue
		}
		if !e.Offset.Less(t) && !e.Offset.Equal(t) {
			continue
		}
		end := e.End()
		if t.Less(end) {
			pitches = append(pitches, e.Pitch)
		}
	}
	return chordtable.IdentifyPitches(pitches)
}
