// Package accompaniment turns a chord's pitch classes into playable
// accompaniment event streams -- block strikes, arpeggiated figures, and
// orchestration across a fixed set of instrument parts (spec.md C14). The
// range-clamped octave-folding approach mirrors internal/figuredbass's
// foldAbove/nearestOctave helpers, generalized from "stack strictly
// ascending" to "place within this part's fixed range".
package accompaniment

import (
	"sort"

	"github.com/schollz/scoreforge/internal/events"
	"github.com/schollz/scoreforge/internal/rational"
	"github.com/schollz/scoreforge/internal/voicing"
)

func mod12(p int) int {
	m := p % 12
	if m < 0 {
		m += 12
	}
	return m
}

// EmitBlock strikes every pitch simultaneously for the full duration.
func EmitBlock(pitches []int, offset, dur rational.Rational) []events.NoteEvent {
	out := make([]events.NoteEvent, len(pitches))
	for i, p := range pitches {
		out[i] = events.NoteEvent{Pitch: p, Offset: offset, Duration: dur, Velocity: 1}
	}
	return out
}

// ArpeggioStyle selects the order chord tones are cycled through.
type ArpeggioStyle int

const (
	ArpUp ArpeggioStyle = iota
	ArpDown
	ArpUpDown
	ArpDownUp
)

// arpeggioCycle builds one full traversal of sorted pitches per style.
// UpDown/DownUp do not repeat the turning-point endpoints, matching the
// conventional arpeggiator figure (1,2,3,4,3,2 rather than 1,2,3,4,4,3,2,1).
func arpeggioCycle(sorted []int, style ArpeggioStyle) []int {
	if len(sorted) == 0 {
		return nil
	}
	up := append([]int(nil), sorted...)
	down := make([]int, len(up))
	for i, p := range up {
		down[len(up)-1-i] = p
	}
	switch style {
	case ArpDown:
		return down
	case ArpUpDown:
		if len(up) <= 2 {
			return up
		}
		return append(up, down[1:len(down)-1]...)
	case ArpDownUp:
		if len(down) <= 2 {
			return down
		}
		return append(down, up[1:len(up)-1]...)
	default:
		return up
	}
}

// EmitArpeggio lays noteDur-length steps across segmentDur starting at
// start, cycling through pitches in style order and repeating the cycle
// as needed; the final step shortens to fit exactly within segmentDur
// rather than overrunning it (spec.md §4.11).
func EmitArpeggio(pitches []int, style ArpeggioStyle, start, noteDur, segmentDur rational.Rational) []events.NoteEvent {
	if len(pitches) == 0 || noteDur.IsZero() || segmentDur.IsZero() {
		return nil
	}
	sorted := append([]int(nil), pitches...)
	sort.Ints(sorted)
	cycle := arpeggioCycle(sorted, style)

	q, err := segmentDur.Div(noteDur)
	if err != nil {
		return nil
	}
	full := q.Num / q.Den
	remainder := segmentDur.Sub(noteDur.Mul(rational.Must(full, 1)))

	total := int(full)
	if !remainder.IsZero() {
		total++
	}
	if total == 0 {
		return nil
	}

	out := make([]events.NoteEvent, total)
	offset := start
	for i := 0; i < total; i++ {
		dur := noteDur
		if i == total-1 && !remainder.IsZero() {
			dur = remainder
		}
		p := cycle[i%len(cycle)]
		out[i] = events.NoteEvent{Pitch: p, Offset: offset, Duration: dur, Velocity: 1}
		offset = offset.Add(dur)
	}
	return out
}

// SplitParts configures the orchestration mapper: pitches below SplitPitch
// fold into Bass, everything else folds into Harmony (spec.md §4.11).
type SplitParts struct {
	SplitPitch int
	Bass       voicing.Range
	Harmony    voicing.Range
}

// foldIntoRange finds the lowest octave of pc at or above r.Low; if that
// octave exceeds r.High (a range narrower than an octave, or a pc with no
// in-range instance), it steps back down and finally clamps to r.High as
// a last resort.
func foldIntoRange(pc int, r voicing.Range) int {
	p := r.Low - mod12(r.Low) + mod12(pc)
	for p < r.Low {
		p += 12
	}
	for p > r.High && p-12 >= r.Low {
		p -= 12
	}
	if p > r.High {
		p = r.High
	}
	return p
}

// Orchestrate splits evs into a "bass" and a "harmony" part by
// parts.SplitPitch, octave-folding each sounding event's pitch into its
// part's range (spec.md §4.11's orchestration mapper). Rests pass through
// unchanged.
func Orchestrate(evs []events.NoteEvent, parts SplitParts) []events.NoteEvent {
	if len(evs) == 0 {
		return nil
	}
	out := make([]events.NoteEvent, len(evs))
	for i, e := range evs {
		if e.IsRest() {
			out[i] = e
			continue
		}
		r := parts.Harmony
		if e.Pitch < parts.SplitPitch {
			r = parts.Bass
		}
		out[i] = e
		out[i].Pitch = foldIntoRange(mod12(e.Pitch), r)
	}
	return out
}
