// Package figuredbass realizes a bass line plus figured-bass numerals
// into full chord voicings (spec.md C13). Figure abbreviations follow
// classical thoroughbass convention; an interval number above the bass is
// resolved by finding the bass's own diatonic degree within the governing
// key and stepping that many further degrees through internal/keytheory's
// scale-degree table. A bass note outside the key's diatonic scale falls
// back to being treated as a local scale degree 1.
package figuredbass

import (
	"fmt"
	"sort"

	"github.com/schollz/scoreforge/internal/events"
	"github.com/schollz/scoreforge/internal/keytheory"
	"github.com/schollz/scoreforge/internal/rational"
	"github.com/schollz/scoreforge/internal/theoryerr"
)

// abbreviation expands a figure list to its complete interval-above-bass
// set, per the standard thoroughbass abbreviation table. Unrecognized
// figure sets pass through unchanged (treated as explicit, literal
// intervals rather than abbreviations).
func abbreviation(figures []int) []int {
	sorted := append([]int(nil), figures...)
	sort.Ints(sorted)
	switch fmt.Sprint(sorted) {
	case fmt.Sprint([]int{}):
		return []int{3, 5}
	case fmt.Sprint([]int{6}):
		return []int{3, 6}
	case fmt.Sprint([]int{4, 6}):
		return []int{4, 6}
	case fmt.Sprint([]int{7}):
		return []int{3, 5, 7}
	case fmt.Sprint([]int{5, 6}):
		return []int{3, 5, 6}
	case fmt.Sprint([]int{3, 4}):
		return []int{3, 4, 6}
	case fmt.Sprint([]int{2}), fmt.Sprint([]int{2, 4}):
		return []int{2, 4, 6}
	default:
		return sorted
	}
}

// Options configures how figures resolve to semitones.
type Options struct {
	// Key governs the diatonic step pattern (major or natural minor).
	// Nil defaults to a major scale rooted at each bass note's own
	// pitch class.
	Key *keytheory.KeySignature

	// Accidentals overrides the semitone distance (above the bass's
	// pitch class, mod 12) for a specific interval number, e.g. a
	// raised sixth in a minor-key "6" figure. Nil or a missing entry
	// uses the table value.
	Accidentals map[int]int
}

// degreeOfPitchClass finds the scale degree (1..7) of key whose diatonic
// pitch class equals pc, if any.
func degreeOfPitchClass(key keytheory.KeySignature, pc int) (int, bool) {
	for d := 1; d <= 7; d++ {
		if key.DegreePitchClass(d) == pc {
			return d, true
		}
	}
	return 0, false
}

// targetPitchClass resolves figure n (an interval number above the bass)
// to a pitch class, by stepping n-1 further diatonic degrees from the
// bass's own scale degree in key. A chromatic bass (one that matches no
// diatonic degree) falls back to scale degree 1, treating the bass as a
// local tonic.
func (o Options) targetPitchClass(key keytheory.KeySignature, bassPC, n int) int {
	if v, ok := o.Accidentals[n]; ok {
		return mod12(bassPC + v)
	}
	deg, ok := degreeOfPitchClass(key, bassPC)
	if !ok {
		local := keytheory.KeySignature{Root: bassPC, IsMajor: key.IsMajor}
		return local.DegreePitchClass(n)
	}
	return key.DegreePitchClass(deg + n - 1)
}

func mod12(p int) int {
	m := p % 12
	if m < 0 {
		m += 12
	}
	return m
}

// foldAbove returns the lowest pitch with pitch class pc that is strictly
// greater than prev (voice-crossing is never produced by Realize).
func foldAbove(prev, pc int) int {
	p := prev - mod12(prev) + pc
	for p <= prev {
		p += 12
	}
	return p
}

// Realize builds the full chord above bass for the given figures,
// stacking upper voices strictly ascending above the bass (and above each
// other) via octave-folding. The bass itself is always the first event;
// duplicate pitch classes (e.g. the implied root in a 6/4) are not
// doubled into extra voices.
func Realize(bass int, figures []int, offset, dur rational.Rational, opts Options) []events.NoteEvent {
	key := opts.Key
	if key == nil {
		k := keytheory.KeySignature{Root: mod12(bass), IsMajor: true}
		key = &k
	}

	bassPC := mod12(bass)
	seenPC := map[int]bool{bassPC: true}
	var upperPCs []int
	for _, n := range abbreviation(figures) {
		pc := opts.targetPitchClass(*key, bassPC, n)
		if seenPC[pc] {
			continue
		}
		seenPC[pc] = true
		upperPCs = append(upperPCs, pc)
	}
	sort.Ints(upperPCs)

	out := []events.NoteEvent{{Pitch: bass, Offset: offset, Duration: dur, Velocity: 1}}
	prev := bass
	for _, pc := range upperPCs {
		p := foldAbove(prev, pc)
		out = append(out, events.NoteEvent{Pitch: p, Offset: offset, Duration: dur, Velocity: 1})
		prev = p
	}
	return out
}

// Step is one bass note plus its figures for progression realization.
type Step struct {
	Bass     int
	Figures  []int
	Offset   rational.Rational
	Duration rational.Rational
}

// RealizeProgression realizes each step and re-voices the upper voices of
// every step after the first as close as possible to the previous step's
// voicing (smooth voice leading): each upper voice moves to the nearest
// octave of its new target pitch class within maxLeap semitones of its
// previous pitch. If no octave of a target pitch class falls within the
// budget, it reports VoiceLeadingInfeasible rather than silently
// producing a large leap.
func RealizeProgression(steps []Step, opts Options, maxLeap int) ([][]events.NoteEvent, error) {
	if len(steps) == 0 {
		return nil, nil
	}

	out := make([][]events.NoteEvent, len(steps))
	first := Realize(steps[0].Bass, steps[0].Figures, steps[0].Offset, steps[0].Duration, opts)
	out[0] = first
	prevUpper := pitchesOf(first[1:])

	for i := 1; i < len(steps); i++ {
		st := steps[i]
		chord := Realize(st.Bass, st.Figures, st.Offset, st.Duration, opts)
		upperPCs := pitchClassesOf(chord[1:])

		newUpper := make([]int, len(upperPCs))
		for vi, pc := range upperPCs {
			anchor := st.Bass
			if vi < len(prevUpper) {
				anchor = prevUpper[vi]
			} else if len(prevUpper) > 0 {
				anchor = prevUpper[len(prevUpper)-1]
			}
			p, ok := nearestOctave(pc, anchor, maxLeap)
			if !ok {
				return nil, &theoryerr.VoiceLeadingInfeasible{
					Voice:  fmt.Sprintf("upper-%d", vi),
					Budget: maxLeap,
				}
			}
			newUpper[vi] = p
		}
		sort.Ints(newUpper)
		ensureAscendingAboveBass(st.Bass, newUpper)

		voiced := make([]events.NoteEvent, 0, len(newUpper)+1)
		voiced = append(voiced, events.NoteEvent{Pitch: st.Bass, Offset: st.Offset, Duration: st.Duration, Velocity: 1})
		for _, p := range newUpper {
			voiced = append(voiced, events.NoteEvent{Pitch: p, Offset: st.Offset, Duration: st.Duration, Velocity: 1})
		}
		out[i] = voiced
		prevUpper = newUpper
	}
	return out, nil
}

func pitchesOf(evs []events.NoteEvent) []int {
	out := make([]int, len(evs))
	for i, e := range evs {
		out[i] = e.Pitch
	}
	return out
}

func pitchClassesOf(evs []events.NoteEvent) []int {
	out := make([]int, len(evs))
	for i, e := range evs {
		out[i] = mod12(e.Pitch)
	}
	return out
}

// nearestOctave finds the octave of pc closest to anchor, accepting it
// only if within maxLeap semitones of anchor.
func nearestOctave(pc, anchor, maxLeap int) (int, bool) {
	base := anchor - mod12(anchor) + pc
	best := base
	bestDist := abs(base - anchor)
	for _, cand := range []int{base - 12, base + 12} {
		d := abs(cand - anchor)
		if d < bestDist {
			best = cand
			bestDist = d
		}
	}
	if bestDist > maxLeap {
		return 0, false
	}
	return best, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ensureAscendingAboveBass pushes any voice that fell to or below the
// bass, or below a lower upper voice, up an octave and re-sorts -- voice
// crossing is never acceptable even after smooth re-voicing.
func ensureAscendingAboveBass(bass int, upper []int) {
	changed := true
	for changed {
		changed = false
		floor := bass
		for i := range upper {
			for upper[i] <= floor {
				upper[i] += 12
				changed = true
			}
			floor = upper[i]
		}
		if changed {
			sort.Ints(upper)
		}
	}
}
