// Package harmonize turns a melodic event stream into a chord progression
// via a pluggable Viterbi pipeline (spec.md C12): a harmonic-rhythm
// strategy decides where chords change, a candidate provider proposes
// diatonic chords per slice, and melody-fit plus transition scorers drive
// the DP. The interface-plus-default-implementation shape mirrors the
// teacher's internal/views renderer interfaces, generalized from UI
// strategies to harmonic ones.
package harmonize

import (
	"sort"

	"github.com/schollz/scoreforge/internal/chordtable"
	"github.com/schollz/scoreforge/internal/events"
	"github.com/schollz/scoreforge/internal/keytheory"
	"github.com/schollz/scoreforge/internal/rational"
	"github.com/schollz/scoreforge/internal/theoryerr"
)

func mod12(p int) int {
	m := p % 12
	if m < 0 {
		m += 12
	}
	return m
}

// Slice is one harmonic-rhythm window: a time span of the melody that
// must be supported by a single chord.
type Slice struct {
	Start        rational.Rational
	End          rational.Rational
	Melody       []events.NoteEvent // melody events sounding within [Start, End)
	IsStrongBeat bool
}

// HarmonicRhythmStrategy partitions a melody into harmonic slices.
type HarmonicRhythmStrategy interface {
	Slices(melody []events.NoteEvent) []Slice
}

// quarterNote is the default BeatGridStrategy grid size.
var quarterNote = rational.Must(1, 4)

// floorToGrid returns the largest multiple of beat that is <= x, computed
// with exact integer division (never via Rational.ToDouble, per
// internal/rational's no-float-comparison rule).
func floorToGrid(x, beat rational.Rational) rational.Rational {
	q, err := x.Div(beat)
	if err != nil {
		return x
	}
	n := q.Num / q.Den
	if q.Num%q.Den != 0 && q.Num < 0 {
		n--
	}
	return beat.Mul(rational.Must(n, 1))
}

// ceilToGrid returns the smallest multiple of beat that is >= x.
func ceilToGrid(x, beat rational.Rational) rational.Rational {
	f := floorToGrid(x, beat)
	if f.Equal(x) {
		return f
	}
	return f.Add(beat)
}

// BeatGridStrategy is the default harmonic-rhythm strategy (spec.md
// §4.9): floor the melody's start and ceiling its end to a beat-sized
// grid, then emit one slice per beat, marking every other beat strong
// starting with the first.
type BeatGridStrategy struct {
	BeatSize rational.Rational // zero value selects a quarter note
}

func (s BeatGridStrategy) Slices(melody []events.NoteEvent) []Slice {
	beat := s.BeatSize
	if beat.IsZero() {
		beat = quarterNote
	}

	var sorted []events.NoteEvent
	for _, e := range melody {
		if !e.IsRest() {
			sorted = append(sorted, e)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset.Less(sorted[j].Offset) })

	start := sorted[0].Offset
	end := sorted[0].End()
	for _, e := range sorted[1:] {
		if e.Offset.Less(start) {
			start = e.Offset
		}
		if end.Less(e.End()) {
			end = e.End()
		}
	}
	start = floorToGrid(start, beat)
	end = ceilToGrid(end, beat)

	var out []Slice
	cur := start
	strong := true
	for cur.Less(end) {
		next := cur.Add(beat)
		var notes []events.NoteEvent
		for _, e := range sorted {
			if e.Offset.Less(next) && cur.Less(e.End()) {
				notes = append(notes, e)
			}
		}
		out = append(out, Slice{Start: cur, End: next, Melody: notes, IsStrongBeat: strong})
		cur = next
		strong = !strong
	}
	return out
}

// OneChordPerNote is an alternate, non-default strategy: every distinct
// melody onset gets its own slice, spanning to the next onset (or the
// melody's end). Every slice is treated as strong.
type OneChordPerNote struct{}

func (OneChordPerNote) Slices(melody []events.NoteEvent) []Slice {
	sorted := make([]events.NoteEvent, 0, len(melody))
	for _, e := range melody {
		if !e.IsRest() {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset.Less(sorted[j].Offset) })

	var onsets []rational.Rational
	for _, e := range sorted {
		if len(onsets) == 0 || !onsets[len(onsets)-1].Equal(e.Offset) {
			onsets = append(onsets, e.Offset)
		}
	}

	var out []Slice
	for i, start := range onsets {
		end := start
		if i+1 < len(onsets) {
			end = onsets[i+1]
		} else {
			for _, e := range sorted {
				if e.End().Less(end) {
					continue
				}
				end = e.End()
			}
		}
		var notes []events.NoteEvent
		for _, e := range sorted {
			if e.Offset.Equal(start) {
				notes = append(notes, e)
			}
		}
		out = append(out, Slice{Start: start, End: end, Melody: notes, IsStrongBeat: true})
	}
	return out
}

// Candidate is one proposed chord for a harmonic slice: a scale-degree
// roman numeral, its pitch-class mask, a concrete chord-tone realization,
// a small base cost biasing the DP toward common degrees, and an optional
// human-readable rationale.
type Candidate struct {
	Chord     keytheory.RomanNumeralChord
	Mask      chordtable.Mask
	RootPC    int
	Pitches   []int
	BaseCost  float64
	Rationale *string
}

// chordPitches realizes mask as ascending absolute pitches in the octave
// below middle C (MIDI 48-59) -- a simple close-position chord-tone
// realization, distinct
// from the full SATB voice leading internal/voicing produces downstream.
func chordPitches(mask chordtable.Mask) []int {
	var out []int
	for pc := 0; pc < 12; pc++ {
		if mask.Contains(pc) {
			out = append(out, 48+pc)
		}
	}
	return out
}

// ChordCandidateProvider proposes chords usable within key for a specific
// slice (spec.md §4.9: "(melody_pitches, key) → iterable<ChordCandidate>").
type ChordCandidateProvider interface {
	Candidates(slice Slice, key keytheory.KeySignature) []Candidate
}

// DiatonicProvider offers the diatonic triads and sevenths (degrees 1..7)
// whose pitch-class set contains every melody pitch class of the slice,
// with a small base cost preferring I/IV/V (spec.md §4.9's default).
type DiatonicProvider struct{}

// melodyPitchClasses collects the distinct pitch classes sounding in
// slice, ignoring rests.
func melodyPitchClasses(slice Slice) []int {
	seen := map[int]bool{}
	var out []int
	for _, n := range slice.Melody {
		if n.IsRest() {
			continue
		}
		pc := mod12(n.Pitch)
		if !seen[pc] {
			seen[pc] = true
			out = append(out, pc)
		}
	}
	return out
}

func containsAll(mask chordtable.Mask, pcs []int) bool {
	for _, pc := range pcs {
		if !mask.Contains(pc) {
			return false
		}
	}
	return true
}

func baseCostForDegree(degree int) float64 {
	switch degree {
	case 1, 4, 5:
		return 0.0
	default:
		return 0.2
	}
}

func (DiatonicProvider) Candidates(slice Slice, key keytheory.KeySignature) []Candidate {
	melodyPCs := melodyPitchClasses(slice)

	var out []Candidate
	for degree := 1; degree <= 7; degree++ {
		root := key.DegreePitchClass(degree)
		third := key.DegreePitchClass(degree + 2)
		fifth := key.DegreePitchClass(degree + 4)
		seventh := key.DegreePitchClass(degree + 6)
		base := baseCostForDegree(degree)

		triadMask := chordtable.GetMask([]int{root, third, fifth})
		if containsAll(triadMask, melodyPCs) {
			out = append(out, Candidate{
				Chord:    keytheory.Analyze([]int{root, third, fifth}, key),
				Mask:     triadMask,
				RootPC:   root,
				Pitches:  chordPitches(triadMask),
				BaseCost: base,
			})
		}

		sevMask := chordtable.GetMask([]int{root, third, fifth, seventh})
		if containsAll(sevMask, melodyPCs) {
			out = append(out, Candidate{
				Chord:    keytheory.Analyze([]int{root, third, fifth, seventh}, key),
				Mask:     sevMask,
				RootPC:   root,
				Pitches:  chordPitches(sevMask),
				BaseCost: base,
			})
		}
	}
	return out
}

// MelodyFitScorer penalizes a candidate chord for not supporting the
// slice's melody notes.
type MelodyFitScorer interface {
	Score(c Candidate, slice Slice) float64
}

// DefaultMelodyFit starts from the candidate's BaseCost and adds a
// per-note penalty for melody pitches absent from the candidate's mask:
// 0.5 on strong beats, 0.2 on weak beats (spec.md §4.9).
type DefaultMelodyFit struct{}

func (DefaultMelodyFit) Score(c Candidate, slice Slice) float64 {
	cost := c.BaseCost
	for _, n := range slice.Melody {
		if n.IsRest() {
			continue
		}
		if c.Mask.Contains(mod12(n.Pitch)) {
			continue
		}
		if slice.IsStrongBeat {
			cost += 0.5
		} else {
			cost += 0.2
		}
	}
	return cost
}

// TransitionScorer costs moving from one chord to the next.
type TransitionScorer interface {
	Score(prev, curr Candidate) float64
}

// DefaultTransitionScorer implements spec.md §4.9's default: a root-motion
// term, a functional bonus, and a common-tone bonus, clamped to >= 0.
type DefaultTransitionScorer struct{}

// rootMotionCost classifies the unordered semitone distance between two
// chord roots: fourth/fifth motion is cheapest, then step, then third,
// then repetition, then everything else (tritone root motion).
func rootMotionCost(prevRoot, currRoot int) float64 {
	diff := mod12(currRoot - prevRoot)
	switch diff {
	case 5, 7:
		return 0.0
	case 1, 2, 10, 11:
		return 0.1
	case 3, 4, 8, 9:
		return 0.2
	case 0:
		return 0.3
	default:
		return 0.5
	}
}

func functionalBonus(prev, curr keytheory.Function) float64 {
	switch {
	case prev == keytheory.FunctionTonic && curr == keytheory.FunctionSubdominant:
		return -0.1
	case prev == keytheory.FunctionSubdominant && curr == keytheory.FunctionDominant:
		return -0.2
	case prev == keytheory.FunctionDominant && curr == keytheory.FunctionTonic:
		return -0.3
	case prev == keytheory.FunctionDominant && curr == keytheory.FunctionSubdominant:
		return 0.3 // regressive motion, penalized
	default:
		return 0.0
	}
}

func (DefaultTransitionScorer) Score(prev, curr Candidate) float64 {
	cost := rootMotionCost(prev.RootPC, curr.RootPC)
	cost += functionalBonus(prev.Chord.Function, curr.Chord.Function)
	cost -= 0.05 * float64((prev.Mask & curr.Mask).PopCount())
	if cost < 0 {
		cost = 0
	}
	return cost
}

// Assignment is one solved harmonic slice: the slice bounds, the chosen
// roman numeral and mask, the candidate's realized chord-tone pitches,
// the cumulative path cost at this position, and an optional rationale.
type Assignment struct {
	Start     rational.Rational
	End       rational.Rational
	Chord     keytheory.RomanNumeralChord
	Mask      chordtable.Mask
	Pitches   []int
	Cost      float64
	Rationale *string
}

// Options configures Harmonize's pluggable stages. Zero value selects the
// documented defaults.
type Options struct {
	Rhythm     HarmonicRhythmStrategy
	Candidates ChordCandidateProvider
	MelodyFit  MelodyFitScorer
	Transition TransitionScorer
	Key        *keytheory.KeySignature // nil: inferred from the melody
}

func (o *Options) fillDefaults() {
	if o.Rhythm == nil {
		o.Rhythm = BeatGridStrategy{}
	}
	if o.Candidates == nil {
		o.Candidates = DiatonicProvider{}
	}
	if o.MelodyFit == nil {
		o.MelodyFit = DefaultMelodyFit{}
	}
	if o.Transition == nil {
		o.Transition = DefaultTransitionScorer{}
	}
}

// InferKey identifies the most likely key for melody by folding every
// sounding pitch into a mask and scoring it against all 24 key
// candidates (internal/keytheory.IdentifyKey).
func InferKey(melody []events.NoteEvent) keytheory.IdentifiedKey {
	var pitches []int
	for _, e := range melody {
		if !e.IsRest() {
			pitches = append(pitches, e.Pitch)
		}
	}
	return keytheory.IdentifyKey(chordtable.GetMask(pitches))
}

// Harmonize assigns one chord per harmonic slice of melody via Viterbi DP,
// minimizing the sum of melody-fit and transition costs.
func Harmonize(melody []events.NoteEvent, opts Options) ([]Assignment, error) {
	hasSound := false
	for _, e := range melody {
		if !e.IsRest() {
			hasSound = true
			break
		}
	}
	if !hasSound {
		return nil, &theoryerr.NoHarmonization{Reason: "melody has no sounding notes"}
	}

	opts.fillDefaults()
	key := opts.Key
	if key == nil {
		inferred := InferKey(melody)
		key = &inferred.Key
	}

	slices := opts.Rhythm.Slices(melody)
	if len(slices) == 0 {
		return nil, &theoryerr.NoHarmonization{Reason: "harmonic rhythm strategy produced no slices"}
	}

	candidates := make([][]Candidate, len(slices))
	anyCandidates := false
	for i, sl := range slices {
		candidates[i] = opts.Candidates.Candidates(sl, *key)
		if len(candidates[i]) > 0 {
			anyCandidates = true
		}
	}
	if !anyCandidates {
		return nil, &theoryerr.NoHarmonization{Reason: "candidate provider produced no chords for any slice"}
	}

	const inf = 1e18
	dp := make([][]float64, len(slices))
	back := make([][]int, len(slices))
	for i, sl := range slices {
		dp[i] = make([]float64, len(candidates[i]))
		back[i] = make([]int, len(candidates[i]))
		for j, c := range candidates[i] {
			fit := opts.MelodyFit.Score(c, sl)
			if i == 0 {
				dp[i][j] = fit
				back[i][j] = -1
				continue
			}
			best := inf
			bestK := -1
			for k, pc := range candidates[i-1] {
				if dp[i-1][k] >= inf {
					continue
				}
				cost := dp[i-1][k] + opts.Transition.Score(pc, c) + fit
				if cost < best {
					best = cost
					bestK = k
				}
			}
			dp[i][j] = best
			back[i][j] = bestK
		}
	}

	last := len(slices) - 1
	bestJ := -1
	bestCost := inf
	for j, c := range dp[last] {
		if c < bestCost {
			bestCost = c
			bestJ = j
		}
	}
	if bestJ == -1 {
		return nil, &theoryerr.NoHarmonization{Reason: "no surviving Viterbi path"}
	}

	path := make([]int, len(slices))
	j := bestJ
	for i := last; i >= 0; i-- {
		path[i] = j
		if i > 0 {
			j = back[i][j]
			if j < 0 {
				return nil, &theoryerr.NoHarmonization{Reason: "Viterbi path broke before the first slice"}
			}
		}
	}

	out := make([]Assignment, len(slices))
	for i, sl := range slices {
		c := candidates[i][path[i]]
		out[i] = Assignment{
			Start:     sl.Start,
			End:       sl.End,
			Chord:     c.Chord,
			Mask:      c.Mask,
			Pitches:   c.Pitches,
			Cost:      dp[i][path[i]],
			Rationale: c.Rationale,
		}
	}
	return out, nil
}
