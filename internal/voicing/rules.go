// Package voicing implements the SATB voice-leading rule checker and DP
// solver (spec.md C11). The bitflag-plus-weighted-penalty style mirrors
// the teacher's internal/types enum-driven classification; the DP solver
// with an optional parallel inner loop follows spec.md §5's map-only
// fan-out contract.
package voicing

// Voice indexes a Voicing's four entries.
type Voice int

const (
	Bass Voice = iota
	Tenor
	Alto
	Soprano
)

func (v Voice) String() string {
	switch v {
	case Bass:
		return "bass"
	case Tenor:
		return "tenor"
	case Alto:
		return "alto"
	case Soprano:
		return "soprano"
	default:
		return "?"
	}
}

// Voicing is one SATB chord realization as MIDI pitches, bass to soprano.
type Voicing [4]int

// Range is an inclusive MIDI pitch range.
type Range struct{ Low, High int }

// Standard SATB ranges (spec.md §4.8).
var (
	BassRange    = Range{40, 60} // E2-C4
	TenorRange   = Range{48, 67} // C3-G4
	AltoRange    = Range{55, 74} // G3-D5
	SopranoRange = Range{60, 81} // C4-A5
)

func rangeFor(v Voice) Range {
	switch v {
	case Bass:
		return BassRange
	case Tenor:
		return TenorRange
	case Alto:
		return AltoRange
	default:
		return SopranoRange
	}
}

// Violation is a bitflag set of voice-leading rule violations.
type Violation uint32

const (
	ParallelFifths Violation = 1 << iota
	ParallelOctaves
	HiddenFifths
	HiddenOctaves
	VoiceCrossing
	VoiceOverlap
	AugmentedInterval
	LargeLeap
	UnresolvedLeadingTone
	DoubledLeadingTone
	ExcessiveSpacing
)

// Weight is the canonical penalty for each violation (spec.md §4.8 table).
var Weight = map[Violation]int{
	ParallelFifths:        100,
	ParallelOctaves:       100,
	HiddenFifths:          30,
	HiddenOctaves:         30,
	VoiceCrossing:         50,
	VoiceOverlap:          40,
	AugmentedInterval:     60,
	LargeLeap:             25,
	UnresolvedLeadingTone: 45,
	DoubledLeadingTone:    55,
	ExcessiveSpacing:      20,
}

var allFlags = []Violation{
	ParallelFifths, ParallelOctaves, HiddenFifths, HiddenOctaves,
	VoiceCrossing, VoiceOverlap, AugmentedInterval, LargeLeap,
	UnresolvedLeadingTone, DoubledLeadingTone, ExcessiveSpacing,
}

// Has reports whether flags contains v.
func (flags Violation) Has(v Violation) bool { return flags&v != 0 }

// Penalty sums the canonical weights of every violation present in flags.
func (flags Violation) Penalty() int {
	total := 0
	for _, v := range allFlags {
		if flags.Has(v) {
			total += Weight[v]
		}
	}
	return total
}

func intervalClass(a, b int) int {
	d := (b - a) % 12
	if d < 0 {
		d += 12
	}
	return d
}

// CheckRules compares prev to curr under keyRoot (pitch class 0..11) and
// returns the violated flags plus their summed penalty.
func CheckRules(prev, curr Voicing, keyRoot int) (Violation, int) {
	var flags Violation

	// ParallelFifths / ParallelOctaves: any voice pair holding a perfect
	// fifth or octave/unison interval class across both chords, both
	// voices moving by similar (non-oblique) motion.
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			prevIC := intervalClass(prev[i], prev[j])
			currIC := intervalClass(curr[i], curr[j])
			if prevIC != 7 && prevIC != 0 {
				continue
			}
			if prevIC != currIC {
				continue
			}
			di := curr[i] - prev[i]
			dj := curr[j] - prev[j]
			if di == 0 || dj == 0 {
				continue // oblique motion, not a true parallel
			}
			if (di > 0) != (dj > 0) {
				continue // contrary motion
			}
			if prevIC == 7 {
				flags |= ParallelFifths
			} else {
				flags |= ParallelOctaves
			}
		}
	}

	// HiddenFifths / HiddenOctaves: outer voices only, similar motion into
	// a P5/P8, with a soprano leap > 2 semitones.
	{
		dBass := curr[Bass] - prev[Bass]
		dSop := curr[Soprano] - prev[Soprano]
		if dBass != 0 && dSop != 0 && (dBass > 0) == (dSop > 0) {
			currIC := intervalClass(curr[Bass], curr[Soprano])
			leap := dSop
			if leap < 0 {
				leap = -leap
			}
			if leap > 2 {
				if currIC == 7 {
					flags |= HiddenFifths
				}
				if currIC == 0 {
					flags |= HiddenOctaves
				}
			}
		}
	}

	// VoiceCrossing: current chord not in strictly ascending order.
	if !(curr[Bass] < curr[Tenor] && curr[Tenor] < curr[Alto] && curr[Alto] < curr[Soprano]) {
		flags |= VoiceCrossing
	}

	// VoiceOverlap: a voice moves past the previous position of an
	// adjacent voice. Resolved per the spec's stated intent (a voice
	// crosses past the other's prior position): strict inequality in both
	// directions.
	if curr[Tenor] > prev[Alto] || curr[Alto] < prev[Tenor] ||
		curr[Alto] > prev[Soprano] || curr[Soprano] < prev[Alto] ||
		curr[Bass] > prev[Tenor] || curr[Tenor] < prev[Bass] {
		flags |= VoiceOverlap
	}

	// AugmentedInterval: melodic tritone within any single voice.
	for i := 0; i < 4; i++ {
		d := curr[i] - prev[i]
		if d == 6 || d == -6 {
			flags |= AugmentedInterval
		}
	}

	// LargeLeap: any voice moves more than 12 semitones.
	for i := 0; i < 4; i++ {
		d := curr[i] - prev[i]
		if d > 12 || d < -12 {
			flags |= LargeLeap
		}
	}

	leadingTone := ((keyRoot + 11) % 12)

	// UnresolvedLeadingTone: outer voices only.
	for _, i := range []Voice{Bass, Soprano} {
		if mod12(prev[i]) == leadingTone {
			if curr[i]-prev[i] != 1 {
				flags |= UnresolvedLeadingTone
			}
		}
	}

	// DoubledLeadingTone: leading tone pitch class appears more than once.
	count := 0
	for i := 0; i < 4; i++ {
		if mod12(curr[i]) == leadingTone {
			count++
		}
	}
	if count > 1 {
		flags |= DoubledLeadingTone
	}

	// ExcessiveSpacing: tenor-alto or alto-soprano gap exceeds 12.
	if curr[Alto]-curr[Tenor] > 12 || curr[Soprano]-curr[Alto] > 12 {
		flags |= ExcessiveSpacing
	}

	return flags, flags.Penalty()
}

func mod12(p int) int {
	m := p % 12
	if m < 0 {
		m += 12
	}
	return m
}

// Smoothness is the sum of absolute semitone displacements across the
// four voices between prev and curr.
func Smoothness(prev, curr Voicing) int {
	total := 0
	for i := 0; i < 4; i++ {
		d := curr[i] - prev[i]
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}

// TransitionCost combines the rule penalty and smoothness cost:
// penalty + smoothnessWeight * smoothness.
func TransitionCost(prev, curr Voicing, keyRoot int, smoothnessWeight float64) float64 {
	_, penalty := CheckRules(prev, curr, keyRoot)
	return float64(penalty) + smoothnessWeight*float64(Smoothness(prev, curr))
}
