// Package keytheory implements key signatures, roman-numeral spelling and
// key identification by rotational mask correlation (spec.md C4). The
// scale-degree tables are grounded on the teacher's
// internal/modulation.Scales map (major/natural-minor/dorian/... interval
// patterns), generalized here into rotated 12-bit masks.
package keytheory

import (
	"sync"

	"github.com/schollz/scoreforge/internal/chordtable"
)

// Mode is major or minor (spec.md's two IdentifyKey candidates). The wider
// scale palette below is an additive convenience, not a third IdentifyKey
// candidate.
type Mode int

const (
	Major Mode = iota
	Minor
)

// ScaleKind names the supplemental diatonic/church modes exposed for
// candidate generation and formatter heuristics (SPEC_FULL §3), beyond the
// two IdentifyKey scores against.
type ScaleKind int

const (
	ScaleMajor ScaleKind = iota
	ScaleNaturalMinor
	ScaleHarmonicMinor
	ScaleDorian
	ScaleMixolydian
	ScaleBlues
)

// scaleIntervals are semitone offsets from the root, grounded on the
// teacher's internal/modulation.Scales map.
var scaleIntervals = map[ScaleKind][]int{
	ScaleMajor:         {0, 2, 4, 5, 7, 9, 11},
	ScaleNaturalMinor:  {0, 2, 3, 5, 7, 8, 10},
	ScaleHarmonicMinor: {0, 2, 3, 5, 7, 8, 11},
	ScaleDorian:        {0, 2, 3, 5, 7, 9, 10},
	ScaleMixolydian:    {0, 2, 4, 5, 7, 9, 10},
	ScaleBlues:         {0, 3, 5, 6, 7, 10},
}

func maskFor(root int, kind ScaleKind) chordtable.Mask {
	var m chordtable.Mask
	for _, step := range scaleIntervals[kind] {
		m |= 1 << uint((root+step)%12)
	}
	return m
}

// ScaleMask returns the 12-bit scale mask for root (0..11) and kind.
func ScaleMask(root int, kind ScaleKind) chordtable.Mask {
	return maskFor(root, kind)
}

var (
	once        sync.Once
	majorMasks  [12]chordtable.Mask
	minorMasks  [12]chordtable.Mask
)

func buildRotationTables() {
	for root := 0; root < 12; root++ {
		majorMasks[root] = maskFor(root, ScaleMajor)
		minorMasks[root] = maskFor(root, ScaleNaturalMinor)
	}
}

func ensureRotationTables() { once.Do(buildRotationTables) }

// KeySignature identifies a key by its tonic pitch class and major/minor
// mode.
type KeySignature struct {
	Root    int
	IsMajor bool
}

// ScaleMask returns the diatonic scale mask for this key (major or natural
// minor, per spec.md §3).
func (k KeySignature) ScaleMask() chordtable.Mask {
	if k.IsMajor {
		return maskFor(k.Root, ScaleMajor)
	}
	return maskFor(k.Root, ScaleNaturalMinor)
}

// steps are the scale-degree semitone offsets used to spell scale-degree
// pitch classes: major steps for major keys, natural-minor steps
// otherwise (spec.md §3's KeySignature contract).
var majorSteps = [7]int{0, 2, 4, 5, 7, 9, 11}
var minorSteps = [7]int{0, 2, 3, 5, 7, 8, 10}

// DegreePitchClass returns the pitch class of scale degree degree (1..7).
func (k KeySignature) DegreePitchClass(degree int) int {
	idx := (degree - 1) % 7
	if idx < 0 {
		idx += 7
	}
	steps := minorSteps
	if k.IsMajor {
		steps = majorSteps
	}
	return (k.Root + steps[idx]) % 12
}

// IdentifiedKey is the result of IdentifyKey: the winning root/mode and a
// normalized confidence in [0, 1] (matched bits over scale size).
type IdentifiedKey struct {
	Key        KeySignature
	Confidence float64
}

// IdentifyKey scores every (root, mode) pair by popcount(mask & scaleMask)
// and returns the best, preferring major over minor at equal scores and
// the lowest root among same-mode ties.
func IdentifyKey(m chordtable.Mask) IdentifiedKey {
	ensureRotationTables()

	bestScore := -1
	best := KeySignature{Root: 0, IsMajor: true}
	for root := 0; root < 12; root++ {
		majScore := (m & majorMasks[root]).PopCount()
		if majScore > bestScore {
			bestScore = majScore
			best = KeySignature{Root: root, IsMajor: true}
		}
	}
	for root := 0; root < 12; root++ {
		minScore := (m & minorMasks[root]).PopCount()
		if minScore > bestScore {
			bestScore = minScore
			best = KeySignature{Root: root, IsMajor: false}
		}
	}
	return IdentifiedKey{Key: best, Confidence: float64(bestScore) / 7.0}
}

// RomanNumeralChord spells a chord as a scale-degree roman numeral with
// quality and harmonic function.
type RomanNumeralChord struct {
	Degree   int // 1..7
	Quality  chordtable.Quality
	Function Function
	Text     string
}

// Function classifies a scale degree as tonic/subdominant/dominant, used
// by the default harmonization transition scorer (spec.md C12).
type Function int

const (
	FunctionTonic Function = iota
	FunctionSubdominant
	FunctionDominant
	FunctionOther
)

func functionForDegree(degree int) Function {
	switch degree {
	case 1, 3, 6:
		return FunctionTonic
	case 2, 4:
		return FunctionSubdominant
	case 5, 7:
		return FunctionDominant
	default:
		return FunctionOther
	}
}

var majorNumerals = [7]string{"I", "II", "III", "IV", "V", "VI", "VII"}
var minorNumerals = [7]string{"i", "ii", "iii", "iv", "v", "vi", "vii"}

func numeralSuffix(q chordtable.Quality) string {
	switch q {
	case chordtable.Diminished, chordtable.Diminished7, chordtable.HalfDim7:
		return "°"
	case chordtable.Augmented, chordtable.Augmented7:
		return "+"
	case chordtable.Major7:
		return "maj7"
	case chordtable.Minor7:
		return "7"
	case chordtable.Dominant7:
		return "7"
	case chordtable.MinorMajor7:
		return "maj7"
	default:
		return ""
	}
}

// isUpperQuality reports whether degree should be spelled with an
// uppercase roman numeral base: major/augmented/dominant-type qualities.
func isUpperQuality(q chordtable.Quality) bool {
	switch q {
	case chordtable.Major, chordtable.Major7, chordtable.Dominant7, chordtable.Augmented, chordtable.Augmented7, chordtable.Sus2, chordtable.Sus4, chordtable.Power:
		return true
	default:
		return false
	}
}

// Analyze identifies the chord formed by pitches (via chordtable) and
// spells it relative to key as a roman numeral.
func Analyze(pitches []int, key KeySignature) RomanNumeralChord {
	info := chordtable.IdentifyPitches(pitches)
	interval := ((info.RootPC - key.Root) % 12 + 12) % 12
	degree := degreeForInterval(interval, key)

	numeral := minorNumerals[degree-1]
	if isUpperQuality(info.Quality) {
		numeral = majorNumerals[degree-1]
	}
	numeral += numeralSuffix(info.Quality)

	return RomanNumeralChord{
		Degree:   degree,
		Quality:  info.Quality,
		Function: functionForDegree(degree),
		Text:     numeral,
	}
}

// degreeForInterval maps a chromatic interval above the tonic to the
// nearest diatonic scale degree (1..7) for the key's mode.
func degreeForInterval(interval int, key KeySignature) int {
	steps := minorSteps
	if key.IsMajor {
		steps = majorSteps
	}
	best := 1
	bestDist := 12
	for i, s := range steps {
		d := interval - s
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			bestDist = d
			best = i + 1
		}
	}
	return best
}
