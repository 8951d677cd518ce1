// Package chordtable implements the 12-bit pitch-class mask and the
// process-wide chord-template lookup table (spec.md C3). The table is
// built once, on first use, via sync.Once -- the same singleton-init shape
// the teacher uses for its global MIDI state in internal/midiplayer.
package chordtable

import "sync"

// Mask is a 12-bit pitch-class mask: bit i set iff class i is present.
type Mask uint16

// GetMask folds MIDI pitches into a mask. Octave duplicates leave the mask
// unchanged, since only pitch%12 contributes a bit.
func GetMask(pitches []int) Mask {
	var m Mask
	for _, p := range pitches {
		c := p % 12
		if c < 0 {
			c += 12
		}
		m |= 1 << uint(c)
	}
	return m
}

// Quality is the closed set of recognized chord qualities.
type Quality int

const (
	Unknown Quality = iota
	Major
	Minor
	Diminished
	Augmented
	Sus2
	Sus4
	Power
	Quartal
	Major7
	Minor7
	Dominant7
	Diminished7
	HalfDim7
	MinorMajor7
	Augmented7
	Dominant7Flat5
	Add9
	Add11
)

func (q Quality) String() string {
	switch q {
	case Major:
		return "Major"
	case Minor:
		return "Minor"
	case Diminished:
		return "Diminished"
	case Augmented:
		return "Augmented"
	case Sus2:
		return "Sus2"
	case Sus4:
		return "Sus4"
	case Power:
		return "Power"
	case Quartal:
		return "Quartal"
	case Major7:
		return "Major7"
	case Minor7:
		return "Minor7"
	case Dominant7:
		return "Dominant7"
	case Diminished7:
		return "Diminished7"
	case HalfDim7:
		return "HalfDim7"
	case MinorMajor7:
		return "MinorMajor7"
	case Augmented7:
		return "Augmented7"
	case Dominant7Flat5:
		return "Dominant7Flat5"
	case Add9:
		return "Add9"
	case Add11:
		return "Add11"
	default:
		return "Unknown"
	}
}

// ChordInfo is a lookup result: the identified root pitch class and
// quality.
type ChordInfo struct {
	RootPC  int
	Quality Quality
}

// template is a chord shape expressed as semitone offsets from its root.
type template struct {
	quality Quality
	offsets []int
}

// canonical enumeration order from spec.md §4.2 -- first insertion wins
// on a mask collision, so this order fixes the published tie-breaks.
var templates = []template{
	{Major, []int{0, 4, 7}},
	{Minor, []int{0, 3, 7}},
	{Diminished, []int{0, 3, 6}},
	{Augmented, []int{0, 4, 8}},
	{Sus2, []int{0, 2, 7}},
	{Sus4, []int{0, 5, 7}},
	{Power, []int{0, 7}},
	{Quartal, []int{0, 5, 10}},
	{Major7, []int{0, 4, 7, 11}},
	{Minor7, []int{0, 3, 7, 10}},
	{Dominant7, []int{0, 4, 7, 10}},
	{Diminished7, []int{0, 3, 6, 9}},
	{HalfDim7, []int{0, 3, 6, 10}},
	{MinorMajor7, []int{0, 3, 7, 11}},
	{Augmented7, []int{0, 4, 8, 10}},
	{Dominant7Flat5, []int{0, 4, 6, 10}},
	{Add9, []int{0, 4, 7, 14 % 12}},
	{Add11, []int{0, 4, 7, 5}},
}

var (
	once  sync.Once
	table [4096]ChordInfo
)

func buildTable() {
	for i := range table {
		table[i] = ChordInfo{RootPC: -1, Quality: Unknown}
	}
	for _, tpl := range templates {
		for root := 0; root < 12; root++ {
			var m Mask
			for _, step := range tpl.offsets {
				m |= 1 << uint((root+step)%12)
			}
			if table[m].Quality == Unknown {
				table[m] = ChordInfo{RootPC: root, Quality: tpl.quality}
			}
		}
	}
}

func ensureTable() {
	once.Do(buildTable)
}

// Identify looks up a mask, returning the sentinel Unknown chord when the
// mask is unpopulated.
func Identify(m Mask) ChordInfo {
	ensureTable()
	return table[m]
}

// IdentifyPitches folds pitches into a mask and identifies it.
func IdentifyPitches(pitches []int) ChordInfo {
	return Identify(GetMask(pitches))
}

// PopCount returns the number of set bits in m.
func (m Mask) PopCount() int {
	n := 0
	for m != 0 {
		m &= m - 1
		n++
	}
	return n
}

// Contains reports whether m has the bit for pitch class pc set.
func (m Mask) Contains(pc int) bool {
	pc = ((pc % 12) + 12) % 12
	return m&(1<<uint(pc)) != 0
}

// Rotate returns m rotated up by n semitones (a transposition of the mask).
func (m Mask) Rotate(n int) Mask {
	n = ((n % 12) + 12) % 12
	return ((m << uint(n)) | (m >> uint(12-n))) & 0xFFF
}
