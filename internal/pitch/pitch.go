// Package pitch implements the pitch-class, chromatic-interval and
// scientific-pitch-note model (spec.md C2). Note-name formatting follows
// the style of the teacher's internal/music.MidiToNoteName.
package pitch

import (
	"fmt"
	"strings"

	"github.com/schollz/scoreforge/internal/theoryerr"
)

// Class is a pitch class 0..11 with C=0.
type Class uint8

const (
	C Class = iota
	Cs
	D
	Ds
	E
	F
	Fs
	G
	Gs
	A
	As
	B
)

var classNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NewClass wraps v into 0..11.
func NewClass(v int) Class {
	m := v % 12
	if m < 0 {
		m += 12
	}
	return Class(m)
}

// String renders the sharp spelling, e.g. "C#".
func (c Class) String() string { return classNames[c%12] }

// Add returns c shifted up by n semitones, wrapping mod 12.
func (c Class) Add(n int) Class { return NewClass(int(c) + n) }

// AscendingInterval returns the class-space distance 0..11 from c up to
// other (0 when equal).
func (c Class) AscendingInterval(other Class) int {
	d := (int(other) - int(c)) % 12
	if d < 0 {
		d += 12
	}
	return d
}

// SignedShortest returns the shortest signed interval from c to other, in
// [-6, 6], with the tritone normalized to +6.
func (c Class) SignedShortest(other Class) int {
	d := c.AscendingInterval(other)
	if d > 6 {
		return d - 12
	}
	return d
}

// ParseClass parses a letter name with any number of sharp/flat
// accidentals (ASCII # / b, or Unicode ♯ / ♭, normalized first).
func ParseClass(s string) (Class, error) {
	s = NormalizeAccidentals(s)
	if len(s) == 0 {
		return 0, &theoryerr.InvalidArgument{Field: "note name", Reason: "empty"}
	}
	letter := strings.ToUpper(s[:1])
	base, ok := letterBase[letter]
	if !ok {
		return 0, &theoryerr.InvalidArgument{Field: "note name", Reason: fmt.Sprintf("unknown letter %q", letter)}
	}
	shift := 0
	for _, r := range s[1:] {
		switch r {
		case '#':
			shift++
		case 'b':
			shift--
		default:
			return 0, &theoryerr.InvalidArgument{Field: "note name", Reason: fmt.Sprintf("unexpected accidental %q", r)}
		}
	}
	return NewClass(base + shift), nil
}

var letterBase = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// NormalizeAccidentals rewrites Unicode ♯/♭ to ASCII #/b.
func NormalizeAccidentals(s string) string {
	s = strings.ReplaceAll(s, "♯", "#")
	s = strings.ReplaceAll(s, "♭", "b")
	return s
}

// ChromaticInterval is a signed semitone count which may exceed an octave.
type ChromaticInterval int

// Simple returns the interval reduced into 0..12, where an exact octave
// maps to 12 (not 0).
func (ci ChromaticInterval) Simple() int {
	n := int(ci) % 12
	if n < 0 {
		n += 12
	}
	if n == 0 && ci != 0 {
		return 12
	}
	return n
}

// Class returns the same 0..12 reduction as Simple: a nonzero exact
// multiple of an octave maps to 12, consistent with spec.md's
// "class ∈ 0..12".
func (ci ChromaticInterval) Class() int {
	return ci.Simple()
}

// GenericNumber returns the generic interval number 1..8 (unison..octave)
// implied by the simple semitone count, using the most common diatonic
// spelling for each semitone distance.
func (ci ChromaticInterval) GenericNumber() int {
	simple := ci.Simple()
	generic := [13]int{1, 2, 2, 3, 3, 4, 4, 5, 6, 6, 7, 7, 8}
	return generic[simple]
}

// QualitativeName returns a short interval name, e.g. "m3", "P5", "TT".
func (ci ChromaticInterval) QualitativeName() string {
	names := [13]string{"P1", "m2", "M2", "m3", "M3", "P4", "TT", "P5", "m6", "M6", "m7", "M7", "P8"}
	return names[ci.Simple()]
}

// SpnNote is a scientific-pitch note: a class plus an octave.
type SpnNote struct {
	Class  Class
	Octave int
}

// MidiPitch returns the MIDI pitch number for n, or an error if it falls
// outside 0..127.
func (n SpnNote) MidiPitch() (int, error) {
	p := (n.Octave+1)*12 + int(n.Class)
	if p < 0 || p > 127 {
		return 0, &theoryerr.InvalidArgument{Field: "pitch", Reason: fmt.Sprintf("%d out of MIDI range 0..127", p)}
	}
	return p, nil
}

// FromMidi converts a MIDI pitch number (0..127) to an SpnNote.
func FromMidi(midi int) (SpnNote, error) {
	if midi < 0 || midi > 127 {
		return SpnNote{}, &theoryerr.InvalidArgument{Field: "midi", Reason: "out of range 0..127"}
	}
	return SpnNote{Class: NewClass(midi), Octave: midi/12 - 1}, nil
}

// String renders e.g. "C4", "F#5".
func (n SpnNote) String() string {
	return fmt.Sprintf("%s%d", n.Class.String(), n.Octave)
}

// MidiToNoteName renders a MIDI pitch as the teacher's fixed-width,
// lowercase "c-1"/"f#1" style name, used by cmd/scoreforge's analyze
// subcommand to label each segment's bass note.
func MidiToNoteName(midiNote int) string {
	if midiNote < 0 || midiNote > 127 {
		return "---"
	}
	n, _ := FromMidi(midiNote)
	name := strings.ToLower(n.Class.String())
	if strings.Contains(name, "#") {
		if n.Octave < 0 {
			return fmt.Sprintf("%s%d", name, -n.Octave)
		}
		return fmt.Sprintf("%s%d", name, n.Octave)
	}
	if n.Octave < 0 {
		return fmt.Sprintf("%s-%d", name, -n.Octave)
	}
	return fmt.Sprintf("%s-%d", name, n.Octave)
}
