// Package chordsymbol implements the chord-symbol text grammar of
// spec.md §4.4: note + ordered suffix tokens (quality, extension,
// alteration, add/omit, modifier), optional slash-bass, optional
// polychord separator. Grounded on the suffix-table shape of
// mattdees-guitartutor's qualityIntervals map and on jhump-chords'
// Chord/Tone builder split between parse and canonicalize.
package chordsymbol

import (
	"fmt"
	"sort"
	"strings"

	"github.com/schollz/scoreforge/internal/pitch"
	"github.com/schollz/scoreforge/internal/theoryerr"
)

// degreeOffset gives the default semitone offset above the root for a
// scale degree, used by extensions, alterations and add/omit tokens.
var degreeOffset = map[int]int{
	2: 2, 4: 5, 5: 7, 6: 9, 7: 10, 9: 14, 11: 17, 13: 21,
}

type builderState struct {
	root        int
	triad       string // "major","minor","diminished","augmented","sus2","sus4","power","deferredSus"
	majorMarker bool
	seventh     string // "", "major", "minor", "dominant", "diminished"
	hasSix      bool
	implied     map[int]bool // 9, 11, 13
	altered     map[int]int  // degree -> offset override
	added       map[int]bool
	omitted     map[int]bool
	altFlag     bool
}

func newBuilder(root int) *builderState {
	return &builderState{
		root:    root,
		triad:   "major",
		implied: map[int]bool{},
		altered: map[int]int{},
		added:   map[int]bool{},
		omitted: map[int]bool{},
	}
}

// alterationTokens maps a literal alteration token to (degree, offset).
var alterationTokens = map[string][2]int{
	"#5": {5, 8}, "b5": {5, 6},
	"+5": {5, 8},
	"#9": {9, 15}, "b9": {9, 13}, "+9": {9, 15},
	"#11": {11, 18}, "b11": {11, 16}, "+11": {11, 18},
	"#13": {13, 22}, "b13": {13, 20}, "+13": {13, 20 + 2},
}

// degreeTokenNums enumerates the degree numbers N the grammar recognizes in
// explicit add-N / no-N / omit-N tokens.
var degreeTokenNums = []int{2, 4, 5, 6, 7, 9, 11, 13}

func parseSuffix(b *builderState, suf string) error {
	// Parens and commas are pure grouping punctuation in this grammar --
	// strip them so "(b9,#11)" tokenizes the same as "b9#11".
	suf = strings.NewReplacer("(", "", ")", "", ",", "", " ", "").Replace(suf)

	i := 0
	for i < len(suf) {
		matched, consumed, err := matchToken(b, suf[i:])
		if err != nil {
			return err
		}
		if consumed == 0 {
			return &theoryerr.InvalidArgument{Field: "chord suffix", Reason: fmt.Sprintf("unrecognized token at %q", suf[i:])}
		}
		_ = matched
		i += consumed
	}
	resolveDeferred(b)
	return nil
}

func hasPrefix(s, p string) bool { return strings.HasPrefix(s, p) }

func matchToken(b *builderState, s string) (string, int, error) {
	switch {
	case hasPrefix(s, "6/9"):
		b.hasSix = true
		b.implied[9] = true
		return "6/9", 3, nil
	case hasPrefix(s, "maj7"), hasPrefix(s, "Δ7"), hasPrefix(s, "△7"), hasPrefix(s, "M7"):
		b.seventh = "major"
		n := len("maj7")
		if hasPrefix(s, "Δ7") || hasPrefix(s, "△7") {
			n = len("Δ7") // rune-aware length handled by caller via byte slicing below
		}
		return "maj7", byteLen(s, n, "maj7", "Δ7", "△7", "M7"), nil
	case hasPrefix(s, "maj"), hasPrefix(s, "Δ"), hasPrefix(s, "△"):
		b.majorMarker = true
		return "maj", byteLen(s, 3, "maj", "Δ", "△"), nil
	case hasPrefix(s, "dim7"):
		b.triad = "diminished"
		b.seventh = "diminished"
		return "dim7", 4, nil
	case hasPrefix(s, "ø7"), hasPrefix(s, "halfdim7"):
		b.triad = "diminished"
		b.altered[5] = 6
		b.seventh = "minor"
		return "ø7", byteLen(s, 2, "ø7", "halfdim7"), nil
	case hasPrefix(s, "ø"), hasPrefix(s, "halfdim"):
		b.triad = "diminished"
		b.altered[5] = 6
		b.seventh = "minor"
		return "ø", byteLen(s, 1, "ø", "halfdim"), nil
	case hasPrefix(s, "sus2"):
		b.triad = "sus2"
		return "sus2", 4, nil
	case hasPrefix(s, "sus4"):
		b.triad = "sus4"
		return "sus4", 4, nil
	case hasPrefix(s, "sus"):
		b.triad = "deferredSus"
		return "sus", 3, nil
	case hasPrefix(s, "alt"):
		b.altFlag = true
		return "alt", 3, nil
	case hasPrefix(s, "add"):
		return matchDegreeWord(s, "add", func(deg int) { b.added[deg] = true })
	case hasPrefix(s, "omit"):
		return matchDegreeWord(s, "omit", func(deg int) { b.omitted[deg] = true })
	case hasPrefix(s, "no"):
		return matchDegreeWord(s, "no", func(deg int) { b.omitted[deg] = true })
	case hasPrefix(s, "min"):
		b.triad = "minor"
		return "min", 3, nil
	case hasPrefix(s, "dim"):
		b.triad = "diminished"
		return "dim", 3, nil
	case hasPrefix(s, "°"):
		b.triad = "diminished"
		return "dim", byteLen(s, 1, "°"), nil
	case hasPrefix(s, "aug"):
		b.triad = "augmented"
		return "aug", 3, nil
	}

	for tok, da := range alterationTokens {
		if hasPrefix(s, tok) {
			b.altered[da[0]] = da[1]
			return tok, len(tok), nil
		}
	}

	switch {
	case hasPrefix(s, "-"):
		b.triad = "minor"
		return "-", 1, nil
	case hasPrefix(s, "m"):
		b.triad = "minor"
		return "m", 1, nil
	case hasPrefix(s, "+"):
		b.triad = "augmented"
		return "+", 1, nil
	case hasPrefix(s, "13"):
		b.implied[13] = true
		b.implied[11] = true
		b.implied[9] = true
		applyDefaultSeventh(b)
		return "13", 2, nil
	case hasPrefix(s, "11"):
		b.implied[11] = true
		b.implied[9] = true
		applyDefaultSeventh(b)
		return "11", 2, nil
	case hasPrefix(s, "9"):
		b.implied[9] = true
		applyDefaultSeventh(b)
		return "9", 1, nil
	case hasPrefix(s, "7"):
		applyDefaultSeventh(b)
		return "7", 1, nil
	case hasPrefix(s, "6"):
		b.hasSix = true
		return "6", 1, nil
	case hasPrefix(s, "5"):
		b.triad = "power"
		return "5", 1, nil
	}
	return "", 0, nil
}

func matchDegreeWord(s, word string, apply func(int)) (string, int, error) {
	rest := s[len(word):]
	for _, n := range degreeTokenNums {
		ns := fmt.Sprintf("%d", n)
		if strings.HasPrefix(rest, ns) {
			apply(n)
			return word + ns, len(word) + len(ns), nil
		}
	}
	return "", 0, &theoryerr.InvalidArgument{Field: "chord suffix", Reason: fmt.Sprintf("%s without a degree number", word)}
}

// byteLen picks the byte-length of whichever candidate actually prefixes
// s, since Δ/△/ø are multi-byte runes and must not be sliced by rune
// count.
func byteLen(s string, fallback int, candidates ...string) int {
	for _, c := range candidates {
		if strings.HasPrefix(s, c) {
			return len(c)
		}
	}
	return fallback
}

func applyDefaultSeventh(b *builderState) {
	if b.seventh != "" {
		return
	}
	switch {
	case b.majorMarker:
		b.seventh = "major"
	case b.triad == "minor":
		b.seventh = "minor"
	case b.triad == "diminished" && b.altered[5] == 0:
		b.seventh = "diminished"
	default:
		b.seventh = "dominant"
	}
}

func resolveDeferred(b *builderState) {
	if b.triad == "deferredSus" {
		b.triad = "sus4"
	}
	if b.altFlag {
		b.seventh = "dominant"
		b.altered[5] = 8
		b.altered[9] = 13
	}
}

// intervals emits the final, sorted, de-duplicated list of semitone
// offsets above the root implied by the builder state.
func (b *builderState) intervals() []int {
	set := map[int]bool{0: true}

	switch b.triad {
	case "major":
		set[4] = true
		set[7] = true
	case "minor":
		set[3] = true
		set[7] = true
	case "diminished":
		set[3] = true
		set[6] = true // altered (flat) fifth
	case "augmented":
		set[4] = true
		set[8] = true
	case "sus2":
		set[2] = true
		set[7] = true
	case "sus4":
		set[5] = true
		set[7] = true
	case "power":
		set[7] = true
	}

	switch b.seventh {
	case "major":
		set[11] = true
	case "minor":
		set[10] = true
	case "dominant":
		set[10] = true
	case "diminished":
		set[9] = true
	}

	if b.hasSix {
		set[9] = true
	}
	for deg := range b.implied {
		set[degreeOffset[deg]] = true
	}
	for deg, off := range b.altered {
		set[off] = true
		delete(set, degreeOffset[deg])
	}
	for deg := range b.added {
		set[degreeOffset[deg]] = true
	}
	for deg := range b.omitted {
		delete(set, degreeOffset[deg])
		for _, alt := range alterationsFor(deg) {
			delete(set, alt)
		}
	}

	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func alterationsFor(deg int) []int {
	var out []int
	for _, v := range alterationTokens {
		if v[0] == deg {
			out = append(out, v[1])
		}
	}
	return out
}

// ChordSymbol is a fully parsed chord-symbol grammar tree: one or more
// stacked polychord layers plus an optional slash bass.
type ChordSymbol struct {
	Layers []layer
	Bass   *int // pitch class, nil if no slash bass
}

type layer struct {
	root      int
	intervals []int
}

// Parse parses chord-symbol text into a ChordSymbol.
func Parse(text string) (*ChordSymbol, error) {
	text = pitch.NormalizeAccidentals(strings.TrimSpace(text))
	if text == "" {
		return nil, &theoryerr.ParseError{Line: 1, Col: 1, Message: "empty chord symbol"}
	}

	var bass *int
	if idx := findBassSlash(text); idx >= 0 {
		bassText := text[idx+1:]
		bpc, err := pitch.ParseClass(bassText)
		if err != nil {
			return nil, &theoryerr.ParseError{Line: 1, Col: idx + 2, Message: "invalid bass note: " + err.Error()}
		}
		v := int(bpc)
		bass = &v
		text = text[:idx]
	}

	parts := strings.Split(text, "|")
	layers := make([]layer, 0, len(parts))
	for li, part := range parts {
		if part == "" {
			return nil, &theoryerr.ParseError{Line: 1, Col: 1, Message: fmt.Sprintf("empty polychord layer %d", li+1)}
		}
		root, rootLen, err := parseRoot(part)
		if err != nil {
			return nil, &theoryerr.ParseError{Line: 1, Col: 1, Message: err.Error()}
		}
		b := newBuilder(root)
		if err := parseSuffix(b, part[rootLen:]); err != nil {
			return nil, err
		}
		layers = append(layers, layer{root: root, intervals: b.intervals()})
	}

	return &ChordSymbol{Layers: layers, Bass: bass}, nil
}

// findBassSlash finds the '/' that introduces a slash-bass note, as
// opposed to the '/' embedded in the literal "6/9" token.
func findBassSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != '/' {
			continue
		}
		if i > 0 && s[i-1] == '6' {
			continue // part of "6/9"
		}
		rest := s[i+1:]
		if rest == "" {
			continue
		}
		if _, err := pitch.ParseClass(rest); err == nil {
			return i
		}
	}
	return -1
}

func parseRoot(s string) (int, int, error) {
	if len(s) == 0 {
		return 0, 0, &theoryerr.InvalidArgument{Field: "chord root", Reason: "empty"}
	}
	n := 1
	for n < len(s) && (s[n] == '#' || s[n] == 'b') {
		n++
	}
	pc, err := pitch.ParseClass(s[:n])
	if err != nil {
		return 0, 0, err
	}
	return int(pc), n, nil
}

// Pitches emits the sorted MIDI pitch list for the chord: slash bass at
// 48+bassPC first (with that pitch class suppressed from the upper
// voicing), then each polychord layer stacked one octave above the
// previous, rooted at 60+rootPC+12*layerIndex.
func (c *ChordSymbol) Pitches() []int {
	var out []int
	var suppress = -1
	if c.Bass != nil {
		out = append(out, 48+*c.Bass)
		suppress = *c.Bass
	}
	for idx, ly := range c.Layers {
		base := 60 + ly.root + 12*idx
		for _, off := range ly.intervals {
			p := base + off
			pc := p % 12
			if suppress >= 0 && pc == suppress {
				continue
			}
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}

// ParsePitches is the convenience one-shot parse+emit entry point named in
// spec.md §8/§4.4.
func ParsePitches(text string) ([]int, error) {
	cs, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return cs.Pitches(), nil
}
