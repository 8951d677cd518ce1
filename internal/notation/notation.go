// Package notation implements the grammar-driven notation text parser and
// its inverse formatter (spec.md C6): pitches, chords, rests, ties,
// measures, polyphonic blocks, directives and ornament suffixes turn into a
// timed event stream plus directives, and format back out losslessly. The
// cursor-advances-as-you-go parsing style and named-return error plumbing
// follow the teacher's internal/ticks duration-accumulation helpers.
package notation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/schollz/scoreforge/internal/events"
	"github.com/schollz/scoreforge/internal/pitch"
	"github.com/schollz/scoreforge/internal/rational"
	"github.com/schollz/scoreforge/internal/theoryerr"
)

// TimeSignature is the optional "N/M:" prefix.
type TimeSignature struct {
	Beats int
	Unit  int
}

// MeasureLength returns the rational duration of one measure under this
// time signature, in whole-note units.
func (t TimeSignature) MeasureLength() rational.Rational {
	return rational.Must(int64(t.Beats), int64(t.Unit))
}

// ParseOptions controls optional strictness.
type ParseOptions struct {
	// Validate enables measure-length checking after every '|' bar.
	Validate bool
}

// ParseResult is the parser's output: the optional time signature plus the
// timed event stream and directive stream, both in source order. Offsets
// never decrease except across the voices of a polyphonic block, where
// each later voice restarts at the block's start.
type ParseResult struct {
	TimeSig    *TimeSignature
	Events     []events.NoteEvent
	Directives []events.Directive
}

// Parse parses notation text per spec.md §4.5.
func Parse(text string, opts ParseOptions) (*ParseResult, error) {
	p := &parser{
		src:          []rune(text),
		currentTime:  rational.Zero,
		measureStart: rational.Zero,
		pendingTies:  make(map[int]int),
	}
	return p.run(opts)
}

// ParseDefault parses with measure validation disabled.
func ParseDefault(text string) (*ParseResult, error) {
	return Parse(text, ParseOptions{})
}

type parser struct {
	src []rune
	pos int

	currentTime  rational.Rational
	measureStart rational.Rational
	measureNum   int

	result      ParseResult
	pendingTies map[int]int // MIDI pitch -> index into result.Events of an unresolved tie
}

func (p *parser) run(opts ParseOptions) (*ParseResult, error) {
	p.skipSpace()
	if ts, ok, err := p.tryParseTimeSig(); err != nil {
		return nil, err
	} else if ok {
		p.result.TimeSig = &ts
	}

	for {
		p.skipSpace()
		if p.atEnd() {
			break
		}
		if p.peek() == '|' {
			p.advance()
			p.measureNum++
			if opts.Validate {
				if err := p.checkMeasure(); err != nil {
					return nil, err
				}
			}
			p.measureStart = p.currentTime
			continue
		}
		if err := p.parseElement(); err != nil {
			return nil, err
		}
	}

	// A final partial measure with no trailing '|' is still validated
	// against the time signature, so a short last measure is caught even
	// without an explicit closing bar.
	if opts.Validate && p.result.TimeSig != nil && !p.currentTime.Equal(p.measureStart) {
		p.measureNum++
		if err := p.checkMeasure(); err != nil {
			return nil, err
		}
	}

	return &p.result, nil
}

func (p *parser) checkMeasure() error {
	if p.result.TimeSig == nil {
		return nil
	}
	expected := p.result.TimeSig.MeasureLength()
	actual := p.currentTime.Sub(p.measureStart)
	if !actual.Equal(expected) {
		return &theoryerr.MeasureMismatch{
			Measure:  p.measureNum,
			Expected: expected.String(),
			Actual:   actual.String(),
		}
	}
	return nil
}

// parseElement dispatches on the next significant character.
func (p *parser) parseElement() error {
	switch {
	case p.peek() == '@':
		return p.parseDirective()
	case p.lookingAt("<<"):
		return p.parsePolyphonicBlock()
	case p.peek() == '[' || p.peek() == '(':
		return p.parseChord()
	case p.peek() == 'R':
		return p.parseRest()
	case isNoteLetter(p.peek()):
		return p.parseNote(true)
	default:
		return p.errorf("unexpected character %q", p.peek())
	}
}

// tryParseTimeSig consumes a leading "N/M:" or "N/M|" prefix.
func (p *parser) tryParseTimeSig() (TimeSignature, bool, error) {
	start := p.pos
	beats, ok := p.tryReadInt()
	if !ok || p.peek() != '/' {
		p.pos = start
		return TimeSignature{}, false, nil
	}
	p.advance() // '/'
	unit, ok := p.tryReadInt()
	if !ok || (p.peek() != ':' && p.peek() != '|') {
		p.pos = start
		return TimeSignature{}, false, nil
	}
	p.advance() // ':' or '|'
	return TimeSignature{Beats: beats, Unit: unit}, true, nil
}

func (p *parser) tryReadInt() (int, bool) {
	start := p.pos
	for !p.atEnd() && isDigit(p.peek()) {
		p.advance()
	}
	if p.pos == start {
		return 0, false
	}
	n, err := strconv.Atoi(string(p.src[start:p.pos]))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (p *parser) parseRest() error {
	p.advance() // 'R'
	dur, err := p.parseDurationSuffix(true)
	if err != nil {
		return err
	}
	p.emitEvent(events.NoteEvent{
		Pitch:    events.RestPitch,
		Offset:   p.currentTime,
		Duration: dur,
		Velocity: 0,
	}, false)
	p.currentTime = p.currentTime.Add(dur)
	return nil
}

// noteToken is one parsed pitch+octave+tie (no duration; shared chord
// durations are resolved by the caller).
type noteToken struct {
	midi int
	tie  bool
}

func (p *parser) parseNote(advanceCursor bool) error {
	offset := p.currentTime
	tok, err := p.parseNoteToken()
	if err != nil {
		return err
	}
	var orn *events.OrnamentTag
	if p.peek() == '{' {
		orn, err = p.parseOrnamentSuffix()
		if err != nil {
			return err
		}
	}
	dur, err := p.parseDurationSuffix(true)
	if err != nil {
		return err
	}
	if p.peek() == '~' {
		p.advance()
		tok.tie = true
	}
	p.emitEvent(events.NoteEvent{
		Pitch:    tok.midi,
		Offset:   offset,
		Duration: dur,
		Velocity: 1,
		Ornament: orn,
	}, tok.tie)
	if advanceCursor {
		p.currentTime = p.currentTime.Add(dur)
	}
	return nil
}

// parseNoteToken reads a bare pitch name: letter, accidentals, octave
// digits. No duration, tie, or ornament.
func (p *parser) parseNoteToken() (noteToken, error) {
	start := p.pos
	if !isNoteLetter(p.peek()) {
		return noteToken{}, p.errorf("expected note letter, got %q", p.peek())
	}
	p.advance()
	for !p.atEnd() && isAccidentalRune(p.peek()) {
		p.advance()
	}
	nameEnd := p.pos
	digitsStart := p.pos
	for !p.atEnd() && isDigit(p.peek()) {
		p.advance()
	}
	if p.pos == digitsStart {
		return noteToken{}, p.errorf("note %q missing octave", string(p.src[start:p.pos]))
	}
	cls, err := pitch.ParseClass(string(p.src[start:nameEnd]))
	if err != nil {
		return noteToken{}, p.wrap(err)
	}
	octave, _ := strconv.Atoi(string(p.src[digitsStart:p.pos]))
	midi, err := pitch.SpnNote{Class: cls, Octave: octave}.MidiPitch()
	if err != nil {
		return noteToken{}, p.wrap(err)
	}
	return noteToken{midi: midi}, nil
}

func (p *parser) parseChord() error {
	offset := p.currentTime
	open := p.peek()
	closer := ']'
	if open == '(' {
		closer = ')'
	}
	p.advance()

	type pending struct {
		tok noteToken
		dur *rational.Rational
	}
	var notes []pending
	for {
		p.skipSpace()
		if p.atEnd() {
			return p.errorf("unterminated chord, expected %q", closer)
		}
		if p.peek() == closer {
			p.advance()
			break
		}
		tok, err := p.parseNoteToken()
		if err != nil {
			return err
		}
		var own *rational.Rational
		if p.peek() == '/' || p.peek() == ':' {
			d, err := p.parseDurationSuffix(false)
			if err != nil {
				return err
			}
			own = &d
		}
		if p.peek() == '~' {
			p.advance()
			tok.tie = true
		}
		notes = append(notes, pending{tok: tok, dur: own})
	}

	var orn *events.OrnamentTag
	var err error
	if p.peek() == '{' {
		orn, err = p.parseOrnamentSuffix()
		if err != nil {
			return err
		}
	}

	sharedDur, err := p.parseDurationSuffix(len(notes) == 0 || notes[0].dur == nil)
	if err != nil {
		return err
	}

	maxDur := sharedDur
	for _, n := range notes {
		d := sharedDur
		if n.dur != nil {
			d = *n.dur
		}
		if maxDur.Less(d) {
			maxDur = d
		}
	}

	for i, n := range notes {
		d := sharedDur
		if n.dur != nil {
			d = *n.dur
		}
		var o *events.OrnamentTag
		if i == 0 {
			o = orn
		}
		p.emitEvent(events.NoteEvent{
			Pitch:    n.tok.midi,
			Offset:   offset,
			Duration: d,
			Velocity: 1,
			Ornament: o,
		}, n.tok.tie)
	}

	p.currentTime = offset.Add(maxDur)
	return nil
}

func (p *parser) parsePolyphonicBlock() error {
	blockStart := p.currentTime
	var maxEnd rational.Rational
	first := true
	for p.lookingAt("<<") {
		p.advance()
		p.advance()
		p.currentTime = blockStart
		for {
			p.skipSpace()
			if p.lookingAt(">>") {
				p.advance()
				p.advance()
				break
			}
			if p.atEnd() {
				return p.errorf("unterminated polyphonic block, expected '>>'")
			}
			if err := p.parseElement(); err != nil {
				return err
			}
		}
		if first || maxEnd.Less(p.currentTime) {
			maxEnd = p.currentTime
			first = false
		}
		p.skipSpace()
	}
	p.currentTime = maxEnd
	return nil
}

func (p *parser) parseOrnamentSuffix() (*events.OrnamentTag, error) {
	p.advance() // '{'
	start := p.pos
	for !p.atEnd() && p.peek() != '}' {
		p.advance()
	}
	if p.atEnd() {
		return nil, p.errorf("unterminated ornament suffix, expected '}'")
	}
	body := string(p.src[start:p.pos])
	p.advance() // '}'
	parts := strings.Split(body, ":")
	if len(parts) == 0 || parts[0] == "" {
		return nil, p.errorf("empty ornament name")
	}
	return &events.OrnamentTag{Name: parts[0], Params: parts[1:]}, nil
}

// parseDurationSuffix reads "/N[.]" or ":letter[.]". When required is
// false and no separator is present, it returns the zero Rational and no
// error (the caller resolves a shared duration, e.g. chord notes).
func (p *parser) parseDurationSuffix(required bool) (rational.Rational, error) {
	switch p.peek() {
	case '/':
		p.advance()
		start := p.pos
		for !p.atEnd() && isDigit(p.peek()) {
			p.advance()
		}
		if p.pos == start {
			return rational.Zero, p.errorf("expected digits after '/'")
		}
		n, _ := strconv.Atoi(string(p.src[start:p.pos]))
		d := rational.Must(1, int64(n))
		return p.maybeDot(d), nil
	case ':':
		p.advance()
		if p.atEnd() {
			return rational.Zero, p.errorf("expected duration letter after ':'")
		}
		l := p.peek()
		p.advance()
		denom, ok := letterDurations[l]
		if !ok {
			return rational.Zero, p.errorf("unknown duration letter %q", l)
		}
		d := rational.Must(1, int64(denom))
		return p.maybeDot(d), nil
	default:
		if required {
			return rational.Zero, p.errorf("expected duration suffix, got %q", p.peek())
		}
		return rational.Zero, nil
	}
}

func (p *parser) maybeDot(d rational.Rational) rational.Rational {
	if p.peek() == '.' {
		p.advance()
		return d.Mul(rational.Must(3, 2))
	}
	return d
}

var letterDurations = map[rune]int{
	'w': 1, 'h': 2, 'q': 4, 'e': 8, 's': 16, 't': 32,
}

var dynamicsLevels = map[string]bool{
	"pppp": true, "ppp": true, "pp": true, "p": true, "mp": true, "mf": true,
	"f": true, "ff": true, "fff": true, "ffff": true,
	"sf": true, "sfz": true, "fp": true, "rf": true,
}

func (p *parser) parseDirective() error {
	time := p.currentTime
	p.advance() // '@'
	start := p.pos
	for !p.atEnd() && isIdentRune(p.peek()) {
		p.advance()
	}
	name := string(p.src[start:p.pos])
	if name == "" {
		return p.errorf("expected directive name after '@'")
	}

	switch name {
	case "bpm":
		return p.parseBPMDirective(time)
	case "cresc":
		return p.parseDynamicsShapeDirective(time, events.DynamicsCrescendo)
	case "dim":
		return p.parseDynamicsShapeDirective(time, events.DynamicsDiminuendo)
	case "dyn":
		p.skipSpace()
		level, err := p.parseValue()
		if err != nil {
			return err
		}
		if !dynamicsLevels[level] {
			return p.errorf("unknown dynamics level %q", level)
		}
		p.result.Directives = append(p.result.Directives, events.Directive{
			Kind: events.DirectiveDynamics, Time: time,
			DynShape: events.DynamicsStatic, DynLevel: level,
		})
		return nil
	case "section":
		p.skipSpace()
		label, err := p.parseValue()
		if err != nil {
			return err
		}
		p.result.Directives = append(p.result.Directives, events.Directive{
			Kind: events.DirectiveSection, Time: time, Label: label,
		})
		return nil
	case "part":
		p.skipSpace()
		label, err := p.parseValue()
		if err != nil {
			return err
		}
		p.result.Directives = append(p.result.Directives, events.Directive{
			Kind: events.DirectivePart, Time: time, Label: label,
		})
		return nil
	case "tempo":
		p.skipSpace()
		text, err := p.parseValue()
		if err != nil {
			return err
		}
		p.result.Directives = append(p.result.Directives, events.Directive{
			Kind: events.DirectiveTempoCharacter, Time: time, TempoText: text,
		})
		return nil
	default:
		return p.errorf("unknown directive %q", name)
	}
}

func (p *parser) parseBPMDirective(time rational.Rational) error {
	p.skipSpace()
	n, ok := p.tryReadFloat()
	if !ok {
		return p.errorf("expected BPM number after @bpm")
	}
	d := events.Directive{Kind: events.DirectiveBPM, Time: time, BPM: n}
	p.skipSpace()
	if p.lookingAt("->") {
		p.advance()
		p.advance()
		p.skipSpace()
		m, ok := p.tryReadFloat()
		if !ok {
			return p.errorf("expected target BPM after '->'")
		}
		d.TargetBPM = &m
		p.skipSpace()
		if p.peek() == '/' {
			dur, err := p.parseDurationSuffix(true)
			if err != nil {
				return err
			}
			d.RampDur = &dur
		}
	}
	p.result.Directives = append(p.result.Directives, d)
	return nil
}

func (p *parser) parseDynamicsShapeDirective(time rational.Rational, shape events.DynamicsShape) error {
	d := events.Directive{Kind: events.DirectiveDynamics, Time: time, DynShape: shape}
	p.skipSpace()
	if p.lookingAt("to") && p.peekWordBoundaryAfter(2) {
		p.pos += 2
		p.skipSpace()
		level, err := p.parseValue()
		if err != nil {
			return err
		}
		if !dynamicsLevels[level] {
			return p.errorf("unknown dynamics level %q", level)
		}
		d.TargetLevel = &level
	}
	p.result.Directives = append(p.result.Directives, d)
	return nil
}

// parseValue reads a bare identifier, integer, or quoted string.
func (p *parser) parseValue() (string, error) {
	if p.peek() == '"' {
		p.advance()
		start := p.pos
		for !p.atEnd() && p.peek() != '"' {
			p.advance()
		}
		if p.atEnd() {
			return "", p.errorf("unterminated quoted string")
		}
		s := string(p.src[start:p.pos])
		p.advance()
		return s, nil
	}
	start := p.pos
	for !p.atEnd() && isIdentRune(p.peek()) {
		p.advance()
	}
	if p.pos == start {
		return "", p.errorf("expected a value")
	}
	return string(p.src[start:p.pos]), nil
}

func (p *parser) tryReadFloat() (float64, bool) {
	start := p.pos
	for !p.atEnd() && (isDigit(p.peek()) || p.peek() == '.') {
		p.advance()
	}
	if p.pos == start {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(p.src[start:p.pos]), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// emitEvent appends ev, resolving a leading tie by merging into the
// previously registered pending event of the same pitch, then (if tied)
// registers ev's own (possibly merged) slot as the new pending entry.
func (p *parser) emitEvent(ev events.NoteEvent, tied bool) {
	if idx, ok := p.pendingTies[ev.Pitch]; ok && !ev.IsRest() {
		p.result.Events[idx].Duration = p.result.Events[idx].Duration.Add(ev.Duration)
		delete(p.pendingTies, ev.Pitch)
		if tied {
			p.pendingTies[ev.Pitch] = idx
		}
		return
	}
	p.result.Events = append(p.result.Events, ev)
	if tied {
		p.pendingTies[ev.Pitch] = len(p.result.Events) - 1
	}
}

// --- scanner primitives ---

func (p *parser) atEnd() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.atEnd() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) advance() { p.pos++ }

func (p *parser) skipSpace() {
	for !p.atEnd() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n' || p.src[p.pos] == '\r') {
		p.pos++
	}
}

func (p *parser) lookingAt(s string) bool {
	r := []rune(s)
	if p.pos+len(r) > len(p.src) {
		return false
	}
	for i, c := range r {
		if p.src[p.pos+i] != c {
			return false
		}
	}
	return true
}

// peekWordBoundaryAfter reports whether the character n runes after the
// cursor is absent or not an identifier rune (used to avoid matching "to"
// as a prefix of "total").
func (p *parser) peekWordBoundaryAfter(n int) bool {
	idx := p.pos + n
	if idx >= len(p.src) {
		return true
	}
	return !isIdentRune(p.src[idx])
}

func isNoteLetter(r rune) bool { return (r >= 'A' && r <= 'G') || (r >= 'a' && r <= 'g') }
func isDigit(r rune) bool      { return r >= '0' && r <= '9' }
func isAccidentalRune(r rune) bool {
	return r == '#' || r == 'b' || r == '♯' || r == '♭'
}
func isIdentRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

func (p *parser) lineCol() (int, int) {
	line, col := 1, 1
	for i := 0; i < p.pos && i < len(p.src); i++ {
		if p.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func (p *parser) errorf(format string, args ...interface{}) error {
	line, col := p.lineCol()
	return &theoryerr.ParseError{Line: line, Col: col, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) wrap(err error) error {
	line, col := p.lineCol()
	return &theoryerr.ParseError{Line: line, Col: col, Message: err.Error()}
}
