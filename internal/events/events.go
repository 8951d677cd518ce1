// Package events defines the universal timed event and directive types
// shared across the notation parser/formatter, the note buffer, and every
// downstream analyzer (spec.md §3).
package events

import "github.com/schollz/scoreforge/internal/rational"

// RestPitch is the sentinel pitch value denoting a rest.
const RestPitch = -1

// NoteEvent is the universal timed event. Pitch == RestPitch denotes a
// rest.
type NoteEvent struct {
	Pitch    int
	Offset   rational.Rational
	Duration rational.Rational
	Velocity float32 // in [0, 1]

	// Ornament is the raw, unexpanded ornament annotation parsed from
	// notation text, if any (spec.md §4.5/§4.6). internal/ornament
	// interprets Name/Params and expands this event in place.
	Ornament *OrnamentTag
}

// OrnamentTag is a notation-surface ornament tag: a short name (tr, mord,
// turn, app, or an articulation name) plus its colon-separated raw
// parameters, still unexpanded.
type OrnamentTag struct {
	Name   string
	Params []string
}

// IsRest reports whether e is a rest.
func (e NoteEvent) IsRest() bool { return e.Pitch == RestPitch }

// End returns the event's offset + duration.
func (e NoteEvent) End() rational.Rational { return e.Offset.Add(e.Duration) }

// DirectiveKind is the tagged-variant discriminant for Directive.
type DirectiveKind int

const (
	DirectiveBPM DirectiveKind = iota
	DirectiveTempoCharacter
	DirectiveDynamics
	DirectiveSection
	DirectivePart
)

// DynamicsShape is Static/Crescendo/Diminuendo.
type DynamicsShape int

const (
	DynamicsStatic DynamicsShape = iota
	DynamicsCrescendo
	DynamicsDiminuendo
)

// Directive is a tagged variant over the non-sounding timeline annotations
// named in spec.md §3: BPM, tempo character, dynamics, section label, part
// name. Only the fields relevant to Kind are populated; the rest are the
// zero value.
type Directive struct {
	Kind DirectiveKind
	Time rational.Rational

	// DirectiveBPM
	BPM       float64
	TargetBPM *float64
	RampDur   *rational.Rational

	// DirectiveTempoCharacter
	TempoText string

	// DirectiveDynamics
	DynShape    DynamicsShape
	DynLevel    string // e.g. "mf", "ff"
	StartLevel  *string
	TargetLevel *string

	// DirectiveSection / DirectivePart
	Label string
}
