// Package ornament expands notation-surface ornament tags into a concrete
// event sequence that fits exactly within the base note's duration
// (spec.md C7). Each ornament kind is a tagged variant dispatched from the
// raw events.OrnamentTag parsed by internal/notation; expand() never
// extends past base.Offset + base.Duration, truncating when the base
// duration is too short (spec.md §9 design notes: truncation is allowed).
package ornament

import (
	"strconv"
	"strings"

	"github.com/schollz/scoreforge/internal/events"
	"github.com/schollz/scoreforge/internal/rational"
)

// Kind is the ornament tagged-variant discriminant.
type Kind int

const (
	KindNone Kind = iota
	KindTrill
	KindMordent
	KindTurn
	KindAppoggiatura
	KindArticulation
)

// MordentVariant is Upper or Lower.
type MordentVariant int

const (
	MordentUpper MordentVariant = iota
	MordentLower
)

// TurnVariant is Normal or Inverted.
type TurnVariant int

const (
	TurnNormal TurnVariant = iota
	TurnInverted
)

// AppoggiaturaVariant is Long or Short.
type AppoggiaturaVariant int

const (
	AppoggiaturaLong AppoggiaturaVariant = iota
	AppoggiaturaShort
)

// ArticulationType names the supported articulations, each with its fixed
// duration/velocity scale factors.
type ArticulationType int

const (
	ArticulationStaccato ArticulationType = iota
	ArticulationAccent
	ArticulationSforzando
	ArticulationTenuto
	ArticulationMarcato
)

// articulationFactor is the exact duration scale (as a rational, to avoid
// float round-off against the Rational duration model) plus the velocity
// scale per type.
type articulationFactor struct {
	durNum, durDen int64
	velScale       float32
}

var articulationScale = map[ArticulationType]articulationFactor{
	ArticulationStaccato:  {1, 2, 1.0},
	ArticulationAccent:    {1, 1, 1.3},
	ArticulationSforzando: {1, 1, 1.6},
	ArticulationTenuto:    {9, 10, 1.0},
	ArticulationMarcato:   {7, 10, 1.2},
}

var articulationNames = map[string]ArticulationType{
	"staccato":  ArticulationStaccato,
	"accent":    ArticulationAccent,
	"sforzando": ArticulationSforzando,
	"tenuto":    ArticulationTenuto,
	"marcato":   ArticulationMarcato,
}

// Ornament is a fully interpreted, ready-to-expand tagged variant built
// from a raw events.OrnamentTag.
type Ornament struct {
	Kind Kind

	// Trill
	TrillInterval  int // signed semitone offset of the alternating neighbor
	TrillStartUp   bool
	TrillEndTurn   bool

	// Mordent
	MordentVariant     MordentVariant
	MordentInterval    int
	MordentAlternations int

	// Turn
	TurnVariant  TurnVariant
	TurnInterval int // upper-neighbor interval; lower is its negation by default

	// Appoggiatura
	AppoggiaturaVariant  AppoggiaturaVariant
	AppoggiaturaInterval int

	// Articulation
	Articulation ArticulationType
}

// FromTag interprets a notation-surface ornament tag into a typed
// Ornament. Numeric params are signed semitone intervals, except for
// "mord", where a number sets the alternation count; non-numeric
// params select variants ("upper"/"lower", "inverted", "short"/"long",
// or an articulation name).
func FromTag(tag *events.OrnamentTag) (Ornament, error) {
	switch tag.Name {
	case "tr":
		o := Ornament{Kind: KindTrill, TrillInterval: 2}
		for _, p := range tag.Params {
			switch p {
			case "up":
				o.TrillStartUp = true
			case "turn":
				o.TrillEndTurn = true
			default:
				if n, ok := parseInt(p); ok {
					o.TrillInterval = n
				}
			}
		}
		return o, nil
	case "mord":
		o := Ornament{Kind: KindMordent, MordentInterval: 2, MordentAlternations: 1}
		for _, p := range tag.Params {
			switch p {
			case "lower":
				o.MordentVariant = MordentLower
				if o.MordentInterval > 0 {
					o.MordentInterval = -o.MordentInterval
				}
			case "upper":
				o.MordentVariant = MordentUpper
			default:
				if n, ok := parseInt(p); ok {
					o.MordentAlternations = n
				}
			}
		}
		return o, nil
	case "turn":
		o := Ornament{Kind: KindTurn, TurnInterval: 2}
		for _, p := range tag.Params {
			switch p {
			case "inverted":
				o.TurnVariant = TurnInverted
			default:
				if n, ok := parseInt(p); ok {
					o.TurnInterval = n
				}
			}
		}
		return o, nil
	case "app":
		o := Ornament{Kind: KindAppoggiatura, AppoggiaturaVariant: AppoggiaturaLong, AppoggiaturaInterval: 2}
		for _, p := range tag.Params {
			switch p {
			case "short":
				o.AppoggiaturaVariant = AppoggiaturaShort
			case "long":
				o.AppoggiaturaVariant = AppoggiaturaLong
			default:
				if n, ok := parseInt(p); ok {
					o.AppoggiaturaInterval = n
				}
			}
		}
		return o, nil
	default:
		if t, ok := articulationNames[strings.ToLower(tag.Name)]; ok {
			return Ornament{Kind: KindArticulation, Articulation: t}, nil
		}
		return Ornament{}, &unknownOrnamentError{name: tag.Name}
	}
}

type unknownOrnamentError struct{ name string }

func (e *unknownOrnamentError) Error() string { return "unknown ornament: " + e.name }

func parseInt(s string) (int, bool) {
	neg := false
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// Expand produces the finite event sequence replacing base, fitting
// exactly within [base.Offset, base.Offset+base.Duration]. Articulation
// produces no extra events: it rewrites base's duration and velocity in
// place.
func Expand(o Ornament, base events.NoteEvent) []events.NoteEvent {
	switch o.Kind {
	case KindTrill:
		return expandTrill(o, base)
	case KindMordent:
		return expandMordent(o, base)
	case KindTurn:
		return expandTurn(o, base)
	case KindAppoggiatura:
		return expandAppoggiatura(o, base)
	case KindArticulation:
		return expandArticulation(o, base)
	default:
		return []events.NoteEvent{base}
	}
}

// expandTrill alternates base and base±interval at 1/(speed*4) granularity.
// speed is fixed at 8 alternations per base duration (spec leaves the
// constant implementation-chosen; the granularity divisor "4" multiplies a
// chosen speed of 2). When TrillEndTurn is set, the final two slots are
// replaced by a two-note turn figure (upper, main), reusing the last two
// slot positions -- truncated if fewer than 4 slots are available.
func expandTrill(o Ornament, base events.NoteEvent) []events.NoteEvent {
	const speed = 2
	slots := speed * 4
	dur := mustDiv(base.Duration, int64(slots))
	out := make([]events.NoteEvent, 0, slots)
	upperFirst := o.TrillStartUp
	for i := 0; i < slots; i++ {
		pitch := base.Pitch
		alt := (i % 2 == 0) == upperFirst
		if alt {
			pitch += o.TrillInterval
		}
		out = append(out, events.NoteEvent{
			Pitch:    pitch,
			Offset:   base.Offset.Add(mustMulN(dur, int64(i))),
			Duration: dur,
			Velocity: base.Velocity,
		})
	}
	if o.TrillEndTurn && len(out) >= 2 {
		last := len(out) - 1
		out[last-1].Pitch = base.Pitch + o.TrillInterval
		out[last].Pitch = base.Pitch
	}
	return out
}

// expandMordent produces three events (main, neighbor, main) scaled into
// the base duration; alternations > 1 repeats the neighbor/main pair.
func expandMordent(o Ornament, base events.NoteEvent) []events.NoteEvent {
	reps := o.MordentAlternations
	if reps < 1 {
		reps = 1
	}
	slots := 1 + 2*reps
	dur := mustDiv(base.Duration, int64(slots))
	out := make([]events.NoteEvent, 0, slots)
	out = append(out, events.NoteEvent{Pitch: base.Pitch, Offset: base.Offset, Duration: dur, Velocity: base.Velocity})
	offset := base.Offset.Add(dur)
	for i := 0; i < reps; i++ {
		out = append(out, events.NoteEvent{Pitch: base.Pitch + o.MordentInterval, Offset: offset, Duration: dur, Velocity: base.Velocity})
		offset = offset.Add(dur)
		out = append(out, events.NoteEvent{Pitch: base.Pitch, Offset: offset, Duration: dur, Velocity: base.Velocity})
		offset = offset.Add(dur)
	}
	return out
}

// expandTurn produces four events in canonical order (upper, main, lower,
// main) or, inverted, (lower, main, upper, main).
func expandTurn(o Ornament, base events.NoteEvent) []events.NoteEvent {
	dur := mustDiv(base.Duration, 4)
	upper := base.Pitch + o.TurnInterval
	lower := base.Pitch - o.TurnInterval
	order := []int{upper, base.Pitch, lower, base.Pitch}
	if o.TurnVariant == TurnInverted {
		order = []int{lower, base.Pitch, upper, base.Pitch}
	}
	out := make([]events.NoteEvent, 0, 4)
	offset := base.Offset
	for _, p := range order {
		out = append(out, events.NoteEvent{Pitch: p, Offset: offset, Duration: dur, Velocity: base.Velocity})
		offset = offset.Add(dur)
	}
	return out
}

// expandAppoggiatura: Long splits the base duration into two equal halves
// (neighbor, main); Short gives the neighbor a brief slice (1/8 of the
// base) with the remainder on main.
func expandAppoggiatura(o Ornament, base events.NoteEvent) []events.NoteEvent {
	neighbor := base.Pitch + o.AppoggiaturaInterval
	if o.AppoggiaturaVariant == AppoggiaturaLong {
		half := mustDiv(base.Duration, 2)
		return []events.NoteEvent{
			{Pitch: neighbor, Offset: base.Offset, Duration: half, Velocity: base.Velocity},
			{Pitch: base.Pitch, Offset: base.Offset.Add(half), Duration: half, Velocity: base.Velocity},
		}
	}
	short := mustDiv(base.Duration, 8)
	rest := base.Duration.Sub(short)
	return []events.NoteEvent{
		{Pitch: neighbor, Offset: base.Offset, Duration: short, Velocity: base.Velocity},
		{Pitch: base.Pitch, Offset: base.Offset.Add(short), Duration: rest, Velocity: base.Velocity},
	}
}

// expandArticulation does not add events: it scales duration and velocity
// by fixed constants per type, clamping velocity into [0, 1].
func expandArticulation(o Ornament, base events.NoteEvent) []events.NoteEvent {
	scale := articulationScale[o.Articulation]
	durScale := rational.Must(scale.durNum, scale.durDen)
	e := base
	e.Duration = e.Duration.Mul(durScale)
	v := base.Velocity * scale.velScale
	if v > 1 {
		v = 1
	}
	if v < 0 {
		v = 0
	}
	e.Velocity = v
	return []events.NoteEvent{e}
}

func mustDiv(r rational.Rational, n int64) rational.Rational {
	d, err := r.Div(rational.Must(n, 1))
	if err != nil {
		return rational.Zero
	}
	return d
}

func mustMulN(r rational.Rational, n int64) rational.Rational {
	return r.Mul(rational.Must(n, 1))
}
