package notation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/schollz/scoreforge/internal/events"
	"github.com/schollz/scoreforge/internal/pitch"
	"github.com/schollz/scoreforge/internal/rational"
)

// FormatOptions controls the formatter's surface choices. The zero value
// emits numeric duration suffixes and writes every note on its own;
// DefaultFormatOptions also groups chords into brackets, which gives the
// canonical surface used throughout spec.md's examples.
type FormatOptions struct {
	// PreferLetters emits ":q"-style letter durations instead of "/4".
	PreferLetters bool
	// GroupChords re-groups simultaneous equal-duration notes into "[...]".
	GroupChords bool
}

// DefaultFormatOptions matches the canonical surface.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{GroupChords: true}
}

// Format re-emits r as notation text. format(parse(x)) = x for any x the
// parser accepts in its canonical form (spec.md §4.5's round-trip law).
func Format(r *ParseResult, opts FormatOptions) string {
	var b strings.Builder
	if r.TimeSig != nil {
		fmt.Fprintf(&b, "%d/%d: ", r.TimeSig.Beats, r.TimeSig.Unit)
	}

	groups := groupByTime(r.Events, opts.GroupChords)

	type item struct {
		time rational.Rational
		kind int // 0 = directive, 1 = event group
		dir  events.Directive
		grp  []events.NoteEvent
	}
	var items []item
	for _, d := range r.Directives {
		items = append(items, item{time: d.Time, kind: 0, dir: d})
	}
	for _, g := range groups {
		items = append(items, item{time: g[0].Offset, kind: 1, grp: g})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].time.Equal(items[j].time) {
			return items[i].kind < items[j].kind // directives before events
		}
		return items[i].time.Less(items[j].time)
	})

	measureAcc := rational.Zero
	measureLen := rational.Zero
	hasMeasure := r.TimeSig != nil
	if hasMeasure {
		measureLen = r.TimeSig.MeasureLength()
	}

	first := true
	for i, it := range items {
		if !first {
			b.WriteString(" ")
		}
		first = false
		switch it.kind {
		case 0:
			b.WriteString(formatDirective(it.dir))
		case 1:
			b.WriteString(formatEventGroup(it.grp, opts))
			if hasMeasure {
				measureAcc = measureAcc.Add(it.grp[0].Duration)
				if measureAcc.Equal(measureLen) {
					measureAcc = rational.Zero
					if i != len(items)-1 {
						b.WriteString(" |")
					}
				}
			}
		}
	}
	return b.String()
}

// groupByTime clusters consecutive same-offset-and-duration events into
// chord groups when grouping is enabled; otherwise every event is its own
// singleton group, in original order.
func groupByTime(evs []events.NoteEvent, group bool) [][]events.NoteEvent {
	var out [][]events.NoteEvent
	i := 0
	for i < len(evs) {
		if !group {
			out = append(out, []events.NoteEvent{evs[i]})
			i++
			continue
		}
		j := i + 1
		for j < len(evs) && evs[j].Offset.Equal(evs[i].Offset) && evs[j].Duration.Equal(evs[i].Duration) && !evs[i].IsRest() && !evs[j].IsRest() {
			j++
		}
		out = append(out, evs[i:j])
		i = j
	}
	return out
}

func formatEventGroup(g []events.NoteEvent, opts FormatOptions) string {
	dur := formatDuration(g[0].Duration, opts.PreferLetters)
	if len(g) == 1 {
		return formatSingle(g[0], dur)
	}
	var names []string
	for _, e := range g {
		names = append(names, noteName(e.Pitch))
	}
	return "[" + strings.Join(names, " ") + "]" + dur
}

func formatSingle(e events.NoteEvent, dur string) string {
	if e.IsRest() {
		return "R" + dur
	}
	s := noteName(e.Pitch) + dur
	return s
}

func noteName(midi int) string {
	n, err := pitch.FromMidi(midi)
	if err != nil {
		return "?"
	}
	return n.String()
}

// formatDuration renders r back to a "/N[.]" (or ":letter[.]" when
// preferLetters) suffix, recognizing the dotted form r = 3/(2n).
func formatDuration(r rational.Rational, preferLetters bool) string {
	if n, ok := plainDenominator(r); ok {
		return suffixFor(n, false, preferLetters)
	}
	if n, ok := dottedDenominator(r); ok {
		return suffixFor(n, true, preferLetters)
	}
	// Fallback for durations outside the clean binary/dotted grammar: emit
	// the fraction itself after '/' (e.g. "/5/8"). parseDurationSuffix does
	// not read this form back as the same duration.
	return "/" + r.String()
}

func plainDenominator(r rational.Rational) (int64, bool) {
	if r.Num == 1 {
		return r.Den, true
	}
	return 0, false
}

// dottedDenominator reports whether r == 3/(2n) for an integer n, i.e. r is
// a dotted note of base denominator n.
func dottedDenominator(r rational.Rational) (int64, bool) {
	if r.Num != 3 {
		return 0, false
	}
	if r.Den%2 != 0 {
		return 0, false
	}
	return r.Den / 2, true
}

var letterByDenom = map[int64]string{1: "w", 2: "h", 4: "q", 8: "e", 16: "s", 32: "t"}

func suffixFor(n int64, dotted bool, preferLetters bool) string {
	dot := ""
	if dotted {
		dot = "."
	}
	if preferLetters {
		if l, ok := letterByDenom[n]; ok {
			return ":" + l + dot
		}
	}
	return "/" + strconv.FormatInt(n, 10) + dot
}

func formatDirective(d events.Directive) string {
	switch d.Kind {
	case events.DirectiveBPM:
		s := fmt.Sprintf("@bpm %s", formatFloat(d.BPM))
		if d.TargetBPM != nil {
			s += fmt.Sprintf(" -> %s", formatFloat(*d.TargetBPM))
			if d.RampDur != nil {
				s += formatDuration(*d.RampDur, false)
			}
		}
		return s
	case events.DirectiveDynamics:
		switch d.DynShape {
		case events.DynamicsCrescendo:
			s := "@cresc"
			if d.TargetLevel != nil {
				s += " to " + quoteIfNeeded(*d.TargetLevel)
			}
			return s
		case events.DynamicsDiminuendo:
			s := "@dim"
			if d.TargetLevel != nil {
				s += " to " + quoteIfNeeded(*d.TargetLevel)
			}
			return s
		default:
			return "@dyn " + quoteIfNeeded(d.DynLevel)
		}
	case events.DirectiveSection:
		return "@section " + quoteIfNeeded(d.Label)
	case events.DirectivePart:
		return "@part " + quoteIfNeeded(d.Label)
	case events.DirectiveTempoCharacter:
		return "@tempo " + quoteIfNeeded(d.TempoText)
	default:
		return ""
	}
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
