// Package midiio imports and exports the engine's event streams as
// Standard MIDI Files, via gitlab.com/gomidi/midi/v2 and its smf
// subpackage -- the same MIDI stack the teacher's internal/midiconnector
// and internal/midiplayer use for live output, applied here to file I/O
// instead of a live device connection.
package midiio

import (
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/schollz/scoreforge/internal/events"
	"github.com/schollz/scoreforge/internal/rational"
	"github.com/schollz/scoreforge/internal/theoryerr"
)

// DefaultTicksPerQuarter is the metric resolution used when exporting
// unless the caller overrides it.
const DefaultTicksPerQuarter = 960

// ExportOptions configures Export.
type ExportOptions struct {
	TicksPerQuarter uint16 // 0 selects DefaultTicksPerQuarter
	BPM             float64 // 0 selects 120
	Channel         uint8
}

func (o *ExportOptions) fillDefaults() {
	if o.TicksPerQuarter == 0 {
		o.TicksPerQuarter = DefaultTicksPerQuarter
	}
	if o.BPM == 0 {
		o.BPM = 120
	}
}

// ticksFor converts a rational offset in whole-note units (1/4 is one
// quarter note) to an absolute tick count at the given resolution.
func ticksFor(t rational.Rational, ticksPerQuarter uint16) int64 {
	scaled := t.Mul(rational.Must(4*int64(ticksPerQuarter), 1))
	return scaled.Num / scaled.Den
}

type onOrOff struct {
	ticks int64
	isOn  bool
	pitch int
	vel   uint8
}

// Export writes evs to a single-track Standard MIDI File at path.
func Export(evs []events.NoteEvent, path string, opts ExportOptions) error {
	opts.fillDefaults()

	var marks []onOrOff
	for _, e := range evs {
		if e.IsRest() {
			continue
		}
		vel := uint8(e.Velocity * 127)
		if e.Velocity > 0 && vel == 0 {
			vel = 1
		}
		marks = append(marks, onOrOff{ticks: ticksFor(e.Offset, opts.TicksPerQuarter), isOn: true, pitch: e.Pitch, vel: vel})
		marks = append(marks, onOrOff{ticks: ticksFor(e.End(), opts.TicksPerQuarter), isOn: false, pitch: e.Pitch, vel: 0})
	}
	sort.SliceStable(marks, func(i, j int) bool {
		if marks[i].ticks != marks[j].ticks {
			return marks[i].ticks < marks[j].ticks
		}
		// Note-offs before note-ons at the same tick avoid spurious
		// overlap when one note's release coincides with another's onset.
		return !marks[i].isOn && marks[j].isOn
	})

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(opts.TicksPerQuarter)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(opts.BPM))

	var lastTick int64
	for _, m := range marks {
		delta := uint32(m.ticks - lastTick)
		lastTick = m.ticks
		if m.isOn {
			tr.Add(delta, midi.NoteOn(opts.Channel, uint8(m.pitch), m.vel))
		} else {
			tr.Add(delta, midi.NoteOff(opts.Channel, uint8(m.pitch)))
		}
	}
	tr.Close(0)
	s.Add(tr)

	return s.WriteFile(path)
}

// Import reads a Standard MIDI File and flattens every track into a
// single event stream in whole-note units (1/4 is one quarter note),
// regardless of the file's native tick resolution.
func Import(path string) ([]events.NoteEvent, error) {
	s, err := smf.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, &theoryerr.InvalidArgument{Field: "TimeFormat", Reason: "only metric-tick SMF files are supported"}
	}
	ticksPerQuarter := int64(mt)
	if ticksPerQuarter <= 0 {
		return nil, &theoryerr.InvalidArgument{Field: "TimeFormat", Reason: "ticks per quarter note must be positive"}
	}
	ticksPerWhole := 4 * ticksPerQuarter

	type open struct {
		offset rational.Rational
		vel    uint8
	}

	var out []events.NoteEvent
	for _, tr := range s.Tracks {
		var tick int64
		pending := map[uint8]open{}
		for _, ev := range tr {
			tick += int64(ev.Delta)
			var ch, key, vel uint8
			if ev.Message.GetNoteOn(&ch, &key, &vel) {
				if vel > 0 {
					pending[key] = open{offset: rational.Must(tick, ticksPerWhole), vel: vel}
				} else if st, found := pending[key]; found {
					// A note-on with velocity 0 is a running-status note-off.
					delete(pending, key)
					end := rational.Must(tick, ticksPerWhole)
					out = append(out, events.NoteEvent{
						Pitch:    int(key),
						Offset:   st.offset,
						Duration: end.Sub(st.offset),
						Velocity: float32(st.vel) / 127,
					})
				}
				continue
			}
			if ev.Message.GetNoteOff(&ch, &key, &vel) {
				st, found := pending[key]
				if !found {
					continue
				}
				delete(pending, key)
				end := rational.Must(tick, ticksPerWhole)
				dur := end.Sub(st.offset)
				out = append(out, events.NoteEvent{
					Pitch:    int(key),
					Offset:   st.offset,
					Duration: dur,
					Velocity: float32(st.vel) / 127,
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset.Less(out[j].Offset) })
	return out, nil
}
