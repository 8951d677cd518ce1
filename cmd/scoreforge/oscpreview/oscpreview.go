// Package oscpreview dumps a parsed event stream as a sequence of OSC
// "/note" messages -- one message per event, each carrying its own
// pitch/offset/duration/velocity, sent back to back with no scheduling or
// sleeping. This is a one-shot exporter, not a realtime player: spec.md's
// Non-goals exclude tempo-accurate playback scheduling and real-time
// streaming. The client/message/Send call shape is grounded on the
// teacher's internal/model.SendOSCInstrumentMessage.
package oscpreview

import (
	"sort"

	"github.com/hypebeast/go-osc/osc"

	"github.com/schollz/scoreforge/internal/events"
)

// Options configures the OSC destination.
type Options struct {
	Host string // default "localhost"
	Port int    // default 57120, matching the teacher's SuperCollider OSC port
}

func (o *Options) fillDefaults() {
	if o.Host == "" {
		o.Host = "localhost"
	}
	if o.Port == 0 {
		o.Port = 57120
	}
}

// Dump sends one "/note" OSC message per sounding event in evs, in offset
// order, with no delay between messages.
func Dump(evs []events.NoteEvent, opts Options) error {
	opts.fillDefaults()
	client := osc.NewClient(opts.Host, opts.Port)

	sorted := append([]events.NoteEvent(nil), evs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset.Less(sorted[j].Offset) })

	for _, e := range sorted {
		if e.IsRest() {
			continue
		}
		msg := osc.NewMessage("/note")
		msg.Append(int32(e.Pitch))
		msg.Append(float32(e.Offset.ToDouble()))
		msg.Append(float32(e.Duration.ToDouble()))
		msg.Append(e.Velocity)
		if err := client.Send(msg); err != nil {
			return err
		}
	}
	return nil
}
