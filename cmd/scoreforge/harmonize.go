package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schollz/scoreforge/internal/events"
	"github.com/schollz/scoreforge/internal/harmonize"
	"github.com/schollz/scoreforge/internal/midiio"
	"github.com/schollz/scoreforge/internal/notation"
)

func newHarmonizeCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "harmonize [file|-]",
		Short: "Assign one chord per harmonic slice of a melody (spec.md C12)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			result, err := notation.ParseDefault(src)
			if err != nil {
				return err
			}

			assignments, err := harmonize.Harmonize(result.Events, harmonize.Options{})
			if err != nil {
				return err
			}

			for _, a := range assignments {
				fmt.Fprintf(cmd.OutOrStdout(), "%s-%s  %s\n", a.Start, a.End, a.Chord.Text)
			}

			if outPath != "" {
				return midiio.Export(chordTones(assignments), outPath, midiio.ExportOptions{})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "write the harmonized chord tones as a Standard MIDI File")
	return cmd
}

// chordTones renders each assignment's realized chord-tone pitches as a
// block spanning the slice, for a quick audible preview.
func chordTones(assignments []harmonize.Assignment) []events.NoteEvent {
	var out []events.NoteEvent
	for _, a := range assignments {
		dur := a.End.Sub(a.Start)
		for _, p := range a.Pitches {
			out = append(out, events.NoteEvent{
				Pitch:    p,
				Offset:   a.Start,
				Duration: dur,
				Velocity: 0.7,
			})
		}
	}
	return out
}
