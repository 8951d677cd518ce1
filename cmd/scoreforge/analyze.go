package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schollz/scoreforge/internal/chordanalyzer"
	"github.com/schollz/scoreforge/internal/chordtable"
	"github.com/schollz/scoreforge/internal/keytheory"
	"github.com/schollz/scoreforge/internal/notation"
	"github.com/schollz/scoreforge/internal/pitch"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Segment notation text into chords and identify the governing key",
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

			var allPitches []int
			for _, e := range result.Events {
				if !e.IsRest() {
					allPitches = append(allPitches, e.Pitch)
				}
			}
			key := keytheory.IdentifyKey(chordtable.GetMask(allPitches))
			fmt.Fprintf(cmd.OutOrStdout(), "key: %s %s (confidence %.2f)\n",
				pitch.NewClass(key.Key.Root), modeName(key.Key.IsMajor), key.Confidence)

			for _, seg := range chordanalyzer.Analyze(result.Events) {
				numeral := keytheory.Analyze(seg.Pitches, key.Key)
				fmt.Fprintf(cmd.OutOrStdout(), "%s +%s  %s%s  (%s)  [%s]\n",
					seg.Offset, seg.Duration,
					pitch.NewClass(seg.Chord.RootPC), seg.Chord.Quality,
					numeral.Text, lowestNoteName(seg.Pitches))
			}
			return nil
		},
	}
	return cmd
}

func modeName(isMajor bool) string {
	if isMajor {
		return "major"
	}
	return "minor"
}

// lowestNoteName renders the segment's lowest sounding pitch in the
// teacher's fixed-width tracker note-name format, as a bass-note label
// alongside the roman-numeral analysis.
func lowestNoteName(pitches []int) string {
	if len(pitches) == 0 {
		return pitch.MidiToNoteName(-1)
	}
	lowest := pitches[0]
	for _, p := range pitches[1:] {
		if p < lowest {
			lowest = p
		}
	}
	return pitch.MidiToNoteName(lowest)
}
