package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schollz/scoreforge/internal/figuredbass"
	"github.com/schollz/scoreforge/internal/pitch"
	"github.com/schollz/scoreforge/internal/rational"
)

func newFiguredBassCmd() *cobra.Command {
	var keyRoot int
	var keyMinor bool
	var maxLeap int

	cmd := &cobra.Command{
		Use:   "figuredbass <midi:figures>...",
		Short: `Realize a figured-bass progression, e.g. "48:" "52:6" "55:6,4" (spec.md C13)`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := keytheoryKey(keyRoot, keyMinor)
			steps := make([]figuredbass.Step, len(args))
			for i, tok := range args {
				step, err := parseStep(tok)
				if err != nil {
					return fmt.Errorf("step %d (%s): %w", i+1, tok, err)
				}
				steps[i] = step
			}

			chords, err := figuredbass.RealizeProgression(steps, figuredbass.Options{Key: &key}, maxLeap)
			if err != nil {
				return err
			}

			for i, evs := range chords {
				names := make([]string, len(evs))
				for j, e := range evs {
					names[j] = pitch.NewClass(mod12(e.Pitch)).String()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", args[i], strings.Join(names, " "))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&keyRoot, "key", 0, "governing key's tonic pitch class (0=C)")
	cmd.Flags().BoolVar(&keyMinor, "minor", false, "treat the key as natural minor instead of major")
	cmd.Flags().IntVar(&maxLeap, "max-leap", 12, "maximum semitone leap allowed when re-voicing later steps")
	return cmd
}

func mod12(p int) int {
	m := p % 12
	if m < 0 {
		m += 12
	}
	return m
}

// parseStep parses "midi:f1,f2,..." (figures optional) into a Step, one
// quarter note long starting at beat index 0; callers chain steps purely
// by progression order, not absolute timing.
func parseStep(tok string) (figuredbass.Step, error) {
	parts := strings.SplitN(tok, ":", 2)
	bass, err := strconv.Atoi(parts[0])
	if err != nil {
		return figuredbass.Step{}, fmt.Errorf("invalid bass pitch: %w", err)
	}

	var figures []int
	if len(parts) == 2 && parts[1] != "" {
		for _, f := range strings.Split(parts[1], ",") {
			n, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return figuredbass.Step{}, fmt.Errorf("invalid figure %q: %w", f, err)
			}
			figures = append(figures, n)
		}
	}

	return figuredbass.Step{Bass: bass, Figures: figures, Offset: rational.Zero, Duration: rational.Must(1, 4)}, nil
}
