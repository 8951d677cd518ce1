package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schollz/scoreforge/internal/chordsymbol"
	"github.com/schollz/scoreforge/internal/chordtable"
	"github.com/schollz/scoreforge/internal/voicing"
)

func newVoiceCmd() *cobra.Command {
	var keyRoot int
	var mode string
	var smoothness float64
	var maxTransitionCost float64

	cmd := &cobra.Command{
		Use:   "voice <chord-symbol>...",
		Short: "Solve an SATB voice leading for a chord-symbol progression (spec.md C11)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			progression := make([]chordtable.Mask, len(args))
			for i, sym := range args {
				pitches, err := chordsymbol.ParsePitches(sym)
				if err != nil {
					return fmt.Errorf("chord %d (%s): %w", i+1, sym, err)
				}
				progression[i] = chordtable.GetMask(pitches)
			}

			solved, err := voicing.Solve(progression, keyRoot, parseMode(mode), smoothness, maxTransitionCost)
			if err != nil {
				return err
			}

			for i, v := range solved {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  B=%-3d T=%-3d A=%-3d S=%-3d\n", args[i], v[0], v[1], v[2], v[3])
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&keyRoot, "key", 0, "governing key's tonic pitch class (0=C)")
	cmd.Flags().StringVar(&mode, "mode", "default", "rule strictness: strict, default, relaxed")
	cmd.Flags().Float64Var(&smoothness, "smoothness", 1.0, "weight on melodic smoothness versus rule penalties")
	cmd.Flags().Float64Var(&maxTransitionCost, "max-transition-cost", 0, "cap beyond which a transition is skipped outright (0: mode's default)")
	return cmd
}

func parseMode(s string) voicing.Mode {
	switch s {
	case "strict":
		return voicing.Strict
	case "relaxed":
		return voicing.Relaxed
	default:
		return voicing.Default
	}
}
