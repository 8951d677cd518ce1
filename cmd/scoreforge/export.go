package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schollz/scoreforge/internal/midiio"
	"github.com/schollz/scoreforge/internal/notation"
)

func newExportCmd() *cobra.Command {
	var bpm float64

	cmd := &cobra.Command{
		Use:   "export <notation-file|-> <midi-out>",
		Short: "Parse notation text and write it as a Standard MIDI File",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			result, err := notation.ParseDefault(src)
			if err != nil {
				return err
			}
			if err := midiio.Export(result.Events, args[1], midiio.ExportOptions{BPM: bpm}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d events to %s\n", len(result.Events), args[1])
			return nil
		},
	}

	cmd.Flags().Float64Var(&bpm, "bpm", 120, "tempo to embed in the exported file")
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <midi-file>",
		Short: "Read a Standard MIDI File and print it as notation text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			evs, err := midiio.Import(args[0])
			if err != nil {
				return err
			}
			result := &notation.ParseResult{Events: evs}
			fmt.Fprintln(cmd.OutOrStdout(), notation.Format(result, notation.DefaultFormatOptions()))
			return nil
		},
	}
	return cmd
}
