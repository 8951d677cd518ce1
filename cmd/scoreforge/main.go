// Command scoreforge is the engine's command-line front end: notation
// parsing and formatting, chord and key analysis, harmonization,
// voice-leading, figured-bass realization, and Standard MIDI File export,
// wired as cobra subcommands the way a multi-mode tool is assembled.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "scoreforge",
		Short: "Symbolic music-theory engine: parse, analyze, harmonize, voice, realize, export",
	}

	root.AddCommand(
		newParseCmd(),
		newAnalyzeCmd(),
		newHarmonizeCmd(),
		newVoiceCmd(),
		newFiguredBassCmd(),
		newExportCmd(),
		newImportCmd(),
		newViewCmd(),
		newPreviewCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "scoreforge:", err)
		os.Exit(1)
	}
}
