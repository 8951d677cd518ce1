package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schollz/scoreforge/internal/notation"
)

func newParseCmd() *cobra.Command {
	var validate bool
	var letters bool

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse notation text and re-emit its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			result, err := notation.Parse(src, notation.ParseOptions{Validate: validate})
			if err != nil {
				return err
			}
			out := notation.Format(result, notation.FormatOptions{PreferLetters: letters, GroupChords: true})
			fmt.Fprintln(cmd.OutOrStdout(), out)
			fmt.Fprintf(cmd.ErrOrStderr(), "%d events, %d directives\n", len(result.Events), len(result.Directives))
			return nil
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "check measure lengths against the time signature")
	cmd.Flags().BoolVar(&letters, "letters", false, "emit :q-style letter durations instead of /4")
	return cmd
}
