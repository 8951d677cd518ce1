package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/schollz/scoreforge/cmd/scoreforge/tui"
)

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view [file|-]",
		Short: "Interactively browse a notation file's chord analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(tui.New(src), tea.WithAltScreen()).Run()
			return err
		},
	}
}
