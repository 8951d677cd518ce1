package main

import (
	"github.com/spf13/cobra"

	"github.com/schollz/scoreforge/cmd/scoreforge/oscpreview"
	"github.com/schollz/scoreforge/internal/notation"
)

func newPreviewCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "preview [file|-]",
		Short: "Dump a notation file as one OSC /note message per event",
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
			return oscpreview.Dump(result.Events, oscpreview.Options{Host: host, Port: port})
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "OSC destination host")
	cmd.Flags().IntVar(&port, "port", 57120, "OSC destination port")
	return cmd
}
