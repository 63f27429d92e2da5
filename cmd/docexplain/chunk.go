package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/doc-explainer/internal/core/chunk"
)

func (c *cli) chunkCmd() *cobra.Command {
	var maxChars int
	cmd := &cobra.Command{
		Use:   "chunk [file|-]",
		Short: "Split plain text into explanation-sized chunks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			parts := chunk.Split(string(data), maxChars)
			out := cmd.OutOrStdout()
			for i, p := range parts {
				fmt.Fprintf(out, "----- chunk %d/%d (%d chars) -----\n%s\n", i+1, len(parts), len([]rune(p)), p)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxChars, "max", chunk.DefaultMaxChars, "maximum characters per chunk")
	return cmd
}
