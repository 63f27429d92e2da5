package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/doc-explainer/internal/common"
)

func (c *cli) askCmd() *cobra.Command {
	var pasted string
	cmd := &cobra.Command{
		Use:   "ask [file] <question>",
		Short: "Ask a question about a document",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := args[len(args)-1]
			if strings.TrimSpace(question) == "" {
				return common.NewAppError(common.CodeInvalidInput, "question is required", common.ErrInvalidInput)
			}
			sess, err := c.ingest(cmd.Context(), args[:len(args)-1], pasted, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			answer, _, err := c.app.Processor.Ask(cmd.Context(), sess, question)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return err
		},
	}
	cmd.Flags().StringVar(&pasted, "text", "", "document text when no file is given")
	return cmd
}
