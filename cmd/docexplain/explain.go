package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/render"
	"github.com/joseph-ayodele/doc-explainer/internal/session"
)

// DefaultOutput is the file the explanation is saved to.
const DefaultOutput = "explanation.txt"

func (c *cli) explainCmd() *cobra.Command {
	var (
		short  bool
		pasted string
		out    string
		html   bool
	)
	cmd := &cobra.Command{
		Use:   "explain [file]",
		Short: "Explain a document (or pasted text) and save " + DefaultOutput,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.ingest(ctx, args, pasted, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			stop := printProgress(sess.Tracker(), cmd.ErrOrStderr())
			res, err := c.app.Processor.Explain(ctx, sess, short)
			stop()
			if err != nil {
				return err
			}

			text := res.Text
			if html {
				if text, err = render.Friendly(res.Text); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			if out == "" {
				return nil
			}
			if err := os.WriteFile(out, []byte(res.Text), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "saved", out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "shorter explanation")
	cmd.Flags().StringVar(&pasted, "text", "", "text to explain when no file is given, or when the file cannot be read")
	cmd.Flags().StringVarP(&out, "out", "o", DefaultOutput, "where to save the explanation; empty to skip")
	cmd.Flags().BoolVar(&html, "html", false, "print the friendly HTML rendering instead of plain text")
	return cmd
}

// ingest loads the optional file argument and pasted text into a fresh session.
func (c *cli) ingest(ctx context.Context, args []string, pasted string, progressOut io.Writer) (*session.Session, error) {
	var (
		name string
		data []byte
	)
	if len(args) == 1 {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return nil, common.NewAppError(common.CodeInvalidInput, fmt.Sprintf("Could not open %s.", args[0]), err)
		}
		name, data = filepath.Base(args[0]), b
	}
	sess := session.New(uuid.New().String())
	stop := printProgress(sess.Tracker(), progressOut)
	defer stop()
	res, err := c.app.Processor.Ingest(ctx, sess, name, data, pasted)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(progressOut, "warning:", w)
	}
	return sess, nil
}
