package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/doc-explainer/constants"
	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/core/extract"
	"github.com/joseph-ayodele/doc-explainer/internal/core/progress"
)

func (c *cli) extractCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the text extracted from a PDF, DOCX or image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.extractFile(cmd.Context(), args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"kind":      res.Kind.String(),
					"method":    res.Method,
					"pages":     res.Pages,
					"ocr_pages": res.OCRPages,
					"warnings":  res.Warnings,
					"text":      res.Text,
				})
			}
			for _, w := range res.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
			_, err = fmt.Fprintln(out, res.Text)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func (c *cli) extractFile(ctx context.Context, path string, progressOut io.Writer) (extract.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.Result{}, common.NewAppError(common.CodeInvalidInput, fmt.Sprintf("Could not open %s.", path), err)
	}
	doc := extract.NewDocument(filepath.Base(path), data)
	if doc.Kind == constants.Unknown {
		return extract.Result{}, common.NewAppError(common.CodeInvalidInput,
			fmt.Sprintf("Unsupported file type: %s", doc.Name), extract.ErrUnsupportedKind)
	}
	tracker := progress.New()
	stop := printProgress(tracker, progressOut)
	defer stop()

	tracker.Report(8, constants.StatusPreparing)
	res, err := c.app.Extractor.Extract(ctx, doc, tracker)
	if err != nil {
		return res, err
	}
	if strings.TrimSpace(res.Text) == "" {
		return res, common.NewAppError(common.CodeEmptyExtraction, constants.StatusUnreadable, common.ErrEmptyExtraction)
	}
	tracker.Report(90, constants.StatusReady)
	return res, nil
}

// printProgress writes each status change as a line until the returned func is called.
func printProgress(t *progress.Tracker, w io.Writer) func() {
	ch, cancel := t.Subscribe(8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		last := ""
		for st := range ch {
			line := fmt.Sprintf("[%3d%%] %s", st.Percent, st.Message)
			if st.Message == "" || line == last {
				continue
			}
			last = line
			fmt.Fprintln(w, line)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
