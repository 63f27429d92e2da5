package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/doc-explainer/internal/core/async"
	"github.com/joseph-ayodele/doc-explainer/internal/ingest"
)

// ExplanationSuffix is appended to a watched file's name for its output.
const ExplanationSuffix = ".explanation.txt"

func (c *cli) watchCmd() *cobra.Command {
	var (
		short    bool
		existing bool
		workers  int
		debounce time.Duration
		outDir   string
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Explain documents as they appear in the given directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := c.app.Logger

			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       args,
				InitialScan: existing,
				Debounce:    debounce,
				Logger:      logger,
			})
			if err != nil {
				return err
			}

			q := async.NewQueue(ctx, func(ctx context.Context, job async.Job) error {
				res, _, err := c.app.Processor.ExplainFile(ctx, job.Path, short, nil)
				if err != nil {
					return err
				}
				dst := outputPath(job.Path, outDir)
				if err := os.WriteFile(dst, []byte(res.Text), 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), job.Path, "->", dst)
				return nil
			}, logger, async.WithWorkers(workers), async.WithProcessTimeout(c.app.Config.OCR.Timeout+c.app.Config.LLM.Timeout*4))

			logger.Info("watch.started", "roots", args, "workers", workers)
			for {
				select {
				case p, ok := <-events:
					if !ok {
						shutdown(q)
						return ctx.Err()
					}
					q.Enqueue(ctx, async.Job{Path: p})
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					logger.Warn("watch.error", "error", err)
				case <-ctx.Done():
					shutdown(q)
					return nil
				}
			}
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "shorter explanations")
	cmd.Flags().BoolVar(&existing, "existing", false, "also explain files already present")
	cmd.Flags().IntVar(&workers, "workers", 2, "documents explained in parallel")
	cmd.Flags().DurationVar(&debounce, "debounce", ingest.DefaultDebounce, "wait for writes to settle")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for explanations (default: next to each file)")
	return cmd
}

func outputPath(src, outDir string) string {
	name := filepath.Base(src) + ExplanationSuffix
	if outDir == "" {
		return filepath.Join(filepath.Dir(src), name)
	}
	return filepath.Join(outDir, name)
}

func shutdown(q *async.Queue) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	q.Shutdown(ctx)
}
