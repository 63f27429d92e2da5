// Command docexplain extracts, chunks and explains documents from the shell.
// Model calls go through the explain proxy at PROXY_URL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/doc-explainer/internal/app"
	"github.com/joseph-ayodele/doc-explainer/internal/common"
)

type cli struct {
	logLevel string
	app      *app.App
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", common.PublicMessage(err))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "docexplain",
		Short:         "Explain legal documents in plain English",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg := common.LoadConfig()
			if c.logLevel != "" {
				cfg.Log.Level = c.logLevel
			}
			logger := common.NewLogger(cfg.Log)
			c.app = app.Build(*cfg, logger, nil)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug|info|warn|error (overrides LOG_LEVEL)")

	root.AddCommand(
		c.extractCmd(),
		c.chunkCmd(),
		c.explainCmd(),
		c.askCmd(),
		c.watchCmd(),
	)
	return root
}
