// Package cmd provides the Cobra CLI commands for folio.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/folio/internal/build"
	"github.com/bnema/folio/internal/cli"
)

var (
	app       *cli.App
	buildInfo build.Info
	rootCmd   = &cobra.Command{
		Use:   "folio",
		Short: "A keyboard-driven paginated-document viewer",
		Long: `Folio - a fast paginated-document viewer for the terminal.

Documents render one page at a time through MuPDF, with asynchronous
re-rendering on zoom, rotation and resize, full-document search with
highlight overlays, per-document view-state persistence, and tabs for
multiple open documents.

Use 'folio view <file>' to open the interactive viewer, or explore the
subcommands for one-shot operations like text search and page export.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion", "version":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}
