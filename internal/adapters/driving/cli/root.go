// Package cli implements the storysmith command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storysmith/internal/adapters/driven/config/file"
	"github.com/custodia-labs/storysmith/internal/core/ports/driving"
	"github.com/custodia-labs/storysmith/internal/core/services"
	"github.com/custodia-labs/storysmith/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var (
	configDir string
	verbose   bool
)

// settingsService is resolved once per process in PersistentPreRunE.
// Tests assign it directly.
var settingsService driving.SettingsService

var rootCmd = &cobra.Command{
	Use:   "storysmith",
	Short: "Turn business documents into user stories",
	Long: `storysmith ingests PDF and Excel documents into a local vector store and
uses the retrieved context to write business analyst user stories with a
language model, optionally filing them in Jira.

Example usage:
  storysmith ingest ./data                 # Build the knowledge base
  storysmith ask "Password reset by email" # Generate a story
  storysmith serve                         # HTTP API on 127.0.0.1:8000
  storysmith mcp serve                     # Tool server over stdio`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if settingsService != nil {
			return nil
		}
		dir, err := homeDir()
		if err != nil {
			return err
		}
		store, err := file.NewConfigStore(dir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		settingsService = services.NewSettingsService(store, filepath.Join(dir, "data"))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "",
		"config directory (default $STORYSMITH_HOME or ~/.storysmith)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress and debug logs to stderr")
}

// Execute runs the root command with ctx and exits non-zero on failure.
// Command output goes to stdout; logs and errors stay on stderr.
func Execute(ctx context.Context) {
	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func homeDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	dir, err := file.DefaultDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return dir, nil
}

// commandContext returns the command's context, or Background when run
// outside ExecuteContext.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
