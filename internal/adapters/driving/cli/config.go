package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storysmith/internal/adapters/driven/ai"
)

var configPing bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print every setting with its resolved value. Values come from the
defaults, overlaid by config.toml, overlaid by environment variables such as
OPENAI_API_KEY, JIRA_BASE_URL and JIRA_PROJECT_KEY. Secrets are masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Validate and persist a single setting in config.toml.

Examples:
  storysmith config set llm.provider openai
  storysmith config set embedding.provider ollama
  storysmith config set ingest.patterns "*.pdf,reports/**/*.xlsx"
  storysmith config set jira.project_key BA`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration is usable",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	configValidateCmd.Flags().BoolVar(&configPing, "ping", false, "also contact the embedding and LLM providers")
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	values, err := settingsService.Effective()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cmd.Println(styled(cmd.OutOrStdout(), titleStyle, "Current Settings"))
	cmd.Println()
	for _, k := range keys {
		v := values[k]
		if v == "" {
			v = "(not set)"
		}
		cmd.Printf("  %-28s %s\n", k, v)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	if configPing {
		if err := pingProviders(cmd); err != nil {
			return err
		}
	}
	cmd.Println("Configuration OK")
	return nil
}

func pingProviders(cmd *cobra.Command) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	ctx := commandContext(cmd)

	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return err
	}
	defer embedder.Close() //nolint:errcheck
	cmd.Printf("Embedding: %s reachable\n", embedder.ModelName())

	llm, err := ai.CreateAndValidateLLMService(ctx, &settings.LLM)
	if err != nil {
		return err
	}
	defer llm.Close() //nolint:errcheck
	cmd.Printf("LLM: %s reachable\n", llm.ModelName())
	return nil
}
