package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storysmith/internal/core/domain"
)

var (
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Show the chunks retrieved for a query",
	Long: `Embeds the query with the configured model and prints the nearest chunks
in the collection, closest first. No language model is called.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Describe the vector collection",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", domain.DefaultTopK, "number of chunks to return")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statsCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	result, err := a.retrieval.Retrieve(ctx, args[0], queryTopK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(toChunkOutput(result.Records), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if result.IsEmpty() {
		cmd.Println("No results found.")
		return nil
	}

	out := cmd.OutOrStdout()
	cmd.Println("Results:")
	cmd.Println()
	for i, r := range result.Records {
		cmd.Println(styled(out, titleStyle, fmt.Sprintf("  [%d] %s (%.3f)", i+1, r.ID, r.Distance)))
		if src := r.Metadata[domain.MetaSource]; src != "" {
			cmd.Printf("      Source: %s %s\n", src, location(r.Metadata))
		}
		cmd.Printf("      %s\n", preview(r.Document, 200))
		cmd.Println()
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	coll, err := a.retrieval.Stats(ctx)
	if errors.Is(err, domain.ErrCollectionNotFound) {
		cmd.Printf("Collection %s has not been created yet. Run 'storysmith ingest' first.\n", a.settings.Store.Collection)
		return nil
	}
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	cmd.Println(styled(cmd.OutOrStdout(), titleStyle, "Collection"))
	cmd.Printf("  Name:       %s\n", coll.Name)
	cmd.Printf("  Backend:    %s\n", a.settings.Store.Backend)
	cmd.Printf("  Model:      %s\n", coll.Model)
	cmd.Printf("  Dimensions: %d\n", coll.Dimensions)
	cmd.Printf("  Records:    %d\n", coll.Count)
	return nil
}

func location(meta map[string]string) string {
	switch {
	case meta[domain.MetaSheet] != "":
		return "(sheet " + meta[domain.MetaSheet] + ")"
	case meta[domain.MetaPage] != "":
		return "(page " + meta[domain.MetaPage] + ")"
	default:
		return ""
	}
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
