package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storysmith/internal/core/domain"
)

var (
	askTopK       int
	askCreateJira bool
	askProject    string
	askLabels     []string
	askJSON       bool
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Generate a user story for a request",
	Long: `Retrieve the most relevant chunks from the knowledge base, compose them
with the request and ask the language model for a user story.

With --create-jira the story is also filed as a Jira issue; the outcome is
appended to the story text.

Examples:
  storysmith ask "Customers can reset their password by email"
  storysmith ask "Refund approval" --create-jira --project BA --labels finance`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", domain.DefaultTopK, "number of context chunks to retrieve")
	askCmd.Flags().BoolVar(&askCreateJira, "create-jira", false, "file the story as a Jira issue")
	askCmd.Flags().StringVar(&askProject, "project", "", "Jira project key (default JIRA_PROJECT_KEY)")
	askCmd.Flags().StringSliceVar(&askLabels, "labels", nil, "comma-separated Jira labels")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the story as JSON")
	rootCmd.AddCommand(askCmd)
}

type askOutput struct {
	Prompt    string        `json:"prompt"`
	Story     string        `json:"story"`
	IssueKey  string        `json:"issue_key,omitempty"`
	IssueErr  string        `json:"issue_error,omitempty"`
	Retrieved []chunkOutput `json:"retrieved"`
}

type chunkOutput struct {
	ID       string            `json:"id"`
	Distance float64           `json:"distance"`
	Document string            `json:"document"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	if !askJSON {
		cmd.Println(styled(cmd.OutOrStdout(), mutedStyle, "Retrieving context and generating story..."))
	}

	story, err := a.story.Generate(ctx, domain.StoryRequest{
		Prompt:      args[0],
		TopK:        askTopK,
		CreateIssue: askCreateJira,
		ProjectKey:  askProject,
		Labels:      askLabels,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, args[0], story)
	}

	out := cmd.OutOrStdout()
	cmd.Printf("Retrieved %d chunk(s) from the knowledge base.\n", len(story.Retrieved.Records))
	for _, r := range story.Retrieved.Records {
		cmd.Println(styled(out, mutedStyle, fmt.Sprintf("  %s (%.3f)", r.ID, r.Distance)))
	}
	cmd.Println()
	cmd.Println(styled(out, titleStyle, "Story"))
	cmd.Println(styled(out, titleStyle, "====="))
	cmd.Println(strings.TrimSpace(story.Text))
	return nil
}

func outputAskJSON(cmd *cobra.Command, prompt string, story *domain.Story) error {
	out := askOutput{
		Prompt:    prompt,
		Story:     story.Text,
		IssueKey:  story.IssueKey,
		Retrieved: toChunkOutput(story.Retrieved.Records),
	}
	if story.IssueErr != nil {
		out.IssueErr = story.IssueErr.Error()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal story: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func toChunkOutput(records []domain.RetrievedRecord) []chunkOutput {
	chunks := make([]chunkOutput, len(records))
	for i, r := range records {
		chunks[i] = chunkOutput{ID: r.ID, Distance: r.Distance, Document: r.Document, Metadata: r.Metadata}
	}
	return chunks
}
