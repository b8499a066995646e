package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/logger"
)

// ToolName is the single tool the server exposes.
const ToolName = "business_analyst_story_generator"

// StoryInput is the input schema for the story tool. ProjectKey and Labels
// accept an explicit null.
type StoryInput struct {
	Prompt     string   `json:"prompt" jsonschema:"the feature or requirement to write a user story for"`
	CreateJira bool     `json:"create_jira,omitempty" jsonschema:"also file the story as a Jira issue"`
	ProjectKey *string  `json:"project_key,omitempty" jsonschema:"Jira project key, defaults to JIRA_PROJECT_KEY"`
	Labels     []string `json:"labels,omitempty" jsonschema:"labels for the Jira issue"`
}

func (in StoryInput) projectKey() string {
	if in.ProjectKey == nil {
		return ""
	}
	return *in.ProjectKey
}

// StoryOutput is the structured result of the story tool.
type StoryOutput struct {
	Story    string `json:"story"`
	IssueKey string `json:"issue_key,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: ToolName,
		Description: "Generate a business analyst user story from a request, grounded in the " +
			"ingested document corpus. Optionally files the story in Jira.",
	}, s.handleStory)
}

// handleStory handles the story tool invocation. Generation and filing
// failures arrive as text in the story; only bad input is a tool error.
func (s *Server) handleStory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StoryInput,
) (*mcp.CallToolResult, StoryOutput, error) {
	logger.Debug("MCP %s: %q (create_jira=%t)", ToolName, input.Prompt, input.CreateJira)

	story, err := s.ports.Story.Generate(ctx, domain.StoryRequest{
		Prompt:      input.Prompt,
		CreateIssue: input.CreateJira,
		ProjectKey:  input.projectKey(),
		Labels:      input.Labels,
	})
	if err != nil {
		return nil, StoryOutput{}, err
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: story.Text}},
	}
	return result, StoryOutput{Story: story.Text, IssueKey: story.IssueKey}, nil
}
