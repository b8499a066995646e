package mcp

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Client is a diagnostic MCP client that calls the story tool.
type Client struct {
	client *mcp.Client
}

// NewClient creates a client announcing itself as storysmith-client.
func NewClient() *Client {
	return &Client{
		client: mcp.NewClient(&mcp.Implementation{Name: Name + "-client", Version: Version}, nil),
	}
}

// CallCommand launches a server subprocess speaking stdio and calls the
// story tool once. The subprocess is stopped when the call returns.
func (c *Client) CallCommand(ctx context.Context, command []string, input StoryInput) (string, error) {
	if len(command) == 0 {
		return "", fmt.Errorf("mcp: no server command")
	}
	//nolint:gosec // G204: the command is supplied by the operator on the CLI.
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	return c.Call(ctx, &mcp.CommandTransport{Command: cmd}, input)
}

// Call connects over transport and invokes the story tool, returning its text.
func (c *Client) Call(ctx context.Context, transport mcp.Transport, input StoryInput) (string, error) {
	session, err := c.client.Connect(ctx, transport, nil)
	if err != nil {
		return "", fmt.Errorf("connecting to server: %w", err)
	}
	defer session.Close() //nolint:errcheck

	args := map[string]any{"prompt": input.Prompt}
	if input.CreateJira {
		args["create_jira"] = true
	}
	if key := input.projectKey(); key != "" {
		args["project_key"] = key
	}
	if len(input.Labels) > 0 {
		args["labels"] = input.Labels
	}

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: ToolName, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", ToolName, err)
	}

	var parts []string
	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	if res.IsError {
		return "", fmt.Errorf("%s: %s", ToolName, strings.Join(parts, "\n"))
	}
	if len(parts) == 0 {
		return "", ErrNoTextContent
	}
	return strings.Join(parts, "\n"), nil
}
