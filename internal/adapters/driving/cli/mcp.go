package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storysmith/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server exposing the
business_analyst_story_generator tool.

By default, the server communicates over stdio using JSON-RPC. Logs go to
stderr so they never corrupt the protocol stream.

Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  storysmith mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  storysmith mcp serve --port 8080

Desktop client configuration:
  {
    "mcpServers": {
      "storysmith": {
        "command": "/path/to/storysmith",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

var (
	mcpServerCmd  string
	mcpCreateJira bool
	mcpProject    string
	mcpLabels     []string
)

var mcpCallCmd = &cobra.Command{
	Use:   "call [prompt]",
	Short: "Call the story tool on an MCP server",
	Long: `Launch an MCP server as a subprocess over stdio, call
business_analyst_story_generator once and print the result. Useful for
checking a server end to end.

By default the server is this binary running 'mcp serve'.`,
	Args: cobra.ExactArgs(1),
	RunE: runMCPCall,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCallCmd.Flags().StringVar(&mcpServerCmd, "server-cmd", "", "server command line (default: this binary with 'mcp serve')")
	mcpCallCmd.Flags().BoolVar(&mcpCreateJira, "create-jira", false, "ask the server to file the story in Jira")
	mcpCallCmd.Flags().StringVar(&mcpProject, "project", "", "Jira project key")
	mcpCallCmd.Flags().StringSliceVar(&mcpLabels, "labels", nil, "comma-separated Jira labels")
	mcpCmd.AddCommand(mcpServeCmd)
	mcpCmd.AddCommand(mcpCallCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ctx := commandContext(cmd)
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	server, err := mcp.NewServer(&mcp.Ports{
		Story:     a.story,
		Retrieval: a.retrieval,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

func runMCPCall(cmd *cobra.Command, args []string) error {
	command, err := serverCommand(mcpServerCmd)
	if err != nil {
		return err
	}

	input := mcp.StoryInput{
		Prompt:     args[0],
		CreateJira: mcpCreateJira,
		Labels:     mcpLabels,
	}
	if mcpProject != "" {
		input.ProjectKey = &mcpProject
	}

	text, err := mcp.NewClient().CallCommand(commandContext(cmd), command, input)
	if err != nil {
		return err
	}
	cmd.Println(text)
	return nil
}

// serverCommand splits line on whitespace, defaulting to this binary.
func serverCommand(line string) ([]string, error) {
	if fields := strings.Fields(line); len(fields) > 0 {
		return fields, nil
	}
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating executable: %w", err)
	}
	command := []string{self}
	if configDir != "" {
		command = append(command, "--config", configDir)
	}
	return append(command, "mcp", "serve"), nil
}
