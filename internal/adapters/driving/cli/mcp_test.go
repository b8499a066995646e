package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range mcpCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["call"])

	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestServerCommand(t *testing.T) {
	got, err := serverCommand("  ./storysmith --config /tmp/x mcp serve ")
	require.NoError(t, err)
	assert.Equal(t, []string{"./storysmith", "--config", "/tmp/x", "mcp", "serve"}, got)

	got, err = serverCommand("")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, []string{"mcp", "serve"}, got[len(got)-2:])
}

func TestMCPCallCmd_RequiresPrompt(t *testing.T) {
	setupTestServices(t)
	_, err := execute(t, "mcp", "call")
	assert.Error(t, err)
}
