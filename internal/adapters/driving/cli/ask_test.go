package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmmock "github.com/custodia-labs/storysmith/internal/adapters/driven/llm/mock"
)

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "ask")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_HasFlags(t *testing.T) {
	for _, name := range []string{"top-k", "create-jira", "project", "labels", "json"} {
		assert.NotNil(t, askCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "3", askCmd.Flags().Lookup("top-k").DefValue)
}

func TestAskCmd_EmptyKnowledgeBase(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "ask", "Customers can reset their password")

	require.NoError(t, err)
	assert.Contains(t, out, "Retrieved 0 chunk(s)")
	assert.Contains(t, out, "POINTS ESTIMATE: 5")
	assert.NotContains(t, out, "Jira")
}

func TestAskCmd_UsesIngestedContext(t *testing.T) {
	setupTestServices(t)
	dir := t.TempDir()
	writeWorkbook(t, dir, "owners.xlsx", [][]string{
		{"Process", "Owner"},
		{"Refund approval", "Finance"},
	})

	_, err := execute(t, "ingest", dir)
	require.NoError(t, err)

	out, err := execute(t, "ask", "--json", "Who approves refunds?")
	require.NoError(t, err)

	var got askOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, llmmock.Story, got.Story)
	require.Len(t, got.Retrieved, 1)
	assert.Contains(t, got.Retrieved[0].Document, "<td>Refund approval</td>")
	assert.Equal(t, "owners.xlsx", got.Retrieved[0].Metadata["source"])
}

func TestAskCmd_CreateJiraWithoutConfig(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "ask", "--create-jira", "Login story")

	require.NoError(t, err)
	assert.Contains(t, out, "Jira creation failed: JIRA_BASE_URL is not set")
}

func TestAskCmd_CreateJira(t *testing.T) {
	config := setupTestServices(t)

	var fields map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		fields = body.Fields
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"1","key":"BA-9"}`))
	}))
	defer srv.Close()

	require.NoError(t, config.Set("jira.base_url", srv.URL))
	require.NoError(t, config.Set("jira.email", "ba@example.com"))
	require.NoError(t, config.Set("jira.api_token", "token"))
	require.NoError(t, config.Set("jira.project_key", "BA"))

	out, err := execute(t, "ask", "--create-jira", "--labels", "auth,web", "Login story")

	require.NoError(t, err)
	assert.Contains(t, out, "Jira issue created: BA-9")
	assert.Equal(t, map[string]any{"key": "BA"}, fields["project"])
	assert.Equal(t, []any{"auth", "web"}, fields["labels"])
	assert.Equal(t, "This is a mock summary for a user story about a new login feature.", fields["summary"])
}
