package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storysmith/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/storysmith/internal/core/domain"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func newSettings(store *memory.ConfigStore, vars map[string]string) *SettingsService {
	return NewSettingsService(store, "/data").WithEnv(env(vars))
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	settings, err := newSettings(memory.NewConfigStore(), nil).Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, 1536, settings.Embedding.Dimensions)
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, "mock-ba", settings.LLM.Model)
	assert.Equal(t, defaults.Store.Backend, settings.Store.Backend)
	assert.Equal(t, "/data", settings.Store.DataDir)
	assert.Equal(t, domain.DefaultCollection, settings.Store.Collection)
	assert.Equal(t, defaults.Ingest, settings.Ingest)
	assert.Equal(t, "Story", settings.Tracker.IssueType)
	assert.Equal(t, 30*time.Second, settings.Tracker.Timeout)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "ollama")
	_ = store.Set("llm.provider", "anthropic")
	_ = store.Set("llm.api_key", "sk-ant-config")
	_ = store.Set("llm.temperature", 0.7)
	_ = store.Set("store.backend", "bolt")
	_ = store.Set("ingest.patterns", []string{"**/*.pdf"})
	_ = store.Set("chunker.chunk_size", int64(500))
	_ = store.Set("jira.timeout_seconds", int64(5))

	settings, err := newSettings(store, nil).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, 768, settings.Embedding.Dimensions)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
	assert.Equal(t, "sk-ant-config", settings.LLM.APIKey)
	assert.InDelta(t, 0.7, settings.LLM.Temperature, 1e-9)
	assert.Equal(t, domain.StoreBolt, settings.Store.Backend)
	assert.Equal(t, []string{"**/*.pdf"}, settings.Ingest.Patterns)
	assert.Equal(t, 500, settings.Ingest.ChunkSize)
	assert.Equal(t, 5*time.Second, settings.Tracker.Timeout)
}

func TestSettingsService_Get_EnvironmentOverrides(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "ollama")
	_ = store.Set("jira.base_url", "https://config.example")

	settings, err := newSettings(store, map[string]string{
		EnvEmbeddingProvider: "openai",
		EnvOpenAIKey:         "sk-env",
		EnvJiraBaseURL:       "https://acme.atlassian.net/",
		EnvJiraEmail:         "ba@acme.test",
		EnvJiraAPIToken:      "token",
		EnvJiraProjectKey:    "BA",
		EnvDataDir:           "/var/lib/storysmith",
	}).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "sk-env", settings.Embedding.APIKey)
	assert.Equal(t, "https://acme.atlassian.net", settings.Tracker.BaseURL)
	assert.Equal(t, "ba@acme.test", settings.Tracker.Email)
	assert.Equal(t, "token", settings.Tracker.APIToken)
	assert.Equal(t, "BA", settings.Tracker.ProjectKey)
	assert.Equal(t, "/var/lib/storysmith", settings.Store.DataDir)
}

func TestSettingsService_Get_ExplicitDimensions(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.model", "custom-model")
	_ = store.Set("embedding.dimensions", int64(256))

	settings, err := newSettings(store, nil).Get()
	require.NoError(t, err)
	assert.Equal(t, "custom-model", settings.Embedding.Model)
	assert.Equal(t, 256, settings.Embedding.Dimensions)
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	svc := newSettings(store, nil)

	require.NoError(t, svc.Set("llm.provider", "openai"))
	require.NoError(t, svc.Set("ingest.workers", "4"))
	require.NoError(t, svc.Set("llm.temperature", "0.3"))
	require.NoError(t, svc.Set("ingest.patterns", "*.pdf, docs/**/*.xlsx"))
	require.NoError(t, svc.Set("jira.project_key", "OPS"))

	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, 4, store.GetInt("ingest.workers"))
	assert.Equal(t, []string{"*.pdf", "docs/**/*.xlsx"}, store.GetStringSlice("ingest.patterns"))
	assert.Equal(t, "OPS", store.GetString("jira.project_key"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.InDelta(t, 0.3, settings.LLM.Temperature, 1e-9)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	svc := newSettings(memory.NewConfigStore(), nil)

	tests := []struct {
		key, value string
	}{
		{"llm.provider", "gemini"},
		{"store.backend", "postgres"},
		{"scraper.pdf_strategy", "magic"},
		{"ingest.workers", "many"},
		{"ingest.workers", "-1"},
		{"llm.temperature", "3"},
		{"no.such.key", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			assert.ErrorIs(t, svc.Set(tt.key, tt.value), domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Effective_MasksSecrets(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("llm.provider", "openai")
	_ = store.Set("llm.api_key", "sk-1234567890abcdef")

	values, err := newSettings(store, map[string]string{EnvJiraAPIToken: "short"}).Effective()
	require.NoError(t, err)

	assert.Equal(t, "sk-1****cdef", values["llm.api_key"])
	assert.Equal(t, "****", values["jira.api_token"])
	assert.Equal(t, "", values["embedding.api_key"])
	assert.Equal(t, "openai", values["llm.provider"])
	assert.Equal(t, "*.pdf,*.xlsx", values["ingest.patterns"])
	assert.Equal(t, "30", values["jira.timeout_seconds"])
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, newSettings(memory.NewConfigStore(), nil).Validate())
	})

	t.Run("openai llm without key", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("llm.provider", "openai")
		assert.ErrorIs(t, newSettings(store, nil).Validate(), domain.ErrLLMUnavailable)
	})

	t.Run("anthropic cannot embed", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("embedding.provider", "anthropic")
		assert.ErrorIs(t, newSettings(store, map[string]string{EnvAnthropicKey: "k"}).Validate(),
			domain.ErrEmbeddingUnavailable)
	})

	t.Run("unknown backend", func(t *testing.T) {
		store := memory.NewConfigStore()
		_ = store.Set("store.backend", "postgres")
		assert.ErrorIs(t, newSettings(store, nil).Validate(), domain.ErrInvalidInput)
	})
}
