package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/storysmith/internal/core/domain"
	"github.com/custodia-labs/storysmith/internal/core/ports/driven"
	"github.com/custodia-labs/storysmith/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedRPM        = "embedding.requests_per_minute"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMMaxTokens    = "llm.max_tokens"
	keyLLMTemperature  = "llm.temperature"
	keyStoreBackend    = "store.backend"
	keyStoreDataDir    = "store.data_dir"
	keyStoreCollection = "store.collection"
	keyIngestCorpus    = "ingest.corpus_dir"
	keyIngestPatterns  = "ingest.patterns"
	keyIngestWorkers   = "ingest.workers"
	keyChunkSize       = "chunker.chunk_size"
	keyChunkOverlap    = "chunker.overlap"
	keyPDFStrategy     = "scraper.pdf_strategy"
	keyOCRLanguage     = "scraper.ocr_language"
	keyJiraBaseURL     = "jira.base_url"
	keyJiraEmail       = "jira.email"
	keyJiraAPIToken    = "jira.api_token"
	keyJiraAccessToken = "jira.access_token"
	keyJiraProject     = "jira.project_key"
	keyJiraIssueType   = "jira.issue_type"
	keyJiraTimeout     = "jira.timeout_seconds"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvAnthropicKey      = "ANTHROPIC_API_KEY"
	EnvEmbeddingProvider = "STORYSMITH_EMBEDDING_PROVIDER"
	EnvLLMProvider       = "STORYSMITH_LLM_PROVIDER"
	EnvDataDir           = "STORYSMITH_DATA_DIR"
	EnvJiraBaseURL       = "JIRA_BASE_URL"
	EnvJiraEmail         = "JIRA_EMAIL"
	EnvJiraAPIToken      = "JIRA_API_TOKEN"
	EnvJiraAccessToken   = "JIRA_ACCESS_TOKEN"
	EnvJiraProjectKey    = "JIRA_PROJECT_KEY"
)

// secretKeys are masked by Effective.
var secretKeys = map[string]bool{
	keyEmbedAPIKey:     true,
	keyLLMAPIKey:       true,
	keyJiraAPIToken:    true,
	keyJiraAccessToken: true,
}

// SettingsService resolves settings from a ConfigStore and the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
	dataDir     string
}

// NewSettingsService creates a settings service. dataDir is the default
// location for the vector store when store.data_dir is unset.
func NewSettingsService(configStore driven.ConfigStore, dataDir string) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
		dataDir:     dataDir,
	}
}

// WithEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) WithEnv(getenv func(string) string) *SettingsService {
	s.getenv = getenv
	return s
}

// Get returns defaults overlaid by the config file and then the environment.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	embedProvider := domain.AIProvider(s.pick(EnvEmbeddingProvider, keyEmbedProvider, d.Embedding.Provider.String()))
	llmProvider := domain.AIProvider(s.pick(EnvLLMProvider, keyLLMProvider, d.LLM.Provider.String()))

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             s.getString(keyEmbedModel, defaultModel(domain.DefaultEmbeddingModels(), embedProvider, d.Embedding.Model)),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL),
			APIKey:            s.apiKey(embedProvider, keyEmbedAPIKey),
			RequestsPerMinute: s.configStore.GetInt(keyEmbedRPM),
		},
		LLM: domain.LLMSettings{
			Provider:    llmProvider,
			Model:       s.getString(keyLLMModel, defaultModel(domain.DefaultLLMModels(), llmProvider, d.LLM.Model)),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.apiKey(llmProvider, keyLLMAPIKey),
			MaxTokens:   s.getInt(keyLLMMaxTokens, d.LLM.MaxTokens),
			Temperature: s.getFloat(keyLLMTemperature, d.LLM.Temperature),
		},
		Store: domain.StoreSettings{
			Backend:    domain.StoreBackend(s.getString(keyStoreBackend, string(d.Store.Backend))),
			DataDir:    s.pick(EnvDataDir, keyStoreDataDir, s.dataDir),
			Collection: s.getString(keyStoreCollection, d.Store.Collection),
		},
		Ingest: domain.IngestSettings{
			CorpusDir:   s.getString(keyIngestCorpus, d.Ingest.CorpusDir),
			Patterns:    d.Ingest.Patterns,
			Workers:     s.getInt(keyIngestWorkers, d.Ingest.Workers),
			ChunkSize:   s.getInt(keyChunkSize, d.Ingest.ChunkSize),
			Overlap:     s.getInt(keyChunkOverlap, d.Ingest.Overlap),
			PDFStrategy: domain.PDFStrategy(s.getString(keyPDFStrategy, string(d.Ingest.PDFStrategy))),
			OCRLanguage: s.getString(keyOCRLanguage, d.Ingest.OCRLanguage),
		},
		Tracker: domain.TrackerSettings{
			BaseURL:    strings.TrimRight(s.pick(EnvJiraBaseURL, keyJiraBaseURL, ""), "/"),
			Email:      s.pick(EnvJiraEmail, keyJiraEmail, ""),
			APIToken:   s.pick(EnvJiraAPIToken, keyJiraAPIToken, ""),
			OAuthToken: s.pick(EnvJiraAccessToken, keyJiraAccessToken, ""),
			ProjectKey: s.pick(EnvJiraProjectKey, keyJiraProject, ""),
			IssueType:  s.getString(keyJiraIssueType, d.Tracker.IssueType),
			Timeout:    d.Tracker.Timeout,
		},
	}

	if patterns := s.configStore.GetStringSlice(keyIngestPatterns); len(patterns) > 0 {
		settings.Ingest.Patterns = patterns
	}
	if secs := s.configStore.GetInt(keyJiraTimeout); secs > 0 {
		settings.Tracker.Timeout = time.Duration(secs) * time.Second
	}

	dims := s.configStore.GetInt(keyEmbedDims)
	if dims == 0 {
		if known, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
			dims = known
		} else {
			dims = d.Embedding.Dimensions
		}
	}
	settings.Embedding.Dimensions = dims

	return settings, nil
}

// Set validates and persists a single config key.
func (s *SettingsService) Set(key, value string) error {
	var v any = value

	switch key {
	case keyEmbedProvider, keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
	case keyStoreBackend:
		if !domain.StoreBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, value)
		}
	case keyPDFStrategy:
		if !domain.PDFStrategy(value).IsValid() {
			return fmt.Errorf("%w: unknown pdf strategy %q", domain.ErrInvalidInput, value)
		}
	case keyEmbedDims, keyEmbedRPM, keyLLMMaxTokens, keyIngestWorkers, keyChunkSize, keyChunkOverlap, keyJiraTimeout:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		v = n
	case keyLLMTemperature:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 2 {
			return fmt.Errorf("%w: %s must be between 0 and 2", domain.ErrInvalidInput, key)
		}
		v = f
	case keyIngestPatterns:
		v = splitList(value)
	default:
		if !isKnownKey(key) {
			return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
		}
	}

	if err := s.configStore.Set(key, v); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Effective returns every known key with its resolved value.
func (s *SettingsService) Effective() (map[string]string, error) {
	st, err := s.Get()
	if err != nil {
		return nil, err
	}

	values := map[string]string{
		keyEmbedProvider:   st.Embedding.Provider.String(),
		keyEmbedModel:      st.Embedding.Model,
		keyEmbedDims:       strconv.Itoa(st.Embedding.Dimensions),
		keyEmbedBaseURL:    st.Embedding.BaseURL,
		keyEmbedAPIKey:     st.Embedding.APIKey,
		keyEmbedRPM:        strconv.Itoa(st.Embedding.RequestsPerMinute),
		keyLLMProvider:     st.LLM.Provider.String(),
		keyLLMModel:        st.LLM.Model,
		keyLLMBaseURL:      st.LLM.BaseURL,
		keyLLMAPIKey:       st.LLM.APIKey,
		keyLLMMaxTokens:    strconv.Itoa(st.LLM.MaxTokens),
		keyLLMTemperature:  strconv.FormatFloat(st.LLM.Temperature, 'f', -1, 64),
		keyStoreBackend:    string(st.Store.Backend),
		keyStoreDataDir:    st.Store.DataDir,
		keyStoreCollection: st.Store.Collection,
		keyIngestCorpus:    st.Ingest.CorpusDir,
		keyIngestPatterns:  strings.Join(st.Ingest.Patterns, ","),
		keyIngestWorkers:   strconv.Itoa(st.Ingest.Workers),
		keyChunkSize:       strconv.Itoa(st.Ingest.ChunkSize),
		keyChunkOverlap:    strconv.Itoa(st.Ingest.Overlap),
		keyPDFStrategy:     string(st.Ingest.PDFStrategy),
		keyOCRLanguage:     st.Ingest.OCRLanguage,
		keyJiraBaseURL:     st.Tracker.BaseURL,
		keyJiraEmail:       st.Tracker.Email,
		keyJiraAPIToken:    st.Tracker.APIToken,
		keyJiraAccessToken: st.Tracker.OAuthToken,
		keyJiraProject:     st.Tracker.ProjectKey,
		keyJiraIssueType:   st.Tracker.IssueType,
		keyJiraTimeout:     strconv.Itoa(int(st.Tracker.Timeout / time.Second)),
	}

	for k := range secretKeys {
		values[k] = maskSecret(values[k])
	}
	return values, nil
}

// Validate checks the resolved settings are usable.
func (s *SettingsService) Validate() error {
	st, err := s.Get()
	if err != nil {
		return err
	}
	if !st.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q", domain.ErrEmbeddingUnavailable, st.Embedding.Provider)
	}
	if !st.LLM.IsConfigured() {
		return fmt.Errorf("%w: llm provider %q", domain.ErrLLMUnavailable, st.LLM.Provider)
	}
	if !st.Store.Backend.IsValid() {
		return fmt.Errorf("%w: store backend %q", domain.ErrInvalidInput, st.Store.Backend)
	}
	if !st.Ingest.PDFStrategy.IsValid() {
		return fmt.Errorf("%w: pdf strategy %q", domain.ErrInvalidInput, st.Ingest.PDFStrategy)
	}
	if st.Embedding.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding dimensions must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// pick returns the environment value, else the config value, else def.
func (s *SettingsService) pick(env, key, def string) string {
	if v := strings.TrimSpace(s.getenv(env)); v != "" {
		return v
	}
	return s.getString(key, def)
}

// apiKey resolves a provider key: config first, then the provider's variable.
func (s *SettingsService) apiKey(provider domain.AIProvider, key string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicKey)
	default:
		return ""
	}
}

func (s *SettingsService) getString(key, def string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return def
}

func (s *SettingsService) getInt(key string, def int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return def
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, def float64) float64 {
	v, ok := s.configStore.Get(key)
	if !ok {
		return def
	}
	switch f := v.(type) {
	case float64:
		return f
	case int64:
		return float64(f)
	case int:
		return float64(f)
	case string:
		if parsed, err := strconv.ParseFloat(f, 64); err == nil {
			return parsed
		}
	}
	return def
}

func defaultModel(models map[domain.AIProvider]string, p domain.AIProvider, fallback string) string {
	if m, ok := models[p]; ok {
		return m
	}
	return fallback
}

func isKnownKey(key string) bool {
	switch key {
	case keyEmbedBaseURL, keyEmbedAPIKey, keyEmbedModel, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey,
		keyStoreDataDir, keyStoreCollection, keyIngestCorpus, keyOCRLanguage,
		keyJiraBaseURL, keyJiraEmail, keyJiraAPIToken, keyJiraAccessToken, keyJiraProject, keyJiraIssueType:
		return true
	default:
		return false
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func maskSecret(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 8 {
		return "****"
	}
	return v[:4] + "****" + v[len(v)-4:]
}
