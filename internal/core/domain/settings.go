package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderMock is the offline deterministic provider.
	AIProviderMock AIProvider = "mock"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API. LLM only.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderMock, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderMock:
		return "Mock (offline, deterministic)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
// Model is the single place the embedding model is pinned; ingestion and
// retrieval both read it from here.
type EmbeddingSettings struct {
	Provider   AIProvider
	Model      string
	Dimensions int
	BaseURL    string
	APIKey     string

	// RequestsPerMinute throttles embedding calls when positive.
	RequestsPerMinute int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	Provider    AIProvider
	Model       string
	BaseURL     string
	APIKey      string
	MaxTokens   int
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StoreBackend selects the vector store implementation.
type StoreBackend string

// Available store backends.
const (
	StoreSQLite StoreBackend = "sqlite"
	StoreBolt   StoreBackend = "bolt"
	StoreMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreSQLite, StoreBolt, StoreMemory:
		return true
	default:
		return false
	}
}

// StoreSettings holds vector store configuration.
type StoreSettings struct {
	Backend    StoreBackend
	DataDir    string
	Collection string
}

// PDFStrategy selects how PDFs are scraped.
type PDFStrategy string

// Available PDF strategies.
const (
	// PDFStrategyLayout infers text blocks and tables from the page layout.
	PDFStrategyLayout PDFStrategy = "layout"

	// PDFStrategyOCR rasterises each page and runs text recognition.
	PDFStrategyOCR PDFStrategy = "ocr"

	// PDFStrategyHybrid unions OCR text with layout-inferred tables.
	PDFStrategyHybrid PDFStrategy = "hybrid"
)

// IsValid returns true if the strategy is recognised.
func (s PDFStrategy) IsValid() bool {
	switch s {
	case PDFStrategyLayout, PDFStrategyOCR, PDFStrategyHybrid:
		return true
	default:
		return false
	}
}

// IngestSettings holds corpus and chunking configuration.
type IngestSettings struct {
	CorpusDir   string
	Patterns    []string
	Workers     int
	ChunkSize   int
	Overlap     int
	PDFStrategy PDFStrategy
	OCRLanguage string
}

// TrackerSettings holds issue tracker configuration.
type TrackerSettings struct {
	BaseURL    string
	Email      string
	APIToken   string
	OAuthToken string
	ProjectKey string
	IssueType  string
	Timeout    time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Store     StoreSettings
	Ingest    IngestSettings
	Tracker   TrackerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Both AI providers default to mock so the pipeline runs offline.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderMock,
			Model:      "mock-hash-v1",
			Dimensions: 1536,
		},
		LLM: LLMSettings{
			Provider:    AIProviderMock,
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.1,
		},
		Store: StoreSettings{
			Backend:    StoreSQLite,
			Collection: DefaultCollection,
		},
		Ingest: IngestSettings{
			CorpusDir:   "data",
			Patterns:    []string{"*.pdf", "*.xlsx"},
			Workers:     1,
			ChunkSize:   1000,
			Overlap:     200,
			PDFStrategy: PDFStrategyHybrid,
			OCRLanguage: "eng",
		},
		Tracker: TrackerSettings{
			IssueType: "Story",
			Timeout:   30 * time.Second,
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderMock:   "mock-hash-v1",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderMock:      "mock-ba",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"mock-hash-v1":           1536,
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
