package domain

import (
	"fmt"
	"time"
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderGemini, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EngineMode selects which implementation backs the classifier or matcher.
type EngineMode string

// Available engine modes.
const (
	// EngineKeyword is the deterministic heuristic implementation.
	EngineKeyword EngineMode = "keyword"

	// EngineLLM delegates to a language model.
	EngineLLM EngineMode = "llm"
)

// IsValid returns true if the mode is recognised.
func (m EngineMode) IsValid() bool {
	return m == EngineKeyword || m == EngineLLM
}

// RequiresLLM returns true if this mode needs an LLM provider.
func (m EngineMode) RequiresLLM() bool {
	return m == EngineLLM
}

// String returns the string representation.
func (m EngineMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m EngineMode) Description() string {
	switch m {
	case EngineKeyword:
		return "Keyword heuristics (deterministic)"
	case EngineLLM:
		return "Language model"
	default:
		return unknownDescription
	}
}

// Evaluation defaults.
const (
	DefaultTopK             = 3
	DefaultMinRelevance     = 0.35
	DefaultInferenceTimeout = 30 * time.Second
	DefaultConcurrency      = 4
)

// EvaluationSettings holds pipeline behaviour configuration.
type EvaluationSettings struct {
	// TopK is the maximum number of citations per finding.
	TopK int

	// MinRelevance is the score below which citations are dropped.
	MinRelevance float64

	// InferenceTimeout bounds the work done for a single rule.
	InferenceTimeout time.Duration

	// Concurrency is the number of rules evaluated in parallel. 1 is sequential.
	Concurrency int

	// Classifier selects the document classifier implementation.
	Classifier EngineMode

	// Matcher selects the clause matcher implementation.
	Matcher EngineMode

	// ChecklistFile overrides the built-in checklists when set.
	ChecklistFile string
}

// Validate checks the evaluation settings are usable.
func (e EvaluationSettings) Validate() error {
	if e.TopK < 1 {
		return fmt.Errorf("%w: top_k must be at least 1, got %d", ErrInvalidInput, e.TopK)
	}
	if e.MinRelevance < 0 || e.MinRelevance > 1 {
		return fmt.Errorf("%w: min_relevance must be within [0,1], got %v", ErrInvalidInput, e.MinRelevance)
	}
	if e.InferenceTimeout <= 0 {
		return fmt.Errorf("%w: inference_timeout must be positive", ErrInvalidInput)
	}
	if e.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidInput, e.Concurrency)
	}
	if !e.Classifier.IsValid() {
		return fmt.Errorf("%w: unknown classifier %q", ErrInvalidInput, e.Classifier)
	}
	if !e.Matcher.IsValid() {
		return fmt.Errorf("%w: unknown matcher %q", ErrInvalidInput, e.Matcher)
	}
	return nil
}

// RequiresLLM returns true if either the classifier or matcher needs an LLM.
func (e EvaluationSettings) RequiresLLM() bool {
	return e.Classifier.RequiresLLM() || e.Matcher.RequiresLLM()
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for Gemini).
	APIKey string
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
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for Gemini/Anthropic).
	APIKey string

	// RequestsPerSecond throttles calls to the provider. Zero disables throttling.
	RequestsPerSecond float64
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

// VectorBackend selects where passage vectors are searched.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendMemory rebuilds an in-process index from the passage store.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendPgvector searches a PostgreSQL table with the pgvector extension.
	VectorBackendPgvector VectorBackend = "pgvector"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorBackendMemory || b == VectorBackendPgvector
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Backend selects the index implementation.
	Backend VectorBackend

	// DatabaseURL is the PostgreSQL connection string for pgvector.
	DatabaseURL string

	// Dimensions is the embedding vector size.
	Dimensions int
}

// CorpusSettings holds regulatory corpus ingestion configuration.
type CorpusSettings struct {
	// ChunkSize is the target passage size in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by adjacent passages.
	ChunkOverlap int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Evaluation holds pipeline behaviour settings.
	Evaluation EvaluationSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// VectorIndex holds vector index settings.
	VectorIndex VectorIndexSettings

	// Corpus holds corpus ingestion settings.
	Corpus CorpusSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured; the keyword engines need none.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Evaluation: EvaluationSettings{
			TopK:             DefaultTopK,
			MinRelevance:     DefaultMinRelevance,
			InferenceTimeout: DefaultInferenceTimeout,
			Concurrency:      DefaultConcurrency,
			Classifier:       EngineKeyword,
			Matcher:          EngineKeyword,
		},
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{},
		VectorIndex: VectorIndexSettings{
			Backend:    VectorBackendMemory,
			Dimensions: 768, // nomic-embed-text default
		},
		Corpus: CorpusSettings{
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderGemini,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderGemini: "gemini-embedding-001",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderGemini:    "gemini-2.0-flash",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// Gemini models
		"gemini-embedding-001": 3072,
		"text-embedding-004":   768,
		"embedding-001":        768,
	}
}
