package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyTopK             = "evaluation.top_k"
	keyMinRelevance     = "evaluation.min_relevance"
	keyInferenceTimeout = "evaluation.inference_timeout"
	keyConcurrency      = "evaluation.concurrency"
	keyClassifier       = "evaluation.classifier"
	keyMatcher          = "evaluation.matcher"
	keyChecklistFile    = "evaluation.checklist_file"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMRate          = "llm.requests_per_second"
	keyVectorBackend    = "vector_index.backend"
	keyVectorDSN        = "vector_index.database_url"
	keyVectorDims       = "vector_index.dimensions"
	keyChunkSize        = "corpus.chunk_size"
	keyChunkOverlap     = "corpus.chunk_overlap"
)

// Environment variables consulted when a secret is not in the config file.
//
//nolint:gosec // G101: These are variable names, not credentials.
var providerKeyEnv = map[domain.AIProvider][]string{
	domain.AIProviderGemini:    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	domain.AIProviderAnthropic: {"ANTHROPIC_API_KEY"},
}

const (
	envOllamaHost  = "OLLAMA_HOST"
	envDatabaseURL = "CLAUSECHECK_DATABASE_URL"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup. Used in tests.
func (s *SettingsService) SetEnvLookup(fn func(string) (string, bool)) {
	s.lookupEnv = fn
}

// Get retrieves current application settings.
// Values missing from the config file fall back to the environment and
// then to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	timeout, err := s.getDuration(keyInferenceTimeout, defaults.Evaluation.InferenceTimeout)
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		Evaluation: domain.EvaluationSettings{
			TopK:             s.getInt(keyTopK, defaults.Evaluation.TopK),
			MinRelevance:     s.getFloat(keyMinRelevance, defaults.Evaluation.MinRelevance),
			InferenceTimeout: timeout,
			Concurrency:      s.getInt(keyConcurrency, defaults.Evaluation.Concurrency),
			Classifier:       s.getEngine(keyClassifier, defaults.Evaluation.Classifier),
			Matcher:          s.getEngine(keyMatcher, defaults.Evaluation.Matcher),
			ChecklistFile:    s.configStore.GetString(keyChecklistFile),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			RequestsPerSecond: s.getFloat(keyLLMRate, defaults.LLM.RequestsPerSecond),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend:     s.getBackend(defaults.VectorIndex.Backend),
			DatabaseURL: s.getStringEnv(keyVectorDSN, envDatabaseURL),
			Dimensions:  s.getInt(keyVectorDims, defaults.VectorIndex.Dimensions),
		},
		Corpus: domain.CorpusSettings{
			ChunkSize:    s.getInt(keyChunkSize, defaults.Corpus.ChunkSize),
			ChunkOverlap: s.getInt(keyChunkOverlap, defaults.Corpus.ChunkOverlap),
		},
	}

	settings.Embedding.APIKey = s.getAPIKey(keyEmbedAPIKey, settings.Embedding.Provider)
	settings.LLM.APIKey = s.getAPIKey(keyLLMAPIKey, settings.LLM.Provider)
	if settings.Embedding.Provider.IsLocal() && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = s.env(envOllamaHost)
	}
	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = s.env(envOllamaHost)
	}

	return settings, nil
}

// Save persists application settings.
// Secrets that came from the environment are written only if non-empty.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyTopK, settings.Evaluation.TopK},
		{keyMinRelevance, settings.Evaluation.MinRelevance},
		{keyInferenceTimeout, settings.Evaluation.InferenceTimeout.String()},
		{keyConcurrency, settings.Evaluation.Concurrency},
		{keyClassifier, settings.Evaluation.Classifier.String()},
		{keyMatcher, settings.Evaluation.Matcher.String()},
		{keyChecklistFile, settings.Evaluation.ChecklistFile},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMRate, settings.LLM.RequestsPerSecond},
		{keyVectorBackend, settings.VectorIndex.Backend.String()},
		{keyVectorDims, settings.VectorIndex.Dimensions},
		{keyChunkSize, settings.Corpus.ChunkSize},
		{keyChunkOverlap, settings.Corpus.ChunkOverlap},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := []struct {
		key   string
		value string
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyVectorDSN, settings.VectorIndex.DatabaseURL},
	}
	for _, v := range secrets {
		if v.value == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// Set updates a single setting by its dotted key.
// The value is parsed according to the key and validated before saving.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	switch key {
	case keyTopK:
		settings.Evaluation.TopK, err = strconv.Atoi(value)
	case keyMinRelevance:
		settings.Evaluation.MinRelevance, err = strconv.ParseFloat(value, 64)
	case keyInferenceTimeout:
		settings.Evaluation.InferenceTimeout, err = time.ParseDuration(value)
	case keyConcurrency:
		settings.Evaluation.Concurrency, err = strconv.Atoi(value)
	case keyClassifier:
		settings.Evaluation.Classifier = domain.EngineMode(value)
	case keyMatcher:
		settings.Evaluation.Matcher = domain.EngineMode(value)
	case keyChecklistFile:
		settings.Evaluation.ChecklistFile = value
	case keyLLMRate:
		settings.LLM.RequestsPerSecond, err = strconv.ParseFloat(value, 64)
	case keyVectorBackend:
		settings.VectorIndex.Backend = domain.VectorBackend(value)
		if !settings.VectorIndex.Backend.IsValid() {
			return fmt.Errorf("%w: unknown vector backend %q", domain.ErrInvalidInput, value)
		}
	case keyVectorDSN:
		settings.VectorIndex.DatabaseURL = value
	case keyVectorDims:
		settings.VectorIndex.Dimensions, err = strconv.Atoi(value)
	case keyChunkSize:
		settings.Corpus.ChunkSize, err = strconv.Atoi(value)
	case keyChunkOverlap:
		settings.Corpus.ChunkOverlap, err = strconv.Atoi(value)
	case keyEmbedModel:
		settings.Embedding.Model = value
	case keyEmbedBaseURL:
		settings.Embedding.BaseURL = value
	case keyLLMModel:
		settings.LLM.Model = value
	case keyLLMBaseURL:
		settings.LLM.BaseURL = value
	default:
		return fmt.Errorf("%w: unknown or read-only setting %q", domain.ErrInvalidInput, key)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	if err := settings.Evaluation.Validate(); err != nil {
		return err
	}

	return s.Save(settings)
}

// SetEngines selects the classifier and matcher implementations.
func (s *SettingsService) SetEngines(classifier, matcher domain.EngineMode) error {
	if !classifier.IsValid() {
		return fmt.Errorf("invalid classifier: %s", classifier)
	}
	if !matcher.IsValid() {
		return fmt.Errorf("invalid matcher: %s", matcher)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Evaluation.Classifier = classifier
	settings.Evaluation.Matcher = matcher

	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if apiKey == "" {
		apiKey = s.getAPIKey("", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.Embedding.Provider = provider

	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	// Vector dimensions follow the model
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.VectorIndex.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if apiKey == "" {
		apiKey = s.getAPIKey("", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks if current settings are usable for the selected engines.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Evaluation.Validate(); err != nil {
		return err
	}

	if settings.Evaluation.RequiresLLM() && !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: the llm %s requires an LLM provider to be configured",
			domain.ErrLLMUnavailable, llmEngineNames(settings.Evaluation))
	}

	if settings.Corpus.ChunkOverlap >= settings.Corpus.ChunkSize {
		return fmt.Errorf("%w: corpus.chunk_overlap must be smaller than corpus.chunk_size", domain.ErrInvalidInput)
	}

	if settings.VectorIndex.Backend == domain.VectorBackendPgvector && settings.VectorIndex.DatabaseURL == "" {
		return fmt.Errorf("%w: vector_index.database_url is required for pgvector", domain.ErrInvalidInput)
	}

	return nil
}

func llmEngineNames(e domain.EvaluationSettings) string {
	switch {
	case e.Classifier.RequiresLLM() && e.Matcher.RequiresLLM():
		return "classifier and matcher"
	case e.Classifier.RequiresLLM():
		return "classifier"
	default:
		return "matcher"
	}
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}
	return d, nil
}

func (s *SettingsService) getEngine(key string, defaultVal domain.EngineMode) domain.EngineMode {
	mode := domain.EngineMode(s.configStore.GetString(key))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getStringEnv(key, envName string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return s.env(envName)
}

// getAPIKey prefers the config file and falls back to the provider's
// environment variables. An empty key skips the config lookup.
func (s *SettingsService) getAPIKey(key string, provider domain.AIProvider) string {
	if key != "" {
		if val := s.configStore.GetString(key); val != "" {
			return val
		}
	}
	for _, name := range providerKeyEnv[provider] {
		if val := s.env(name); val != "" {
			return val
		}
	}
	return ""
}

func (s *SettingsService) env(name string) string {
	if s.lookupEnv == nil {
		return ""
	}
	val, _ := s.lookupEnv(name)
	return strings.TrimSpace(val)
}
