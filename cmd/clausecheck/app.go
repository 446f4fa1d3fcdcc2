package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/custodia-labs/clausecheck/internal/adapters/driven/ai"
	"github.com/custodia-labs/clausecheck/internal/adapters/driven/config/file"
	"github.com/custodia-labs/clausecheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clausecheck/internal/adapters/driven/storage/pgvector"
	"github.com/custodia-labs/clausecheck/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/clausecheck/internal/adapters/driving/cli"
	docxannotator "github.com/custodia-labs/clausecheck/internal/annotators/docx"
	"github.com/custodia-labs/clausecheck/internal/checklist"
	keywordclassifier "github.com/custodia-labs/clausecheck/internal/classifiers/keyword"
	llmclassifier "github.com/custodia-labs/clausecheck/internal/classifiers/llm"
	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/core/services"
	"github.com/custodia-labs/clausecheck/internal/logger"
	keywordmatcher "github.com/custodia-labs/clausecheck/internal/matchers/keyword"
	llmmatcher "github.com/custodia-labs/clausecheck/internal/matchers/llm"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
	docxnormaliser "github.com/custodia-labs/clausecheck/internal/normalisers/docx"
	"github.com/custodia-labs/clausecheck/internal/normalisers/html"
	"github.com/custodia-labs/clausecheck/internal/normalisers/pdf"
	"github.com/custodia-labs/clausecheck/internal/normalisers/plaintext"
	"github.com/custodia-labs/clausecheck/internal/postprocessors"
)

// connectTimeout bounds opening the pgvector index at startup.
const connectTimeout = 10 * time.Second

// appConfig overrides default locations. Empty fields use ~/.clausecheck.
type appConfig struct {
	ConfigDir string
	DataDir   string
	PromptDir string
}

// app holds the wired services and the resources they own.
type app struct {
	Services cli.Services

	ai          *ai.InitResult
	store       *sqlite.Store
	vectorIndex driven.VectorIndex
	closed      bool
}

// Close releases resources held by the app. Safe to call twice.
func (a *app) Close() {
	if a.closed {
		return
	}
	a.closed = true
	if a.ai != nil {
		a.ai.Close()
	}
	if a.vectorIndex != nil {
		_ = a.vectorIndex.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}

// newApp loads settings and builds every service. Provider or index
// failures are logged and leave the dependent feature unavailable;
// only local storage and checklist errors abort startup.
func newApp(cfg appConfig) (*app, error) {
	configStore, err := file.NewConfigStore(cfg.ConfigDir)
	if err != nil {
		return nil, eris.Wrap(err, "open config store")
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, eris.Wrap(err, "load settings")
	}

	registry, err := loadChecklists(settings.Evaluation.ChecklistFile)
	if err != nil {
		return nil, err
	}

	a := &app{}

	a.ai = ai.Init(settings)
	for _, w := range a.ai.Warnings {
		logger.Warn("%s", w)
	}

	a.store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		a.Close()
		return nil, eris.Wrap(err, "open corpus store")
	}

	a.vectorIndex = openVectorIndex(settings, a.store)

	normaliserRegistry := normalisers.NewRegistry(
		plaintext.New(),
		html.New(),
		pdf.New(),
		docxnormaliser.New(),
	)

	pipeline, err := postprocessors.NewCorpusPipeline(settings.Corpus)
	if err != nil {
		a.Close()
		return nil, eris.Wrap(err, "build corpus pipeline")
	}

	retriever := services.NewRetrievalService(
		a.store, a.vectorIndex, a.ai.EmbeddingService, settings.Evaluation.MinRelevance,
	)

	classifier, matcher := buildEngines(cfg, settings, registry, a.ai.LLMService)

	a.Services = cli.Services{
		Evaluation: services.NewEvaluationService(registry, classifier, matcher, retriever, settings.Evaluation),
		Report:     services.NewReportService(registry, docxannotator.New()),
		Document:   services.NewDocumentService(normaliserRegistry),
		Corpus: services.NewCorpusService(
			normaliserRegistry, pipeline, a.store, a.vectorIndex, a.ai.EmbeddingService, retriever,
		),
		Settings: settingsService,
	}
	return a, nil
}

func loadChecklists(path string) (*checklist.Registry, error) {
	if path == "" {
		registry, err := checklist.Default()
		if err != nil {
			return nil, eris.Wrap(err, "load built-in checklists")
		}
		return registry, nil
	}
	registry, err := checklist.LoadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "load checklist file %s", path)
	}
	logger.Debug("checklists loaded from %s", path)
	return registry, nil
}

// openVectorIndex returns the configured index. A pgvector failure falls
// back to the in-memory index so local corpora keep working.
func openVectorIndex(settings *domain.AppSettings, store *sqlite.Store) driven.VectorIndex {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if settings.VectorIndex.Backend == domain.VectorBackendPgvector {
		idx, err := pgvector.Open(ctx, pgvector.Config{
			DatabaseURL: settings.VectorIndex.DatabaseURL,
			Dimensions:  settings.VectorIndex.Dimensions,
		})
		if err == nil {
			return idx
		}
		logger.Warn("pgvector unavailable, using in-memory index: %v", err)
	}

	// Memory index adopts the dimensions of the stored embeddings.
	idx := memory.NewVectorIndex(0)
	passages, err := store.ListPassages(ctx)
	if err != nil {
		logger.Warn("failed to load corpus passages: %v", err)
		return idx
	}
	if err := idx.LoadPassages(ctx, passages); err != nil {
		logger.Warn("corpus index incomplete: %v", err)
	}
	logger.Debug("in-memory index loaded with %d passages", len(passages))
	return idx
}

// buildEngines picks the classifier and matcher. The llm engines fall
// back to keyword when no LLM provider is available.
func buildEngines(
	cfg appConfig,
	settings *domain.AppSettings,
	registry *checklist.Registry,
	llm driven.LLMService,
) (driven.Classifier, driven.ClauseMatcher) {
	var prompts driven.PromptStore
	if settings.Evaluation.RequiresLLM() && llm != nil {
		store, err := file.NewPromptStore(cfg.PromptDir)
		if err != nil {
			logger.Warn("custom prompts disabled: %v", err)
		} else {
			prompts = store
		}
	}

	var classifier driven.Classifier = keywordclassifier.New(registry.Profiles())
	if settings.Evaluation.Classifier.RequiresLLM() {
		if llm == nil {
			logger.Warn("llm classifier selected but no LLM provider is available; using keyword")
		} else {
			c := llmclassifier.New(llm, llmclassifier.Config{})
			if prompts != nil {
				c.SetPromptStore(prompts)
			}
			classifier = c
		}
	}

	var matcher driven.ClauseMatcher = keywordmatcher.New()
	if settings.Evaluation.Matcher.RequiresLLM() {
		if llm == nil {
			logger.Warn("llm matcher selected but no LLM provider is available; using keyword")
		} else {
			m := llmmatcher.New(llm, llmmatcher.Config{})
			if prompts != nil {
				m.SetPromptStore(prompts)
			}
			matcher = m
		}
	}

	return classifier, matcher
}
