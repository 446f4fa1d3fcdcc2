package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// Ensure EvaluationService implements the interface.
var _ driving.EvaluationService = (*EvaluationService)(nil)

// EvaluationService runs classify, retrieve and match for every rule of a
// document's checklist.
type EvaluationService struct {
	registry   driven.ChecklistRegistry
	classifier driven.Classifier
	matcher    driven.ClauseMatcher
	retriever  driven.CitationRetriever

	topK             int
	minRelevance     float64
	inferenceTimeout time.Duration
	concurrency      int
}

// NewEvaluationService creates an evaluation pipeline.
// Zero values in settings fall back to the domain defaults.
func NewEvaluationService(
	registry driven.ChecklistRegistry,
	classifier driven.Classifier,
	matcher driven.ClauseMatcher,
	retriever driven.CitationRetriever,
	settings domain.EvaluationSettings,
) *EvaluationService {
	if settings.TopK < 1 {
		settings.TopK = domain.DefaultTopK
	}
	if settings.InferenceTimeout <= 0 {
		settings.InferenceTimeout = domain.DefaultInferenceTimeout
	}
	if settings.Concurrency < 1 {
		settings.Concurrency = domain.DefaultConcurrency
	}
	return &EvaluationService{
		registry:         registry,
		classifier:       classifier,
		matcher:          matcher,
		retriever:        retriever,
		topK:             settings.TopK,
		minRelevance:     settings.MinRelevance,
		inferenceTimeout: settings.InferenceTimeout,
		concurrency:      settings.Concurrency,
	}
}

// Classify returns the document type without evaluating rules.
func (s *EvaluationService) Classify(ctx context.Context, text string) domain.DocumentType {
	return s.classifier.Classify(ctx, text)
}

// Checklist returns the rules that would be evaluated for a type.
func (s *EvaluationService) Checklist(docType domain.DocumentType) ([]domain.ChecklistRule, error) {
	return s.registry.RulesFor(docType)
}

// DocumentTypes returns every type with a checklist.
func (s *EvaluationService) DocumentTypes() []domain.DocumentType {
	return s.registry.DocumentTypes()
}

// Evaluate classifies the text and evaluates every rule of its checklist.
//
// Rules run concurrently but findings keep checklist order. A rule that
// fails internally yields a degraded Missing finding; only an unavailable
// citation index or caller cancellation aborts the run.
func (s *EvaluationService) Evaluate(ctx context.Context, text string) (*domain.EvaluationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	classifyCtx, cancel := context.WithTimeout(ctx, s.inferenceTimeout)
	docType := s.classifier.Classify(classifyCtx, text)
	cancel()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("Classified document as %s (%s classifier)", docType, s.classifier.Name())

	rules, err := s.registry.RulesFor(docType)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownDocumentType) {
			return nil, fmt.Errorf("%w: document type %s has no checklist", domain.ErrUnsupportedDocument, docType)
		}
		return nil, fmt.Errorf("load checklist: %w", err)
	}

	findings := make([]domain.Finding, len(rules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, rule := range rules {
		g.Go(func() error {
			f, err := s.evaluateRule(gctx, text, rule)
			if err != nil {
				return err
			}
			findings[i] = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	result := domain.NewEvaluationResult(docType, findings)
	logger.Debug("Evaluated %d rules: %d satisfied, %d partial, %d missing, %d not applicable (%d degraded)",
		len(findings), result.Summary.Satisfied, result.Summary.Partial,
		result.Summary.Missing, result.Summary.NotApplicable, result.DegradedCount())
	return result, nil
}

// evaluateRule retrieves citations for one rule and asks the matcher for a
// verdict. A non-nil error aborts the whole evaluation.
func (s *EvaluationService) evaluateRule(
	ctx context.Context,
	text string,
	rule domain.ChecklistRule,
) (finding domain.Finding, err error) {
	if err := ctx.Err(); err != nil {
		return domain.Finding{}, err
	}

	ruleCtx, cancel := context.WithTimeout(ctx, s.inferenceTimeout)
	defer cancel()

	var citations []domain.Citation
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Rule %s panicked: %v", rule.ID, r)
			finding = s.degrade(rule, citations, fmt.Errorf("panic: %v", r))
			err = nil
		}
	}()

	citations, err = s.retriever.Retrieve(ruleCtx, rule.Description, s.topK)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRetrievalUnavailable):
			return domain.Finding{}, err
		case ctx.Err() != nil:
			return domain.Finding{}, ctx.Err()
		case ruleCtx.Err() != nil:
			return s.degrade(rule, nil, s.timeoutError()), nil
		default:
			return s.degrade(rule, nil, fmt.Errorf("retrieve citations: %w", err)), nil
		}
	}
	citations = domain.FilterCitations(citations, s.minRelevance)
	if len(citations) > s.topK {
		citations = citations[:s.topK]
	}

	matched, err := s.matcher.Match(ruleCtx, text, rule, cloneCitations(citations))
	switch {
	case ctx.Err() != nil:
		return domain.Finding{}, ctx.Err()
	case ruleCtx.Err() != nil:
		return s.degrade(rule, citations, s.timeoutError()), nil
	case err != nil:
		return s.degrade(rule, citations, err), nil
	case !matched.Status.IsValid():
		return s.degrade(rule, citations, fmt.Errorf("matcher returned status %q", matched.Status)), nil
	}

	matched.RuleID = rule.ID
	matched.Requirement = rule.Description
	matched.Citations = citations
	return matched, nil
}

func (s *EvaluationService) degrade(rule domain.ChecklistRule, citations []domain.Citation, cause error) domain.Finding {
	logger.Warn("Rule %s degraded: %v", rule.ID, cause)
	f := domain.NewDegradedFinding(rule, cause)
	f.Citations = citations
	return f
}

func (s *EvaluationService) timeoutError() error {
	return fmt.Errorf("timed out after %s", s.inferenceTimeout)
}

func cloneCitations(citations []domain.Citation) []domain.Citation {
	out := make([]domain.Citation, len(citations))
	copy(out, citations)
	return out
}
