package ai

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure RateLimitedLLM implements the interface.
var _ driven.LLMService = (*RateLimitedLLM)(nil)

// RateLimitedLLM throttles Generate calls to a provider. Parallel rule
// evaluation would otherwise burst past provider quotas.
type RateLimitedLLM struct {
	next    driven.LLMService
	limiter *rate.Limiter
}

// NewRateLimitedLLM wraps next with a limiter allowing rps requests per
// second. The burst is rps rounded up, at least 1.
func NewRateLimitedLLM(next driven.LLMService, rps float64) *RateLimitedLLM {
	burst := max(1, int(math.Ceil(rps)))
	return &RateLimitedLLM{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Generate waits for a token and then delegates.
func (r *RateLimitedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	return r.next.Generate(ctx, prompt, opts)
}

// ModelName returns the wrapped model name.
func (r *RateLimitedLLM) ModelName() string { return r.next.ModelName() }

// Ping is not throttled.
func (r *RateLimitedLLM) Ping(ctx context.Context) error { return r.next.Ping(ctx) }

// Close closes the wrapped service.
func (r *RateLimitedLLM) Close() error { return r.next.Close() }
