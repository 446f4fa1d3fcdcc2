package ai

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

type countingLLM struct {
	calls atomic.Int32
}

func (c *countingLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	c.calls.Add(1)
	return "ok", nil
}

func (c *countingLLM) ModelName() string          { return "counting" }
func (c *countingLLM) Ping(context.Context) error { return nil }
func (c *countingLLM) Close() error               { return nil }

func TestRateLimitedLLM_Delegates(t *testing.T) {
	next := &countingLLM{}
	llm := NewRateLimitedLLM(next, 100)

	out, err := llm.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "counting", llm.ModelName())
	assert.NoError(t, llm.Ping(context.Background()))
	assert.NoError(t, llm.Close())
	assert.EqualValues(t, 1, next.calls.Load())
}

func TestRateLimitedLLM_Throttles(t *testing.T) {
	llm := NewRateLimitedLLM(&countingLLM{}, 20) // burst 20, then one every 50ms

	start := time.Now()
	for range 22 {
		_, err := llm.Generate(context.Background(), "p", driven.GenerateOptions{})
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestRateLimitedLLM_Cancelled(t *testing.T) {
	next := &countingLLM{}
	llm := NewRateLimitedLLM(next, 0.001)

	_, err := llm.Generate(context.Background(), "p", driven.GenerateOptions{}) // uses the burst token
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = llm.Generate(ctx, "p", driven.GenerateOptions{})
	assert.Error(t, err)
	assert.EqualValues(t, 1, next.calls.Load())
}
