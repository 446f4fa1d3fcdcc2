package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	noRetries := 0
	svc, err := NewLLMService(Config{APIKey: "test-key", BaseURL: ts.URL, MaxRetries: &noRetries})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.Error(t, err)

	svc, err := NewLLMService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.NoError(t, svc.Close())
}

func TestGenerate(t *testing.T) {
	var body map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":   "msg_1",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": `{"status":"satisfied",`},
				{"type": "text", "text": `"explanation":"ok"}`},
			},
			"model":       DefaultModel,
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 12, "output_tokens": 7},
		})
	})

	out, err := svc.Generate(context.Background(), "Evaluate this clause", driven.GenerateOptions{
		System:    "You are a compliance reviewer.",
		MaxTokens: 400,
		StopWords: []string{"\n\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"status":"satisfied","explanation":"ok"}`, out)

	assert.Equal(t, DefaultModel, body["model"])
	assert.EqualValues(t, 400, body["max_tokens"])
	assert.EqualValues(t, 0, body["temperature"])
	assert.Equal(t, []any{"\n\n"}, body["stop_sequences"])
	system := body["system"].([]any)
	assert.Equal(t, "You are a compliance reviewer.", system[0].(map[string]any)["text"])
}

func TestGenerate_DefaultMaxTokens(t *testing.T) {
	var body map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id": "m", "type": "message", "role": "assistant", "model": DefaultModel,
			"content": []map[string]any{{"type": "text", "text": "articles_of_association"}},
			"usage":   map[string]any{"input_tokens": 1, "output_tokens": 1},
		})
	})

	out, err := svc.Generate(context.Background(), "classify", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "articles_of_association", out)
	assert.EqualValues(t, DefaultMaxTokens, body["max_tokens"])
	assert.NotContains(t, body, "system")
}

func TestGenerate_APIError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)) //nolint:errcheck
	})

	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: create message")
}

func TestGenerate_EmptyContent(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id": "m", "type": "message", "role": "assistant", "model": DefaultModel,
			"content": []map[string]any{},
			"usage":   map[string]any{"input_tokens": 1, "output_tokens": 0},
		})
	})

	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "no text content")
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/models")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[],"has_more":false,"first_id":"","last_id":""}`)) //nolint:errcheck
	})
	assert.NoError(t, svc.Ping(context.Background()))

	failing := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"no"}}`)) //nolint:errcheck
	})
	assert.Error(t, failing.Ping(context.Background()))
}
