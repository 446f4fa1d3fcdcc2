package ollama

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

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.NoError(t, svc.Close())

	_, err = NewLLMService(LLMConfig{BaseURL: "://bad"})
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"model":             "llama3.2",
			"response":          "privacy_policy",
			"done":              true,
			"prompt_eval_count": 40,
			"eval_count":        3,
		})
	}))
	defer ts.Close()

	svc, err := NewLLMService(LLMConfig{BaseURL: ts.URL})
	require.NoError(t, err)

	out, err := svc.Generate(context.Background(), "Classify this document", driven.GenerateOptions{
		System:    "Answer with one label.",
		MaxTokens: 20,
		StopWords: []string{"\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, "privacy_policy", out)

	assert.Equal(t, "llama3.2", body["model"])
	assert.Equal(t, "Answer with one label.", body["system"])
	assert.Equal(t, false, body["stream"])
	options := body["options"].(map[string]any)
	assert.EqualValues(t, 20, options["num_predict"])
	assert.EqualValues(t, 0, options["temperature"])
	assert.Equal(t, []any{"\n"}, options["stop"])
}

func TestGenerate_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"llama3.2\" not found"}`)) //nolint:errcheck
	}))
	defer ts.Close()

	svc, err := NewLLMService(LLMConfig{BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "not found")
}

func TestPing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	svc, err := NewLLMService(LLMConfig{BaseURL: ts.URL})
	require.NoError(t, err)
	assert.NoError(t, svc.Ping(context.Background()))

	ts.Close()
	assert.Error(t, svc.Ping(context.Background()))
}
