package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embedServer(t *testing.T, embeddings [][]float32) (*httptest.Server, *map[string]any) {
	t.Helper()
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"model":      DefaultModel,
			"embeddings": embeddings,
		})
	}))
	t.Cleanup(ts.Close)
	return ts, &body
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.NoError(t, svc.Close())
}

func TestEmbedBatch(t *testing.T) {
	ts, body := embedServer(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}})
	svc, err := NewEmbeddingService(Config{BaseURL: ts.URL, Dimensions: 2})
	require.NoError(t, err)

	vectors, err := svc.EmbedBatch(context.Background(), []string{"data retention", "registered office"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, vectors)
	assert.Equal(t, []any{"data retention", "registered office"}, (*body)["input"])

	empty, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestEmbed(t *testing.T) {
	ts, _ := embedServer(t, [][]float32{{1, 0, 0}})
	svc, err := NewEmbeddingService(Config{BaseURL: ts.URL})
	require.NoError(t, err)

	vector, err := svc.Embed(context.Background(), "share capital")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, vector)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	ts, _ := embedServer(t, [][]float32{{1}})
	svc, err := NewEmbeddingService(Config{BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = svc.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.ErrorContains(t, err, "got 1 embeddings for 2 texts")
}
