package postprocessors

import (
	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/postprocessors/chunker"
	"github.com/custodia-labs/clausecheck/internal/postprocessors/cleaner"
)

// DefaultOrder is the corpus pipeline: split, then tidy the passages.
var DefaultOrder = []string{"chunker", "cleaner"}

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("cleaner", buildCleaner)
}

// NewCorpusPipeline builds the default pipeline from corpus settings.
func NewCorpusPipeline(settings domain.CorpusSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.BuildPipeline(DefaultOrder, map[string]map[string]any{
		"chunker": {
			"chunk_size": settings.ChunkSize,
			"overlap":    settings.ChunkOverlap,
		},
	})
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per passage (default: 1000)
//   - overlap (int): Characters shared by adjacent passages (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok && size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...), nil
}

// buildCleaner creates a cleaner processor from generic config.
// Supported config keys:
//   - min_length (int): Passages with fewer characters are dropped (default: 20)
func buildCleaner(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []cleaner.Option
	if n, ok := getIntFromConfig(cfg, "min_length"); ok {
		opts = append(opts, cleaner.WithMinLength(n))
	}
	return cleaner.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
