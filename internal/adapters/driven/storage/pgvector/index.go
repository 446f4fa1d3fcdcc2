// Package pgvector provides a VectorIndex backed by PostgreSQL with the
// pgvector extension.
//
// Vectors are stored in a single table keyed by passage ID and searched
// with the cosine distance operator (<=>). Passage text stays in the
// passage store; only IDs and embeddings live here.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// DefaultTable is the table holding passage vectors.
const DefaultTable = "passage_vectors"

// Pool is the subset of *pgxpool.Pool used by the index.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Config holds the connection settings.
type Config struct {
	// DatabaseURL is a PostgreSQL connection string.
	DatabaseURL string

	// Dimensions fixes the vector column size. Zero leaves it unsized.
	Dimensions int

	// Table overrides DefaultTable.
	Table string
}

// Index is a pgvector-backed vector index.
type Index struct {
	pool       Pool
	table      string
	dimensions int
}

// Open connects to PostgreSQL and makes sure the schema exists.
func Open(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: database URL is required", domain.ErrVectorIndexUnavailable)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", domain.ErrVectorIndexUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", domain.ErrVectorIndexUnavailable, err)
	}

	idx := New(pool, cfg)
	if err := idx.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return idx, nil
}

// New wraps an existing pool.
func New(pool Pool, cfg Config) *Index {
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	return &Index{pool: pool, table: table, dimensions: cfg.Dimensions}
}

// EnsureSchema creates the extension and table if they are missing.
func (x *Index) EnsureSchema(ctx context.Context) error {
	column := "vector"
	if x.dimensions > 0 {
		column = fmt.Sprintf("vector(%d)", x.dimensions)
	}

	if _, err := x.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("%w: create extension: %v", domain.ErrVectorIndexUnavailable, err)
	}
	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		passage_id TEXT PRIMARY KEY,
		embedding  %s NOT NULL,
		seq        BIGSERIAL
	)`, pgx.Identifier{x.table}.Sanitize(), column)
	if _, err := x.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("%w: create table: %v", domain.ErrVectorIndexUnavailable, err)
	}

	logger.Debug("pgvector schema ready (table=%s, dimensions=%d)", x.table, x.dimensions)
	return nil
}

// Add inserts or replaces the vector for the given passage ID.
func (x *Index) Add(ctx context.Context, passageID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding for %s", domain.ErrInvalidInput, passageID)
	}
	if x.dimensions > 0 && len(embedding) != x.dimensions {
		return fmt.Errorf("%w: embedding has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(embedding), x.dimensions)
	}

	query := fmt.Sprintf(`INSERT INTO %s (passage_id, embedding) VALUES ($1, $2::vector)
		ON CONFLICT (passage_id) DO UPDATE SET embedding = EXCLUDED.embedding`,
		pgx.Identifier{x.table}.Sanitize())
	if _, err := x.pool.Exec(ctx, query, passageID, Literal(embedding)); err != nil {
		return fmt.Errorf("add vector %s: %w", passageID, err)
	}
	return nil
}

// Delete removes a vector from the index. Unknown IDs are ignored.
func (x *Index) Delete(ctx context.Context, passageID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE passage_id = $1", pgx.Identifier{x.table}.Sanitize())
	if _, err := x.pool.Exec(ctx, query, passageID); err != nil {
		return fmt.Errorf("delete vector %s: %w", passageID, err)
	}
	return nil
}

// Search returns the k passages closest to query by cosine similarity.
// Ties are broken by insertion order.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 || len(query) == 0 {
		return []driven.VectorHit{}, nil
	}

	sql := fmt.Sprintf(`SELECT passage_id, 1 - (embedding <=> $1::vector) AS similarity
		FROM %s
		ORDER BY embedding <=> $1::vector, seq
		LIMIT $2`, pgx.Identifier{x.table}.Sanitize())
	rows, err := x.pool.Query(ctx, sql, Literal(query), k)
	if err != nil {
		return nil, fmt.Errorf("search vectors: %w", err)
	}
	defer rows.Close()

	hits := make([]driven.VectorHit, 0, k)
	for rows.Next() {
		var hit driven.VectorHit
		if err := rows.Scan(&hit.PassageID, &hit.Similarity); err != nil {
			return nil, fmt.Errorf("scan vector hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vector hits: %w", err)
	}
	return hits, nil
}

// Count returns the number of indexed vectors.
func (x *Index) Count(ctx context.Context) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pgx.Identifier{x.table}.Sanitize())
	if err := x.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("count vectors: %w", err)
	}
	return n, nil
}

// Close releases the connection pool.
func (x *Index) Close() error {
	x.pool.Close()
	return nil
}

// Literal formats a vector in pgvector's text representation.
func Literal(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
