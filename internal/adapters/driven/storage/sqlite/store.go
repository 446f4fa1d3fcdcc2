package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/clausecheck/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.PassageStore = (*Store)(nil)

// dbFile is the database file name inside the data directory.
const dbFile = "corpus.db"

// Store is a SQLite-backed passage store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.clausecheck/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".clausecheck", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_passages.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}

	return nil
}

// SavePassages stores passages in one transaction, replacing any with the
// same ID, and advances the ordinal counter past the highest ordinal saved.
func (s *Store) SavePassages(ctx context.Context, passages []domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO passages (id, document_id, source_id, content, position, ordinal, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	maxOrdinal := -1
	for _, p := range passages {
		if _, err := stmt.ExecContext(ctx, p.ID, p.DocumentID, p.SourceID, p.Content,
			p.Position, p.Ordinal, float32SliceToBytes(p.Embedding)); err != nil {
			return fmt.Errorf("saving passage %s: %w", p.ID, err)
		}
		maxOrdinal = max(maxOrdinal, p.Ordinal)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE corpus_meta SET value = MAX(value, ?) WHERE key = 'next_ordinal'", maxOrdinal+1); err != nil {
		return fmt.Errorf("advancing ordinal: %w", err)
	}

	return tx.Commit()
}

// GetPassages returns the passages for the given IDs in request order.
// Unknown IDs are skipped.
func (s *Store) GetPassages(ctx context.Context, ids []string) ([]domain.Passage, error) {
	if len(ids) == 0 {
		return []domain.Passage{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, document_id, source_id, content, position, ordinal, embedding FROM passages WHERE id IN ("+placeholders+")",
		args...)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	found, err := scanPassages(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Passage, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	result := make([]domain.Passage, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// ListPassages returns every passage in corpus order.
func (s *Store) ListPassages(ctx context.Context) ([]domain.Passage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, document_id, source_id, content, position, ordinal, embedding FROM passages ORDER BY ordinal, id")
	if err != nil {
		return nil, fmt.Errorf("listing passages: %w", err)
	}
	defer rows.Close()

	return scanPassages(rows)
}

// DeletePassages removes the passages with the given IDs in one transaction.
func (s *Store) DeletePassages(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM passages WHERE id = ?")
	if err != nil {
		return fmt.Errorf("preparing delete: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("deleting passage %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteSource removes every passage from one source and returns their IDs
// sorted.
func (s *Store) DeleteSource(ctx context.Context, sourceID string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	rows, err := tx.QueryContext(ctx, "SELECT id FROM passages WHERE source_id = ? ORDER BY id", sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying source passages: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning passage id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passage ids: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM passages WHERE source_id = ?", sourceID); err != nil {
		return nil, fmt.Errorf("deleting source passages: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ids, nil
}

// NextOrdinal returns the ordinal for the next ingested passage. Ordinals
// of deleted passages are never handed out again.
func (s *Store) NextOrdinal(ctx context.Context) (int, error) {
	var next int
	err := s.db.QueryRowContext(ctx, "SELECT value FROM corpus_meta WHERE key = 'next_ordinal'").Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("reading next ordinal: %w", err)
	}
	return next, nil
}

// Count returns the number of stored passages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM passages").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting passages: %w", err)
	}
	return n, nil
}

// ==================== Helper Functions ====================

func scanPassages(rows *sql.Rows) ([]domain.Passage, error) {
	passages := []domain.Passage{}
	for rows.Next() {
		var (
			p         domain.Passage
			embedding []byte
		)
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.SourceID, &p.Content,
			&p.Position, &p.Ordinal, &embedding); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		p.Embedding = bytesToFloat32Slice(embedding)
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}
	return passages, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
