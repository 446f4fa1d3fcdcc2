package pgvector

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

func newMockIndex(t *testing.T, dims int) (*Index, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return New(mock, Config{Dimensions: dims}), mock
}

func TestLiteral(t *testing.T) {
	assert.Equal(t, "[]", Literal(nil))
	assert.Equal(t, "[1,-0.5,0.25]", Literal([]float32{1, -0.5, 0.25}))
}

func TestNew_DefaultTable(t *testing.T) {
	idx, mock := newMockIndex(t, 0)
	defer mock.Close()
	assert.Equal(t, DefaultTable, idx.table)

	custom := New(mock, Config{Table: "vectors"})
	assert.Equal(t, "vectors", custom.table)
}

func TestEnsureSchema(t *testing.T) {
	idx, mock := newMockIndex(t, 3)
	defer mock.Close()

	mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS vector").
		WillReturnResult(pgxmock.NewResult("CREATE EXTENSION", 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "passage_vectors".*vector\(3\)`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, idx.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_ExtensionMissing(t *testing.T) {
	idx, mock := newMockIndex(t, 0)
	defer mock.Close()

	mock.ExpectExec("CREATE EXTENSION").WillReturnError(errors.New("permission denied"))

	err := idx.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd(t *testing.T) {
	idx, mock := newMockIndex(t, 2)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO "passage_vectors"`).
		WithArgs("p1", "[1,0]").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, idx.Add(context.Background(), "p1", []float32{1, 0}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_InvalidInput(t *testing.T) {
	idx, mock := newMockIndex(t, 2)
	defer mock.Close()

	err := idx.Add(context.Background(), "p1", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = idx.Add(context.Background(), "p1", []float32{1, 0, 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	idx, mock := newMockIndex(t, 0)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM "passage_vectors"`).
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, idx.Delete(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_Error(t *testing.T) {
	idx, mock := newMockIndex(t, 0)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM").WillReturnError(errors.New("connection reset"))

	err := idx.Delete(context.Background(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestSearch(t *testing.T) {
	idx, mock := newMockIndex(t, 0)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"passage_id", "similarity"}).
		AddRow("p2", 0.9).
		AddRow("p1", 0.4)
	mock.ExpectQuery(`SELECT passage_id, 1 - \(embedding <=> \$1::vector\)`).
		WithArgs("[0,1]", 2).
		WillReturnRows(rows)

	hits, err := idx.Search(context.Background(), []float32{0, 1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "p2", hits[0].PassageID)
	assert.InDelta(t, 0.9, hits[0].Similarity, 1e-9)
	assert.Equal(t, "p1", hits[1].PassageID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_NothingRequested(t *testing.T) {
	idx, mock := newMockIndex(t, 0)
	defer mock.Close()

	hits, err := idx.Search(context.Background(), []float32{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.Search(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_QueryError(t *testing.T) {
	idx, mock := newMockIndex(t, 0)
	defer mock.Close()

	mock.ExpectQuery("SELECT passage_id").WillReturnError(errors.New("relation does not exist"))

	_, err := idx.Search(context.Background(), []float32{1}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search vectors")
}

func TestCount(t *testing.T) {
	idx, mock := newMockIndex(t, 0)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "passage_vectors"`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClose(t *testing.T) {
	idx, mock := newMockIndex(t, 0)
	mock.ExpectClose()

	require.NoError(t, idx.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_RequiresURL(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}
