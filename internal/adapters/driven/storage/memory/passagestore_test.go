package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

func passage(id, source string, ordinal int) domain.Passage {
	return domain.Passage{
		ID:        id,
		SourceID:  source,
		Content:   "content of " + id,
		Ordinal:   ordinal,
		Embedding: []float32{1, 0},
	}
}

func TestNewPassageStore(t *testing.T) {
	store := NewPassageStore()
	require.NotNil(t, store)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	next, err := store.NextOrdinal(context.Background())
	require.NoError(t, err)
	assert.Zero(t, next)
}

func TestPassageStore_SaveAndGet(t *testing.T) {
	store := NewPassageStore()
	ctx := context.Background()

	require.NoError(t, store.SavePassages(ctx, []domain.Passage{
		passage("p1", "gdpr", 0),
		passage("p2", "gdpr", 1),
	}))

	got, err := store.GetPassages(ctx, []string{"p2", "missing", "p1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[0].ID)
	assert.Equal(t, "p1", got[1].ID)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPassageStore_SaveReplaces(t *testing.T) {
	store := NewPassageStore()
	ctx := context.Background()

	require.NoError(t, store.SavePassages(ctx, []domain.Passage{passage("p1", "gdpr", 0)}))
	updated := passage("p1", "gdpr", 0)
	updated.Content = "updated"
	require.NoError(t, store.SavePassages(ctx, []domain.Passage{updated}))

	got, err := store.GetPassages(ctx, []string{"p1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "updated", got[0].Content)
}

func TestPassageStore_CopiesEmbedding(t *testing.T) {
	store := NewPassageStore()
	ctx := context.Background()

	p := passage("p1", "gdpr", 0)
	require.NoError(t, store.SavePassages(ctx, []domain.Passage{p}))
	p.Embedding[0] = 42

	got, err := store.GetPassages(ctx, []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, float32(1), got[0].Embedding[0])
}

func TestPassageStore_ListOrderedByOrdinal(t *testing.T) {
	store := NewPassageStore()
	ctx := context.Background()

	require.NoError(t, store.SavePassages(ctx, []domain.Passage{
		passage("c", "b", 2),
		passage("a", "a", 0),
		passage("b", "a", 1),
	}))

	list, err := store.ListPassages(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestPassageStore_DeleteSource(t *testing.T) {
	store := NewPassageStore()
	ctx := context.Background()

	require.NoError(t, store.SavePassages(ctx, []domain.Passage{
		passage("p2", "gdpr", 1),
		passage("p1", "gdpr", 0),
		passage("p3", "companies-act", 2),
	}))

	ids, err := store.DeleteSource(ctx, "gdpr")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ids, err = store.DeleteSource(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPassageStore_DeletePassages(t *testing.T) {
	store := NewPassageStore()
	ctx := context.Background()

	require.NoError(t, store.SavePassages(ctx, []domain.Passage{
		passage("p1", "gdpr", 0),
		passage("p2", "gdpr", 1),
		passage("p3", "gdpr", 2),
	}))

	require.NoError(t, store.DeletePassages(ctx, []string{"p1", "p3", "unknown"}))

	list, err := store.ListPassages(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p2", list[0].ID)
}

func TestPassageStore_NextOrdinalNeverReused(t *testing.T) {
	store := NewPassageStore()
	ctx := context.Background()

	require.NoError(t, store.SavePassages(ctx, []domain.Passage{passage("p1", "a", 0), passage("p2", "a", 1)}))
	_, err := store.DeleteSource(ctx, "a")
	require.NoError(t, err)

	next, err := store.NextOrdinal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestPassageStore_Concurrency(t *testing.T) {
	store := NewPassageStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%26))
			_ = store.SavePassages(ctx, []domain.Passage{passage(id, "src", i)})
			_, _ = store.GetPassages(ctx, []string{id})
			_, _ = store.ListPassages(ctx)
		}(i)
	}
	wg.Wait()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 26, n)
}
