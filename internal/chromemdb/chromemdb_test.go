package chromemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-qa/internal/embedding"
	"document-qa/internal/models"
)

func newMemoryStore(t *testing.T, chunks []models.Chunk) *Store {
	t.Helper()
	corpus := make([]string, len(chunks))
	for i, c := range chunks {
		corpus[i] = c.Text
	}
	embedder := embedding.New(128)
	embedder.Fit(corpus)

	store, err := New("", "test", true, embedder)
	require.NoError(t, err)
	require.NoError(t, store.Build(context.Background(), chunks))
	return store
}

func TestStoreBuildAndSearch(t *testing.T) {
	chunks := []models.Chunk{
		{Text: "apples grow in orchards near rivers", SourceName: "fruit.txt", SequenceIndex: 0},
		{Text: "quantum processors require extreme cooling", SourceName: "physics.pdf", SequenceIndex: 0},
		{Text: models.PaddingText, SourceName: "padding", SequenceIndex: 0, Padding: true},
	}
	store := newMemoryStore(t, chunks)

	assert.Equal(t, 3, store.Rows())
	assert.Equal(t, 128, store.Dimension())

	results, err := store.Search(context.Background(), "apples in orchards", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "fruit.txt", results[0].SourceName)
	for _, r := range results {
		assert.NotEqual(t, "padding", r.SourceName)
	}
}

func TestStoreSearchBeforeBuild(t *testing.T) {
	store, err := New("", "test", true, embedding.New(128))
	require.NoError(t, err)

	results, err := store.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPersistentStoreRebuildReplaces(t *testing.T) {
	dir := t.TempDir()

	embedder := embedding.New(128)
	embedder.Fit([]string{"old corpus about trains", "old corpus about stations"})
	store, err := New(dir, "docs", false, embedder)
	require.NoError(t, err)
	require.NoError(t, store.Build(context.Background(), []models.Chunk{
		{Text: "old corpus about trains", SourceName: "old.txt", SequenceIndex: 0},
		{Text: "old corpus about stations", SourceName: "old.txt", SequenceIndex: 1},
	}))

	// a fresh store over the same path, as a restarted process would open;
	// the collection it builds must fully replace the one loaded from disk
	embedder2 := embedding.New(128)
	embedder2.Fit([]string{"trains leaving stations", models.PaddingText})
	reopened, err := New(dir, "docs", false, embedder2)
	require.NoError(t, err)
	require.NoError(t, reopened.Build(context.Background(), []models.Chunk{
		{Text: "trains leaving stations", SourceName: "new.txt", SequenceIndex: 0},
		{Text: models.PaddingText, SourceName: "padding", SequenceIndex: 1, Padding: true},
	}))

	assert.Equal(t, 2, reopened.Rows())
	results, err := reopened.Search(context.Background(), "trains", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new.txt", results[0].SourceName)
}

func TestStoreScoreRangeWithUnfittedEmbedder(t *testing.T) {
	// an unfitted embedder falls back to hash vectors, which are not unit
	// length; similarities must still land in [-1, 1]
	store, err := New("", "test", true, embedding.New(64))
	require.NoError(t, err)
	chunks := []models.Chunk{
		{Text: "drift compensation tables", SourceName: "a.txt", SequenceIndex: 0},
		{Text: "valve calibration notes", SourceName: "b.txt", SequenceIndex: 0},
	}
	require.NoError(t, store.Build(context.Background(), chunks))

	results, err := store.Search(context.Background(), "calibration", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.SimilarityScore, -1.0)
		assert.LessOrEqual(t, r.SimilarityScore, 1.0)
	}
}

func TestStoreRebuildReplaces(t *testing.T) {
	first := []models.Chunk{
		{Text: "old corpus about trains", SourceName: "old.txt", SequenceIndex: 0},
		{Text: "old corpus about stations", SourceName: "old.txt", SequenceIndex: 1},
	}
	store := newMemoryStore(t, first)

	second := []models.Chunk{
		{Text: "trains leaving stations", SourceName: "new.txt", SequenceIndex: 0},
	}
	require.NoError(t, store.Build(context.Background(), second))

	assert.Equal(t, 1, store.Rows())
	results, err := store.Search(context.Background(), "trains", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "new.txt", r.SourceName)
	}
}
