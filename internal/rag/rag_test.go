package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-qa/internal/config"
	"document-qa/internal/embedding"
	"document-qa/internal/extractor"
	"document-qa/internal/index"
	"document-qa/internal/models"
)

func newTestPipeline() *Pipeline {
	cfg := config.Default()
	return NewPipeline(cfg, func(embedder *embedding.Embedder) (SimilarityIndex, error) {
		return index.New(embedder), nil
	})
}

func testSources() []SourceText {
	return []SourceText{
		{Name: "fruit.txt", Text: "Apples grow in orchards. Bananas ripen quickly in the tropics. Cherries are harvested in summer."},
		{Name: "physics.txt", Text: "Quantum processors require extreme cooling. Superconducting circuits carry current without resistance."},
	}
}

func TestQueryEmptyString(t *testing.T) {
	p := newTestPipeline()

	_, err := p.Query(context.Background(), "   ", 5)
	assert.ErrorIs(t, err, ErrQueryEmpty)
}

func TestQueryBeforeIngest(t *testing.T) {
	p := newTestPipeline()

	_, err := p.Query(context.Background(), "anything", 5)
	assert.ErrorIs(t, err, ErrIndexNotReady)
}

func TestIngestAndQuery(t *testing.T) {
	p := newTestPipeline()

	stats, err := p.IngestCorpus(context.Background(), testSources())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalChunks)
	assert.Equal(t, config.DefaultEmbeddingDimension, stats.EmbeddingDimension)

	answer, err := p.Query(context.Background(), "how do apples grow", 5)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(answer.Response, "Based on 'fruit.txt':"))
	assert.GreaterOrEqual(t, answer.Confidence, 0.5)
	assert.LessOrEqual(t, answer.Confidence, 0.95)
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "fruit.txt", answer.Sources[0].SourceName)
}

func TestIngestEmptyCorpus(t *testing.T) {
	p := newTestPipeline()

	_, err := p.IngestCorpus(context.Background(), []SourceText{{Name: "blank.txt", Text: "   "}})
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestFailedIngestKeepsPriorGeneration(t *testing.T) {
	p := newTestPipeline()

	_, err := p.IngestCorpus(context.Background(), testSources())
	require.NoError(t, err)
	before := p.Stats()

	_, err = p.IngestCorpus(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
	assert.Equal(t, before, p.Stats())

	_, err = p.Query(context.Background(), "apples", 5)
	assert.NoError(t, err)
}

func TestIngestReplacesGeneration(t *testing.T) {
	p := newTestPipeline()

	_, err := p.IngestCorpus(context.Background(), testSources())
	require.NoError(t, err)

	_, err = p.IngestCorpus(context.Background(), []SourceText{
		{Name: "solo.txt", Text: "a single tiny document about sailing boats"},
	})
	require.NoError(t, err)

	stats := p.Stats()
	assert.Equal(t, 1, stats.TotalChunks)

	answer, err := p.Query(context.Background(), "sailing", 5)
	require.NoError(t, err)
	for _, src := range answer.Sources {
		assert.Equal(t, "solo.txt", src.SourceName)
	}
}

func TestIngestIdempotent(t *testing.T) {
	p := newTestPipeline()
	ctx := context.Background()

	first, err := p.IngestCorpus(ctx, testSources())
	require.NoError(t, err)
	answerA, err := p.Query(ctx, "quantum cooling", 5)
	require.NoError(t, err)

	second, err := p.IngestCorpus(ctx, testSources())
	require.NoError(t, err)
	answerB, err := p.Query(ctx, "quantum cooling", 5)
	require.NoError(t, err)

	assert.Equal(t, first.TotalChunks, second.TotalChunks)
	assert.Equal(t, answerA, answerB)
}

func TestSingleChunkCorpusGetsPadding(t *testing.T) {
	p := newTestPipeline()

	stats, err := p.IngestCorpus(context.Background(), []SourceText{
		{Name: "tiny.txt", Text: "one short note"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalChunks)

	loaded := p.Stats()
	assert.Equal(t, 1, loaded.TotalChunks)
	assert.Equal(t, 2, loaded.IndexRowCount)

	// padding never surfaces, even when the query matches it best
	answer, err := p.Query(context.Background(), models.PaddingText, 10)
	require.NoError(t, err)
	for _, src := range answer.Sources {
		assert.NotEqual(t, "padding", src.SourceName)
	}
}

func TestChunkingScenario1500Chars(t *testing.T) {
	p := newTestPipeline()

	text := strings.TrimSpace(strings.Repeat("word ", 300))
	stats, err := p.IngestCorpus(context.Background(), []SourceText{{Name: "long.txt", Text: text}})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalChunks)
}

func TestClear(t *testing.T) {
	p := newTestPipeline()

	_, err := p.IngestCorpus(context.Background(), testSources())
	require.NoError(t, err)

	p.Clear()
	assert.Equal(t, models.Stats{}, p.Stats())

	_, err = p.Query(context.Background(), "apples", 5)
	assert.ErrorIs(t, err, ErrIndexNotReady)
}

func TestIngestFilesSkipsFailedExtractions(t *testing.T) {
	p := newTestPipeline()

	files := []extractor.File{
		{Name: "good.txt", Data: []byte("Plenty of readable text about mountain hiking trails and alpine weather conditions.")},
		{Name: "mystery.zzz", Data: []byte{0x00, 0x01}},
	}
	stats, err := p.IngestFiles(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DocumentsProcessed)
	assert.Equal(t, 1, stats.DocumentsSkipped)
	assert.Equal(t, 1, stats.TotalChunks)
}

func TestIngestFilesAllFail(t *testing.T) {
	p := newTestPipeline()

	files := []extractor.File{{Name: "mystery.zzz", Data: []byte{0x00}}}
	_, err := p.IngestFiles(context.Background(), files)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestIngestCancelledBetweenDocuments(t *testing.T) {
	p := newTestPipeline()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.IngestCorpus(ctx, testSources())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnswerOnEmptyIndex(t *testing.T) {
	idx := index.New(embedding.New(16))

	answer, err := Answer(context.Background(), idx, "x", 5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, answer.Confidence)
	assert.Equal(t, 0, answer.SourceCount)
	assert.Equal(t, models.NoAnswerResponse, answer.Response)
}

func TestConcurrentQueries(t *testing.T) {
	p := newTestPipeline()
	_, err := p.IngestCorpus(context.Background(), testSources())
	require.NoError(t, err)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := p.Query(context.Background(), "apples and quantum circuits", 3)
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}
}
