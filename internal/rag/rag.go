// Package rag wires the retrieval pipeline: document extraction, chunking,
// embedding, similarity indexing and answer assembly. One Pipeline owns one
// corpus generation at a time; ingest replaces it atomically, queries read it
// under a shared lock.
package rag

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"document-qa/internal/chunker"
	"document-qa/internal/config"
	"document-qa/internal/embedding"
	"document-qa/internal/extractor"
	"document-qa/internal/helper"
	"document-qa/internal/models"
)

// SimilarityIndex stores chunk vectors and answers top-k queries. Build
// replaces the contents wholesale; padding chunks never surface from Search.
type SimilarityIndex interface {
	Build(ctx context.Context, chunks []models.Chunk) error
	Search(ctx context.Context, query string, k int) ([]models.SearchResult, error)
	Rows() int
	Dimension() int
}

// IndexFactory creates a fresh index for a new corpus generation.
type IndexFactory func(embedder *embedding.Embedder) (SimilarityIndex, error)

// SourceText is one extracted document ready for chunking.
type SourceText struct {
	Name string
	Text string
}

// generation is one complete snapshot of chunks, fitted embedder state and
// built index. It is swapped in whole and never mutated afterwards.
type generation struct {
	id            string
	genuineChunks int
	embedder      *embedding.Embedder
	index         SimilarityIndex
}

// Pipeline is the request-facing retrieval core. A read/write lock guards the
// current generation: searches share it, ingest and clear take it exclusively,
// so an in-flight search sees either the old generation to completion or the
// new one, never a torn mixture.
type Pipeline struct {
	mu       sync.RWMutex
	cfg      *config.Config
	newIndex IndexFactory
	gen      *generation
}

// minCorpusChunks is the smallest corpus the TF-IDF fit accepts; smaller
// corpora are padded with synthetic chunks that never reach search results.
const minCorpusChunks = 2

func NewPipeline(cfg *config.Config, newIndex IndexFactory) *Pipeline {
	return &Pipeline{cfg: cfg, newIndex: newIndex}
}

// IngestFiles extracts each file and ingests the surviving texts as a new
// corpus. A document whose extraction fails is skipped and counted, not fatal;
// the batch is abortable between documents through ctx.
func (p *Pipeline) IngestFiles(ctx context.Context, files []extractor.File) (models.CorpusStats, error) {
	var sources []SourceText
	skipped := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return models.CorpusStats{}, err
		}
		text, err := extractor.Extract(f)
		if err != nil {
			log.Error().Err(err).Str("file", f.Name).Msg("skipping document")
			skipped++
			continue
		}
		sources = append(sources, SourceText{Name: f.Name, Text: text})
	}

	stats, err := p.IngestCorpus(ctx, sources)
	if err != nil {
		return stats, err
	}
	stats.DocumentsProcessed = len(sources)
	stats.DocumentsSkipped = skipped
	return stats, nil
}

// IngestCorpus chunks the sources, fits the embedder, builds a fresh index and
// swaps it in as the new corpus generation. On any failure the prior
// generation remains active; there is no partial update.
func (p *Pipeline) IngestCorpus(ctx context.Context, sources []SourceText) (models.CorpusStats, error) {
	var chunks []models.Chunk
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return models.CorpusStats{}, err
		}
		chunks = append(chunks, chunker.Chunk(src.Text, src.Name, p.cfg.RAG.ChunkSize, p.cfg.RAG.ChunkOverlap)...)
	}
	genuine := len(chunks)
	if genuine == 0 {
		return models.CorpusStats{}, ErrEmptyCorpus
	}

	// Pad tiny corpora so the statistical fit is well-defined.
	for i := len(chunks); i < minCorpusChunks; i++ {
		chunks = append(chunks, models.Chunk{
			Text:          models.PaddingText,
			SourceName:    "padding",
			SequenceIndex: i,
			Padding:       true,
		})
	}

	corpus := make([]string, len(chunks))
	for i, chunk := range chunks {
		corpus[i] = chunk.Text
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	embedder := embedding.New(p.cfg.RAG.EmbeddingDimension)
	embedder.Fit(corpus)

	idx, err := p.newIndex(embedder)
	if err != nil {
		return models.CorpusStats{}, err
	}
	if err := idx.Build(ctx, chunks); err != nil {
		return models.CorpusStats{}, err
	}

	id, err := helper.GenerateUUID()
	if err != nil {
		id = "unknown"
	}
	p.gen = &generation{
		id:            id,
		genuineChunks: genuine,
		embedder:      embedder,
		index:         idx,
	}

	log.Info().
		Str("generation", id).
		Int("chunks", genuine).
		Int("rows", idx.Rows()).
		Int("dimension", idx.Dimension()).
		Msg("corpus generation committed")

	return models.CorpusStats{
		TotalChunks:        genuine,
		EmbeddingDimension: idx.Dimension(),
	}, nil
}

// Query answers a natural-language query from the current corpus generation.
// Blank queries fail with ErrQueryEmpty; queries before the first successful
// ingest fail with ErrIndexNotReady.
func (p *Pipeline) Query(ctx context.Context, query string, k int) (models.RetrievalAnswer, error) {
	if strings.TrimSpace(query) == "" {
		return models.RetrievalAnswer{}, ErrQueryEmpty
	}
	if k <= 0 {
		k = p.cfg.RAG.TopK
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.gen == nil {
		return models.RetrievalAnswer{}, ErrIndexNotReady
	}
	return Answer(ctx, p.gen.index, query, k)
}

// Clear releases the current generation, returning the pipeline to its empty,
// not-ready state.
func (p *Pipeline) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != nil {
		log.Info().Str("generation", p.gen.id).Msg("corpus generation cleared")
	}
	p.gen = nil
}

// Stats reports the shape of the loaded corpus, all zeros when none is loaded.
func (p *Pipeline) Stats() models.Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.gen == nil {
		return models.Stats{}
	}
	return models.Stats{
		TotalChunks:        p.gen.genuineChunks,
		EmbeddingDimension: p.gen.index.Dimension(),
		IndexRowCount:      p.gen.index.Rows(),
	}
}
