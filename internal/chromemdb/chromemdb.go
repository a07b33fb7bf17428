// Package chromemdb backs the similarity index with a chromem-go collection,
// optionally persisted on disk. Persisted data survives on disk but is not
// served until the next ingest rebuilds a corpus from sources. The collection
// is dropped and rebuilt wholesale on every ingest; it is never patched in
// place.
package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"

	"document-qa/internal/embedding"
	"document-qa/internal/models"
)

// Store adapts a chromem-go collection to the similarity index contract.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	embedder   *embedding.Embedder
	rows       int
	genuine    int
	dim        int
}

const compress = false

// New initializes a chromem-backed store. With inMemory set, nothing touches
// the disk and persistence is lost on exit.
func New(dbPath, collectionName string, inMemory bool, embedder *embedding.Embedder) (*Store, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}
	return &Store{db: db, name: collectionName, embedder: embedder}, nil
}

// embeddingFunc bridges the local embedder into chromem's float32 contract.
// chromem scores by dot product, so every embedding is L2-normalized here to
// keep similarities inside [-1, 1]. An all-zero projection (text sharing no
// terms with the vocabulary) is replaced by a constant vector first so the
// norm is finite.
func (s *Store) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vec := s.embedder.Embed(text)
		var norm float64
		for _, x := range vec {
			norm += x * x
		}
		out := make([]float32, len(vec))
		if norm == 0 {
			for i := range out {
				out[i] = 1
			}
			norm = float64(len(out))
		} else {
			for i, x := range vec {
				out[i] = float32(x)
			}
		}
		scale := float32(1 / math.Sqrt(norm))
		for i := range out {
			out[i] *= scale
		}
		return out, nil
	}
}

// Build replaces the collection with the given chunks.
func (s *Store) Build(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return errors.New("no chunks to index")
	}
	// A persistent database may already hold this collection from a previous
	// process; drop it unconditionally so the build never merges corpora.
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	c, err := s.db.GetOrCreateCollection(s.name, nil, s.embeddingFunc())
	if err != nil {
		return fmt.Errorf("failed to create collection: %v", err)
	}

	docs := make([]chromem.Document, 0, len(chunks))
	genuine := 0
	for i, chunk := range chunks {
		if !chunk.Padding {
			genuine++
		}
		docs = append(docs, chromem.Document{
			ID:      fmt.Sprintf("%s-%d-%d", chunk.SourceName, chunk.SequenceIndex, i),
			Content: chunk.Text,
			Metadata: map[string]string{
				"source":  chunk.SourceName,
				"seq":     strconv.Itoa(chunk.SequenceIndex),
				"padding": strconv.FormatBool(chunk.Padding),
			},
		})
	}
	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}

	s.collection = c
	s.rows = len(chunks)
	s.genuine = genuine
	s.dim = s.embedder.Dimension()
	return nil
}

// Search returns up to k genuine matches by descending similarity. Padding
// rows are excluded with a metadata filter before the k limit applies.
func (s *Store) Search(ctx context.Context, query string, k int) ([]models.SearchResult, error) {
	if s.collection == nil || s.rows == 0 || k <= 0 {
		return nil, nil
	}
	n := k
	if n > s.genuine {
		n = s.genuine
	}
	if n == 0 {
		return nil, nil
	}
	found, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryText: query,
		NResults:  n,
		Where:     map[string]string{"padding": "false"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	results := make([]models.SearchResult, 0, len(found))
	for i, res := range found {
		results = append(results, models.SearchResult{
			RankPosition:    i + 1,
			SourceName:      res.Metadata["source"],
			SimilarityScore: float64(res.Similarity),
			Preview:         models.PreviewOf(res.Content),
		})
	}
	return results, nil
}

// Rows returns the number of stored documents, padding included.
func (s *Store) Rows() int { return s.rows }

// Dimension returns the embedding dimension of the stored vectors.
func (s *Store) Dimension() int { return s.dim }
